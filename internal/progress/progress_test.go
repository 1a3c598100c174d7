package progress_test

import (
	"strings"
	"testing"

	"readapt/internal/progress"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		want int
	}{
		{"negative clamps to zero", -5, 0},
		{"zero passes through", 0, 0},
		{"mid-range passes through", 42, 42},
		{"hundred passes through", 100, 100},
		{"overflow clamps to hundred", 150, 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := progress.Clamp(tt.in); got != tt.want {
				t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriter(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	w := progress.Writer{W: &sb}
	w.Report("page 3 reconstructed", 60)

	got := sb.String()
	if !strings.Contains(got, "60%") {
		t.Errorf("output %q should contain percentage", got)
	}
	if !strings.Contains(got, "page 3 reconstructed") {
		t.Errorf("output %q should contain message", got)
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	t.Run("nil becomes nop", func(t *testing.T) {
		t.Parallel()

		r := progress.OrNop(nil)
		// Must not panic.
		r.Report("ignored", 10)
	})

	t.Run("non-nil passes through", func(t *testing.T) {
		t.Parallel()

		called := false
		r := progress.OrNop(progress.Func(func(string, int) { called = true }))
		r.Report("seen", 10)
		if !called {
			t.Error("wrapped reporter was not invoked")
		}
	})
}
