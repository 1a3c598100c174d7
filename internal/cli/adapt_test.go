package cli_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"readapt/internal/cli"
	"readapt/internal/profile"
)

type adaptedOutput struct {
	ID      string `json:"id"`
	Profile string `json:"profile"`
	Pages   []struct {
		Number     int    `json:"number"`
		Tier       string `json:"tier"`
		RasterFile string `json:"raster_file"`
		Texts      []struct {
			Text    string `json:"text"`
			Clipped bool   `json:"clipped"`
		} `json:"texts"`
	} `json:"pages"`
}

func readOutput(t *testing.T, path string) adaptedOutput {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var out adaptedOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return out
}

// -----------------------------------------------------------------------------
// adapt command
// -----------------------------------------------------------------------------

func TestAdaptCmd(t *testing.T) {
	t.Parallel()

	t.Run("offline run writes the adapted document", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeInput(t, dir, "chapter.json", singleBlockDocument)
		ce := newCmdEnv(t)

		err := execute(t, cli.AdaptCmd(ce.env), input, "--offline", "-p", profile.Dyslexia)
		if err != nil {
			t.Fatalf("adapt: %v", err)
		}

		out := readOutput(t, filepath.Join(dir, "chapter.adapted.json"))
		if out.Profile != profile.Dyslexia {
			t.Errorf("profile = %q, want %q", out.Profile, profile.Dyslexia)
		}
		if len(out.Pages) != 1 || out.Pages[0].Tier != "in-place" {
			t.Fatalf("pages = %+v, want one in-place page", out.Pages)
		}

		got := out.Pages[0].Texts[0].Text
		if strings.Contains(got, "utilize") || !strings.Contains(got, "use") {
			t.Errorf("rule-based adaptation not applied: %q", got)
		}
	})

	t.Run("raster-only input gets an image overlay and a PNG sidecar", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeInput(t, dir, "scan.json", rasterOnlyDocument)
		ce := newCmdEnv(t)

		if err := execute(t, cli.AdaptCmd(ce.env), input, "--offline"); err != nil {
			t.Fatalf("adapt: %v", err)
		}

		out := readOutput(t, filepath.Join(dir, "scan.adapted.json"))
		page := out.Pages[0]
		if page.Tier != "image overlay" {
			t.Errorf("tier = %q, want %q", page.Tier, "image overlay")
		}
		want := filepath.Join(dir, "scan.adapted.page-1.png")
		if page.RasterFile != want {
			t.Errorf("raster_file = %q, want %q", page.RasterFile, want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Errorf("PNG sidecar missing: %v", err)
		}
	})

	t.Run("routes misses through the configured generator", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeInput(t, dir, "chapter.json", singleBlockDocument)

		gen := &mockGenerator{response: "Students use many strategies."}
		factory := &mockFactory{gen: gen}
		ce := newCmdEnv(t,
			cli.WithGetenv(func(key string) string {
				if key == cli.EnvAPIKey {
					return "sk-test"
				}
				return ""
			}),
			cli.WithClientFactory(factory),
		)

		if err := execute(t, cli.AdaptCmd(ce.env), input); err != nil {
			t.Fatalf("adapt: %v", err)
		}
		if gen.callCount() != 1 {
			t.Errorf("generator calls = %d, want 1", gen.callCount())
		}

		out := readOutput(t, filepath.Join(dir, "chapter.adapted.json"))
		if got := out.Pages[0].Texts[0].Text; got != "Students use many strategies." {
			t.Errorf("adapted text = %q", got)
		}
	})

	t.Run("prints cache statistics", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeInput(t, dir, "chapter.json", singleBlockDocument)
		ce := newCmdEnv(t)

		if err := execute(t, cli.AdaptCmd(ce.env), input, "--offline"); err != nil {
			t.Fatalf("adapt: %v", err)
		}
		if !strings.Contains(ce.stderr.String(), "Cache:") {
			t.Errorf("no cache summary on stderr:\n%s", ce.stderr.String())
		}
	})

	t.Run("repeated content is served from the shared cache", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := writeInput(t, dir, "a.json", singleBlockDocument)
		b := writeInput(t, dir, "b.json", singleBlockDocument)

		gen := &mockGenerator{response: "Adapted."}
		ce := newCmdEnv(t,
			cli.WithGetenv(func(string) string { return "sk-test" }),
			cli.WithClientFactory(&mockFactory{gen: gen}),
		)

		if err := execute(t, cli.AdaptCmd(ce.env), a); err != nil {
			t.Fatalf("adapt a: %v", err)
		}
		if err := execute(t, cli.AdaptCmd(ce.env), b); err != nil {
			t.Fatalf("adapt b: %v", err)
		}
		if gen.callCount() != 1 {
			t.Errorf("generator calls = %d, want 1 (second run should hit the cache)", gen.callCount())
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeInput(t, dir, "chapter.json", singleBlockDocument)
		text := writeInput(t, dir, "notes.txt", "not a document")

		tests := []struct {
			name string
			args []string
			want error
		}{
			{"missing file", []string{filepath.Join(dir, "absent.json"), "--offline"}, cli.ErrFileNotFound},
			{"wrong extension", []string{text, "--offline"}, cli.ErrUnsupportedFormat},
			{"unknown profile", []string{input, "--offline", "-p", "martian"}, profile.ErrUnknown},
			{"output with multiple inputs", []string{input, input, "--offline", "-o", "out.json"}, cli.ErrOutputWithMultipleInputs},
			{"missing api key", []string{input}, cli.ErrAPIKeyMissing},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				ce := newCmdEnv(t)
				err := execute(t, cli.AdaptCmd(ce.env), tt.args...)
				if !errors.Is(err, tt.want) {
					t.Errorf("adapt error = %v, want %v", err, tt.want)
				}
			})
		}
	})

	t.Run("refuses to overwrite existing output", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeInput(t, dir, "chapter.json", singleBlockDocument)
		existing := writeInput(t, dir, "out.json", "{}")
		ce := newCmdEnv(t)

		err := execute(t, cli.AdaptCmd(ce.env), input, "--offline", "-o", existing)
		if !errors.Is(err, cli.ErrOutputExists) {
			t.Errorf("adapt error = %v, want ErrOutputExists", err)
		}
	})

	t.Run("profile overrides from a config file apply", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := writeInput(t, dir, "chapter.json", singleBlockDocument)
		config := writeInput(t, dir, "profiles.yaml", `profiles:
  simple:
    name: Simple
    rules:
      simplify_vocabulary: true
`)
		ce := newCmdEnv(t)

		err := execute(t, cli.AdaptCmd(ce.env), input, "--offline",
			"--profiles-config", config, "-p", "simple")
		if err != nil {
			t.Fatalf("adapt: %v", err)
		}

		out := readOutput(t, filepath.Join(dir, "chapter.adapted.json"))
		if got := out.Pages[0].Texts[0].Text; strings.Contains(got, "utilize") {
			t.Errorf("config-defined profile rules not applied: %q", got)
		}
	})
}
