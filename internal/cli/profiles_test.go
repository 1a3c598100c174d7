package cli_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"readapt/internal/cli"
	"readapt/internal/profile"
)

// -----------------------------------------------------------------------------
// profiles command
// -----------------------------------------------------------------------------

func TestProfilesCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists the built-in profiles", func(t *testing.T) {
		t.Parallel()

		ce := newCmdEnv(t)

		if err := execute(t, cli.ProfilesCmd(ce.env)); err != nil {
			t.Fatalf("profiles: %v", err)
		}

		out := ce.stdout.String()
		for _, id := range []string{"default", "dyslexia", "adhd", "esl", "vision"} {
			if !strings.Contains(out, id) {
				t.Errorf("output missing profile %q:\n%s", id, out)
			}
		}
	})

	t.Run("includes profiles from a config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		config := writeInput(t, dir, "profiles.yaml", `profiles:
  simple:
    name: Simple Reading
`)
		ce := newCmdEnv(t)

		if err := execute(t, cli.ProfilesCmd(ce.env), "--profiles-config", config); err != nil {
			t.Fatalf("profiles: %v", err)
		}
		if out := ce.stdout.String(); !strings.Contains(out, "Simple Reading") {
			t.Errorf("output missing config-defined profile:\n%s", out)
		}
	})

	t.Run("rejects a malformed config file", func(t *testing.T) {
		t.Parallel()

		ce := newCmdEnv(t)

		err := execute(t, cli.ProfilesCmd(ce.env),
			"--profiles-config", filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, profile.ErrInvalidConfig) {
			t.Errorf("profiles error = %v, want ErrInvalidConfig", err)
		}
	})
}
