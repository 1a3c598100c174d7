package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"readapt/internal/cli"
)

// cmdEnv bundles a test Env with its captured output streams.
type cmdEnv struct {
	env    *cli.Env
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newCmdEnv(t *testing.T, opts ...cli.EnvOption) *cmdEnv {
	t.Helper()

	ce := &cmdEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	base := []cli.EnvOption{
		cli.WithStdout(ce.stdout),
		cli.WithStderr(ce.stderr),
		cli.WithGetenv(func(string) string { return "" }),
	}
	ce.env = cli.NewEnv(append(base, opts...)...)
	return ce
}

// execute runs a command with args, capturing cobra's own output streams.
func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()

	// A nil slice would make cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

// writeInput writes a one-page test document and returns its path.
func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

// singleBlockDocument is a minimal editable one-page document.
const singleBlockDocument = `{
	"id": "doc-1",
	"pages": [{
		"number": 1,
		"width": 612,
		"height": 792,
		"blocks": [{
			"id": "b1",
			"text": "Students utilize numerous strategies.",
			"bbox": {"x0": 50, "y0": 60, "x1": 500, "y1": 90},
			"font_size": 12
		}]
	}]
}`

// rasterOnlyDocument forces overlay reconstruction.
const rasterOnlyDocument = `{
	"id": "doc-2",
	"pages": [{
		"number": 1,
		"width": 612,
		"height": 792,
		"raster_only": true,
		"blocks": [{
			"id": "b1",
			"text": "Scanned text.",
			"bbox": {"x0": 50, "y0": 60, "x1": 500, "y1": 90}
		}]
	}]
}`
