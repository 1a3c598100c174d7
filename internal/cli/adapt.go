package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"readapt/internal/adapt"
	"readapt/internal/doc"
	"readapt/internal/profile"
	"readapt/internal/progress"
	"readapt/internal/reconstruct"
)

// maxParallelFiles bounds concurrent document processing. Batching already
// amortizes API cost per document; file-level parallelism only needs to
// cover I/O and reconstruction.
const maxParallelFiles = 4

// resultPage is one reconstructed page in the output document, annotated
// with the tier that produced it. Raster pages reference their PNG sidecar.
type resultPage struct {
	*doc.OutputPage
	Tier       string `json:"tier"`
	RasterFile string `json:"raster_file,omitempty"`
}

// resultDocument is the adapted output written next to each input.
type resultDocument struct {
	ID      string       `json:"id"`
	Title   string       `json:"title,omitempty"`
	Profile string       `json:"profile"`
	Pages   []resultPage `json:"pages"`
}

// AdaptCmd creates the adapt command.
// The env parameter provides injectable dependencies for testing.
func AdaptCmd(env *Env) *cobra.Command {
	var (
		profileID  string
		output     string
		configPath string
		offline    bool
	)

	cmd := &cobra.Command{
		Use:   "adapt <document.json>...",
		Short: "Adapt extracted documents for a reader profile",
		Long: `Adapt the text of extracted documents for a reader profile and rebuild
their pages.

Inputs are JSON documents produced by a text extractor. Each page is rebuilt
with the best reconstruction available for it: adapted text replaces the
original in place when the source allows editing, and degrades through image
overlays down to a plain-text rendering otherwise. A page is never lost to a
reconstruction failure.

Adapted text is cached per profile, so repeated content across documents is
only sent to the API once. With --offline no API calls are made and the
profile's simplification rules are applied locally.`,
		Example: `  readapt adapt chapter.json
  readapt adapt chapter.json -p dyslexia
  readapt adapt chapter.json -o easy-read.json -p esl
  readapt adapt book/*.json -p adhd
  readapt adapt chapter.json --offline  # Rule-based, no API calls`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdapt(cmd, env, args, profileID, output, configPath, offline)
		},
	}

	cmd.Flags().StringVarP(&profileID, "profile", "p", profile.Default, "Reader profile: default, dyslexia, adhd, esl, vision")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>.adapted.json, single input only)")
	cmd.Flags().StringVar(&configPath, "profiles-config", "", "YAML file overriding or extending the built-in profiles")
	cmd.Flags().BoolVar(&offline, "offline", false, "Apply rule-based adaptation locally, no API calls")

	return cmd
}

// runAdapt executes the adaptation pipeline.
// Validation order: files exist -> format -> profile config -> profile -> output -> API key
func runAdapt(cmd *cobra.Command, env *Env, inputs []string, profileID, output, configPath string, offline bool) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	// 1. Input files exist and are JSON documents
	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, input)
			}
			return fmt.Errorf("cannot access input file: %w", err)
		}
		if ext := strings.ToLower(filepath.Ext(input)); ext != ".json" {
			return fmt.Errorf("unsupported format %q (supported: json): %w", ext, ErrUnsupportedFormat)
		}
	}

	// 2. Profile overrides (before the profile lookup so new IDs resolve)
	if configPath != "" {
		if err := env.Profiles.LoadFile(configPath); err != nil {
			return err
		}
	}

	// 3. Profile known
	if _, err := env.Profiles.Get(profileID); err != nil {
		return err
	}

	// 4. Explicit output only works for a single input
	if output != "" && len(inputs) > 1 {
		return ErrOutputWithMultipleInputs
	}

	// 5. API key present (not needed offline)
	var gen adapt.Generator
	if !offline {
		apiKey := env.Getenv(EnvAPIKey)
		if apiKey == "" {
			return fmt.Errorf("%w (set it with: export %s=sk-..., or use --offline)", ErrAPIKeyMissing, EnvAPIKey)
		}
		var err error
		gen, err = env.ClientFactory.NewGenerator(apiKey)
		if err != nil {
			return err
		}
	}

	// === PROCESSING ===

	reporter := progress.Writer{W: env.Stderr}
	adapter := adapt.NewAdapter(gen, env.Cache, env.Profiles, adapt.WithReporter(reporter))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for _, input := range inputs {
		input := input
		out := output
		if out == "" {
			out = deriveOutputPath(input)
		}
		g.Go(func() error {
			return processDocument(gctx, env, adapter, reporter, input, out, profileID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats := env.Cache.Stats()
	fmt.Fprintf(env.Stderr, "Cache: %d/%d entries, %d hits, %d misses (%.0f%% hit rate)\n",
		stats.Size, stats.Capacity, stats.Hits, stats.Misses, stats.HitRate()*100)
	return nil
}

// processDocument adapts and reconstructs one document end to end.
func processDocument(ctx context.Context, env *Env, adapter *adapt.Adapter, reporter progress.Reporter, inputPath, outputPath, profileID string) error {
	f, err := os.Open(inputPath) // #nosec G304 -- user-specified input file
	if err != nil {
		return fmt.Errorf("cannot open input file: %w", err)
	}
	d, err := doc.DecodeDocument(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	pipeline := reconstruct.NewPipeline(
		reconstruct.WithReporter(reporter),
		reconstruct.WithPageCount(len(d.Pages)),
	)
	style := env.Profiles.StyleOr(profileID)

	result := resultDocument{
		ID:      d.ID,
		Title:   d.Title,
		Profile: profileID,
		Pages:   make([]resultPage, 0, len(d.Pages)),
	}
	for _, p := range d.Pages {
		texts := make([]string, len(p.Blocks))
		for i, b := range p.Blocks {
			texts[i] = b.Text
		}

		adapted, err := adapter.AdaptBlocks(ctx, profileID, texts)
		if err != nil {
			return fmt.Errorf("%s page %d: %w", inputPath, p.Number, err)
		}

		page := doc.NewMemoryPage(p)
		out, tier, err := pipeline.ReconstructPage(page, p.Blocks, adapted, style)
		if err != nil {
			return fmt.Errorf("%s page %d: %w", inputPath, p.Number, err)
		}

		rp := resultPage{OutputPage: out, Tier: tier.String()}
		if out.Raster != nil {
			rp.RasterFile = rasterPath(outputPath, out.Number)
			if err := writePNG(rp.RasterFile, out.Raster); err != nil {
				return err
			}
		}
		result.Pages = append(result.Pages, rp)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", outputPath, err)
	}
	if err := writeFileAtomic(outputPath, append(data, '\n')); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Done: %s\n", outputPath)
	return nil
}
