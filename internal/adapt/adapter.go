package adapt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"readapt/internal/profile"
	"readapt/internal/progress"
)

// Output token budgets. Batched calls get a larger completion budget since
// one response carries several adapted texts.
const (
	batchMaxTokens  = 8000
	singleMaxTokens = 1024
)

// Generator is the single external generation-service primitive the
// scheduler depends on. *llm.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Adapter schedules block adaptations: cache lookups first, then cache
// misses grouped into token-budget-constrained batches, one external call
// per batch, with per-item fallback when a batch call or its parse fails.
//
// A nil Generator puts the Adapter in offline mode: every miss is adapted
// by the profile's rule set instead of the external service.
type Adapter struct {
	gen      Generator
	cache    *Cache
	profiles *profile.Registry
	reporter progress.Reporter

	maxBatchSize   int
	maxBatchTokens int
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithReporter sets the progress reporter.
func WithReporter(r progress.Reporter) AdapterOption {
	return func(a *Adapter) {
		a.reporter = progress.OrNop(r)
	}
}

// WithBatchLimits sets the per-batch item and estimated-token limits.
func WithBatchLimits(maxSize, maxTokens int) AdapterOption {
	return func(a *Adapter) {
		if maxSize > 0 {
			a.maxBatchSize = maxSize
		}
		if maxTokens > 0 {
			a.maxBatchTokens = maxTokens
		}
	}
}

// NewAdapter creates an Adapter. gen may be nil for offline rule-based
// adaptation; cache and profiles must not be nil.
func NewAdapter(gen Generator, cache *Cache, profiles *profile.Registry, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		gen:            gen,
		cache:          cache,
		profiles:       profiles,
		reporter:       progress.Nop{},
		maxBatchSize:   DefaultMaxBatchSize,
		maxBatchTokens: DefaultMaxBatchTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cache exposes the adapter's cache for introspection.
func (a *Adapter) Cache() *Cache {
	return a.cache
}

// AdaptBlocks adapts texts for profileID and returns one adapted text per
// input, same order, same length — regardless of which mix of cache hits,
// batched calls, and per-item fallbacks produced them. Blank inputs pass
// through untouched. The only returned errors are an unknown profile and
// context cancellation; call failures degrade to the original text instead
// of failing the document.
func (a *Adapter) AdaptBlocks(ctx context.Context, profileID string, texts []string) ([]string, error) {
	prof, err := a.profiles.Get(profileID)
	if err != nil {
		return nil, err
	}

	results := make([]string, len(texts))
	var misses []request

	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = text
			continue
		}
		if adapted, ok := a.cache.Get(text, profileID); ok {
			results[i] = adapted
			continue
		}
		misses = append(misses, request{index: i, text: text, tokens: estimateTokens(text)})
	}

	if len(misses) == 0 {
		return results, nil
	}

	// Offline mode: rule-based adaptation, no external calls.
	if a.gen == nil {
		for _, req := range misses {
			adapted := ApplyRules(req.text, prof.Rules)
			a.cache.Put(req.text, profileID, adapted)
			results[req.index] = adapted
		}
		return results, nil
	}

	batches := packBatches(misses, a.maxBatchSize, a.maxBatchTokens)
	for bi, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		adapted := a.adaptBatch(ctx, prof, batch)
		for j, req := range batch {
			a.cache.Put(req.text, profileID, adapted[j])
			results[req.index] = adapted[j]
		}

		a.reporter.Report(
			fmt.Sprintf("adapted batch %d/%d (%d blocks)", bi+1, len(batches), len(batch)),
			(bi+1)*100/len(batches),
		)
	}

	return results, nil
}

// adaptBatch adapts one batch, falling back to per-item calls when the
// batched call fails or its response does not demultiplex. Always returns
// exactly len(batch) texts.
func (a *Adapter) adaptBatch(ctx context.Context, prof profile.Profile, batch []request) []string {
	// A one-item batch gains nothing from delimiters.
	if len(batch) == 1 {
		return []string{a.adaptOne(ctx, prof, batch[0].text)}
	}

	prompt := buildBatchPrompt(prof.BatchInstructions, batch)
	content, err := a.gen.Generate(ctx, prompt, batchMaxTokens)
	if err == nil {
		parsed, parseErr := parseBatchResponse(content, len(batch))
		if parseErr == nil {
			// Items that fail validation are retried individually; the
			// rest of the batch is kept.
			for i, req := range batch {
				if v := ValidateAdaptation(req.text, parsed[i]); !v.Valid {
					a.reporter.Report(
						fmt.Sprintf("adapted text rejected (%s), retrying block individually", strings.Join(v.Issues, "; ")), 0)
					parsed[i] = a.adaptOne(ctx, prof, req.text)
				}
			}
			return parsed
		}
		err = parseErr
	}

	if errors.Is(err, ErrBatchParse) {
		a.reporter.Report("batch response parsing failed, adapting blocks individually", 0)
	} else {
		a.reporter.Report(fmt.Sprintf("batch call failed (%v), adapting blocks individually", err), 0)
	}

	results := make([]string, len(batch))
	for i, req := range batch {
		results[i] = a.adaptOne(ctx, prof, req.text)
	}
	return results
}

// adaptOne adapts a single text. When even the individual call fails, the
// original text is returned unchanged: adaptation degrades to a no-op for
// that block rather than aborting the document, and the degradation is
// surfaced only through the reporter.
func (a *Adapter) adaptOne(ctx context.Context, prof profile.Profile, text string) string {
	content, err := a.gen.Generate(ctx, buildSinglePrompt(prof.BatchInstructions, text), singleMaxTokens)
	if err != nil {
		a.reporter.Report(fmt.Sprintf("adaptation failed for block, keeping original text (%v)", err), 0)
		return text
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return text
	}
	if v := ValidateAdaptation(text, content); !v.Valid {
		a.reporter.Report(
			fmt.Sprintf("adapted text failed validation (%s), keeping original text", strings.Join(v.Issues, "; ")), 0)
		return text
	}
	return content
}
