package adapt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Batch packing defaults. Token counts are a fixed chars-per-token
// approximation; exact counts do not matter, only that batches stay well
// inside the model's context window.
const (
	DefaultMaxBatchSize   = 5
	DefaultMaxBatchTokens = 4000

	charsPerToken = 4
)

// estimateTokens roughly estimates token count from character count.
func estimateTokens(text string) int {
	return len(text) / charsPerToken
}

// request is one pending block adaptation: index preserves the caller's
// ordering through batching and demultiplexing.
type request struct {
	index  int
	text   string
	tokens int
}

// packBatches groups requests into batches respecting both the item-count
// and token-budget limits. Packing is greedy first-fit in original order:
// deterministic and order-preserving rather than bin-packing-optimal.
// A single oversized request still forms its own batch.
func packBatches(reqs []request, maxSize, maxTokens int) [][]request {
	if maxSize <= 0 {
		maxSize = DefaultMaxBatchSize
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxBatchTokens
	}

	var batches [][]request
	var current []request
	currentTokens := 0

	for _, req := range reqs {
		overflows := len(current) >= maxSize ||
			(len(current) > 0 && currentTokens+req.tokens > maxTokens)
		if overflows {
			batches = append(batches, current)
			current = nil
			currentTokens = 0
		}
		current = append(current, req)
		currentTokens += req.tokens
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches
}

// Batched prompts enumerate each text behind a stable "### TEXT N ###"
// delimiter; the response is demultiplexed by matching the same scheme.

// batchDelimiter formats the delimiter for the 1-based item n.
func batchDelimiter(n int) string {
	return fmt.Sprintf("### TEXT %d ###", n)
}

// buildBatchPrompt combines the profile instructions and all batch items
// into one prompt.
func buildBatchPrompt(instructions string, reqs []request) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nFormat your response using exactly '### TEXT N ###' before each adapted text (where N is the text number).\n\n")

	for i, req := range reqs {
		sb.WriteString(batchDelimiter(i + 1))
		sb.WriteString("\n")
		sb.WriteString(req.text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// buildSinglePrompt builds a per-item prompt for the fallback path.
func buildSinglePrompt(instructions, text string) string {
	return fmt.Sprintf("%s\n\nOriginal:\n%s\n\nAdapted:", instructions, text)
}

// batchItemPattern matches one response delimiter, capturing the item number.
var batchItemPattern = regexp.MustCompile(`###\s*TEXT\s*(\d+)\s*###`)

// parseBatchResponse splits a batched response back into n per-index adapted
// strings. Returns ErrBatchParse unless every index 1..n appears exactly once
// with non-empty content: an undercounted or garbled response must trigger
// the per-item fallback, not a partial result.
func parseBatchResponse(content string, n int) ([]string, error) {
	locs := batchItemPattern.FindAllStringSubmatchIndex(content, -1)
	if len(locs) != n {
		return nil, fmt.Errorf("%w: found %d sections, want %d", ErrBatchParse, len(locs), n)
	}

	results := make([]string, n)
	seen := make([]bool, n)

	for i, loc := range locs {
		num, err := strconv.Atoi(content[loc[2]:loc[3]])
		if err != nil || num < 1 || num > n {
			return nil, fmt.Errorf("%w: section number %q out of range 1..%d", ErrBatchParse, content[loc[2]:loc[3]], n)
		}
		if seen[num-1] {
			return nil, fmt.Errorf("%w: duplicate section %d", ErrBatchParse, num)
		}
		seen[num-1] = true

		start := loc[1]
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		text := strings.TrimSpace(content[start:end])
		if text == "" {
			return nil, fmt.Errorf("%w: empty section %d", ErrBatchParse, num)
		}
		results[num-1] = text
	}

	return results, nil
}
