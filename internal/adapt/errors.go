package adapt

import "errors"

// ErrBatchParse indicates a batched response did not demultiplex into
// exactly one adapted text per request. The scheduler recovers by issuing
// per-item calls; this sentinel never crosses the package boundary.
var ErrBatchParse = errors.New("malformed batch response")
