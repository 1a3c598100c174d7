package reconstruct

import "errors"

var (
	// ErrTierFailed indicates a reconstruction strategy could not produce a
	// page and the next tier should be tried.
	ErrTierFailed = errors.New("reconstruction tier failed")

	// ErrBlockMismatch indicates the adapted texts do not line up with the
	// page's blocks.
	ErrBlockMismatch = errors.New("adapted texts do not match blocks")
)
