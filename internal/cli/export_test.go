package cli

// Exported internals for white-box tests.
var (
	DeriveOutputPath = deriveOutputPath
	RasterPath       = rasterPath
	WriteFileAtomic  = writeFileAtomic
)
