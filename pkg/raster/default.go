//go:build !opencv

package raster

// DefaultTransformer returns the pure-Go Imaging transformer.
func DefaultTransformer() Transformer {
	return Imaging{}
}
