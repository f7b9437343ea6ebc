// Package raster declares the interface to the external raster library that
// provides pixel access and georeferencing for scene band files. The package
// deliberately contains no implementation; callers inject an Opener backed by
// whatever raster bindings they use.
package raster

// Handle is an opened raster dataset
type Handle interface {
	Width() int
	Height() int
	BandCount() int
	// GeoTransform returns the six affine transform coefficients mapping pixel
	// coordinates to georeferenced coordinates
	GeoTransform() [6]float64
	ProjectionWKT() string
	// ReadArray reads the full raster contents, one row-major slice per band
	ReadArray() ([][]float64, error)
}

// Opener opens a raster file at the given path
type Opener func(path string) (Handle, error)
