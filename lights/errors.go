package lights

import "errors"

var (
	ErrTooManyTriangles   = errors.New("lights: emissive triangle count exceeds the addressable index range")
	ErrInvalidBuildParams = errors.New("lights: build parameters fall outside the collection")
	ErrNotBuilt           = errors.New("lights: collection geometry has not been built")
	ErrTexelSumsMissing   = errors.New("lights: texel sums do not cover every emissive triangle")
	ErrInvalidBufferSize  = errors.New("lights: buffer size is not a multiple of the element stride")
	ErrInvalidArchive     = errors.New("lights: archived triangle ranges do not match the mesh lights")
)
