package pipeline

import "errors"

var (
	ErrNoScene  = errors.New("pipeline: no scene defined")
	ErrNotBuilt = errors.New("pipeline: light collection has not been built")
	ErrNoStages = errors.New("pipeline: no stages specified")
)
