package chunk

import "errors"

var (
	// ErrInvalidChunking indicates a size/overlap combination that cannot
	// terminate (size <= overlap) or a non-positive size.
	ErrInvalidChunking = errors.New("chunk size must be greater than overlap")
)
