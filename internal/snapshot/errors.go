package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates a document whose grid size differs from
	// the engine it is being restored into.
	ErrDimensionMismatch = errors.New("snapshot: grid dimensions do not match")

	// ErrMalformedPayload indicates a field payload that is not valid base64
	// or decodes to the wrong number of bytes.
	ErrMalformedPayload = errors.New("snapshot: malformed field payload")
)

// DimensionError carries both sizes of a failed restore.
type DimensionError struct {
	Want, Got [2]int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: engine is %dx%d, document is %dx%d",
		ErrDimensionMismatch, e.Want[0], e.Want[1], e.Got[0], e.Got[1])
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }
