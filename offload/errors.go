package offload

import "errors"

// ErrInvalidInput marks a rejected sample: a negative or non-finite duration,
// or a layer index outside [0, N). The offending sample is dropped and no
// state changes; the surrounding round is otherwise unaffected.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidConfiguration marks a caller/config bug: mismatched array
// lengths, a non-positive layer count, or a threshold/probability outside
// its range. Fatal at construction; never silently defaulted.
var ErrInvalidConfiguration = errors.New("invalid configuration")
