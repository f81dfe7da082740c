package crdt

import "github.com/pkg/errors"

// Sentinel errors describing the only ways a caller can misuse the
// substrate. The library never retries or recovers from these; they are
// programmer errors raised at the call site (spec §7).
var (
	// ErrInvalidDot is returned when a value passed where a Dot is
	// required is neither a Dot, a parseable dot string, nor a DotLike.
	ErrInvalidDot = errors.New("crdt: value is not a valid dot")

	// ErrInvalidDotFormat is returned when a string does not match the
	// wire grammar "id:counter".
	ErrInvalidDotFormat = errors.New("crdt: string is not in \"id:counter\" format")

	// ErrUnjoinableTypes is returned by Join when the operands are not
	// both numeric and the left operand does not implement Joiner.
	ErrUnjoinableTypes = errors.New("crdt: values cannot be joined")
)
