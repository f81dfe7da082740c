package crdt

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dot uniquely identifies one local write made by one replica: a
// monotonically increasing counter scoped to a replica id. Counters
// produced by DotContext.MakeDot for a given id form the contiguous
// sequence 1, 2, 3, ... with no gaps.
//
// Dots are value types; equality is structural on (ID, Counter), which
// Go gives us for free since both fields are comparable.
type Dot struct {
	ID      string
	Counter int64
}

// DotLike is implemented by any type that already carries dot identity,
// letting callers pass domain types straight into APIs that need a Dot
// (e.g. DotKernel.Rmv's dot-like selector) without an explicit
// conversion.
type DotLike interface {
	DotValue() Dot
}

// NewDot constructs a Dot, rejecting a blank id or a negative counter. A
// zero counter is permitted only as a sentinel/initial value; real dots
// minted by MakeDot always start at 1.
func NewDot(id string, counter int64) (Dot, error) {
	if id == "" {
		return Dot{}, errors.Wrap(ErrInvalidDot, "empty id")
	}
	if counter < 0 {
		return Dot{}, errors.Wrapf(ErrInvalidDot, "negative counter %d", counter)
	}
	return Dot{ID: id, Counter: counter}, nil
}

// ParseDot parses the wire form produced by Dot.String: exactly one ':'
// separating a non-empty id from an integer counter. Any other shape is
// rejected with ErrInvalidDotFormat.
func ParseDot(s string) (Dot, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" {
		return Dot{}, errors.Wrapf(ErrInvalidDotFormat, "%q", s)
	}
	counter, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Dot{}, errors.Wrapf(ErrInvalidDotFormat, "%q", s)
	}
	return NewDot(parts[0], counter)
}

// CoerceDot accepts a Dot, a *Dot, a dot string, or any DotLike value and
// normalizes it to a Dot. Anything else fails with ErrInvalidDot.
func CoerceDot(v any) (Dot, error) {
	switch t := v.(type) {
	case Dot:
		return t, nil
	case *Dot:
		if t == nil {
			return Dot{}, errors.Wrap(ErrInvalidDot, "nil dot pointer")
		}
		return *t, nil
	case string:
		return ParseDot(t)
	case DotLike:
		return t.DotValue(), nil
	default:
		return Dot{}, errors.Wrapf(ErrInvalidDot, "cannot coerce %T to Dot", v)
	}
}

// String renders the dot in its canonical wire form "id:counter".
func (d Dot) String() string {
	return d.ID + ":" + strconv.FormatInt(d.Counter, 10)
}

// DotValue makes Dot itself a DotLike, so a Dot can always be passed
// wherever a DotLike is expected.
func (d Dot) DotValue() Dot { return d }

// Compare returns a negative number if d sorts before other, zero if
// they're equal, and a positive number if d sorts after other. Ordering
// is lexicographic on ID, then numeric on Counter — a total order.
func (d Dot) Compare(other Dot) int {
	if c := strings.Compare(d.ID, other.ID); c != 0 {
		return c
	}
	switch {
	case d.Counter < other.Counter:
		return -1
	case d.Counter > other.Counter:
		return 1
	default:
		return 0
	}
}

// Less reports whether d sorts strictly before other.
func (d Dot) Less(other Dot) bool {
	return d.Compare(other) < 0
}
