package crdt

import "github.com/pkg/errors"

// Joiner is implemented by payload types that are themselves join
// semilattice elements, letting DeepJoin merge them without the kernel
// needing to know their internal shape. Join must not mutate the
// receiver — like DotKernel.Clone, it returns an independent value built
// from a copy of the receiver merged with other.
type Joiner interface {
	Join(other any) any
}

// Join is the small polymorphic join delta-helpers need: numbers join by
// max, and any value implementing Joiner delegates to its own Join. Any
// other pairing fails with ErrUnjoinableTypes.
func Join(a, b any) (any, error) {
	if av, bv, ok := bothNumeric(a, b); ok {
		if av >= bv {
			return a, nil
		}
		return b, nil
	}
	if joiner, ok := a.(Joiner); ok {
		return joiner.Join(b), nil
	}
	return nil, errors.Wrapf(ErrUnjoinableTypes, "%T and %T", a, b)
}

func bothNumeric(a, b any) (float64, float64, bool) {
	av, aok := numericValue(a)
	bv, bok := numericValue(b)
	if !aok || !bok {
		return 0, 0, false
	}
	return av, bv, true
}

// numericValue widens any built-in numeric kind to a float64 for
// comparison. Go's any payload could hold any of these, unlike a
// language with a single numeric type.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
