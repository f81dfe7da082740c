package crdt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DotKernel is a causally anchored dot -> value store providing
// add/remove/join with observed-remove semantics. It is the hard
// engineering every derived CRDT in this repository sits on top of.
//
// Invariants (spec §3):
//   - A: every key in dataStorage is a member of sharedContext.
//   - B: a dot absent from dataStorage but present in sharedContext has
//     been observed and removed; the tombstone is implicit in the
//     context.
//   - C: a removed dot is never re-added — Join enforces this.
type DotKernel[V any] struct {
	dataStorage   map[Dot]V
	sharedContext *DotContext
	contextBase   *DotContext
}

// NewDotKernel creates an empty kernel that owns a fresh, private
// context: sharedContext and contextBase point at the same instance.
func NewDotKernel[V any]() *DotKernel[V] {
	ctx := NewDotContext()
	return &DotKernel[V]{dataStorage: make(map[Dot]V), sharedContext: ctx, contextBase: ctx}
}

// NewSharedDotKernel creates a kernel whose dots are minted from ctx, a
// context potentially shared with other kernels belonging to the same
// replica (e.g. sibling fields of a composite CRDT). Mutation via
// MakeDot is therefore sequenced across every kernel sharing ctx.
func NewSharedDotKernel[V any](ctx *DotContext) *DotKernel[V] {
	return &DotKernel[V]{dataStorage: make(map[Dot]V), sharedContext: ctx, contextBase: NewDotContext()}
}

// Context returns the kernel's causal context (shared or owned).
func (k *DotKernel[V]) Context() *DotContext { return k.sharedContext }

// Values returns the image of dataStorage: every currently live payload.
func (k *DotKernel[V]) Values() []V {
	vals := make([]V, 0, len(k.dataStorage))
	for _, v := range k.dataStorage {
		vals = append(vals, v)
	}
	return vals
}

// Len reports how many dots are currently live in the kernel.
func (k *DotKernel[V]) Len() int { return len(k.dataStorage) }

// DotAdd allocates a new dot for replicaID and stores v under it,
// returning the dot alone (no delta). Used when a caller composes
// deltas at a higher level, as MVReg.Write does.
func (k *DotKernel[V]) DotAdd(replicaID string, v V) Dot {
	d := k.sharedContext.MakeDot(replicaID)
	k.dataStorage[d] = v
	return d
}

// Add allocates a new dot for replicaID, stores v under it, and returns a
// fresh delta kernel containing exactly that dot and value.
func (k *DotKernel[V]) Add(replicaID string, v V) *DotKernel[V] {
	d := k.DotAdd(replicaID, v)
	delta := NewDotKernel[V]()
	delta.dataStorage[d] = v
	_ = delta.sharedContext.InsertDot(d, true)
	return delta
}

// Rmv removes dots from the kernel according to selector and returns a
// delta kernel whose context absorbs every dot removed (the delta's
// dataStorage is always empty: absence encodes removal).
//
// selector distinguishes three modes:
//   - nil: remove every dot.
//   - a Dot, *Dot, or DotLike: remove exactly that dot, if present. A dot
//     not currently stored is left untouched even if the context already
//     knows it — spec §9 Open Question, preserved as specified.
//   - anything else: remove every dot whose stored value is structurally
//     equal (JSON-canonical, spec §6) to selector.
func (k *DotKernel[V]) Rmv(selector any) *DotKernel[V] {
	delta := NewDotKernel[V]()
	remove := func(d Dot) {
		delete(k.dataStorage, d)
		_ = delta.sharedContext.InsertDot(d, false)
	}

	switch sel := selector.(type) {
	case nil:
		for d := range k.dataStorage {
			remove(d)
		}
	case Dot:
		if _, ok := k.dataStorage[sel]; ok {
			remove(sel)
		}
	case *Dot:
		if sel != nil {
			if _, ok := k.dataStorage[*sel]; ok {
				remove(*sel)
			}
		}
	case DotLike:
		d := sel.DotValue()
		if _, ok := k.dataStorage[d]; ok {
			remove(d)
		}
	default:
		for d, v := range k.dataStorage {
			if structuralEqual(v, selector) {
				remove(d)
			}
		}
	}

	delta.sharedContext.compact()
	return delta
}

// Join performs the causal merge: a dot known only to this kernel is kept
// unless other's context proves it was observed and removed there; a dot
// known only to other is copied in unless this kernel's context already
// subsumed it; a dot known to both keeps this kernel's existing value
// (same dot implies same write). Contexts are joined last. Joining a
// kernel with itself is a no-op, checked by identity to avoid mutating a
// map mid-iteration.
func (k *DotKernel[V]) Join(other *DotKernel[V]) {
	if k == other {
		return
	}
	k.join(other, nil)
}

// DeepJoin behaves like Join except that when a dot is present on both
// sides, the two payloads are merged via package-level Join instead of
// assumed equal. The merge runs even when the payloads are equal, so
// payloads that Join cannot combine fail with ErrUnjoinableTypes. This
// supports nested lattice payloads (e.g. a counter whose value is a
// number, or an embedded CRDT).
func (k *DotKernel[V]) DeepJoin(other *DotKernel[V]) error {
	if k == other {
		return nil
	}
	return k.join(other, deepMergeValues[V])
}

func (k *DotKernel[V]) join(other *DotKernel[V], merge func(a, b V) (V, error)) error {
	for d := range k.dataStorage {
		if _, inOther := other.dataStorage[d]; inOther {
			continue
		}
		if other.sharedContext.DotIn(d) {
			delete(k.dataStorage, d)
		}
	}

	for d, v := range other.dataStorage {
		if existing, inK := k.dataStorage[d]; inK {
			if merge == nil {
				continue
			}
			merged, err := merge(existing, v)
			if err != nil {
				return err
			}
			k.dataStorage[d] = merged
			continue
		}
		if k.sharedContext.DotIn(d) {
			continue
		}
		k.dataStorage[d] = v
	}

	k.sharedContext.Join(other.sharedContext)
	return nil
}

func deepMergeValues[V any](a, b V) (V, error) {
	merged, err := Join(any(a), any(b))
	if err != nil {
		var zero V
		return zero, err
	}
	out, ok := merged.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("crdt: merged value %T not assignable back to payload type", merged)
	}
	return out, nil
}

// Clone returns an independent copy of k. If k owns its context
// (sharedContext == contextBase), the clone gets a fresh cloned context
// used for both roles. Otherwise the clone keeps the same shared context
// by reference — so it stays entangled with every other kernel sharing
// that frame — and only the private contextBase is deep-copied.
func (k *DotKernel[V]) Clone() *DotKernel[V] {
	data := make(map[Dot]V, len(k.dataStorage))
	for d, v := range k.dataStorage {
		data[d] = v
	}
	if k.sharedContext == k.contextBase {
		ctx := k.sharedContext.Clone()
		return &DotKernel[V]{dataStorage: data, sharedContext: ctx, contextBase: ctx}
	}
	return &DotKernel[V]{dataStorage: data, sharedContext: k.sharedContext, contextBase: k.contextBase.Clone()}
}

// String renders the debug-only form "Kernel: DS (...) Context: ..."
// described in spec §6. Not a stable, parseable contract.
func (k *DotKernel[V]) String() string {
	parts := make([]string, 0, len(k.dataStorage))
	for d, v := range k.dataStorage {
		b, err := json.Marshal(v)
		if err != nil {
			b = []byte(fmt.Sprintf("%v", v))
		}
		parts = append(parts, fmt.Sprintf("%s->%s", d.String(), b))
	}
	sort.Strings(parts)
	return fmt.Sprintf("Kernel: DS (%s) %s", strings.Join(parts, " "), k.sharedContext.String())
}

// structuralEqual implements spec §6's value-match contract: two values
// are equal iff their canonical JSON encodings coincide. Values that
// cannot be JSON-encoded are considered unequal rather than erroring,
// since Rmv has no error return for this mode.
func structuralEqual(a, b any) bool {
	ab, aerr := json.Marshal(a)
	bb, berr := json.Marshal(b)
	if aerr != nil || berr != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
