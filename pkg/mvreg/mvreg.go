// Package mvreg implements the Multi-Value Register: a register that
// preserves every concurrently written value and collapses to the single
// most recently written value once concurrency resolves. It is the
// canonical consumer of pkg/crdt's DotKernel (spec §4.5).
package mvreg

import "github.com/ravlabs/deltacrdt/pkg/crdt"

// Register holds one DotKernel whose payloads are the written values.
// Its "current value set" is the image of that kernel's dataStorage, so
// a register is always in one of three states: empty, single-valued, or
// multi-valued.
type Register[V any] struct {
	kernel *crdt.DotKernel[V]
}

// New creates an empty register that owns a private causal context.
func New[V any]() *Register[V] {
	return &Register[V]{kernel: crdt.NewDotKernel[V]()}
}

// NewShared creates an empty register whose dots are drawn from ctx,
// letting it share one causal frame with sibling fields of a composite
// CRDT (spec §5).
func NewShared[V any](ctx *crdt.DotContext) *Register[V] {
	return &Register[V]{kernel: crdt.NewSharedDotKernel[V](ctx)}
}

// Write atomically removes every value currently held and installs v,
// returning the delta of both sub-operations unioned together. After a
// local Write only v is observable locally; if a concurrent write
// happened elsewhere, both survive the next Join because neither side's
// context contained the other's new dot.
func (r *Register[V]) Write(replicaID string, v V) *Register[V] {
	removal := r.kernel.Rmv(nil)
	addition := r.kernel.Add(replicaID, v)
	removal.Join(addition)
	return &Register[V]{kernel: removal}
}

// Read returns the current value set: the image of the kernel's
// dataStorage. Empty means no value has ever been written (or the
// register has since been reset); more than one entry means concurrent
// writes are still unresolved.
func (r *Register[V]) Read() []V {
	return r.kernel.Values()
}

// Reset returns the removal delta only, with no new value installed.
func (r *Register[V]) Reset() *Register[V] {
	return &Register[V]{kernel: r.kernel.Rmv(nil)}
}

// Join merges other (a full register or a delta returned by Write/Reset)
// into r, delegating to the kernel's causal join.
func (r *Register[V]) Join(other *Register[V]) {
	r.kernel.Join(other.kernel)
}
