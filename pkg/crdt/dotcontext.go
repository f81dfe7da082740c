package crdt

import (
	"fmt"
	"sort"
	"strings"
)

// DotContext is the set of dots a replica has observed, stored in two
// parts: a compact causal context (CCC) mapping each replica id to the
// greatest counter c such that every dot (id,1)...(id,c) is present, and
// a dot cloud (DC) holding non-contiguous "future" dots awaiting
// contiguity. No dot is ever present in both at once once compact has
// run (see compact below).
type DotContext struct {
	ccc map[string]int64
	dc  map[Dot]struct{}
}

// NewDotContext returns an empty context.
func NewDotContext() *DotContext {
	return &DotContext{ccc: make(map[string]int64), dc: make(map[Dot]struct{})}
}

// DotIn reports whether d has been observed: either it falls within the
// compacted prefix for its id, or it sits in the cloud verbatim.
func (c *DotContext) DotIn(d Dot) bool {
	if max, ok := c.ccc[d.ID]; ok && d.Counter <= max {
		return true
	}
	_, inCloud := c.dc[d]
	return inCloud
}

// MakeDot advances the local counter for id and returns a fresh dot. The
// returned dot is guaranteed not to already be a member of c.
func (c *DotContext) MakeDot(id string) Dot {
	c.ccc[id]++
	return Dot{ID: id, Counter: c.ccc[id]}
}

// InsertDot adds d (accepted in any CoerceDot-compatible form) to the
// cloud. When compactNow is true, compact runs immediately afterward.
func (c *DotContext) InsertDot(dotlike any, compactNow bool) error {
	d, err := CoerceDot(dotlike)
	if err != nil {
		return err
	}
	c.dc[d] = struct{}{}
	if compactNow {
		c.compact()
	}
	return nil
}

// compact normalizes the representation to a fixpoint: a single pass can
// absorb (id, c) into the CCC and thereby unblock (id, c+1), which was
// also sitting in the cloud, so passes repeat until none make progress.
// DC is finite and strictly shrinks on any progress pass, so this
// terminates.
func (c *DotContext) compact() {
	for {
		progressed := false
		for d := range c.dc {
			max, ok := c.ccc[d.ID]
			switch {
			case !ok && d.Counter == 1:
				c.ccc[d.ID] = 1
				delete(c.dc, d)
				progressed = true
			case ok && d.Counter == max+1:
				c.ccc[d.ID] = d.Counter
				delete(c.dc, d)
				progressed = true
			case ok && d.Counter <= max:
				delete(c.dc, d)
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

// Join merges other into c: the CCC takes the per-id max, the clouds
// union, and the result is compacted. Joining c with itself is a no-op
// (checked by identity, not by value, since mutating a map while
// iterating it would corrupt state).
func (c *DotContext) Join(other *DotContext) {
	if c == other {
		return
	}
	for id, cnt := range other.ccc {
		if cnt > c.ccc[id] {
			c.ccc[id] = cnt
		}
	}
	for d := range other.dc {
		c.dc[d] = struct{}{}
	}
	c.compact()
}

// Clone returns an independent deep copy of c.
func (c *DotContext) Clone() *DotContext {
	n := NewDotContext()
	for id, cnt := range c.ccc {
		n.ccc[id] = cnt
	}
	for d := range c.dc {
		n.dc[d] = struct{}{}
	}
	return n
}

// String renders the debug-only form "Context: CC (...) DC (...)"
// described in spec §6. This is not a stable, parseable contract.
func (c *DotContext) String() string {
	cc := make([]string, 0, len(c.ccc))
	for id, cnt := range c.ccc {
		cc = append(cc, Dot{ID: id, Counter: cnt}.String())
	}
	sort.Strings(cc)

	dc := make([]string, 0, len(c.dc))
	for d := range c.dc {
		dc = append(dc, d.String())
	}
	sort.Strings(dc)

	return fmt.Sprintf("Context: CC (%s) DC (%s)", strings.Join(cc, " "), strings.Join(dc, " "))
}
