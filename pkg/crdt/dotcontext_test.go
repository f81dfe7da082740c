package crdt

import "testing"

// S1 — Context compaction: CCC = {}, DC = {"a:2","a:1"} compacts to
// CCC = {a:2}, DC = {}.
func TestCompactionS1(t *testing.T) {
	ctx := NewDotContext()
	if err := ctx.InsertDot("a:2", false); err != nil {
		t.Fatalf("insert a:2: %v", err)
	}
	if err := ctx.InsertDot("a:1", false); err != nil {
		t.Fatalf("insert a:1: %v", err)
	}
	ctx.compact()

	if got := ctx.ccc["a"]; got != 2 {
		t.Errorf("CCC[a] = %d, want 2", got)
	}
	if len(ctx.dc) != 0 {
		t.Errorf("DC should be empty after compaction, got %v", ctx.dc)
	}
}

func TestCompactionInvariant(t *testing.T) {
	// After compact, every remaining DC entry is strictly non-contiguous
	// and not dominated: c > CCC[id]+1.
	ctx := NewDotContext()
	_ = ctx.InsertDot("a:5", false) // far ahead, leaves a gap
	_ = ctx.InsertDot("a:1", false) // contiguous from nothing
	ctx.compact()

	if got := ctx.ccc["a"]; got != 1 {
		t.Fatalf("CCC[a] = %d, want 1", got)
	}
	remaining, ok := ctx.dc[Dot{ID: "a", Counter: 5}]
	_ = remaining
	if !ok {
		t.Fatalf("expected a:5 to remain in the cloud")
	}
	if 5 <= ctx.ccc["a"]+1 {
		t.Fatalf("compaction invariant violated: 5 <= CCC[a]+1 = %d", ctx.ccc["a"]+1)
	}
}

func TestCompactionPreservesMembership(t *testing.T) {
	ctx := NewDotContext()
	_ = ctx.InsertDot("a:1", false)
	_ = ctx.InsertDot("a:3", false)

	probe := []Dot{{ID: "a", Counter: 1}, {ID: "a", Counter: 2}, {ID: "a", Counter: 3}, {ID: "b", Counter: 1}}
	before := make(map[Dot]bool, len(probe))
	for _, d := range probe {
		before[d] = ctx.DotIn(d)
	}

	ctx.compact()

	for _, d := range probe {
		if got := ctx.DotIn(d); got != before[d] {
			t.Errorf("DotIn(%v) changed across compaction: before=%v after=%v", d, before[d], got)
		}
	}
}

func TestMakeDotNotAlreadyMember(t *testing.T) {
	ctx := NewDotContext()
	d := ctx.MakeDot("a")
	if !ctx.DotIn(d) {
		t.Fatalf("MakeDot's own result should immediately be a member")
	}
	if d.Counter != 1 {
		t.Fatalf("first dot for a fresh id should have counter 1, got %d", d.Counter)
	}
	d2 := ctx.MakeDot("a")
	if d2.Counter != 2 {
		t.Fatalf("second dot should have counter 2, got %d", d2.Counter)
	}
}

func TestContextJoinIdempotent(t *testing.T) {
	ctx := NewDotContext()
	ctx.MakeDot("a")
	ctx.MakeDot("a")
	before := ctx.String()

	ctx.Join(ctx)
	if ctx.String() != before {
		t.Fatalf("self-join changed state: before=%q after=%q", before, ctx.String())
	}

	clone := ctx.Clone()
	ctx.Join(clone)
	if ctx.String() != before {
		t.Fatalf("joining an equal clone changed state: before=%q after=%q", before, ctx.String())
	}
}

func TestContextJoinCommutativeAndAssociative(t *testing.T) {
	a := NewDotContext()
	a.MakeDot("a")
	b := NewDotContext()
	b.MakeDot("b")
	b.MakeDot("b")
	c := NewDotContext()
	_ = c.InsertDot("c:3", true)

	left := a.Clone()
	left.Join(b)
	right := b.Clone()
	right.Join(a)
	if left.String() != right.String() {
		t.Fatalf("join not commutative: %q vs %q", left.String(), right.String())
	}

	ab := a.Clone()
	ab.Join(b)
	abc := ab.Clone()
	abc.Join(c)

	bc := b.Clone()
	bc.Join(c)
	aBC := a.Clone()
	aBC.Join(bc)

	if abc.String() != aBC.String() {
		t.Fatalf("join not associative: %q vs %q", abc.String(), aBC.String())
	}
}

func TestContextMembershipMonotoneAcrossJoin(t *testing.T) {
	a := NewDotContext()
	d := a.MakeDot("a")

	b := NewDotContext()
	b.MakeDot("z")

	if !a.DotIn(d) {
		t.Fatalf("d should be a member before join")
	}
	a.Join(b)
	if !a.DotIn(d) {
		t.Fatalf("d stopped being a member after join; membership must be monotone")
	}
}
