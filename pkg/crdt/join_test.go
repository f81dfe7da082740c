package crdt

import "testing"

func TestJoinNumericTakesMax(t *testing.T) {
	cases := []struct {
		a, b, want any
	}{
		{3, 7, 7},
		{7, 3, 7},
		{int64(2), int64(2), int64(2)},
		{1.5, 1.25, 1.5},
		{uint8(1), uint8(9), uint8(9)},
	}
	for _, c := range cases {
		got, err := Join(c.a, c.b)
		if err != nil {
			t.Fatalf("Join(%v, %v): %v", c.a, c.b, err)
		}
		if got != c.want {
			t.Errorf("Join(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

type joinableCounter struct{ n int }

func (c joinableCounter) Join(other any) any {
	o := other.(joinableCounter)
	max := c.n
	if o.n > max {
		max = o.n
	}
	return joinableCounter{n: max}
}

func TestJoinDelegatesToJoiner(t *testing.T) {
	a := joinableCounter{n: 3}
	b := joinableCounter{n: 5}

	got, err := Join(a, b)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	merged, ok := got.(joinableCounter)
	if !ok || merged.n != 5 {
		t.Fatalf("Join(joiner) = %+v, want joinableCounter{5}", got)
	}
	// a must not have been mutated by the join.
	if a.n != 3 {
		t.Fatalf("Join mutated its receiver: a.n = %d", a.n)
	}
}

func TestJoinUnjoinableTypes(t *testing.T) {
	if _, err := Join("a", "b"); err == nil {
		t.Fatalf("expected ErrUnjoinableTypes for two strings")
	}
	if _, err := Join(3, "b"); err == nil {
		t.Fatalf("expected ErrUnjoinableTypes for a number and a non-numeric, non-Joiner")
	}
}
