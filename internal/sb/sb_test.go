package sb

import "testing"

// TestUseDefSymmetry checks invariant I-1: every ins edge has a
// matching entry in the producer's users list.
func TestUseDefSymmetry(t *testing.T) {
	c := NewContext()
	l := c.NewIntegerConstant(1)
	r := c.NewIntegerConstant(2)
	add := c.NewAdd(l, r)

	if add.In(BinaryLeft) != l || add.In(BinaryRight) != r {
		t.Fatal("ADD inputs not wired as constructed")
	}

	found := false
	for _, u := range l.Users() {
		if u.Node == add && u.Index == BinaryLeft {
			found = true
		}
	}
	if !found {
		t.Fatal("left operand missing matching user edge")
	}
}

// TestIDsUnique checks invariant I-2.
func TestIDsUnique(t *testing.T) {
	c := NewContext()
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		n := c.NewIntegerConstant(int64(i))
		if seen[n.ID()] {
			t.Fatalf("duplicate id %d", n.ID())
		}
		seen[n.ID()] = true
	}
}

// TestRegionPhiSealOnce checks invariant I-3: a REGION/PHI's shape is
// immutable once its bulk setter has run.
func TestRegionPhiSealOnce(t *testing.T) {
	c := NewContext()
	start := c.NewStart()
	ctrl := c.NewStartControl(start)

	region := c.NewRegion()
	c.SetRegionInputs(region, []*Node{ctrl})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second SetRegionInputs call")
		}
	}()
	c.SetRegionInputs(region, []*Node{ctrl})
}

// TestPhiRegionCongruence checks invariant I-6: a PHI's input count must
// be one more than its region's, and slot 0 must be that region.
func TestPhiRegionCongruence(t *testing.T) {
	c := NewContext()
	start := c.NewStart()
	ctrl := c.NewStartControl(start)
	store := c.NewStartStore(start)

	region := c.NewRegion()
	c.SetRegionInputs(region, []*Node{ctrl})

	phi := c.NewPhi()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mismatched phi/region arity")
		}
	}()
	c.SetPhiInputs(phi, region, []*Node{store, store})
}

// TestMakeProcTrimsDeadCode verifies that a value built but never wired
// into End's reachable graph is dropped, and that its former operand no
// longer lists it as a user.
func TestMakeProcTrimsDeadCode(t *testing.T) {
	c := NewContext()
	start := c.NewStart()
	ctrl := c.NewStartControl(start)
	store := c.NewStartStore(start)

	live := c.NewIntegerConstant(1)
	dead := c.NewAdd(live, c.NewIntegerConstant(2))
	_ = dead

	end := c.NewEnd(ctrl, store, live)
	proc := c.MakeProc(start, end)
	if proc == nil {
		t.Fatal("expected a valid proc")
	}

	for _, u := range live.Users() {
		if u.Node == dead {
			t.Fatal("dead node should have been trimmed from live operand's users")
		}
	}
}

// TestMakeProcUnreachableStart verifies MakeProc returns nil when start
// cannot reach end.
func TestMakeProcUnreachableStart(t *testing.T) {
	c := NewContext()
	start := c.NewStart()
	_ = c.NewStartControl(start)

	// Build an end rooted at an entirely separate, disconnected start.
	otherStart := c.NewStart()
	otherCtrl := c.NewStartControl(otherStart)
	otherStore := c.NewStartStore(otherStart)
	end := c.NewEnd(otherCtrl, otherStore, c.NewNull())

	if proc := c.MakeProc(start, end); proc != nil {
		t.Fatal("expected nil proc when start cannot reach end")
	}
}

func TestReplaceRewiresUsersAndDeletesTarget(t *testing.T) {
	c := NewContext()
	a := c.NewIntegerConstant(1)
	b := c.NewIntegerConstant(2)
	sum := c.NewAdd(a, b)
	start := c.NewStart()
	ctrl := c.NewStartControl(start)
	store := c.NewStartStore(start)
	end := c.NewEnd(ctrl, store, sum)

	replacement := c.NewIntegerConstant(3)
	c.Replace(sum, replacement)

	if end.In(EndReturnValue) != replacement {
		t.Fatal("expected End's return value input rewired to replacement")
	}

	found := false
	for _, u := range replacement.Users() {
		if u.Node == end && u.Index == EndReturnValue {
			found = true
		}
	}
	if !found {
		t.Fatal("expected replacement to carry the rewired user edge")
	}
}
