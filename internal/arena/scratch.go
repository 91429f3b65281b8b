package arena

// Scratch is a borrowed arena from a Pool, released in stack discipline:
// the caller that acquired it must Release before any scratch acquired
// earlier in the call chain is released. This mirrors
// _examples/original_source/src/internal.c's scratch_get/scratch_release,
// which rewind an arena to the mark recorded at acquisition time.
type Scratch struct {
	arena *Arena
	mark  int
}

// Arena exposes the underlying arena for allocation.
func (s Scratch) Arena() *Arena { return s.arena }

// Release rewinds the borrowed arena back to its pre-acquisition mark.
func (s Scratch) Release() {
	s.arena.Rewind(s.mark)
}

// Pool is a small fixed set of scratch arenas that routines may borrow
// without stepping on an arena the caller already holds. Two arenas is
// the original's size (scratch_arenas[2] in main.c) and is enough for
// every pass in this compiler, none of which nests scratch usage more
// than two deep.
type Pool struct {
	arenas [2]*Arena
}

// NewPool allocates a pool of scratch arenas, each with the given
// capacity.
func NewPool(arenaSize int) *Pool {
	p := &Pool{}
	for i := range p.arenas {
		p.arenas[i] = New(arenaSize)
	}
	return p
}

// Acquire returns a scratch arena from the pool that does not appear in
// conflicts, the set of arenas the caller (or an outer caller) already
// holds live. It panics if every arena in the pool conflicts, which
// would indicate scratch nesting deeper than the pool supports.
func (p *Pool) Acquire(conflicts ...*Arena) Scratch {
	for _, a := range p.arenas {
		conflict := false
		for _, c := range conflicts {
			if a == c {
				conflict = true
				break
			}
		}
		if !conflict {
			return Scratch{arena: a, mark: a.Mark()}
		}
	}
	panic("arena: no scratch arena available without conflict")
}
