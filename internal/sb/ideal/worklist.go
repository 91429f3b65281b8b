// Package ideal implements the idealization worklist optimizer: a
// peephole rewrite pass driven by a worklist of nodes that may still be
// simplifiable, iterated to a fixed point.
//
// Grounded on _examples/original_source/src/backend/opt.c.
package ideal

import "github.com/jeremyylimmm/sugar/internal/sb"

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotRemoved
)

// indexTable maps a node id to its position in workList.items, giving
// O(1) add/remove/contains despite items being a plain slice (removal
// swaps the removed entry with the last one, so the table must track
// wherever an item currently lives). Grounded on IndexTable in opt.c:
// FNV-1a hashed, open-addressed with a tombstone (slotRemoved) state so
// probing past a removed slot still finds entries placed after it.
// tombstones is tracked separately from count so growIfNeeded can see
// removed-but-unreclaimed slots too, not just live entries.
type indexTable struct {
	keys       []int
	values     []int
	states     []slotState
	count      int
	tombstones int
}

func newIndexTable(capacity int) *indexTable {
	if capacity < 8 {
		capacity = 8
	}
	return &indexTable{
		keys:   make([]int, capacity),
		values: make([]int, capacity),
		states: make([]slotState, capacity),
	}
}

func fnv1aHash(id int) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211

	hash := uint64(offset64)
	u := uint64(id)
	for i := 0; i < 8; i++ {
		hash ^= u & 0xff
		hash *= prime64
		u >>= 8
	}
	return hash
}

// slot finds where key currently lives, for membership queries: it
// returns the matching occupied slot if key is present, or the first
// slotEmpty slot on the probe chain otherwise (tombstones are skipped
// over, never treated as a stopping point, since the key we want may
// have been placed past one).
func (t *indexTable) slot(key int) int {
	idx := int(fnv1aHash(key) % uint64(len(t.keys)))
	for {
		switch t.states[idx] {
		case slotEmpty:
			return idx
		case slotOccupied:
			if t.keys[idx] == key {
				return idx
			}
		case slotRemoved:
			// keep probing: the key we want may sit past a tombstone
		}
		idx = (idx + 1) % len(t.keys)
	}
}

// slotForInsert is like slot, but on a miss it returns the first
// tombstone seen along the probe chain instead of the terminating
// empty slot, reclaiming it. Without this, repeated remove/insert
// churn (e.g. the phi rule re-queuing its region on every collapse)
// only ever consumes fresh empty slots and never frees a tombstone,
// so tombstones pile up and growIfNeeded (which counts them) rehashes
// far more often than the live entries warrant. Grounded on index_table_set_static's tombstone reuse in
// opt.c:31-56.
func (t *indexTable) slotForInsert(key int) int {
	idx := int(fnv1aHash(key) % uint64(len(t.keys)))
	tombstone := -1
	for {
		switch t.states[idx] {
		case slotEmpty:
			if tombstone != -1 {
				return tombstone
			}
			return idx
		case slotOccupied:
			if t.keys[idx] == key {
				return idx
			}
		case slotRemoved:
			if tombstone == -1 {
				tombstone = idx
			}
		}
		idx = (idx + 1) % len(t.keys)
	}
}

// growIfNeeded rehashes once live entries plus unreclaimed tombstones
// would otherwise exceed half of capacity — counting tombstones here
// (not just occupied slots) is what guarantees slot()'s probe for an
// absent key always has a slotEmpty slot to terminate on, bounding the
// probe the way _index_table_hash_find in opt.c:97-119 bounds it to
// capacity iterations.
func (t *indexTable) growIfNeeded() {
	used := t.count + t.tombstones
	if float64(used+1) <= float64(len(t.keys))*0.5 {
		return
	}

	old := *t
	*t = *newIndexTable(len(old.keys) * 2)
	for i, state := range old.states {
		if state == slotOccupied {
			t.set(old.keys[i], old.values[i])
		}
	}
}

func (t *indexTable) set(key, value int) {
	t.growIfNeeded()
	idx := t.slotForInsert(key)
	switch t.states[idx] {
	case slotEmpty:
		t.count++
	case slotRemoved:
		t.tombstones--
		t.count++
	}
	t.keys[idx] = key
	t.values[idx] = value
	t.states[idx] = slotOccupied
}

func (t *indexTable) get(key int) (int, bool) {
	idx := t.slot(key)
	if t.states[idx] != slotOccupied {
		return 0, false
	}
	return t.values[idx], true
}

func (t *indexTable) remove(key int) {
	idx := t.slot(key)
	if t.states[idx] != slotOccupied {
		return
	}
	t.states[idx] = slotRemoved
	t.count--
	t.tombstones++
}

// workList is a LIFO set of nodes still to be examined: add is a no-op
// if the node is already queued, remove is O(1) via indexTable's
// swap-with-last-element trick.
type workList struct {
	items []*sb.Node
	index *indexTable
}

func newWorkList() *workList {
	return &workList{index: newIndexTable(64)}
}

func (w *workList) has(n *sb.Node) bool {
	_, ok := w.index.get(n.ID())
	return ok
}

func (w *workList) add(n *sb.Node) {
	if w.has(n) {
		return
	}
	w.index.set(n.ID(), len(w.items))
	w.items = append(w.items, n)
}

func (w *workList) remove(n *sb.Node) {
	pos, ok := w.index.get(n.ID())
	if !ok {
		return
	}

	last := len(w.items) - 1
	w.items[pos] = w.items[last]
	w.items = w.items[:last]
	w.index.remove(n.ID())

	if pos != last {
		w.index.set(w.items[pos].ID(), pos)
	}
}

func (w *workList) pop() *sb.Node {
	n := w.items[len(w.items)-1]
	w.remove(n)
	return n
}

func (w *workList) empty() bool {
	return len(w.items) == 0
}

// seed populates the worklist with every node reachable backward from
// root (walked iteratively, matching sb's own dead-code trim walk,
// rather than recursively — this is the pass that sees the whole
// compiled procedure at once, so it is the one most likely to hit
// pathologically deep graphs).
func (w *workList) seed(root *sb.Node) {
	seen := map[int]bool{}
	stack := []*sb.Node{root}
	seen[root.ID()] = true

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		w.add(n)

		for i := 0; i < n.InCount(); i++ {
			in := n.In(i)
			if in == nil || seen[in.ID()] {
				continue
			}
			seen[in.ID()] = true
			stack = append(stack, in)
		}
	}
}
