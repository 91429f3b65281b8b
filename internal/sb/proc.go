package sb

// Proc is a sealed, reachable MIR graph: every node walkable backward
// from End through ins edges, with start guaranteed among them.
type Proc struct {
	Start *Node
	End   *Node
}

// MakeProc seals the graph rooted at end, trimming any node unreachable
// from it (dead code the lowering pass built but never wired to a live
// use) and asserting start is itself reachable from end. It returns nil
// if start cannot reach end, mirroring sb_make_proc's assert that a
// procedure always has a control path from entry to exit.
//
// Grounded on mark_useful/trim in
// _examples/original_source/src/backend/sb.c.
func (c *Context) MakeProc(start, end *Node) *Proc {
	scratch := c.Scratch()
	defer scratch.Release()

	useful := make(map[int]bool, c.nextID)
	markUseful(end, useful)

	if !useful[start.id] {
		return nil
	}

	trim(end, useful)

	return &Proc{Start: start, End: end}
}

// markUseful walks backward from root over ins edges (iteratively, via
// an explicit stack, since lowering's recursive structure can otherwise
// produce graphs deep enough to overflow a call stack on pathological
// input) and records every node reached.
func markUseful(root *Node, useful map[int]bool) {
	stack := []*Node{root}
	useful[root.id] = true

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, in := range n.ins {
			if in == nil || useful[in.id] {
				continue
			}
			useful[in.id] = true
			stack = append(stack, in)
		}
	}
}

// trim removes, from every useful node's users list, any entry whose
// consumer was not itself marked useful (an unreachable branch arm that
// still held a use-edge into a live value).
func trim(root *Node, useful map[int]bool) {
	seen := map[int]bool{root.id: true}
	stack := []*Node{root}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kept := n.users[:0]
		for _, u := range n.users {
			if useful[u.Node.id] {
				kept = append(kept, u)
			}
		}
		n.users = kept

		for _, in := range n.ins {
			if in == nil || seen[in.id] {
				continue
			}
			seen[in.id] = true
			stack = append(stack, in)
		}
	}
}
