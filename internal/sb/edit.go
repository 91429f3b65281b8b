package sb

// Delete removes node from the graph, asserting it currently has no
// users (a live node must never be deleted out from under its
// consumers). Any input that becomes userless as a result is deleted in
// turn, recursively — implemented with an explicit worklist rather than
// recursion, since a long dead chain (e.g. an entire unreachable
// arithmetic expression) would otherwise recurse one stack frame per
// node.
//
// Grounded on delete_node in
// _examples/original_source/src/backend/opt.c.
func (c *Context) Delete(node *Node) {
	if len(node.users) != 0 {
		panic("sb: cannot delete a node that still has users")
	}

	stack := []*Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ins := n.ins
		n.ins = nil

		for i, in := range ins {
			if in == nil {
				continue
			}
			in.removeUser(n, i)
			if len(in.users) == 0 {
				stack = append(stack, in)
			}
		}
	}
}

// Replace rewires every current user of target onto source instead,
// then deletes target. It is the optimizer's sole mechanism for
// committing an idealization result (see internal/sb/ideal).
//
// Grounded on replace_node in
// _examples/original_source/src/backend/opt.c.
func (c *Context) Replace(target, source *Node) {
	if target == source {
		return
	}

	for len(target.users) > 0 {
		u := target.users[len(target.users)-1]
		target.users = target.users[:len(target.users)-1]

		u.Node.ins[u.Index] = source
		source.addUser(u.Node, u.Index)
	}

	c.Delete(target)
}
