package sb

// User records one use-def edge from the consumer's side: Node is the
// consuming node, Index is the input slot it occupies. Every edge in the
// graph exists twice — once as ins[Index] on the consumer, once as an
// entry in the producer's users list — and the two must always agree
// (invariant I-1 in the design notes this kernel implements).
type User struct {
	Node  *Node
	Index int
}

// Node is one vertex of the MIR graph. Inputs are positional and mostly
// fixed-arity; REGION and PHI are the two exceptions (variable arity,
// filled once in bulk after construction — see SetRegionInputs and
// SetPhiInputs).
type Node struct {
	id   int
	op   OpCode
	ins  []*Node
	data uint64

	users []User

	// sealed is only meaningful for REGION/PHI: it marks that the bulk
	// input setter has already run, so a second call is a bug rather
	// than a legal rebuild.
	sealed bool
}

// ID is the node's identity, unique within its owning Context and
// stable for the node's lifetime (I-2).
func (n *Node) ID() int { return n.id }

// Op is the node's opcode.
func (n *Node) Op() OpCode { return n.op }

// InCount returns the number of input slots.
func (n *Node) InCount() int { return len(n.ins) }

// In returns the node wired into input slot i. It panics when i is out
// of range, which covers every i for a REGION/PHI whose bulk setter has
// not run yet and for a node that has been deleted.
func (n *Node) In(i int) *Node { return n.ins[i] }

// Data is the node's opaque payload; only OpIntegerConstant currently
// uses it (the constant's value).
func (n *Node) Data() uint64 { return n.data }

// Users returns the node's use list: every (consumer, slot) pair that
// currently has this node wired into it. The returned slice is owned by
// the node — callers must not mutate it in place.
func (n *Node) Users() []User { return n.users }

func (n *Node) addUser(u *Node, index int) {
	n.users = append(n.users, User{Node: u, Index: index})
}

func (n *Node) removeUser(u *Node, index int) {
	for i, user := range n.users {
		if user.Node == u && user.Index == index {
			n.users = append(n.users[:i], n.users[i+1:]...)
			return
		}
	}
	panic("sb: removeUser called for an edge that does not exist")
}
