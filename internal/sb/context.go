package sb

import (
	"fmt"

	"github.com/jeremyylimmm/sugar/internal/arena"
)

// defaultArenaSize mirrors main.c's 5 MiB arena_size constant for the
// primary graph arena and each scratch arena.
const defaultArenaSize = 5 * 1024 * 1024

// nodeChargeBytes is the per-node charge against a Context's arena
// budget. It does not back real storage (Go heap-allocates *Node
// values); it keeps "too much IR for one compile" an explicit,
// catchable condition rather than silent unbounded growth, the same
// role arena_push's capacity assertion plays in the original.
const nodeChargeBytes = 64

// Context owns every Node created through it, assigns their ids, and
// provides a scratch pool for passes (idealizer, GCM) that need
// temporary working storage.
type Context struct {
	graph   *arena.Arena
	scratch *arena.Pool
	nextID  int
}

// NewContext allocates a Context with the default (5 MiB) arena budget.
func NewContext() *Context {
	return NewContextSize(defaultArenaSize)
}

// NewContextSize allocates a Context whose graph and scratch arenas each
// hold arenaSize bytes.
func NewContextSize(arenaSize int) *Context {
	return &Context{
		graph:   arena.New(arenaSize),
		scratch: arena.NewPool(arenaSize),
	}
}

// Scratch borrows a scratch arena from the Context's pool, avoiding any
// arena already held by the caller (or an outer caller further up the
// stack).
func (c *Context) Scratch(conflicts ...*arena.Arena) arena.Scratch {
	return c.scratch.Acquire(conflicts...)
}

// NodeCount returns the number of nodes created through this Context so
// far, including any since deleted.
func (c *Context) NodeCount() int { return c.nextID }

func (c *Context) newNode(op OpCode, inCount int) *Node {
	c.graph.Charge(nodeChargeBytes)
	n := &Node{id: c.nextID, op: op}
	c.nextID++
	if inCount > 0 {
		n.ins = make([]*Node, inCount)
	}
	return n
}

// setInput wires parent into consumer's input slot index, recording
// both directions of the use-def edge in one step. It panics if the
// slot is already occupied, since every constructor below fills each
// fixed slot exactly once.
func (c *Context) setInput(consumer *Node, index int, parent *Node) {
	if consumer.ins[index] != nil {
		panic(fmt.Sprintf("sb: input %d of %s(id=%d) already set", index, consumer.op, consumer.id))
	}
	consumer.ins[index] = parent
	parent.addUser(consumer, index)
}

// --- Anchors ---

// NewStart creates the unique entry node of a procedure.
func (c *Context) NewStart() *Node {
	return c.newNode(OpStart, 0)
}

// NewEnd creates the unique exit node, merging the procedure's control,
// store and return-value outcomes.
func (c *Context) NewEnd(control, store, returnValue *Node) *Node {
	n := c.newNode(OpEnd, numEndIns)
	c.setInput(n, EndControl, control)
	c.setInput(n, EndStore, store)
	c.setInput(n, EndReturnValue, returnValue)
	return n
}

// --- Projections ---

func (c *Context) newProjection(op OpCode, parent *Node) *Node {
	n := c.newNode(op, 1)
	c.setInput(n, ProjectionInput, parent)
	return n
}

// NewStartControl projects the control output of start.
func (c *Context) NewStartControl(start *Node) *Node {
	if start.op != OpStart {
		panic("sb: StartControl's input must be START")
	}
	return c.newProjection(OpStartControl, start)
}

// NewStartStore projects the store output of start.
func (c *Context) NewStartStore(start *Node) *Node {
	if start.op != OpStart {
		panic("sb: StartStore's input must be START")
	}
	return c.newProjection(OpStartStore, start)
}

// NewBranchTrue projects the taken-edge control output of branch.
func (c *Context) NewBranchTrue(branch *Node) *Node {
	if branch.op != OpBranch {
		panic("sb: BranchTrue's input must be BRANCH")
	}
	return c.newProjection(OpBranchTrue, branch)
}

// NewBranchFalse projects the not-taken-edge control output of branch.
func (c *Context) NewBranchFalse(branch *Node) *Node {
	if branch.op != OpBranch {
		panic("sb: BranchFalse's input must be BRANCH")
	}
	return c.newProjection(OpBranchFalse, branch)
}

// --- Values ---

// NewNull creates the sentinel empty value, used where the surface
// language has no expression to lower (an implicit fall-off-the-end
// return, a PHI input from an unreachable predecessor, ...).
func (c *Context) NewNull() *Node {
	return c.newNode(OpNull, 0)
}

// NewIntegerConstant creates a constant integer value node.
func (c *Context) NewIntegerConstant(value int64) *Node {
	n := c.newNode(OpIntegerConstant, 0)
	n.data = uint64(value)
	return n
}

func (c *Context) newBinary(op OpCode, left, right *Node) *Node {
	n := c.newNode(op, numBinaryIns)
	c.setInput(n, BinaryLeft, left)
	c.setInput(n, BinaryRight, right)
	return n
}

func (c *Context) NewAdd(left, right *Node) *Node  { return c.newBinary(OpAdd, left, right) }
func (c *Context) NewSub(left, right *Node) *Node  { return c.newBinary(OpSub, left, right) }
func (c *Context) NewMul(left, right *Node) *Node  { return c.newBinary(OpMul, left, right) }
func (c *Context) NewSDiv(left, right *Node) *Node { return c.newBinary(OpSDiv, left, right) }

// --- Memory / control ---

// NewAlloca creates storage for one mutable local. It produces only a
// value (the local's address) and has no inputs.
func (c *Context) NewAlloca() *Node {
	return c.newNode(OpAlloca, 0)
}

// NewLoad reads the current value stored at address, ordered after
// store in the memory chain.
func (c *Context) NewLoad(control, store, address *Node) *Node {
	n := c.newNode(OpLoad, numLoadIns)
	c.setInput(n, LoadControl, control)
	c.setInput(n, LoadStore, store)
	c.setInput(n, LoadAddress, address)
	return n
}

// NewStore writes value to address, producing a new store token ordered
// after the given one.
func (c *Context) NewStore(control, store, address, value *Node) *Node {
	n := c.newNode(OpStore, numStoreIns)
	c.setInput(n, StoreControl, control)
	c.setInput(n, StoreStore, store)
	c.setInput(n, StoreAddress, address)
	c.setInput(n, StoreValue, value)
	return n
}

// NewBranch creates a two-way control split on predicate; its outcome
// is read back out through NewBranchTrue/NewBranchFalse projections.
func (c *Context) NewBranch(control, predicate *Node) *Node {
	n := c.newNode(OpBranch, numBranchIns)
	c.setInput(n, BranchControl, control)
	c.setInput(n, BranchPredicate, predicate)
	return n
}

// NewRegion creates an unsealed control merge point. Its inputs must be
// filled exactly once via SetRegionInputs before the graph is handed to
// MakeProc.
func (c *Context) NewRegion() *Node {
	return c.newNode(OpRegion, 0)
}

// NewPhi creates an unsealed value merge point anchored to a region. Its
// inputs must be filled exactly once via SetPhiInputs.
func (c *Context) NewPhi() *Node {
	return c.newNode(OpPhi, 0)
}

// SetRegionInputs bulk-fills a REGION's predecessor control inputs. It
// may be called exactly once per region (I-3: shape is immutable once
// sealed).
func (c *Context) SetRegionInputs(region *Node, inputs []*Node) {
	if region.op != OpRegion {
		panic("sb: SetRegionInputs called on a non-REGION node")
	}
	if region.sealed {
		panic(fmt.Sprintf("sb: REGION(id=%d) inputs already set", region.id))
	}
	if len(inputs) == 0 {
		panic("sb: REGION requires at least one predecessor")
	}
	region.ins = make([]*Node, len(inputs))
	region.sealed = true
	for i, v := range inputs {
		c.setInput(region, i, v)
	}
}

// SetPhiInputs bulk-fills a PHI's inputs: slot 0 is always the owning
// region, followed by one value per predecessor in the same order as
// that region's own inputs (I-6: region/phi congruence).
func (c *Context) SetPhiInputs(phi, region *Node, inputs []*Node) {
	if phi.op != OpPhi {
		panic("sb: SetPhiInputs called on a non-PHI node")
	}
	if region.op != OpRegion {
		panic("sb: a PHI's slot 0 must be a REGION")
	}
	if phi.sealed {
		panic(fmt.Sprintf("sb: PHI(id=%d) inputs already set", phi.id))
	}
	if len(inputs) != region.InCount() {
		panic(fmt.Sprintf("sb: PHI(id=%d) has %d values for REGION(id=%d) with %d predecessors",
			phi.id, len(inputs), region.id, region.InCount()))
	}
	phi.ins = make([]*Node, len(inputs)+1)
	phi.sealed = true
	c.setInput(phi, 0, region)
	for i, v := range inputs {
		c.setInput(phi, i+1, v)
	}
}
