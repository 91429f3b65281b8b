// Package gcm reconstructs the basic-block skeleton of an idealized MIR
// graph and computes its dominator tree. Node-to-block placement for
// value/memory nodes (early/late scheduling) is intentionally not
// implemented — spec.md documents this as a stub an emitter may extend,
// and internal/llvmgen is exactly such an extension.
//
// Grounded on _examples/original_source/src/backend/gcm.c.
package gcm

import "github.com/jeremyylimmm/sugar/internal/sb"

// Block is one basic block of the reconstructed control-flow graph.
type Block struct {
	next *Block
	tid  int

	successors     [2]*Block
	successorCount int

	predecessors     []*Block
	predecessorCount int // running count during construction, before Predecessors is allocated

	immediateDominator *Block
}

// TID is the block's position in the reverse-postorder numbering used
// by the dominator fixed point (a stand-in for a real RPO pass).
func (b *Block) TID() int { return b.tid }

// Successors returns the block's 0, 1 or 2 control successors.
func (b *Block) Successors() []*Block { return b.successors[:b.successorCount] }

// Predecessors returns the block's control predecessors.
func (b *Block) Predecessors() []*Block { return b.predecessors }

// ImmediateDominator returns the block's immediate dominator, or nil for
// the entry block.
func (b *Block) ImmediateDominator() *Block { return b.immediateDominator }

// Next walks the block list in reverse-postorder.
func (b *Block) Next() *Block { return b.next }

// Schedule reconstructs proc's basic-block skeleton and computes its
// dominator tree, returning the entry block (head of the
// reverse-postorder list).
func Schedule(proc *sb.Proc) *Block {
	head := buildControlFlowGraph(proc.Start)
	assignTIDs(head)
	fillPredecessors(head)
	buildDominatorTree(head)
	return head
}

// buildControlFlowGraph walks control-producing users, depth-first,
// from start. Mirrors the C original's recursive structure directly: a
// block is prepended to the list only after every node reachable
// through it has finished processing, which is what makes the resulting
// list a valid reverse-postorder (the property assignTIDs relies on).
// Kept recursive (rather than converted to an explicit stack, unlike
// sb's own dead-code walks) because this is the one place the
// memoization a cycle requires (a loop header revisited through its
// back edge) is naturally expressed as "have I already computed this
// node's block", which return-value memoization gives for free.
func buildControlFlowGraph(start *sb.Node) *Block {
	visited := map[int]*Block{}
	var head *Block

	var walk func(node *sb.Node, current *Block) *Block
	walk = func(node *sb.Node, current *Block) *Block {
		if b, ok := visited[node.ID()]; ok {
			return b
		}

		newBlock := false
		if node.Op().StartsBlock() {
			current = &Block{}
			newBlock = true
		}
		visited[node.ID()] = current

		for _, u := range node.Users() {
			if !u.Node.Op().ProducesControl() {
				continue
			}
			result := walk(u.Node, current)
			if result != current {
				current.successors[current.successorCount] = result
				current.successorCount++
				result.predecessorCount++
			}
		}

		if newBlock {
			current.next = head
			head = current
		}
		return current
	}

	walk(start, nil)
	return head
}

func assignTIDs(head *Block) {
	tid := 0
	for b := head; b != nil; b = b.next {
		b.tid = tid
		tid++
	}
}

// fillPredecessors is the two-pass predecessor fill gcm.c performs:
// predecessorCount was accumulated as a running total during the walk,
// so the first pass here just allocates each block's slice to that
// size (resetting the counter to use as a fill cursor), and the second
// pass re-walks every block's successors to populate them.
func fillPredecessors(head *Block) {
	for b := head; b != nil; b = b.next {
		b.predecessors = make([]*Block, b.predecessorCount)
		b.predecessorCount = 0
	}
	for b := head; b != nil; b = b.next {
		for _, s := range b.Successors() {
			s.predecessors[s.predecessorCount] = b
			s.predecessorCount++
		}
	}
}
