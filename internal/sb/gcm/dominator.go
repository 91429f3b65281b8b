package gcm

// buildDominatorTree computes immediate dominators with the Cooper-
// Harvey-Kennedy iterative fixed point: repeatedly recompute each
// non-entry block's idom as the intersection, over all of its already-
// idom'd predecessors, of "walk up the dominator tree until the two
// candidate blocks meet" — until nothing changes.
//
// head must already be in reverse-postorder with tids assigned
// (assignTIDs) and predecessors filled (fillPredecessors).
//
// Grounded on build_dominator_tree/intersect in
// _examples/original_source/src/backend/gcm.c.
func buildDominatorTree(head *Block) {
	head.immediateDominator = head

	for {
		changed := false

		for b := head.next; b != nil; b = b.next {
			var newIdom *Block
			firstIdx := -1
			for i, p := range b.predecessors {
				if p.immediateDominator != nil {
					firstIdx = i
					newIdom = p
					break
				}
			}
			if firstIdx == -1 {
				panic("gcm: reachable block has no dominator-computed predecessor")
			}

			for i, p := range b.predecessors {
				if i == firstIdx || p.immediateDominator == nil {
					continue
				}
				newIdom = intersect(p, newIdom)
			}

			if newIdom != b.immediateDominator {
				b.immediateDominator = newIdom
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	// The entry's "dominates itself" self-loop is bookkeeping for the
	// algorithm above; the public result reports it as having no idom.
	head.immediateDominator = nil
}

// intersect finds the nearest common dominator of a and b by walking
// both up the (partially built) dominator tree in lockstep, always
// advancing whichever finger currently sits at the higher (later-
// in-reverse-postorder) tid — since a higher tid can never dominate a
// lower one in a reverse-postorder numbering, that finger is the one
// that still has further to climb.
func intersect(a, b *Block) *Block {
	f1, f2 := a, b
	for f1 != f2 {
		for f1.tid > f2.tid {
			f1 = f1.immediateDominator
		}
		for f2.tid > f1.tid {
			f2 = f2.immediateDominator
		}
	}
	return f1
}
