package gcm

import (
	"testing"

	"github.com/jeremyylimmm/sugar/internal/sb"
)

// buildIfElse builds the MIR graph for:
//
//	if (p) { } else { }
//	return 0;
//
// i.e. a diamond: entry -> branch -> {then, else} -> merge -> end.
func buildIfElse(t *testing.T) *sb.Proc {
	c := sb.NewContext()
	start := c.NewStart()
	ctrl := c.NewStartControl(start)
	store := c.NewStartStore(start)

	branch := c.NewBranch(ctrl, c.NewIntegerConstant(1))
	tProj := c.NewBranchTrue(branch)
	fProj := c.NewBranchFalse(branch)

	merge := c.NewRegion()
	c.SetRegionInputs(merge, []*sb.Node{tProj, fProj})

	storePhi := c.NewPhi()
	c.SetPhiInputs(storePhi, merge, []*sb.Node{store, store})

	end := c.NewEnd(merge, storePhi, c.NewIntegerConstant(0))
	proc := c.MakeProc(start, end)
	if proc == nil {
		t.Fatal("expected a valid proc")
	}
	return proc
}

func TestDiamondBlockSkeleton(t *testing.T) {
	proc := buildIfElse(t)
	head := Schedule(proc)

	count := 0
	for b := head; b != nil; b = b.Next() {
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4 blocks (entry, then, else, merge), got %d", count)
	}

	if len(head.Successors()) != 2 {
		t.Fatalf("expected entry block to have 2 successors, got %d", len(head.Successors()))
	}
	if head.ImmediateDominator() != nil {
		t.Fatal("expected entry block to have no immediate dominator")
	}
}

func TestDiamondDominance(t *testing.T) {
	proc := buildIfElse(t)
	head := Schedule(proc)

	var merge *Block
	for b := head; b != nil; b = b.Next() {
		if len(b.Predecessors()) == 2 {
			merge = b
		}
	}
	if merge == nil {
		t.Fatal("expected to find the merge block")
	}
	if merge.ImmediateDominator() != head {
		t.Fatal("expected the merge block's immediate dominator to be the entry block")
	}

	for b := head; b != nil; b = b.Next() {
		if b == head || b == merge {
			continue
		}
		if b.ImmediateDominator() != head {
			t.Fatalf("expected branch arm's immediate dominator to be entry, got tid %d", b.ImmediateDominator().TID())
		}
	}
}

func TestLoopBackEdgeDominance(t *testing.T) {
	c := sb.NewContext()
	start := c.NewStart()
	ctrl := c.NewStartControl(start)
	store := c.NewStartStore(start)

	header := c.NewRegion()
	headerStore := c.NewPhi()

	branch := c.NewBranch(header, c.NewIntegerConstant(1))
	tProj := c.NewBranchTrue(branch)
	fProj := c.NewBranchFalse(branch)

	c.SetRegionInputs(header, []*sb.Node{ctrl, tProj})
	c.SetPhiInputs(headerStore, header, []*sb.Node{store, headerStore})

	end := c.NewEnd(fProj, headerStore, c.NewNull())
	proc := c.MakeProc(start, end)
	if proc == nil {
		t.Fatal("expected a valid proc")
	}

	head := Schedule(proc)

	var headerBlock *Block
	for b := head; b != nil; b = b.Next() {
		if len(b.Predecessors()) == 2 {
			headerBlock = b
		}
	}
	if headerBlock == nil {
		t.Fatal("expected to find the loop header block")
	}
	if headerBlock.ImmediateDominator() != head {
		t.Fatal("expected the loop header's immediate dominator to be the entry block")
	}
}
