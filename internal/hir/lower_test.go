package hir

import (
	"testing"

	"github.com/jeremyylimmm/sugar/internal/sb"
)

// TestLowerEmptyReturn covers scenario 1: "return 1;" with nothing
// else — a single block, implicit region/phi pair the idealizer would
// later collapse, but present and I-6-congruent straight out of Lower.
func TestLowerEmptyReturn(t *testing.T) {
	proc := &Proc{}
	entry := proc.NewBlock()
	one := entry.EmitIntegerLiteral(1)
	entry.Term = Terminator{Kind: TermReturn, Value: one}

	ctx := sb.NewContext()
	mirProc := Lower(ctx, proc)
	if mirProc == nil {
		t.Fatal("expected a valid MIR proc")
	}

	end := mirProc.End
	if end.Op() != sb.OpEnd {
		t.Fatalf("expected End node, got %s", end.Op())
	}

	valuePhi := end.In(sb.EndReturnValue)
	if valuePhi.Op() != sb.OpPhi {
		t.Fatalf("expected un-idealized return value to be a PHI, got %s", valuePhi.Op())
	}
	if valuePhi.InCount() != 2 {
		t.Fatalf("expected value phi to have region+1 value input, got %d", valuePhi.InCount())
	}
	if valuePhi.In(1).Op() != sb.OpIntegerConstant || int64(valuePhi.In(1).Data()) != 1 {
		t.Fatalf("expected value phi's single value input to be INTEGER_CONSTANT 1")
	}
}

// TestLowerMutableLocal covers the ALLOCA/STORE/LOAD local-variable
// lowering decision (SPEC_FULL.md §1.2): "var x = 1; x = x + 1; return
// x;" should thread the store token through one ALLOCA.
func TestLowerMutableLocal(t *testing.T) {
	proc := &Proc{NumLocals: 1}
	entry := proc.NewBlock()

	one := entry.EmitIntegerLiteral(1)
	entry.EmitVarDecl(0, one)

	ref := entry.EmitVarRef(0)
	incr := entry.EmitAdd(ref, entry.EmitIntegerLiteral(1))
	entry.EmitAssign(0, incr)

	final := entry.EmitVarRef(0)
	entry.Term = Terminator{Kind: TermReturn, Value: final}

	ctx := sb.NewContext()
	mirProc := Lower(ctx, proc)
	if mirProc == nil {
		t.Fatal("expected a valid MIR proc")
	}

	// Walk back from the returned value: it should be a LOAD from the
	// single ALLOCA, ordered after a STORE to that same ALLOCA.
	valuePhi := mirProc.End.In(sb.EndReturnValue)
	load := valuePhi.In(1)
	if load.Op() != sb.OpLoad {
		t.Fatalf("expected final var-read to lower to LOAD, got %s", load.Op())
	}
	if load.In(sb.LoadAddress).Op() != sb.OpAlloca {
		t.Fatalf("expected LOAD's address to be an ALLOCA, got %s", load.In(sb.LoadAddress).Op())
	}
	if load.In(sb.LoadStore).Op() != sb.OpStore {
		t.Fatalf("expected LOAD to be ordered after the assignment's STORE, got %s", load.In(sb.LoadStore).Op())
	}
}

// TestLowerUnreachableBlockDropped covers scenario 6: a block with no
// predecessor (code after an unconditional return) never reaches the
// end-merge at all.
func TestLowerUnreachableBlockDropped(t *testing.T) {
	proc := &Proc{}
	entry := proc.NewBlock()
	unreachable := proc.NewBlock()

	entry.Term = Terminator{Kind: TermReturn, Value: entry.EmitIntegerLiteral(1)}
	unreachable.Term = Terminator{Kind: TermReturn, Value: unreachable.EmitIntegerLiteral(2)}

	ctx := sb.NewContext()
	mirProc := Lower(ctx, proc)
	if mirProc == nil {
		t.Fatal("expected a valid MIR proc")
	}

	valuePhi := mirProc.End.In(sb.EndReturnValue)
	if valuePhi.InCount() != 2 {
		t.Fatalf("expected only the reachable block's return to merge, got %d inputs", valuePhi.InCount())
	}
	if int64(valuePhi.In(1).Data()) != 1 {
		t.Fatalf("expected the reachable block's literal 1 to be the sole merged value")
	}
}
