package parser

import (
	"testing"

	"github.com/jeremyylimmm/sugar/internal/hir"
)

func TestParseReturnLiteral(t *testing.T) {
	proc, err := Parse("test.sugar", "return 1 + 2 * 3;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.Blocks) != 1 {
		t.Fatalf("expected a single block, got %d", len(proc.Blocks))
	}

	entry := proc.Entry
	if entry.Term.Kind != hir.TermReturn {
		t.Fatalf("expected a return terminator, got %v", entry.Term.Kind)
	}

	v := entry.Term.Value
	if v.Op != hir.OpAdd {
		t.Fatalf("expected top-level op to be ADD (mul binds tighter), got %s", v.Op)
	}
	if v.Ins[1].Op != hir.OpMul {
		t.Fatalf("expected right operand to be MUL, got %s", v.Ins[1].Op)
	}
}

func TestParseMutableLocal(t *testing.T) {
	src := `
		var x = 1;
		x = x + 1;
		return x;
	`
	proc, err := Parse("test.sugar", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.NumLocals != 1 {
		t.Fatalf("expected exactly 1 local, got %d", proc.NumLocals)
	}

	entry := proc.Entry
	var ops []hir.OpCode
	for n := entry.Start(); n != nil; n = n.Next() {
		ops = append(ops, n.Op)
	}
	want := []hir.OpCode{hir.OpIntegerLiteral, hir.OpVarDecl, hir.OpVarRef, hir.OpIntegerLiteral, hir.OpAdd, hir.OpAssign, hir.OpVarRef}
	if len(ops) != len(want) {
		t.Fatalf("expected %d statements, got %d (%v)", len(want), len(ops), ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("statement %d: expected %s, got %s", i, want[i], ops[i])
		}
	}
}

func TestParseUndeclaredVariableErrors(t *testing.T) {
	_, err := Parse("test.sugar", "return x;")
	if err == nil {
		t.Fatal("expected an undeclared-variable error")
	}
}

func TestParseRedeclaredVariableErrors(t *testing.T) {
	_, err := Parse("test.sugar", "var x = 1; var x = 2; return x;")
	if err == nil {
		t.Fatal("expected a redeclaration error")
	}
}

// TestParseIfElseShape covers the diamond CFG: entry branches to
// then/else blocks that both jump to a shared merge block.
func TestParseIfElseShape(t *testing.T) {
	src := `
		var x = 1;
		if (x) {
			x = 2;
		} else {
			x = 3;
		}
		return x;
	`
	proc, err := Parse("test.sugar", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.Blocks) != 4 {
		t.Fatalf("expected 4 blocks (entry, then, else, merge), got %d", len(proc.Blocks))
	}

	entry := proc.Entry
	if entry.Term.Kind != hir.TermBranch {
		t.Fatalf("expected entry to end in a branch, got %v", entry.Term.Kind)
	}

	then, els := entry.Term.TrueTarget, entry.Term.FalseTarget
	if then.Term.Kind != hir.TermJump || els.Term.Kind != hir.TermJump {
		t.Fatalf("expected both arms to jump to the merge block")
	}
	if then.Term.Target != els.Term.Target {
		t.Fatalf("expected both arms to jump to the same merge block")
	}

	merge := then.Term.Target
	if merge.Term.Kind != hir.TermReturn {
		t.Fatalf("expected merge block to return, got %v", merge.Term.Kind)
	}
}

// TestParseWhileShape covers the loop back edge: a header block
// branching between body and after, with the body jumping back to the
// header.
func TestParseWhileShape(t *testing.T) {
	src := `
		var i = 0;
		while (i) {
			i = i - 1;
		}
		return i;
	`
	proc, err := Parse("test.sugar", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.Blocks) != 4 {
		t.Fatalf("expected 4 blocks (preheader, header, body, after), got %d", len(proc.Blocks))
	}

	preheader := proc.Entry
	if preheader.Term.Kind != hir.TermJump {
		t.Fatalf("expected preheader to jump to the loop header, got %v", preheader.Term.Kind)
	}

	header := preheader.Term.Target
	if header.Term.Kind != hir.TermBranch {
		t.Fatalf("expected header to branch, got %v", header.Term.Kind)
	}

	body := header.Term.TrueTarget
	if body.Term.Kind != hir.TermJump || body.Term.Target != header {
		t.Fatalf("expected loop body to jump back to the header")
	}
}

// TestParseUnreachableAfterReturn covers scenario 6: statements
// following an unconditional return are parsed into a fresh,
// predecessor-less block.
func TestParseUnreachableAfterReturn(t *testing.T) {
	proc, err := Parse("test.sugar", "return 1; return 2;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(proc.Blocks))
	}
	if proc.Blocks[1].Term.Kind != hir.TermReturn {
		t.Fatalf("expected the unreachable block to itself end in a return")
	}
}
