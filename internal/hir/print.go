package hir

import (
	"fmt"
	"io"
)

// Print writes proc's blocks in `bb_%d:` / `v%d = OP v.. ` form, the
// same shape hir_print uses in
// _examples/original_source/src/frontend/hir.c, with one addition:
// since this HIR also carries an explicit Terminator (the original
// folds JUMP/BRANCH/RETURN into the same node list this package keeps
// separate), each block's listing ends with its terminator's textual
// form.
func Print(w io.Writer, proc *Proc) {
	ids := map[*Node]int{}
	next := 0
	for _, b := range proc.Blocks {
		for n := b.Start(); n != nil; n = n.Next() {
			ids[n] = next
			next++
		}
	}

	operand := func(n *Node) string {
		if n == nil {
			return "<null>"
		}
		return fmt.Sprintf("v%d", ids[n])
	}

	for _, b := range proc.Blocks {
		fmt.Fprintf(w, "bb_%d:\n", b.ID())

		for n := b.Start(); n != nil; n = n.Next() {
			fmt.Fprintf(w, "  v%d = %s", ids[n], n.Op)
			switch n.Op {
			case OpIntegerLiteral:
				fmt.Fprintf(w, " %d", n.Data)
			case OpVarDecl, OpAssign, OpVarRef:
				fmt.Fprintf(w, " local%d", n.Data)
			}
			for _, in := range n.Ins {
				fmt.Fprintf(w, " %s", operand(in))
			}
			fmt.Fprintln(w)
		}

		switch b.Term.Kind {
		case TermJump:
			fmt.Fprintf(w, "  jmp bb_%d\n", b.Term.Target.ID())
		case TermBranch:
			fmt.Fprintf(w, "  br %s, bb_%d, bb_%d\n", operand(b.Term.Predicate), b.Term.TrueTarget.ID(), b.Term.FalseTarget.ID())
		case TermReturn:
			fmt.Fprintf(w, "  return %s\n", operand(b.Term.Value))
		case TermNone:
			fmt.Fprintln(w, "  <fall off end>")
		}
	}
}
