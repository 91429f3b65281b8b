// This file is the orchestration entry point: lex -> parse -> HIR ->
// sb.MakeProc -> ideal.Run -> gcm.Schedule, matching spec.md's own
// pipeline description, and owning the diagnostic pretty-printers
// §6.3 names (a graphviz dump and the block-level pretty-print). The
// teacher's old bytecode-visitor compiler (compiler.go,
// hoisting_compiler.go, stmt_compiler.go) is gone — see DESIGN.md for
// why it couldn't be adapted.
package compiler

import (
	"fmt"
	"strings"

	"github.com/jeremyylimmm/sugar/internal/errors"
	"github.com/jeremyylimmm/sugar/internal/hir"
	"github.com/jeremyylimmm/sugar/internal/parser"
	"github.com/jeremyylimmm/sugar/internal/sb"
	"github.com/jeremyylimmm/sugar/internal/sb/gcm"
	"github.com/jeremyylimmm/sugar/internal/sb/ideal"
)

// Result is everything a successful compile produces, kept together so
// cmd/sugarc and internal/watch can both render whichever piece they
// need without recompiling.
type Result struct {
	HIR  *hir.Proc
	MIR  *sb.Proc
	Head *gcm.Block

	ctx *sb.Context
}

// Compile runs the full pipeline over source. file is used only for
// diagnostic locations. The returned error, when non-nil, is always a
// *errors.Error (a SyntaxError from the frontend, or a CompileError for
// an unreachable/malformed procedure the core itself refuses to build).
func Compile(file, source string) (*Result, error) {
	hirProc, err := parser.Parse(file, source)
	if err != nil {
		return nil, err
	}

	ctx := sb.NewContext()
	mirProc := hir.Lower(ctx, hirProc)
	if mirProc == nil {
		return nil, errors.NewCompileError("procedure start is not reachable from end", file, 0, 0)
	}

	ideal.Run(ctx, mirProc)

	head := gcm.Schedule(mirProc)

	return &Result{HIR: hirProc, MIR: mirProc, Head: head, ctx: ctx}, nil
}

// Graphviz renders the post-idealization MIR graph (spec.md §6.3).
func (r *Result) Graphviz() string {
	var b strings.Builder
	r.ctx.Visualize(&b, r.MIR)
	return b.String()
}

// BlockList renders the scheduled block graph (spec.md §6.3:
// "bb_i:", optional "idom: bb_j", optional "jmp bb_k").
func (r *Result) BlockList() string {
	var b strings.Builder
	gcm.Print(&b, r.Head)
	return b.String()
}

// NodeCount and BlockCount feed cmd/sugarc's --stats output.
func (r *Result) NodeCount() int {
	return r.ctx.NodeCount()
}

func (r *Result) BlockCount() int {
	n := 0
	for b := r.Head; b != nil; b = b.Next() {
		n++
	}
	return n
}

// String renders a one-line summary of the node and block counts.
func (r *Result) String() string {
	return fmt.Sprintf("%d nodes, %d blocks", r.NodeCount(), r.BlockCount())
}
