// Package llvmgen is an alternative backend consuming the block
// skeleton internal/sb/gcm produces, emitting LLVM IR text instead of
// x86-64. spec.md §4.4 is explicit that GCM's node-to-block placement
// ("actual early/late scheduling") is a stub the downstream emitter may
// extend; this package is that extension point, and it stays
// honest about the stub rather than hiding it: only the one case the
// stub already supports — a return value that is a single
// INTEGER_CONSTANT — gets a real value, everything else a documented
// `undef` placeholder.
//
// Grounded on the llir/llvm usage pattern in
// _examples/other_examples/a1c96099_dshills-alas__internal-codegen-optimizer.go.go
// (the ir/constant/types/value package quartet).
package llvmgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/jeremyylimmm/sugar/internal/sb"
	"github.com/jeremyylimmm/sugar/internal/sb/gcm"
)

// Generate builds an LLVM module containing a single function, "main",
// whose control-flow skeleton mirrors head's block graph one-to-one.
// proc supplies the one piece of value information the stub needs: the
// procedure's return value, used only when it is trivially constant.
func Generate(proc *sb.Proc, head *gcm.Block) *ir.Module {
	m := ir.NewModule()
	fn := m.NewFunc("main", types.I64)

	llBlocks := map[*gcm.Block]*ir.Block{}
	for b := head; b != nil; b = b.Next() {
		llBlocks[b] = fn.NewBlock(fmt.Sprintf("bb_%d", b.TID()))
	}

	returnValue := constantReturnValue(proc)

	for b := head; b != nil; b = b.Next() {
		lb := llBlocks[b]
		successors := b.Successors()

		switch len(successors) {
		case 0:
			if returnValue != nil {
				lb.NewRet(returnValue)
			} else {
				// node-to-block value placement is a stub (spec.md §4.4);
				// this block's real return value was never scheduled here.
				lb.NewRet(constant.NewUndef(types.I64))
			}

		case 1:
			lb.NewBr(llBlocks[successors[0]])

		case 2:
			// The branch's predicate node is likewise never scheduled to
			// this block by the stub GCM pass; undef stands in for it
			// until a real scheduler assigns the predicate's value here.
			placeholder := constant.NewUndef(types.I1)
			lb.NewCondBr(placeholder, llBlocks[successors[0]], llBlocks[successors[1]])

		default:
			panic("llvmgen: block with more than 2 successors")
		}
	}

	return m
}

// constantReturnValue returns proc's return value as an LLVM constant
// when it folds to a single INTEGER_CONSTANT node (true, for instance,
// after idealization collapses a trivial single-predecessor phi), and
// nil otherwise.
func constantReturnValue(proc *sb.Proc) *constant.Int {
	v := proc.End.In(sb.EndReturnValue)
	if v.Op() != sb.OpIntegerConstant {
		return nil
	}
	return constant.NewInt(types.I64, int64(v.Data()))
}
