package llvmgen

import (
	"testing"

	"github.com/jeremyylimmm/sugar/internal/sb"
	"github.com/jeremyylimmm/sugar/internal/sb/gcm"
)

func buildReturnConstant(t *testing.T, value int64) *sb.Proc {
	t.Helper()
	ctx := sb.NewContext()

	start := ctx.NewStart()
	startControl := ctx.NewStartControl(start)
	startStore := ctx.NewStartStore(start)

	lit := ctx.NewIntegerConstant(value)
	end := ctx.NewEnd(startControl, startStore, lit)

	proc := ctx.MakeProc(start, end)
	if proc == nil {
		t.Fatal("expected a valid proc")
	}
	return proc
}

func TestGenerateSingleBlockConstantReturn(t *testing.T) {
	proc := buildReturnConstant(t, 42)
	head := gcm.Schedule(proc)

	m := Generate(proc, head)
	if len(m.Funcs) != 1 {
		t.Fatalf("expected exactly 1 function, got %d", len(m.Funcs))
	}

	fn := m.Funcs[0]
	if len(fn.Blocks) != 1 {
		t.Fatalf("expected exactly 1 block, got %d", len(fn.Blocks))
	}
	if fn.Blocks[0].Term == nil {
		t.Fatal("expected a terminator on the single block")
	}
}

func TestGenerateBranchingSkeleton(t *testing.T) {
	ctx := sb.NewContext()

	start := ctx.NewStart()
	startControl := ctx.NewStartControl(start)
	startStore := ctx.NewStartStore(start)

	pred := ctx.NewIntegerConstant(1)
	branch := ctx.NewBranch(startControl, pred)
	tProj := ctx.NewBranchTrue(branch)
	fProj := ctx.NewBranchFalse(branch)

	region := ctx.NewRegion()
	ctx.SetRegionInputs(region, []*sb.Node{tProj, fProj})
	storePhi := ctx.NewPhi()
	ctx.SetPhiInputs(storePhi, region, []*sb.Node{startStore, startStore})

	end := ctx.NewEnd(region, storePhi, ctx.NewNull())
	proc := ctx.MakeProc(start, end)
	if proc == nil {
		t.Fatal("expected a valid proc")
	}

	head := gcm.Schedule(proc)
	m := Generate(proc, head)

	fn := m.Funcs[0]
	if len(fn.Blocks) != 4 {
		t.Fatalf("expected 4 blocks (entry, then, else, merge), got %d", len(fn.Blocks))
	}
}
