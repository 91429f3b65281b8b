package hir

import "github.com/jeremyylimmm/sugar/internal/sb"

// flow carries the two threaded tokens a block's statement sweep
// updates as it lowers: the control token (only ever the block's own
// region here, since nothing inside a block splits control) and the
// store token (updated by every STORE, read by every LOAD).
type flow struct {
	control *sb.Node
	store   *sb.Node
}

// successorsOf returns a block's control successors per its terminator.
func successorsOf(b *Block) []*Block {
	switch b.Term.Kind {
	case TermJump:
		return []*Block{b.Term.Target}
	case TermBranch:
		return []*Block{b.Term.TrueTarget, b.Term.FalseTarget}
	default:
		return nil
	}
}

// edges accumulates the (control, store) pairs a predecessor hands off
// to each HIR block, collected in whatever order lowering visits
// predecessors — SetRegionInputs/SetPhiInputs only requires the two
// lists stay positionally aligned with each other, not any particular
// global order.
type edges struct {
	controls []*sb.Node
	stores   []*sb.Node
}

// Lower builds the MIR graph for proc: every reachable HIR block gets a
// REGION/PHI(store) pair, statements thread the store token through
// ALLOCA/LOAD/STORE (see SPEC_FULL.md §1.2 for why locals are modeled
// this way rather than via parse-time SSA renaming), and every block
// that returns or falls off the end contributes to an end-merge built
// from REGION/PHI(store)/PHI(value).
//
// The overall algorithm is spec.md §4.2's, restated here: unreachable
// HIR blocks never get a region/phi pair or lowered statements at all;
// no shells are allocated for them.
func Lower(ctx *sb.Context, proc *Proc) *sb.Proc {
	reachable := reachableBlocks(proc)

	regionOf := map[*Block]*sb.Node{}
	phiOf := map[*Block]*sb.Node{}
	edgesOf := map[*Block]*edges{}
	for _, b := range reachable {
		regionOf[b] = ctx.NewRegion()
		phiOf[b] = ctx.NewPhi()
		edgesOf[b] = &edges{}
	}

	start := ctx.NewStart()
	startControl := ctx.NewStartControl(start)
	startStore := ctx.NewStartStore(start)

	entryEdges := edgesOf[proc.Entry]
	entryEdges.controls = append(entryEdges.controls, startControl)
	entryEdges.stores = append(entryEdges.stores, startStore)

	locals := make([]*sb.Node, proc.NumLocals)
	for i := range locals {
		locals[i] = ctx.NewAlloca()
	}

	var endControls, endStores, endValues []*sb.Node

	for _, b := range reachable {
		f := flow{control: regionOf[b], store: phiOf[b]}
		values := map[*Node]*sb.Node{}

		for n := b.Start(); n != nil; n = n.Next() {
			values[n] = lowerStatement(ctx, &f, locals, values, n)
		}

		switch b.Term.Kind {
		case TermJump:
			target := edgesOf[b.Term.Target]
			target.controls = append(target.controls, f.control)
			target.stores = append(target.stores, f.store)

		case TermBranch:
			pred := values[b.Term.Predicate]
			branch := ctx.NewBranch(f.control, pred)
			tProj := ctx.NewBranchTrue(branch)
			fProj := ctx.NewBranchFalse(branch)

			tTarget := edgesOf[b.Term.TrueTarget]
			tTarget.controls = append(tTarget.controls, tProj)
			tTarget.stores = append(tTarget.stores, f.store)

			fTarget := edgesOf[b.Term.FalseTarget]
			fTarget.controls = append(fTarget.controls, fProj)
			fTarget.stores = append(fTarget.stores, f.store)

		case TermReturn:
			endControls = append(endControls, f.control)
			endStores = append(endStores, f.store)
			v := ctx.NewNull()
			if b.Term.Value != nil {
				v = values[b.Term.Value]
			}
			endValues = append(endValues, v)

		case TermNone:
			endControls = append(endControls, f.control)
			endStores = append(endStores, f.store)
			endValues = append(endValues, ctx.NewNull())
		}
	}

	for _, b := range reachable {
		e := edgesOf[b]
		ctx.SetRegionInputs(regionOf[b], e.controls)
		ctx.SetPhiInputs(phiOf[b], regionOf[b], e.stores)
	}

	endRegion := ctx.NewRegion()
	endStorePhi := ctx.NewPhi()
	endValuePhi := ctx.NewPhi()
	ctx.SetRegionInputs(endRegion, endControls)
	ctx.SetPhiInputs(endStorePhi, endRegion, endStores)
	ctx.SetPhiInputs(endValuePhi, endRegion, endValues)

	end := ctx.NewEnd(endRegion, endStorePhi, endValuePhi)

	return ctx.MakeProc(start, end)
}

// lowerStatement lowers a single HIR node, threading f's control/store
// tokens as needed, and returns the MIR value that node produces (nil
// for nodes, like ASSIGN, that produce no value of their own).
func lowerStatement(ctx *sb.Context, f *flow, locals []*sb.Node, values map[*Node]*sb.Node, n *Node) *sb.Node {
	switch n.Op {
	case OpIntegerLiteral:
		return ctx.NewIntegerConstant(n.Data)

	case OpAdd:
		return ctx.NewAdd(values[n.Ins[0]], values[n.Ins[1]])
	case OpSub:
		return ctx.NewSub(values[n.Ins[0]], values[n.Ins[1]])
	case OpMul:
		return ctx.NewMul(values[n.Ins[0]], values[n.Ins[1]])
	case OpDiv:
		return ctx.NewSDiv(values[n.Ins[0]], values[n.Ins[1]])

	case OpNegate:
		return ctx.NewSub(ctx.NewIntegerConstant(0), values[n.Ins[0]])

	case OpVarRef:
		addr := locals[n.Data]
		return ctx.NewLoad(f.control, f.store, addr)

	case OpVarDecl, OpAssign:
		addr := locals[n.Data]
		value := values[n.Ins[0]]
		store := ctx.NewStore(f.control, f.store, addr, value)
		f.store = store
		return nil

	default:
		panic("hir: unhandled opcode in Lower")
	}
}

// reachableBlocks returns proc's blocks reachable from its entry,
// walked depth-first, in visitation order (any order is legal for the
// statement-lowering sweep — region/phi construction only needs the two
// input lists to stay aligned with each other, which edges guarantees
// regardless of visitation order).
func reachableBlocks(proc *Proc) []*Block {
	seen := map[*Block]bool{proc.Entry: true}
	order := []*Block{proc.Entry}
	stack := []*Block{proc.Entry}

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, s := range successorsOf(b) {
			if !seen[s] {
				seen[s] = true
				order = append(order, s)
				stack = append(stack, s)
			}
		}
	}

	return order
}
