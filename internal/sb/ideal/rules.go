package ideal

import "github.com/jeremyylimmm/sugar/internal/sb"

// rule computes a node's idealized replacement, given access to the
// worklist so a rule may queue a node other than the one it was handed
// (idealizePhi does exactly this). Returning the node itself means "no
// simplification available right now" and the driver leaves it alone.
type rule func(wl *workList, n *sb.Node) *sb.Node

// rules is a dispatch table keyed by opcode, mirroring opt.c's
// idealize_table: only PHI and REGION currently have a simplification,
// matching spec.md's documented (and intentionally preserved) asymmetry
// between the two — a PHI always re-queues its region when it
// collapses, but the reverse is not true.
var rules = map[sb.OpCode]rule{
	sb.OpPhi:    idealizePhi,
	sb.OpRegion: idealizeRegion,
}

// idealizePhi implements the trivial-phi rule: if every predecessor
// value (ins[1:]) is either the phi itself or a single repeated value,
// the phi can be replaced by that value directly. Either way — collapse
// or an all-self-reference phi with no distinct value yet — the owning
// region (ins[0]) is re-queued: the phi was the one thing keeping that
// region alive (see idealizeRegion), so it may now collapse too. This
// is the one place a rule reaches past its own node to queue a pure
// input rather than a user, the asymmetry spec.md calls out explicitly.
func idealizePhi(wl *workList, n *sb.Node) *sb.Node {
	var same *sb.Node
	for i := 1; i < n.InCount(); i++ {
		in := n.In(i)
		if in == nil || in == n {
			continue
		}
		if same == nil {
			same = in
		} else if same != in {
			return n
		}
	}

	wl.add(n.In(0))

	if same == nil {
		return n
	}
	return same
}

// idealizeRegion implements the trivial-region (single-predecessor)
// rule: a region with one distinct control input collapses to that
// input, unless some PHI is still anchored to it (its slot-0 input),
// since collapsing the region out from under a live PHI would break
// I-6's region/phi congruence.
func idealizeRegion(wl *workList, n *sb.Node) *sb.Node {
	for _, u := range n.Users() {
		if u.Node.Op() == sb.OpPhi && u.Index == 0 {
			return n
		}
	}

	var same *sb.Node
	for i := 0; i < n.InCount(); i++ {
		in := n.In(i)
		if in == nil {
			continue
		}
		if same == nil {
			same = in
		} else if same != in {
			return n
		}
	}
	if same == nil {
		return n
	}
	return same
}

// Run idealizes proc to a fixed point: pop a node, compute its ideal
// replacement, and if it differs, re-queue its former users (they may
// now simplify too) before committing the replacement. Terminates
// because each successful replacement strictly reduces the graph (P-3).
//
// Grounded on sb_opt's main loop in
// _examples/original_source/src/backend/opt.c.
func Run(ctx *sb.Context, proc *sb.Proc) {
	wl := newWorkList()
	wl.seed(proc.End)

	for !wl.empty() {
		n := wl.pop()

		// A node deleted by an earlier Replace (including a phi that was
		// re-queued through its own self-reference) may still be queued;
		// every live node other than End has at least one user.
		if n != proc.End && len(n.Users()) == 0 {
			continue
		}

		r, ok := rules[n.Op()]
		if !ok {
			continue
		}

		result := r(wl, n)
		if result == n {
			continue
		}

		for _, u := range n.Users() {
			wl.add(u.Node)
		}
		ctx.Replace(n, result)
	}
}
