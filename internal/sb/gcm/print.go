package gcm

import (
	"fmt"
	"io"
)

// Print writes the `bb_i:` / `idom: bb_j` / `jmp bb_k` block listing
// spec.md §6.3 names as GCM's observable output. Grounded on gcm_print
// in _examples/original_source/src/backend/gcm.c, with one addition:
// the original only prints a successor line for a single-successor
// block (an unconditional jump) and is silent for a two-way branch —
// here a `br bb_k, bb_l` line is printed for that case too, since
// leaving branch targets out of the dump entirely would make it
// useless for anything but straight-line procedures.
func Print(w io.Writer, head *Block) {
	for b := head; b != nil; b = b.Next() {
		fmt.Fprintf(w, "bb_%d:\n", b.TID())

		if idom := b.ImmediateDominator(); idom != nil {
			fmt.Fprintf(w, "  idom: bb_%d\n", idom.TID())
		}

		switch len(b.Successors()) {
		case 1:
			fmt.Fprintf(w, "  jmp bb_%d\n", b.Successors()[0].TID())
		case 2:
			fmt.Fprintf(w, "  br bb_%d, bb_%d\n", b.Successors()[0].TID(), b.Successors()[1].TID())
		}
	}
}
