package sb

import (
	"fmt"
	"io"
)

// Visualize writes a Graphviz dot description of proc's End-reachable
// graph to w. It is the debug/observability surface spec.md's §6.3
// describes only as an "observable side effect"; the concrete format
// here is grounded on graphviz/sb_visualize in
// _examples/original_source/src/backend/sb.c.
func (c *Context) Visualize(w io.Writer, proc *Proc) {
	visited := make(map[int]bool, c.nextID)

	fmt.Fprintln(w, "digraph G {")
	visualizeNode(w, proc.End, visited)
	fmt.Fprintln(w, "}")
}

func visualizeNode(w io.Writer, node *Node, visited map[int]bool) {
	if visited[node.id] {
		return
	}
	visited[node.id] = true

	fmt.Fprintf(w, "  n%d [shape=\"record\",label=\"", node.id)

	if node.op == OpIntegerConstant {
		fmt.Fprintf(w, "%s %d", node.op, int64(node.data))
	} else if node.InCount() == 0 {
		fmt.Fprintf(w, "%s", node.op)
	} else {
		fmt.Fprint(w, "{{")
		for i := 0; i < node.InCount(); i++ {
			if i > 0 {
				fmt.Fprint(w, "|")
			}
			fmt.Fprintf(w, "<i%d>%d", i, i)
		}
		fmt.Fprintf(w, "}|%s}", node.op)
	}

	fmt.Fprint(w, "\"];\n")

	for i := 0; i < node.InCount(); i++ {
		in := node.In(i)
		if in == nil {
			continue
		}
		visualizeNode(w, in, visited)
		fmt.Fprintf(w, "  n%d -> n%d:i%d\n", in.id, node.id, i)
	}
}
