package cfg

import (
	"fmt"
	"io"
	"strings"
)

// WriteDot emits a Graphviz description of the graph: one node per block
// labeled with its operations, solid edges for conditional successors and
// plain edges otherwise.
func WriteDot(w io.Writer, g *Graph) error {
	if _, err := fmt.Fprintf(w, "digraph %q {\n", g.FunctionName); err != nil {
		return err
	}
	fmt.Fprintln(w, "  node [shape=box, fontname=\"monospace\"];")

	for _, blk := range g.Blocks {
		var label strings.Builder
		fmt.Fprintf(&label, "B%d [%s]", blk.ID, blk.Kind)
		for _, op := range blk.Operations {
			label.WriteString("\\l")
			label.WriteString(escapeDot(op.Text))
		}
		label.WriteString("\\l")
		attrs := ""
		if !blk.Reachable {
			attrs = ", style=dashed"
		}
		if _, err := fmt.Fprintf(w, "  b%d [label=\"%s\"%s];\n", blk.ID, label.String(), attrs); err != nil {
			return err
		}
	}

	for _, blk := range g.Blocks {
		for _, succ := range []*Edge{blk.CondSucc, blk.FallSucc} {
			if succ == nil {
				continue
			}
			style := ""
			if succ.Conditional {
				cond := ""
				if blk.Cond != nil {
					cond = escapeDot(blk.Cond.Text)
				}
				style = fmt.Sprintf(" [label=\"%s\"]", cond)
			}
			if _, err := fmt.Fprintf(w, "  b%d -> b%d%s;\n", succ.Source, succ.Dest, style); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func escapeDot(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\l")
	return s
}
