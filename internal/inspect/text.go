package inspect

import (
	"fmt"
	"io"
	"strings"
)

// WriteText renders nodes as an indented tree, one node per line:
//
//	- Player#1 *engine.GameObject = Player#1
//	  + :Rigidbody *components.Rigidbody = {Rigidbody}
//	    Name string = "Player"
//
// "+" marks a collapsed node, "-" an expanded one.
func WriteText(w io.Writer, nodes []*Node) error {
	for _, n := range nodes {
		if err := writeNode(w, n, 0); err != nil {
			return err
		}
	}
	return nil
}

func writeNode(w io.Writer, n *Node, depth int) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	switch {
	case n.Expanded:
		b.WriteString("- ")
	case n.Expandable:
		b.WriteString("+ ")
	default:
		b.WriteString("  ")
	}
	b.WriteString(n.Label)
	if n.Type != "" {
		b.WriteByte(' ')
		b.WriteString(n.Type)
	}
	b.WriteString(" = ")
	b.WriteString(n.Value)
	if n.Jump != "" {
		b.WriteString(" -> ")
		b.WriteString(n.Jump)
	}
	if n.Err != "" {
		b.WriteString(" !")
		b.WriteString(n.Err)
	}
	if n.Note != "" {
		fmt.Fprintf(&b, " (%s)", n.Note)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, c := range n.Children {
		if err := writeNode(w, c, depth+1); err != nil {
			return err
		}
	}
	if p := n.Page; p != nil && (p.Start > 0 || p.End < p.Total || p.More) {
		total := fmt.Sprint(p.Total)
		if p.More {
			total += "+"
		}
		line := fmt.Sprintf("%s    ... showing %d-%d of %s\n", strings.Repeat("  ", depth), p.Start, p.End-1, total)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
