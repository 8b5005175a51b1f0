package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/ludo-technologies/treedit/domain"
)

const (
	deletedFill  = "#f8d7da"
	insertedFill = "#d4edda"
	relabelColor = "#d08700"
	matchColor   = "#5470c6"
)

// MappingToDOT renders both trees side by side as Graphviz clusters with the
// mapped pairs drawn as dashed edges between them. Deleted nodes are red and
// inserted nodes green.
func MappingToDOT(tree1, tree2 domain.TreeSummary, pairs []domain.NodePair, deleted, inserted []int) string {
	var buf bytes.Buffer
	buf.WriteString("digraph mapping {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	writeCluster(&buf, "t1", tree1, toSet(deleted), deletedFill)
	writeCluster(&buf, "t2", tree2, toSet(inserted), insertedFill)

	for _, p := range pairs {
		color := matchColor
		if p.Relabeled {
			color = relabelColor
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=%q, constraint=false, arrowhead=none];\n",
			nodeID("t1", p.From), nodeID("t2", p.To), color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, prefix string, tree domain.TreeSummary, highlight map[int]bool, fill string) {
	fmt.Fprintf(buf, "  subgraph cluster_%s {\n", prefix)
	fmt.Fprintf(buf, "    label=%q;\n", tree.Name)
	buf.WriteString("    style=dotted;\n")

	for v, label := range tree.Labels {
		attrs := []string{fmt.Sprintf("label=%q", fmt.Sprintf("%d: %s", v, label))}
		if highlight[v] {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		}
		fmt.Fprintf(buf, "    %q [%s];\n", nodeID(prefix, v), strings.Join(attrs, ", "))
	}
	for v, p := range tree.Parents {
		if p >= 0 {
			fmt.Fprintf(buf, "    %q -> %q;\n", nodeID(prefix, p), nodeID(prefix, v))
		}
	}

	buf.WriteString("  }\n\n")
}

func nodeID(prefix string, v int) string {
	return fmt.Sprintf("%s_%d", prefix, v)
}

func toSet(nodes []int) map[int]bool {
	set := make(map[int]bool, len(nodes))
	for _, v := range nodes {
		set[v] = true
	}
	return set
}

// RenderSVG renders a DOT graph to SVG using Graphviz
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
