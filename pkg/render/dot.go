// Package render converts a process document to Graphviz node-link diagrams
// for quick inspection of the flow graph, the coupling weights, and which
// activities a masking run would remove.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/bpmntools/morph/pkg/model"
	"github.com/bpmntools/morph/pkg/transform"
)

// Options configures diagram generation.
type Options struct {
	// MaskPreview highlights activities the given mask options would remove.
	MaskPreview bool
	Mask        transform.MaskOptions
}

// ToDOT converts the document's flow graph to Graphviz DOT. Activities are
// drawn as boxes; flow endpoints that are not activities (events, gateways)
// as ellipses. Flows carrying a coupling weight are labeled with it, and
// synthesized bypass flows are dashed.
func ToDOT(doc *model.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, a := range doc.Activities() {
		fmt.Fprintf(&buf, "  %q [%s];\n", a.ID, strings.Join(activityAttrs(a, opts), ", "))
	}
	for _, id := range nonActivityEndpoints(doc) {
		fmt.Fprintf(&buf, "  %q [shape=ellipse, fillcolor=lightgrey];\n", id)
	}

	buf.WriteString("\n")
	for _, f := range doc.Flows() {
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", f.Source, f.Target, flowAttrs(f))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func activityAttrs(a *model.Activity, opts Options) []string {
	label := a.ID
	if a.Name != "" {
		label = a.Name
	}
	if p, ok := a.Privacy(); ok {
		label += fmt.Sprintf("\nprivacy: %g", p)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if opts.MaskPreview {
		if p, ok := a.Privacy(); ok && opts.Mask.ShouldMask(p) {
			attrs = append(attrs, "fillcolor=lightcoral")
		}
	}
	return attrs
}

func flowAttrs(f *model.Flow) string {
	var parts []string
	if w, ok := f.Coupling(); ok {
		parts = append(parts, fmt.Sprintf("label=%q", fmt.Sprintf("%g", w)))
	}
	if strings.HasPrefix(f.ID, transform.AutoFlowPrefix) {
		parts = append(parts, "style=dashed")
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

// nonActivityEndpoints returns flow endpoints that are not activities, in
// first-referenced order.
func nonActivityEndpoints(doc *model.Document) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range doc.Flows() {
		for _, id := range []string{f.Source, f.Target} {
			if id == "" || seen[id] || doc.IsActivity(id) {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// SVG renders a DOT graph to SVG bytes using Graphviz.
func SVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// PNG renders a DOT graph to PNG bytes using Graphviz.
func PNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
