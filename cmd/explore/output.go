package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/view"
)

var (
	heading = color.New(color.FgHiGreen, color.Bold)
	subtle  = color.New(color.FgHiBlack)
)

type inspectOutput struct {
	Stats explorer.Stats `json:"stats" yaml:"stats"`
	View  view.View      `json:"view" yaml:"view"`
}

func writeView(w io.Writer, format string, v view.View, stats explorer.Stats, noColor bool) error {
	out := inspectOutput{Stats: stats, View: v}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return writeText(w, out, noColor)
	}
}

var glyphs = map[string]string{
	view.ShapeDot:     "●",
	view.ShapeEllipse: "◯",
	view.ShapeSquare:  "■",
}

func writeText(w io.Writer, out inspectOutput, noColor bool) error {
	paint := func(c *color.Color, s string) string {
		if noColor {
			return s
		}
		return c.Sprint(s)
	}

	v := out.View
	title := fmt.Sprintf("%s view", v.Mode)
	if v.Query != "" {
		title += fmt.Sprintf(" %q", v.Query)
	}
	fmt.Fprintln(w, paint(heading, title))
	fmt.Fprintln(w, paint(subtle, fmt.Sprintf("%d/%d nodes visible, %d edges, %d classes, %d colors",
		out.Stats.Visible, out.Stats.Nodes, len(v.Edges), out.Stats.Classes, out.Stats.Colors)))
	fmt.Fprintln(w)

	for _, n := range v.Nodes {
		glyph := glyphs[n.Shape]
		if !noColor {
			glyph = swatch(n.Color).Sprint(glyph)
		}
		marker := " "
		if n.Highlighted {
			marker = "*"
		}
		label := n.Label
		if label == "" {
			label = n.ID
		}
		fmt.Fprintf(w, "%s %s %-30s %s\n", marker, glyph, label, paint(subtle, n.Kind.String()))
	}

	if len(v.Edges) > 0 {
		fmt.Fprintln(w)
		for _, e := range v.Edges {
			fmt.Fprintf(w, "  %s %s %s\n", e.From, paint(subtle, "-"+e.Label+"->"), e.To)
		}
	}
	return nil
}

// swatch returns a true color printer for a "#rrggbb" fill.
func swatch(hex string) *color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.New(color.Reset)
	}
	r, g, b := c.RGB255()
	return color.RGB(int(r), int(g), int(b))
}
