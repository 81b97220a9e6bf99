// Package skeleton renders layout-hint trees into placeholder HTML whose
// dimensions match the final content, so swapping in the real payload
// causes no layout shift.
package skeleton

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Shape names understood by the renderer.
const (
	ShapeRect      = "rect"
	ShapeCircle    = "circle"
	ShapeTextLine  = "text-line"
	ShapeTextBlock = "text-block"
	ShapeContainer = "container"
)

// Dimensions are the CSS sizing hints attached to a skeleton node.
type Dimensions struct {
	Width        string `json:"width,omitempty"`
	Height       string `json:"height,omitempty"`
	MinHeight    string `json:"minHeight,omitempty"`
	AspectRatio  string `json:"aspectRatio,omitempty"`
	Padding      string `json:"padding,omitempty"`
	Margin       string `json:"margin,omitempty"`
	BorderRadius string `json:"borderRadius,omitempty"`
	Gap          string `json:"gap,omitempty"`
}

// Meta describes how to draw the placeholder for one node.
type Meta struct {
	Dimensions Dimensions `json:"dimensions"`
	Shape      string     `json:"shape"`
	Lines      int        `json:"lines,omitempty"`
	Dynamic    bool       `json:"isDynamic"`
	Confidence float64    `json:"confidence"`
	Source     string     `json:"source"`
}

// Node is one component node in a layout-hint tree.
type Node struct {
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Children []Child        `json:"children,omitempty"`
	Meta     *Meta          `json:"_skeleton,omitempty"`
}

// Child is either raw text or a nested node.
type Child struct {
	Text string
	Node *Node
}

// UnmarshalJSON accepts either a JSON string or a node object.
func (c *Child) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	c.Node = &n
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (c Child) MarshalJSON() ([]byte, error) {
	if c.Node != nil {
		return json.Marshal(c.Node)
	}
	return json.Marshal(c.Text)
}

// Parse decodes a layout-hint tree from JSON.
func Parse(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Render produces placeholder HTML for a layout-hint tree. Nodes without a
// dynamic skeleton annotation contribute only their children's skeletons.
func Render(node *Node) string {
	if node == nil {
		return ""
	}
	meta := node.Meta
	if meta == nil || !meta.Dynamic {
		return renderChildren(node.Children)
	}

	style := buildStyle(&meta.Dimensions, meta.Shape)
	class := "aeon-skeleton aeon-skeleton--" + meta.Shape

	switch meta.Shape {
	case ShapeTextBlock:
		lines := meta.Lines
		if lines <= 0 {
			lines = 3
		}
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="%s" style="%s" aria-hidden="true">`, class, style)
		for i := 0; i < lines; i++ {
			// Last line is shorter to look more natural.
			width := "100%"
			if i == lines-1 {
				width = "60%"
			}
			fmt.Fprintf(&b, `<div class="aeon-skeleton--line" style="width: %s; height: 1em; margin-bottom: 0.5em;"></div>`, width)
		}
		b.WriteString("</div>")
		return b.String()
	case ShapeContainer:
		return fmt.Sprintf(`<div class="%s" style="%s" aria-hidden="true">%s</div>`,
			class, style, renderChildren(node.Children))
	default:
		return fmt.Sprintf(`<div class="%s" style="%s" aria-hidden="true"></div>`, class, style)
	}
}

func renderChildren(children []Child) string {
	var b strings.Builder
	for _, child := range children {
		if child.Node != nil {
			b.WriteString(Render(child.Node))
		}
		// Text children carry no skeleton.
	}
	return b.String()
}

func buildStyle(dims *Dimensions, shape string) string {
	var styles []string
	add := func(prop, v string) {
		if v != "" {
			styles = append(styles, prop+": "+v)
		}
	}
	add("width", dims.Width)
	add("height", dims.Height)
	add("min-height", dims.MinHeight)
	add("aspect-ratio", dims.AspectRatio)
	add("padding", dims.Padding)
	add("margin", dims.Margin)
	add("gap", dims.Gap)

	radius := dims.BorderRadius
	if radius == "" {
		switch shape {
		case ShapeCircle:
			radius = "50%"
		case ShapeTextLine, ShapeTextBlock:
			radius = "0.125rem"
		case ShapeContainer:
			radius = "0"
		default:
			radius = "0.25rem"
		}
	}
	styles = append(styles, "border-radius: "+radius)

	if shape == ShapeContainer {
		styles = append(styles, "display: flex", "flex-direction: column")
	}
	return strings.Join(styles, "; ")
}

// RenderPage combines the stylesheet and skeleton markup into one fragment.
func RenderPage(node *Node) string {
	return fmt.Sprintf("<style>%s</style>\n<div id=\"aeon-skeleton\" aria-hidden=\"true\">%s</div>",
		CSS(), Render(node))
}

// TreeStats summarizes a layout-hint tree.
type TreeStats struct {
	TotalNodes        int            `json:"totalNodes"`
	NodesWithSkeleton int            `json:"nodesWithSkeleton"`
	AverageConfidence float64        `json:"averageConfidence"`
	ShapeDistribution map[string]int `json:"shapeDistribution"`
}

// Stats walks a tree and reports node counts, average confidence of
// annotated nodes, and the shape distribution.
func Stats(node *Node) TreeStats {
	stats := TreeStats{ShapeDistribution: make(map[string]int)}
	var confidence float64
	var walk func(n *Node)
	walk = func(n *Node) {
		stats.TotalNodes++
		if n.Meta != nil && n.Meta.Dynamic {
			stats.NodesWithSkeleton++
			confidence += n.Meta.Confidence
			stats.ShapeDistribution[n.Meta.Shape]++
		}
		for _, child := range n.Children {
			if child.Node != nil {
				walk(child.Node)
			}
		}
	}
	if node != nil {
		walk(node)
	}
	if stats.NodesWithSkeleton > 0 {
		stats.AverageConfidence = confidence / float64(stats.NodesWithSkeleton)
	}
	return stats
}
