package skeleton

import (
	"strings"
	"testing"
)

func TestRenderRect(t *testing.T) {
	node, err := Parse([]byte(`{
		"type": "div",
		"props": {"className": "w-64 h-12"},
		"_skeleton": {
			"dimensions": {"width": "16rem", "height": "3rem"},
			"shape": "rect",
			"isDynamic": true,
			"confidence": 0.8,
			"source": "tailwind"
		}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	html := Render(node)
	for _, want := range []string{"aeon-skeleton", "aeon-skeleton--rect", "width: 16rem", "height: 3rem"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q:\n%s", want, html)
		}
	}
}

func TestRenderTextBlockLines(t *testing.T) {
	node := &Node{
		Type: "p",
		Meta: &Meta{Shape: ShapeTextBlock, Lines: 3, Dynamic: true, Confidence: 1, Source: "hint"},
	}
	html := Render(node)
	if got := strings.Count(html, "aeon-skeleton--line"); got != 3 {
		t.Errorf("line count = %d, want 3", got)
	}
	if !strings.Contains(html, "width: 60%") {
		t.Error("last line should be shortened to 60%")
	}
}

func TestRenderCircleRadius(t *testing.T) {
	node := &Node{
		Type: "img",
		Meta: &Meta{
			Dimensions: Dimensions{Width: "3rem", Height: "3rem"},
			Shape:      ShapeCircle, Dynamic: true, Confidence: 1, Source: "hint",
		},
	}
	html := Render(node)
	if !strings.Contains(html, "border-radius: 50%") {
		t.Errorf("circle should get 50%% radius:\n%s", html)
	}
}

func TestRenderStaticNodeSkipped(t *testing.T) {
	child := &Node{Type: "span", Meta: &Meta{Shape: ShapeRect, Dynamic: true, Confidence: 1}}
	node := &Node{
		Type:     "div",
		Children: []Child{{Text: "plain text"}, {Node: child}},
	}
	html := Render(node)
	if strings.Contains(html, "plain text") {
		t.Error("text children should not appear in skeleton output")
	}
	if !strings.Contains(html, "aeon-skeleton--rect") {
		t.Error("dynamic descendant should still render")
	}
}

func TestCSS(t *testing.T) {
	css := CSS()
	for _, want := range []string{".aeon-skeleton", "@keyframes aeon-skeleton-pulse", "prefers-color-scheme: dark", "prefers-reduced-motion"} {
		if !strings.Contains(css, want) {
			t.Errorf("CSS missing %q", want)
		}
	}
}

func TestStats(t *testing.T) {
	node, err := Parse([]byte(`{
		"type": "div",
		"children": [
			{"type": "img", "_skeleton": {"dimensions": {}, "shape": "circle", "isDynamic": true, "confidence": 0.9, "source": "tailwind"}},
			{"type": "p", "_skeleton": {"dimensions": {}, "shape": "text-line", "isDynamic": true, "confidence": 0.7, "source": "tailwind"}}
		]
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	stats := Stats(node)
	if stats.TotalNodes != 3 {
		t.Errorf("TotalNodes = %d, want 3", stats.TotalNodes)
	}
	if stats.NodesWithSkeleton != 2 {
		t.Errorf("NodesWithSkeleton = %d, want 2", stats.NodesWithSkeleton)
	}
	if stats.AverageConfidence < 0.79 || stats.AverageConfidence > 0.81 {
		t.Errorf("AverageConfidence = %v, want 0.8", stats.AverageConfidence)
	}
	if stats.ShapeDistribution[ShapeCircle] != 1 || stats.ShapeDistribution[ShapeTextLine] != 1 {
		t.Errorf("ShapeDistribution = %v", stats.ShapeDistribution)
	}
}

func TestChildJSONRoundTrip(t *testing.T) {
	node, err := Parse([]byte(`{"type": "div", "children": ["hello", {"type": "span"}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(node.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(node.Children))
	}
	if node.Children[0].Text != "hello" {
		t.Errorf("first child = %+v, want text", node.Children[0])
	}
	if node.Children[1].Node == nil || node.Children[1].Node.Type != "span" {
		t.Errorf("second child = %+v, want span node", node.Children[1])
	}
}
