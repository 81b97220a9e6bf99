package route

import (
	stderrors "errors"
	"strings"
	"testing"

	naverrors "github.com/affectively-ai/aeon-nav/internal/errors"
)

const sampleManifest = `[
  {"pattern": "/", "sessionId": "home", "componentId": "HomePage"},
  {"pattern": "/blog/[slug]", "sessionId": "blog-$slug", "componentId": "BlogPost", "live": true},
  {"pattern": "/docs/[...path]", "sessionId": "docs-$path", "componentId": "Docs", "layout": "DocsLayout"}
]`

func TestLoadManifest(t *testing.T) {
	defs, err := LoadManifest(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("got %d definitions, want 3", len(defs))
	}
	if !defs[1].Live {
		t.Error("blog route should be live")
	}
	if defs[2].Layout != "DocsLayout" {
		t.Errorf("Layout = %q, want DocsLayout", defs[2].Layout)
	}

	m := NewMatcher()
	m.Reset(defs)
	match, ok := m.Match("/blog/welcome")
	if !ok || match.SessionID != "blog-welcome" {
		t.Errorf("manifest-backed match = %+v, %v", match, ok)
	}
}

func TestLoadManifestBadJSON(t *testing.T) {
	_, err := LoadManifest(strings.NewReader("{not json"))
	if !stderrors.Is(err, naverrors.New("M001")) {
		t.Errorf("err = %v, want M001", err)
	}
}

func TestValidateManifestDuplicate(t *testing.T) {
	err := ValidateManifest([]Definition{
		{Pattern: "/a", SessionID: "a", ComponentID: "A"},
		{Pattern: "/a", SessionID: "a2", ComponentID: "A2"},
	})
	if !stderrors.Is(err, naverrors.New("M002")) {
		t.Errorf("err = %v, want M002", err)
	}
}

func TestValidateManifestMisplacedCatchAll(t *testing.T) {
	err := ValidateManifest([]Definition{
		{Pattern: "/a/[...rest]/b", SessionID: "a", ComponentID: "A"},
	})
	if !stderrors.Is(err, naverrors.New("M003")) {
		t.Errorf("err = %v, want M003", err)
	}
}

func TestValidateManifestEmptyPattern(t *testing.T) {
	err := ValidateManifest([]Definition{{SessionID: "x", ComponentID: "X"}})
	if !stderrors.Is(err, naverrors.New("M004")) {
		t.Errorf("err = %v, want M004", err)
	}
}
