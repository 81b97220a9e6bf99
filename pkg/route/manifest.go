package route

import (
	"encoding/json"
	"io"
	"os"

	"github.com/affectively-ai/aeon-nav/internal/errors"
)

// LoadManifest decodes and validates a route manifest: the JSON array of
// definitions emitted by the build-time route scanner.
func LoadManifest(r io.Reader) ([]Definition, error) {
	var defs []Definition
	if err := json.NewDecoder(r).Decode(&defs); err != nil {
		return nil, errors.New("M001").Wrap(err)
	}
	if err := ValidateManifest(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// LoadManifestFile reads a manifest from disk.
func LoadManifestFile(path string) ([]Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("M001").
			WithDetail("manifest file %q could not be opened", path).
			Wrap(err)
	}
	defer f.Close()
	return LoadManifest(f)
}

// ValidateManifest checks manifest-level invariants: non-empty patterns,
// no duplicates, and catch-alls only in final position.
func ValidateManifest(defs []Definition) error {
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.Pattern == "" {
			return errors.New("M004")
		}
		if _, dup := seen[def.Pattern]; dup {
			return errors.New("M002").
				WithDetail("pattern %q appears more than once", def.Pattern)
		}
		seen[def.Pattern] = struct{}{}

		segments := CompilePattern(def.Pattern)
		for i, seg := range segments {
			tail := seg.Kind == SegmentCatchAll || seg.Kind == SegmentOptionalCatchAll
			if tail && i != len(segments)-1 {
				return errors.New("M003").
					WithDetail("pattern %q has a catch-all before the final segment", def.Pattern).
					WithSuggestion("move the [...] segment to the end of the pattern")
			}
		}
	}
	return nil
}
