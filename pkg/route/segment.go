package route

import "strings"

// SegmentKind classifies a compiled pattern segment.
type SegmentKind int

const (
	// SegmentStatic matches its literal value exactly.
	SegmentStatic SegmentKind = iota

	// SegmentDynamic ([name]) consumes exactly one path segment.
	SegmentDynamic

	// SegmentCatchAll ([...name]) consumes one or more remaining segments.
	SegmentCatchAll

	// SegmentOptionalCatchAll ([[...name]]) consumes zero or more remaining segments.
	SegmentOptionalCatchAll
)

// Segment is one compiled element of a route pattern.
// Value holds the literal for static segments and the parameter name otherwise.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// CompilePattern parses a route pattern into an ordered segment list.
//
// Supported pattern forms:
//   - static:             /about, /blog
//   - dynamic:            /blog/[slug]
//   - catch-all:          /api/[...path]
//   - optional catch-all: /docs/[[...slug]]
//   - route groups:       /(dashboard)/settings (dropped from the URL)
func CompilePattern(pattern string) []Segment {
	var segments []Segment
	for _, s := range splitPath(pattern) {
		if isRouteGroup(s) {
			continue
		}
		switch {
		case strings.HasPrefix(s, "[[...") && strings.HasSuffix(s, "]]"):
			segments = append(segments, Segment{SegmentOptionalCatchAll, s[5 : len(s)-2]})
		case strings.HasPrefix(s, "[...") && strings.HasSuffix(s, "]"):
			segments = append(segments, Segment{SegmentCatchAll, s[4 : len(s)-1]})
		case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
			segments = append(segments, Segment{SegmentDynamic, s[1 : len(s)-1]})
		default:
			segments = append(segments, Segment{SegmentStatic, s})
		}
	}
	return segments
}

// Specificity scores a segment list so that more specific routes sort first.
// Static and dynamic segments are weighted by position (earlier segments
// dominate); catch-alls score a flat 1 and optional catch-alls 0, keeping
// them behind everything else regardless of where they appear.
func Specificity(segments []Segment) int {
	score := 0
	for i, seg := range segments {
		positionWeight := 1000 - i
		switch seg.Kind {
		case SegmentStatic:
			score += positionWeight * 10
		case SegmentDynamic:
			score += positionWeight * 5
		case SegmentCatchAll:
			score += 1
		case SegmentOptionalCatchAll:
			// zero
		}
	}
	return score
}

// matchSegments walks route and path segments in lockstep, returning the
// extracted parameters, or ok=false when the path does not belong to the route.
func matchSegments(routeSegments []Segment, pathSegments []string) (map[string]string, bool) {
	params := make(map[string]string)
	idx := 0

	for _, seg := range routeSegments {
		switch seg.Kind {
		case SegmentStatic:
			if idx >= len(pathSegments) || pathSegments[idx] != seg.Value {
				return nil, false
			}
			idx++
		case SegmentDynamic:
			if idx >= len(pathSegments) {
				return nil, false
			}
			params[seg.Value] = pathSegments[idx]
			idx++
		case SegmentCatchAll:
			// Must consume at least one segment.
			if idx >= len(pathSegments) {
				return nil, false
			}
			params[seg.Value] = strings.Join(pathSegments[idx:], "/")
			idx = len(pathSegments)
		case SegmentOptionalCatchAll:
			if idx < len(pathSegments) {
				params[seg.Value] = strings.Join(pathSegments[idx:], "/")
				idx = len(pathSegments)
			}
		}
	}

	// Leftover path segments mean the route is a prefix, not a match.
	if idx != len(pathSegments) {
		return nil, false
	}
	return params, true
}

// ResolveSessionID substitutes $name placeholders in a session-id template
// with captured parameter values.
func ResolveSessionID(template string, params map[string]string) string {
	result := template
	for key, value := range params {
		result = strings.ReplaceAll(result, "$"+key, value)
	}
	return result
}

// splitPath splits a path or pattern into segments, dropping surrounding
// slashes and empty components.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isRouteGroup reports whether a segment is a route group like (dashboard).
func isRouteGroup(segment string) bool {
	return strings.HasPrefix(segment, "(") && strings.HasSuffix(segment, ")")
}
