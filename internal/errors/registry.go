package errors

// Registered error templates. New returns a copy, so callers can decorate
// freely without touching the registry.
var registry = map[string]*NavError{
	// Navigation errors (N001-N099)
	"N001": {
		Code:     "N001",
		Category: CategoryRoute,
		Message:  "no route matches the requested path",
		Detail:   "Navigation targets must resolve to a registered route pattern.",
	},
	"N002": {
		Code:     "N002",
		Category: CategoryRoute,
		Message:  "navigation superseded by a newer call",
		Detail:   "A later Navigate call won the race; this one released its state without applying.",
	},

	// Manifest errors (M001-M099)
	"M001": {
		Code:     "M001",
		Category: CategoryManifest,
		Message:  "route manifest could not be decoded",
	},
	"M002": {
		Code:     "M002",
		Category: CategoryManifest,
		Message:  "duplicate route pattern in manifest",
	},
	"M003": {
		Code:     "M003",
		Category: CategoryManifest,
		Message:  "catch-all segment is not in final position",
		Detail:   "Catch-all and optional catch-all segments consume the rest of the path and must come last.",
	},
	"M004": {
		Code:     "M004",
		Category: CategoryManifest,
		Message:  "route definition is missing a pattern",
	},

	// Config errors (C001-C099)
	"C001": {
		Code:     "C001",
		Category: CategoryConfig,
		Message:  "configuration file could not be read",
	},
	"C002": {
		Code:     "C002",
		Category: CategoryConfig,
		Message:  "configuration value out of range",
	},
}

// New creates an error from a registered code. Unknown codes get a generic
// placeholder so callers never receive nil.
func New(code string) *NavError {
	if tmpl, ok := registry[code]; ok {
		c := *tmpl
		return &c
	}
	return &NavError{
		Code:     code,
		Category: CategoryRoute,
		Message:  "unknown error",
	}
}

// Lookup returns the registered template for a code, if any.
func Lookup(code string) (*NavError, bool) {
	tmpl, ok := registry[code]
	if !ok {
		return nil, false
	}
	c := *tmpl
	return &c, true
}
