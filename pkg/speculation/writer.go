package speculation

// RulesWriter abstracts the browser speculative-loading surface.
//
// Two mechanisms exist. The rules mechanism takes a full replacement list:
// adding one path means reissuing the whole accumulated set. The fallback
// injects one <link rel="prefetch"> element per path. An environment may
// support neither, in which case the controller keeps its bookkeeping so
// stats stay consistent.
type RulesWriter interface {
	// SupportsRules reports whether the rules mechanism is available.
	SupportsRules() bool

	// WriteRules replaces the active directive with the given prefetch and
	// prerender path sets.
	WriteRules(prefetch, prerender []string) error

	// ClearRules removes the active directive.
	ClearRules() error

	// SupportsLinkPrefetch reports whether link-element injection is
	// available.
	SupportsLinkPrefetch() bool

	// InsertLinkPrefetch injects a prefetch link element for one path.
	InsertLinkPrefetch(path string) error
}

// NoopWriter supports neither mechanism. Controller operations become
// bookkeeping-only, which is what tests and non-browser environments want.
type NoopWriter struct{}

func (NoopWriter) SupportsRules() bool                 { return false }
func (NoopWriter) WriteRules(_, _ []string) error      { return nil }
func (NoopWriter) ClearRules() error                   { return nil }
func (NoopWriter) SupportsLinkPrefetch() bool          { return false }
func (NoopWriter) InsertLinkPrefetch(path string) error { return nil }
