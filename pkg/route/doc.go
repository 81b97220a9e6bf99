// Package route compiles path patterns and resolves incoming paths to
// routes with extracted parameters.
//
// Patterns follow the file-router convention:
//
//	/about               static
//	/blog/[slug]         dynamic segment
//	/api/[...path]       catch-all (one or more segments)
//	/docs/[[...slug]]    optional catch-all (zero or more segments)
//	/(dashboard)/stats   route group, dropped from the URL
//
// Routes are kept sorted by a deterministic specificity score so that
// /users/settings always wins over /users/[id], regardless of the order
// they were registered in.
package route
