// Package nav implements the navigation engine: it resolves paths against
// the route table, serves session payloads through the LRU cache, applies
// DOM updates via the platform adapter, and speculatively warms likely next
// routes using the first-order prediction model.
package nav
