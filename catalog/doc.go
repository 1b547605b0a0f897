// Package catalog caches the full course catalog and derives filtered views
// from it.
//
// The cache is deliberately staleness-tolerant: it refreshes on first use or
// on explicit request only, never on a timer, and keeps serving its last
// good set when a refresh fails so read paths stay usable offline.
package catalog
