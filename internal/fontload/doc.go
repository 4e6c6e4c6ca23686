// Package fontload coordinates fetching, parsing and caching of score fonts.
//
// The fontload package keeps a registry of every font id it has seen this
// process. The first request for an id starts a single load (download, parse,
// record into the glyph cache); concurrent and later requests join that
// load's outcome instead of repeating it. Failed loads are memoized too, so
// a broken font id costs one download, not one per score cell. The registry
// is bounded: completed entries are evicted least-recently-used first once
// the configured capacity is exceeded.
package fontload
