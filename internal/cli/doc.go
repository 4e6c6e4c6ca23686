// Package cli implements the command-line interface for liga-scores.
//
// The cli package provides the Cobra-based CLI with support for checking
// league results, formatting output (text/JSON), sorting (by date/club), and
// managing snapshots. It coordinates the scraper, font loading, storage, and
// match packages to fetch, deobfuscate, persist, and report on newly
// published match results. A fonts subcommand lists the locally cached
// obfuscation fonts.
package cli
