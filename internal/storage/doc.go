// Package storage provides JSON-based persistence for match result snapshots.
//
// The storage package manages local snapshot files that track match results
// across runs. Snapshots are stored in JSON format, with separate files for
// each club filter (snapshot_CLUB.json) and a combined file for unfiltered
// checks (snapshot.json). The default storage location is
// ~/.local/share/liga-scores/.
package storage
