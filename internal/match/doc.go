// Package match defines the deobfuscated match result model.
//
// A Match is one row of the results table after score deobfuscation: date,
// clubs and the recovered numeric score. Match IDs hash the date and club
// pairing but not the score, so a corrected result keeps its identity and is
// reported as a score change instead of a new match. The package also
// provides snapshots, diffing against a previous snapshot, and parsing of
// the page's German date strings.
package match
