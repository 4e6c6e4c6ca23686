// Package scraper provides HTTP fetching and HTML parsing for league match results.
//
// The scraper package fetches the public results page and extracts match rows:
// date, home and guest club names, and the two obfuscated score cells. Score
// digits are not present as text. Each cell carries a font id and a
// percent-encoded private-use codepoint, so the scraper hands every
// (font id, codepoint) pair to the font load coordinator and the digit
// resolver to recover the real score. Column sequences are extracted
// independently and must agree in length; a mismatch fails the whole page.
package scraper
