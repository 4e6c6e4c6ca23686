// Package notifier provides notification interfaces and implementations for match results.
//
// The notifier package supports posting newly published results to various
// platforms including Twitter. It handles OAuth authentication, rate
// limiting, and message formatting for different notification channels.
package notifier
