// Package analysis turns an ordered sample sequence into per-interface delta
// tables. Everything here is pure: the same samples always give the same report.
package analysis
