// Package index builds a flat, ordered inventory of a module's
// structural items with exact byte ranges and debug names.
//
// Two independent walks produce the result: Items computes the ranged
// item list from the module structure, Aliases extracts debug names
// from "name" custom sections, and Resolve merges the two by key. The
// split keeps either half testable alone and lets callers skip the
// alias pass for modules without a name section.
package index
