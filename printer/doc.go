// Package printer renders modules as WebAssembly text format and as
// annotated hex dumps.
//
// Print drives a Sink with one line per structural element or
// instruction, announcing each line's binary offset first. The two
// provided sinks, RangeText and RangeParts, keep only the lines whose
// offset falls inside a byte window fixed at construction, which gives
// cheap range-restricted views of a full-module render. RangeParts
// additionally records semantic highlighting tags via the optional
// Marker half of the sink contract.
package printer
