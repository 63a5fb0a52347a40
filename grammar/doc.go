/*
Package grammar implements the container a set of named peg.Parsers
compiles into: registration, Forward-reference resolution, the
context-sensitivity and disposable/drop fixed-point passes applied at
finalization, and the top-level Parse entry point.

A Grammar is an explicit value, created once with New and shared by
reference across goroutines — there is no hidden global or per-goroutine
singleton to look up. Each call to Parse allocates its own peg.ParseState,
so a finalized Grammar is safe for concurrent use by multiple callers.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parsekit.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("parsekit.grammar")
}
