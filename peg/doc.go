/*
Package peg implements the parser-combinator runtime: the polymorphic
Parser matcher, its primitives and combinators, Capture/Pop/Retrieve for
context-sensitive matching, and the ParseState a single parse call runs
in.

Parser is not a set of duck-typed types behind an interface; it is a
single tagged-variant struct dispatched by one enum switch in Parse. The
combinator kinds make this both efficient and easy for the Go compiler to
inline and devirtualize.

Subpackages peg/memo, peg/recovery and peg/trace hold the memoization
cache, the mandatory-marker recovery machinery, and call tracing,
respectively — kept separate so peg's dependency on each is a narrow,
explicit interface rather than a ball of mutually recursive types.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package peg

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parsekit.peg'.
func tracer() tracing.Trace {
	return tracing.Select("parsekit.peg")
}
