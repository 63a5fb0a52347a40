/*
Package xform implements the table-driven tree rewrite applied to a
completed CST to produce an AST. A Table holds an ordered list of rules,
each pairing a tag selector with the operations to apply to every node
the selector matches; Apply walks a tree once post-order (after one
pre-order pass, if any rule was registered under a bare `<`), dispatching
each visited node to the first rule whose selector matches it.

The traversal itself is a goroutine-and-channel producer modeled on the
tree-walk used elsewhere in this module's ancestry for homogenous cons
trees, adapted here to cst.Node's parent/children shape instead of a
binary cons cell.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package xform

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parsekit.xform'.
func tracer() tracing.Trace {
	return tracing.Select("parsekit.xform")
}
