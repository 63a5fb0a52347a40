/*
Package cst implements the concrete-syntax-tree / abstract-syntax-tree node
model shared by package peg (which produces it) and package xform (which
rewrites it in place).

A Node is deliberately the same shape whether it still carries every token
of the input (a CST, right after parsing) or has been reduced to the
essentials of a grammar's abstract grammar (an AST, after xform has run).
There is no separate AST type: xform mutates Nodes in place.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cst

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parsekit.cst'.
func tracer() tracing.Trace {
	return tracing.Select("parsekit.cst")
}
