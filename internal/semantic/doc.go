// Package semantic builds the scope model of a JavaScript family file.
//
// A Model records lexical scopes, declared bindings, the references that
// resolve to them, imports and exports, and the comments of the file. It is
// built by one pre-order walk: the analyzer drives a Builder from its syntax
// phase, while Build walks a tree on its own.
//
// var and function declarations are hoisted to the nearest function or
// module scope; let, const and class live in the enclosing block. Names that
// nothing declares stay unresolved and are treated as globals.
package semantic
