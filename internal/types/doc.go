// Package types is a best-effort type model for JavaScript and TypeScript
// expressions, meant as an input for lint rules and not as a checker.
//
// Types live at three levels. The global Catalog holds primitives, the
// built-in Array, Promise and RegExp instances, the typeof literal union
// and a few callback shapes. A Resolver adds module-level types for the
// bindings of one file and local types for expressions, each in its own
// Interner, so a ResolvedTypeID carries its Level.
package types
