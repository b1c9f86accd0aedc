// Package config loads and resolves the project configuration.
//
// # Documents
//
// A configuration is read from biome.json, biome.jsonc or the "biome" key
// of package.json. Parse decodes one document into Configuration by
// reflection over the json tags. Every recognized value is also recorded in
// a Provenance table together with its byte range and the layer it came
// from, so that "formatter.indentWidth" can be traced back to a file
// location after merging.
//
// Decoding never fails as a whole: unknown keys and variants, type
// mismatches and out-of-bound numbers become diagnostics and leave the
// corresponding field unset.
//
// # Layers
//
// Loader.Load merges, in order: the defaults, the parents of non-root
// files, the extends list, the file itself. Loaded.Resolve then applies the
// overrides whose includes match a path, followed by the CLI overlay. A
// later layer wins for scalars and arrays; objects merge key-wise.
//
// # Rules
//
// Rule settings are either a plain level ("warn") or an object with level,
// fix and options. The group and rule names are checked against a
// RuleCatalog, which the analyzer registry implements.
package config
