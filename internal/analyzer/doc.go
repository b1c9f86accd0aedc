// Package analyzer runs lint and assist rules over a syntax tree.
//
// # Rules
//
// A Rule declares its metadata and a Query: the node or token kinds it
// wants to see, and whether it needs the semantic model. Most rules are
// written as a TypedRule, which carries a typed signal and typed options.
// Rules are registered once in a Registry. Registry indexes follow
// (category, group, name), so a RuleSet iterates in dispatch order.
//
// # Settings
//
// ResolveSettings turns a resolved configuration into the enabled RuleSet of
// one file: presets, domains, explicit rule levels, language gating, the
// CLI --only/--skip selectors and the linter/assist switches, in that
// order. Each enabled rule gets its severity, fix override and decoded
// options.
//
// # Driver
//
// Analyze walks the tree twice. The syntax phase feeds the semantic
// builder and collects matches for syntax rules; the semantic phase runs
// rules that asked for the model and the type resolver. Matches are
// processed in pre-order, then by group and name.
//
// Each rule call is guarded: a panic becomes an internal/ruleError
// diagnostic and the rest of the file is still analyzed. Cancellation is
// polled between nodes.
//
// # Suppressions
//
// biome-ignore, biome-ignore-all and biome-ignore-start/-end comments are
// parsed after the syntax walk. A suppressed diagnostic drops its action
// too. Suppressions that silence nothing are reported as
// suppressions/unused.
package analyzer
