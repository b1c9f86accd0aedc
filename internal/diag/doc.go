// Package diag defines the diagnostic model shared by the configuration
// loader, the parsers, the analyzer and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Category – '/'-delimited path ("lint/correctness/noUnusedVariables",
//     "configuration/unknownKey", "suppressions/unused"). Suppression
//     comments match categories segment-wise through Category.HasPrefix.
//   - Severity – Hint, Info, Warn, Error, Fatal.
//   - Primary span – the source.Span the finding points at.
//   - Notes and Advices – secondary context: log lines, code frames, diffs,
//     lists of allowed values, commands to run.
//   - Tags – Verbose, Internal, Fixable, Deprecated, Unnecessary.
//
// Code actions are not part of this package: they live next to the rules in
// internal/analyzer, which owns the syntax mutations they carry.
//
// # Emitting diagnostics
//
// The configuration decoder reports through a Reporter, usually a *Bag,
// with ReportError/ReportWarning. Everything else builds values with
// New/NewError and the With* helpers. SortDiagnostics gives the ordering
// every printer uses; Unique drops repeats before the summary is counted.
//
// # Consumers
//
//   - internal/diagfmt renders diagnostics (pretty, JSON wire form, SARIF,
//     golden lines for snapshot tests).
//   - internal/workspace caches them per file.
//   - cmd/weblint maps them to exit codes.
package diag
