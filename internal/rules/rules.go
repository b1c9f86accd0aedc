// Package rules holds the shipped lint rules and assist actions, one file
// per rule. Rules are stateless values built on analyzer.TypedRule.
package rules

import (
	"sync"

	"weblint/internal/analyzer"
)

// All lists every shipped rule in no particular order; the registry sorts
// them.
func All() []analyzer.Rule {
	return []analyzer.Rule{
		// a11y
		useAltText,
		// correctness
		noUnusedImports,
		noUnusedVariables,
		useJsxKeyInIterable,
		// nursery
		noFloatingPromises,
		// style
		useConst,
		// suspicious
		noDebugger,
		noDoubleEquals,
		noDuplicateProperties,
		noFocusedTests,
		noVar,
		useValidTypeof,
		// assist
		organizeImports,
	}
}

// Registry returns the registry of the shipped rules. It is built on first
// use and shared afterwards.
var Registry = sync.OnceValue(func() *analyzer.Registry {
	return analyzer.NewRegistry(All()...)
})
