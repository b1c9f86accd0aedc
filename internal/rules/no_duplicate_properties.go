package rules

import (
	"strings"

	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

type duplicateProperty struct {
	Name  *syntax.Token
	First *syntax.Token
}

var noDuplicateProperties = &analyzer.TypedRule[duplicateProperty, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "1.9.4",
		Name:        "noDuplicateProperties",
		Group:       "suspicious",
		Language:    "css",
		Recommended: true,
		Sources: []analyzer.RuleSource{
			{Tool: "stylelint", ID: "declaration-block-no-duplicate-properties"},
		},
		Docs: "Disallow duplicate properties within declaration blocks.",
	},
	On: analyzer.Ast("declaration"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (duplicateProperty, bool) {
		n := ctx.Node()
		name := n.ChildToken("property_name")
		block := n.Parent()
		if name == nil || block == nil || block.Kind() != "block" {
			return duplicateProperty{}, false
		}
		key := propertyKey(name.Text())
		for _, sib := range block.ChildNodes() {
			if sib == n {
				break
			}
			if sib.Kind() != "declaration" {
				continue
			}
			if prev := sib.ChildToken("property_name"); prev != nil && propertyKey(prev.Text()) == key {
				return duplicateProperty{Name: name, First: prev}, true
			}
		}
		return duplicateProperty{}, false
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, s duplicateProperty) *analyzer.RuleDiagnostic {
		return analyzer.NewRuleDiagnostic(s.Name.Range(), "Duplicate properties can lead to unexpected behavior and may override previous declarations unintentionally.").
			WithNote(s.First.Range(), s.First.Text()+" is already defined here.").
			WithLog("Remove or rename the duplicate property to ensure consistent styling.")
	},
}

// custom properties are case sensitive
func propertyKey(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	return strings.ToLower(name)
}
