package rules

import (
	"strings"

	"weblint/internal/analyzer"
	"weblint/internal/syntax"
)

// elements that need a text alternative, by tag name
var altTextElements = map[string]bool{"img": true, "area": true}

var altTextAttributes = []string{"alt", "aria-label", "aria-labelledby", "title"}

var useAltText = &analyzer.TypedRule[*syntax.Node, analyzer.NoOptions]{
	Meta: analyzer.RuleMetadata{
		Version:     "2.0.0",
		Name:        "useAltText",
		Group:       "a11y",
		Language:    "html",
		Recommended: true,
		Sources: []analyzer.RuleSource{
			{Tool: "eslint-plugin-jsx-a11y", ID: "alt-text", Relationship: analyzer.Inspired},
		},
		Docs: "Enforce that all elements that require alternative text have meaningful information to relay back to the end user.",
	},
	On: analyzer.Ast("start_tag", "self_closing_tag"),
	RunFunc: func(ctx *analyzer.RuleContext, _ *analyzer.NoOptions) (*syntax.Node, bool) {
		n := ctx.Node()
		tag := n.ChildToken("tag_name")
		if tag == nil || !altTextElements[strings.ToLower(tag.Text())] {
			return nil, false
		}
		for _, attr := range n.ChildNodes() {
			if attr.Kind() != "attribute" {
				continue
			}
			name := attr.ChildToken("attribute_name")
			if name == nil {
				continue
			}
			lower := strings.ToLower(name.Text())
			for _, want := range altTextAttributes {
				if lower == want {
					return nil, false
				}
			}
			// aria-hidden elements are skipped by assistive technology
			if lower == "aria-hidden" && attributeValue(attr) != "false" {
				return nil, false
			}
		}
		return n, true
	},
	DiagnosticFunc: func(_ *analyzer.RuleContext, n *syntax.Node) *analyzer.RuleDiagnostic {
		tag := n.ChildToken("tag_name").Text()
		return analyzer.NewRuleDiagnostic(n.Range(), "Provide a text alternative through the alt, aria-label, or aria-labelledby attribute.").
			WithLog("Meaningful alternative text on <" + strings.ToLower(tag) + "> elements helps users relying on screen readers to understand content's purpose within a page.").
			WithLog("If the image is decorative and does not convey information, use an empty alt attribute.")
	},
}

func attributeValue(attr *syntax.Node) string {
	if tok := attr.ChildToken("attribute_value"); tok != nil {
		return tok.Text()
	}
	if q := attr.FirstChildOfKind("quoted_attribute_value"); q != nil {
		if tok := q.ChildToken("attribute_value"); tok != nil {
			return tok.Text()
		}
		return ""
	}
	return "true"
}
