package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"weblint/internal/config"
)

// RuleSelector names a group or a single rule, as given to --only and
// --skip: "lint/style/noVar", "style/noVar", "style", "assist/source".
type RuleSelector struct {
	Category RuleCategory
	Group    string
	// Rule is empty when the whole group is selected.
	Rule string
}

func ParseRuleSelector(s string) (RuleSelector, error) {
	sel := RuleSelector{Category: CategoryLint}
	rest := s
	switch {
	case strings.HasPrefix(rest, "lint/"):
		rest = rest[len("lint/"):]
	case strings.HasPrefix(rest, "assist/"):
		sel.Category = CategoryAssist
		rest = rest[len("assist/"):]
	}
	parts := strings.Split(rest, "/")
	if len(parts) > 2 || slices.Contains(parts, "") {
		return RuleSelector{}, fmt.Errorf("invalid rule selector %q", s)
	}
	sel.Group = parts[0]
	if len(parts) == 2 {
		sel.Rule = parts[1]
	}
	return sel, nil
}

func (s RuleSelector) String() string {
	out := s.Category.String() + "/" + s.Group
	if s.Rule != "" {
		out += "/" + s.Rule
	}
	return out
}

// Resolve returns the rules the selector names. Unknown names wrap
// ErrUnknownRule and carry a suggestion when one is close enough.
func (s RuleSelector) Resolve(reg *Registry) (RuleSet, error) {
	groups := groupsOf(s.Category)
	if !slices.Contains(groups, s.Group) {
		return RuleSet{}, fmt.Errorf("%w: group %q%s", ErrUnknownRule, s.Group, hint(s.Group, groups))
	}
	if s.Rule == "" {
		all, _ := reg.Group(s.Category, s.Group)
		return all, nil
	}
	i, ok := reg.Index(s.Category, s.Group, s.Rule)
	if !ok {
		return RuleSet{}, fmt.Errorf("%w: %s%s", ErrUnknownRule, s, hint(s.Rule, reg.RuleNames(s.Category, s.Group)))
	}
	var set RuleSet
	set.Add(i)
	return set, nil
}

func hint(name string, candidates []string) string {
	if best, ok := config.Suggest(name, candidates); ok {
		return fmt.Sprintf(" (did you mean %q?)", best)
	}
	return ""
}
