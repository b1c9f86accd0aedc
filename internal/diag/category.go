package diag

import "strings"

// Category is a '/'-delimited path such as "lint/correctness/noUnusedVariables".
type Category string

const (
	CatParse Category = "parse"

	CatConfigParse          Category = "configuration/parse"
	CatConfigUnknownKey     Category = "configuration/unknownKey"
	CatConfigUnknownVariant Category = "configuration/unknownVariant"
	CatConfigTypeMismatch   Category = "configuration/typeMismatch"
	CatConfigOutOfBound     Category = "configuration/outOfBound"
	CatConfigInvalid        Category = "configuration/invalid"
	CatConfigExtends        Category = "configuration/extends"
	CatConfigExtendsCycle   Category = "configuration/extendsCycle"
	CatConfigDeprecated     Category = "configuration/deprecated"

	CatSuppressionUnused      Category = "suppressions/unused"
	CatSuppressionIncorrect   Category = "suppressions/incorrect"
	CatSuppressionUnknownRule Category = "suppressions/unknownRule"
	CatSuppressionUnknownGrp  Category = "suppressions/unknownGroup"

	CatRuleError     Category = "internal/ruleError"
	CatLimitReached  Category = "internal/limitReached"
	CatFixCapReached Category = "internal/fixCapReached"
	CatIO            Category = "internal/io"
)

var titles = map[Category]string{
	CatParse:                  "Syntax error",
	CatConfigParse:            "Invalid configuration file",
	CatConfigUnknownKey:       "Unknown configuration key",
	CatConfigUnknownVariant:   "Unknown configuration value",
	CatConfigTypeMismatch:     "Configuration type mismatch",
	CatConfigOutOfBound:       "Configuration value out of bound",
	CatConfigInvalid:          "Invalid configuration section",
	CatConfigExtends:          "Cannot resolve extended configuration",
	CatConfigExtendsCycle:     "Cyclic extends chain",
	CatConfigDeprecated:       "Deprecated configuration",
	CatSuppressionUnused:      "Unused suppression",
	CatSuppressionIncorrect:   "Malformed suppression",
	CatSuppressionUnknownRule: "Suppression names an unknown rule",
	CatSuppressionUnknownGrp:  "Suppression names an unknown group",
	CatRuleError:              "Rule failed",
	CatLimitReached:           "Diagnostic limit reached",
	CatFixCapReached:          "Fix iteration cap reached",
	CatIO:                     "I/O failure",
}

// LintCategory builds "lint/<group>/<rule>".
func LintCategory(group, rule string) Category {
	return Category("lint/" + group + "/" + rule)
}

// AssistCategory builds "assist/<group>/<rule>".
func AssistCategory(group, rule string) Category {
	return Category("assist/" + group + "/" + rule)
}

func (c Category) String() string { return string(c) }

// Title returns a short human label for well-known categories.
func (c Category) Title() string {
	if t, ok := titles[c]; ok {
		return t
	}
	return string(c)
}

// Segments splits the category path.
func (c Category) Segments() []string {
	if c == "" {
		return nil
	}
	return strings.Split(string(c), "/")
}

// HasPrefix reports whether prefix matches c segment-wise:
// "lint/correctness" matches "lint/correctness/noFoo" but not "lint/correctnessX".
func (c Category) HasPrefix(prefix Category) bool {
	if prefix == "" {
		return false
	}
	if c == prefix {
		return true
	}
	return strings.HasPrefix(string(c), string(prefix)+"/")
}

// Root returns the first segment ("lint", "assist", "suppressions", ...).
func (c Category) Root() string {
	s := string(c)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}
