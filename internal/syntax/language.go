package syntax

import (
	"path/filepath"
	"strings"
)

// Language identifies the surface language of a file.
type Language uint8

const (
	LangUnknown Language = iota
	LangJavaScript
	LangJSX
	LangTypeScript
	LangTSX
	LangCSS
	LangJSON
	LangGraphQL
	LangHTML
)

var languageNames = [...]string{
	LangUnknown:    "unknown",
	LangJavaScript: "javascript",
	LangJSX:        "jsx",
	LangTypeScript: "typescript",
	LangTSX:        "tsx",
	LangCSS:        "css",
	LangJSON:       "json",
	LangGraphQL:    "graphql",
	LangHTML:       "html",
}

func (l Language) String() string {
	if int(l) < len(languageNames) {
		return languageNames[l]
	}
	return "unknown"
}

// IsJSFamily reports JS, JSX, TS and TSX.
func (l Language) IsJSFamily() bool {
	return l >= LangJavaScript && l <= LangTSX
}

// Set returns the singleton set of l.
func (l Language) Set() LanguageSet {
	if l == LangUnknown {
		return 0
	}
	return LanguageSet(1) << l
}

// LanguageSet is a bitset over Language.
type LanguageSet uint16

const (
	FamilyJS      = LanguageSet(1<<LangJavaScript | 1<<LangJSX | 1<<LangTypeScript | 1<<LangTSX)
	FamilyJSX     = LanguageSet(1<<LangJSX | 1<<LangTSX)
	FamilyTS      = LanguageSet(1<<LangTypeScript | 1<<LangTSX)
	FamilyCSS     = LanguageSet(1 << LangCSS)
	FamilyJSON    = LanguageSet(1 << LangJSON)
	FamilyGraphQL = LanguageSet(1 << LangGraphQL)
	FamilyHTML    = LanguageSet(1 << LangHTML)
)

func (s LanguageSet) Has(l Language) bool { return s&l.Set() != 0 }
func (s LanguageSet) Intersects(o LanguageSet) bool { return s&o != 0 }

// ParseFamily maps a rule language tag to its family set.
func ParseFamily(tag string) (LanguageSet, bool) {
	switch tag {
	case "js", "javascript":
		return FamilyJS, true
	case "jsx":
		return FamilyJSX, true
	case "ts", "typescript":
		return FamilyTS, true
	case "css":
		return FamilyCSS, true
	case "json":
		return FamilyJSON, true
	case "graphql":
		return FamilyGraphQL, true
	case "html":
		return FamilyHTML, true
	}
	return 0, false
}

// LanguageFromPath maps a file name to its language by extension.
func LanguageFromPath(path string) Language {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	if strings.HasSuffix(strings.ToLower(base), ".d.ts") {
		return LangTypeScript
	}
	switch ext {
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".jsx":
		return LangJSX
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".css":
		return LangCSS
	case ".json", ".jsonc":
		return LangJSON
	case ".graphql", ".gql":
		return LangGraphQL
	case ".html", ".htm":
		return LangHTML
	}
	return LangUnknown
}
