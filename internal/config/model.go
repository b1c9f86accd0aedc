package config

// Configuration mirrors biome.json. Every field is optional: nil pointers,
// nil slices and nil maps mean "not set" and never erase a lower layer.
type Configuration struct {
	Schema     *string                 `json:"$schema"`
	Root       *bool                   `json:"root"`
	Extends    []string                `json:"extends"`
	Files      *FilesConfiguration     `json:"files"`
	Vcs        *VcsConfiguration       `json:"vcs"`
	Formatter  *FormatterConfiguration `json:"formatter"`
	Linter     *LinterConfiguration    `json:"linter"`
	Assist     *AssistConfiguration    `json:"assist"`
	JavaScript *JsConfiguration        `json:"javascript"`
	TypeScript *TsConfiguration        `json:"typescript"`
	Json       *JsonConfiguration      `json:"json"`
	Css        *CssConfiguration       `json:"css"`
	Graphql    *GraphqlConfiguration   `json:"graphql"`
	Html       *HtmlConfiguration      `json:"html"`
	Overrides  []OverridePattern       `json:"overrides"`
}

type FilesConfiguration struct {
	Includes      []string `json:"includes"`
	IgnoreUnknown *bool    `json:"ignoreUnknown"`
	MaxSize       *uint64  `json:"maxSize" bound:"1,2147483648"`
}

type VcsConfiguration struct {
	Enabled       *bool          `json:"enabled"`
	ClientKind    *VcsClientKind `json:"clientKind"`
	UseIgnoreFile *bool          `json:"useIgnoreFile"`
	Root          *string        `json:"root"`
	DefaultBranch *string        `json:"defaultBranch"`
}

type FormatterConfiguration struct {
	Enabled           *bool              `json:"enabled"`
	FormatWithErrors  *bool              `json:"formatWithErrors"`
	IndentStyle       *IndentStyle       `json:"indentStyle"`
	IndentWidth       *uint8             `json:"indentWidth" bound:"0,24"`
	LineEnding        *LineEnding        `json:"lineEnding"`
	LineWidth         *uint16            `json:"lineWidth" bound:"1,320"`
	AttributePosition *AttributePosition `json:"attributePosition"`
	Includes          []string           `json:"includes"`
}

type LinterConfiguration struct {
	Enabled  *bool    `json:"enabled"`
	Includes []string `json:"includes"`
	Domains  Domains  `json:"domains"`
	Rules    *Rules   `json:"rules"`
}

type AssistConfiguration struct {
	Enabled  *bool    `json:"enabled"`
	Includes []string `json:"includes"`
	Actions  *Rules   `json:"actions"`
}

type JsConfiguration struct {
	Globals    StringSet       `json:"globals"`
	JsxRuntime *JsxRuntime     `json:"jsxRuntime"`
	Parser     *JsParser       `json:"parser"`
	Formatter  *JsFormatter    `json:"formatter"`
	Linter     *LanguageLinter `json:"linter"`
}

type JsParser struct {
	UnsafeParameterDecoratorsEnabled *bool `json:"unsafeParameterDecoratorsEnabled"`
}

type JsFormatter struct {
	Enabled        *bool           `json:"enabled"`
	QuoteStyle     *QuoteStyle     `json:"quoteStyle"`
	Semicolons     *Semicolons     `json:"semicolons"`
	TrailingCommas *TrailingCommas `json:"trailingCommas"`
}

// LanguageLinter toggles linting for one language.
type LanguageLinter struct {
	Enabled *bool `json:"enabled"`
}

// LanguageFormatter toggles formatting for one language.
type LanguageFormatter struct {
	Enabled *bool `json:"enabled"`
}

type TsConfiguration struct {
	Formatter *LanguageFormatter `json:"formatter"`
	Linter    *LanguageLinter    `json:"linter"`
}

type JsonConfiguration struct {
	Parser    *JsonParser     `json:"parser"`
	Formatter *JsonFormatter  `json:"formatter"`
	Linter    *LanguageLinter `json:"linter"`
}

type JsonParser struct {
	AllowComments       *bool `json:"allowComments"`
	AllowTrailingCommas *bool `json:"allowTrailingCommas"`
}

type JsonFormatter struct {
	Enabled     *bool  `json:"enabled"`
	IndentWidth *uint8 `json:"indentWidth" bound:"0,24"`
}

type CssConfiguration struct {
	Parser    *CssParser      `json:"parser"`
	Formatter *CssFormatter   `json:"formatter"`
	Linter    *LanguageLinter `json:"linter"`
}

type CssParser struct {
	CssModules             *bool `json:"cssModules"`
	AllowWrongLineComments *bool `json:"allowWrongLineComments"`
}

type CssFormatter struct {
	Enabled    *bool       `json:"enabled"`
	QuoteStyle *QuoteStyle `json:"quoteStyle"`
}

type GraphqlConfiguration struct {
	Formatter *LanguageFormatter `json:"formatter"`
	Linter    *LanguageLinter    `json:"linter"`
}

type HtmlConfiguration struct {
	Formatter *LanguageFormatter `json:"formatter"`
	Linter    *LanguageLinter    `json:"linter"`
}

// OverridePattern applies its sections to the files matched by Includes.
type OverridePattern struct {
	Includes   []string                `json:"includes"`
	Formatter  *FormatterConfiguration `json:"formatter"`
	Linter     *LinterConfiguration    `json:"linter"`
	Assist     *AssistConfiguration    `json:"assist"`
	JavaScript *JsConfiguration        `json:"javascript"`
	Json       *JsonConfiguration      `json:"json"`
	Css        *CssConfiguration       `json:"css"`
	Graphql    *GraphqlConfiguration   `json:"graphql"`
}

// Config file names tried during discovery, in order.
const (
	FileBiomeJSON   = "biome.json"
	FileBiomeJSONC  = "biome.jsonc"
	FilePackageJSON = "package.json"
)

// DefaultMaxSize is files.maxSize when unset.
const DefaultMaxSize = 1024 * 1024

// Defaults returns the packaged default layer.
func Defaults() *Configuration {
	return &Configuration{
		Files: &FilesConfiguration{
			IgnoreUnknown: ptr(false),
			MaxSize:       ptr(uint64(DefaultMaxSize)),
		},
		Vcs: &VcsConfiguration{
			Enabled:       ptr(false),
			UseIgnoreFile: ptr(false),
		},
		Formatter: &FormatterConfiguration{
			Enabled:           ptr(true),
			FormatWithErrors:  ptr(false),
			IndentStyle:       ptr(IndentTab),
			IndentWidth:       ptr(uint8(2)),
			LineEnding:        ptr(LineEndingLf),
			LineWidth:         ptr(uint16(80)),
			AttributePosition: ptr(AttributePosition("auto")),
		},
		Linter: &LinterConfiguration{
			Enabled: ptr(true),
		},
		Assist: &AssistConfiguration{
			Enabled: ptr(true),
		},
		JavaScript: &JsConfiguration{
			JsxRuntime: ptr(JsxTransparent),
		},
	}
}

func ptr[T any](v T) *T { return &v }

// Bool dereferences an optional flag.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// LinterEnabled reports linter.enabled with its default.
func (c *Configuration) LinterEnabled() bool {
	return c.Linter == nil || Bool(c.Linter.Enabled, true)
}

// AssistEnabled reports assist.enabled with its default.
func (c *Configuration) AssistEnabled() bool {
	return c.Assist == nil || Bool(c.Assist.Enabled, true)
}

// IsRoot reports whether discovery stops at this file.
func (c *Configuration) IsRoot() bool {
	return Bool(c.Root, true)
}

// LinterRules returns linter.rules or nil.
func (c *Configuration) LinterRules() *Rules {
	if c.Linter == nil {
		return nil
	}
	return c.Linter.Rules
}

// AssistActions returns assist.actions or nil.
func (c *Configuration) AssistActions() *Rules {
	if c.Assist == nil {
		return nil
	}
	return c.Assist.Actions
}

// DomainModes returns linter.domains or nil.
func (c *Configuration) DomainModes() Domains {
	if c.Linter == nil {
		return nil
	}
	return c.Linter.Domains
}

// Globals returns javascript.globals.
func (c *Configuration) Globals() []string {
	if c.JavaScript == nil {
		return nil
	}
	return c.JavaScript.Globals.Items()
}

// MaxSize returns files.maxSize with its default.
func (c *Configuration) MaxSize() uint64 {
	if c.Files == nil || c.Files.MaxSize == nil {
		return DefaultMaxSize
	}
	return *c.Files.MaxSize
}
