package config

// Enum types are plain strings with a fixed variant list; the decoder
// rejects anything else with configuration/unknownVariant.
type Enum interface {
	Variants() []string
}

type IndentStyle string

const (
	IndentTab   IndentStyle = "tab"
	IndentSpace IndentStyle = "space"
)

func (IndentStyle) Variants() []string { return []string{"tab", "space"} }

type LineEnding string

const (
	LineEndingLf   LineEnding = "lf"
	LineEndingCrlf LineEnding = "crlf"
	LineEndingCr   LineEnding = "cr"
)

func (LineEnding) Variants() []string { return []string{"lf", "crlf", "cr"} }

type AttributePosition string

func (AttributePosition) Variants() []string { return []string{"auto", "multiline"} }

type QuoteStyle string

func (QuoteStyle) Variants() []string { return []string{"double", "single"} }

type Semicolons string

func (Semicolons) Variants() []string { return []string{"always", "asNeeded"} }

type TrailingCommas string

func (TrailingCommas) Variants() []string { return []string{"all", "es5", "none"} }

type JsxRuntime string

const (
	JsxTransparent  JsxRuntime = "transparent"
	JsxReactClassic JsxRuntime = "reactClassic"
)

func (JsxRuntime) Variants() []string { return []string{"transparent", "reactClassic"} }

type VcsClientKind string

func (VcsClientKind) Variants() []string { return []string{"git"} }

// RuleLevel is the severity a rule configuration asks for.
type RuleLevel string

const (
	LevelOff   RuleLevel = "off"
	LevelOn    RuleLevel = "on"
	LevelInfo  RuleLevel = "info"
	LevelWarn  RuleLevel = "warn"
	LevelError RuleLevel = "error"
)

func (RuleLevel) Variants() []string { return []string{"off", "on", "info", "warn", "error"} }

// Enabled reports whether the level turns the rule on.
func (l RuleLevel) Enabled() bool { return l != "" && l != LevelOff }

// FixKind overrides the fix applicability of a rule.
type FixKind string

const (
	FixNone   FixKind = "none"
	FixSafe   FixKind = "safe"
	FixUnsafe FixKind = "unsafe"
)

func (FixKind) Variants() []string { return []string{"none", "safe", "unsafe"} }

// DomainMode selects which rules of a domain run.
type DomainMode string

const (
	DomainAll         DomainMode = "all"
	DomainRecommended DomainMode = "recommended"
	DomainNone        DomainMode = "none"
)

func (DomainMode) Variants() []string { return []string{"all", "recommended", "none"} }

// Domain names accepted as keys of linter.domains.
var DomainNames = []string{"react", "next", "solid", "test"}

// Domains maps a domain name to its mode.
type Domains map[string]DomainMode

func (Domains) AllowedKeys() []string { return DomainNames }
