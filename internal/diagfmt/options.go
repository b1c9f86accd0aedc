package diagfmt

// PathMode selects how file paths are printed. Values match the modes of
// source.File.DisplayPath.
type PathMode string

const (
	// PathModeAuto is relative for files under the base directory.
	PathModeAuto     PathMode = "auto"
	PathModeAbsolute PathMode = "absolute"
	PathModeRelative PathMode = "relative"
	PathModeBasename PathMode = "basename"
)

// PrettyOpts controls the terminal printers.
type PrettyOpts struct {
	Color bool
	// Context is the number of source lines shown around a marked range.
	Context     int8
	PathMode    PathMode
	BaseDir     string
	ShowNotes   bool
	ShowAdvices bool
	Verbose     bool // include diagnostics tagged verbose
}

// JSONOpts controls the JSON report.
type JSONOpts struct {
	IncludePositions bool // line/col next to byte offsets
	PathMode         PathMode
	BaseDir          string
	Max              int // 0 prints everything
	IncludeSource    bool
	Indent           bool
}

// SarifRunMeta fills the tool and invocation objects of a SARIF run.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
}
