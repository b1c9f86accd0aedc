package diag

import "fmt"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevHint Severity = iota
	SevInfo
	SevWarning
	SevError
	// SevFatal is reserved for failures that stop the analysis of a file.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevHint:
		return "hint"
	case SevInfo:
		return "info"
	case SevWarning:
		return "warn"
	case SevError:
		return "error"
	case SevFatal:
		return "fatal"
	}
	return "unknown"
}

// ParseSeverity accepts the spellings used in configuration files and on the CLI.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "hint":
		return SevHint, nil
	case "info", "information":
		return SevInfo, nil
	case "warn", "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	case "fatal":
		return SevFatal, nil
	}
	return SevError, fmt.Errorf("invalid severity %q (expected: hint|info|warn|error|fatal)", s)
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
