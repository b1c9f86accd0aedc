package config

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"

	"weblint/internal/diag"
	"weblint/internal/source"
)

// CliOverlay is the configuration layer built from command-line flags. It
// has the highest precedence.
type CliOverlay struct {
	Config      *Configuration
	Provenance  *Provenance
	Diagnostics []diag.Diagnostic
	Document    string
	Digest      [32]byte
}

// CliVirtualPath names the virtual file that holds the overlay document.
const CliVirtualPath = "<cli>"

// ParseCliOverlay turns "path=value" assignments ("formatter.indentWidth=4",
// "linter.rules.style.useConst=off") into a configuration layer. Values
// that look like JSON literals are used verbatim, anything else becomes a
// string. Malformed assignments are returned as errors.
func ParseCliOverlay(sets []string, files *source.FileSet, catalog RuleCatalog) (*CliOverlay, error) {
	doc := "{}"
	for _, set := range sets {
		path, value, ok := strings.Cut(set, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --config-set %q: expected path=value", set)
		}
		if _, err := ParseQuery(path); err != nil {
			return nil, fmt.Errorf("invalid --config-set %q: %w", set, err)
		}
		var err error
		if raw, isRaw := jsonLiteral(value); isRaw {
			doc, err = sjson.SetRaw(doc, sjsonPath(path), raw)
		} else {
			doc, err = sjson.Set(doc, sjsonPath(path), value)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid --config-set %q: %w", set, err)
		}
	}
	return newOverlay(doc, files, catalog), nil
}

// CliOverlayFromConfig wraps an already-typed configuration, as produced by
// dedicated flags such as --indent-width.
func CliOverlayFromConfig(cfg *Configuration, files *source.FileSet, catalog RuleCatalog) (*CliOverlay, error) {
	data, err := Serialize(cfg)
	if err != nil {
		return nil, err
	}
	return newOverlay(string(data), files, catalog), nil
}

func newOverlay(doc string, files *source.FileSet, catalog RuleCatalog) *CliOverlay {
	id := files.AddVirtual(CliVirtualPath, []byte(doc))
	cfg, prov, diags := Parse([]byte(doc), ParseOptions{Source: CliSource(), File: id, Catalog: catalog})
	return &CliOverlay{
		Config:      cfg,
		Provenance:  prov,
		Diagnostics: diags,
		Document:    doc,
		Digest:      sha256.Sum256([]byte(doc)),
	}
}

// Merge combines two overlays; o wins.
func (c *CliOverlay) Merge(o *CliOverlay, files *source.FileSet, catalog RuleCatalog) *CliOverlay {
	if c == nil {
		return o
	}
	if o == nil {
		return c
	}
	cfg := Clone(c.Config)
	Merge(cfg, o.Config)
	out, err := CliOverlayFromConfig(cfg, files, catalog)
	if err != nil {
		return o
	}
	return out
}

func jsonLiteral(v string) (string, bool) {
	t := strings.TrimSpace(v)
	switch {
	case t == "true" || t == "false" || t == "null":
		return t, true
	case strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") || strings.HasPrefix(t, `"`):
		return t, true
	}
	if _, err := strconv.ParseFloat(t, 64); err == nil {
		return t, true
	}
	return "", false
}

// sjsonPath converts "overrides[0].linter" to sjson's "overrides.0.linter".
func sjsonPath(q string) string {
	q = strings.ReplaceAll(q, "[", ".")
	return strings.ReplaceAll(q, "]", "")
}
