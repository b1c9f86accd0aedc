package analyzer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// MetadataRecord is the wire form of RuleMetadata.
type MetadataRecord struct {
	Name        string         `json:"name" toml:"name"`
	Group       string         `json:"group" toml:"group"`
	Category    string         `json:"category" toml:"category"`
	Language    string         `json:"language" toml:"language"`
	Severity    string         `json:"severity" toml:"severity"`
	Recommended bool           `json:"recommended" toml:"recommended"`
	FixKind     string         `json:"fixKind" toml:"fixKind"`
	Version     string         `json:"version,omitempty" toml:"version,omitempty"`
	Sources     []SourceRecord `json:"sources,omitempty" toml:"sources,omitempty"`
	Domains     []string       `json:"domains,omitempty" toml:"domains,omitempty"`
	Deprecated  string         `json:"deprecated,omitempty" toml:"deprecated,omitempty"`
	Docs        string         `json:"docs,omitempty" toml:"docs,omitempty"`
}

type SourceRecord struct {
	Tool         string `json:"tool" toml:"tool"`
	ID           string `json:"id" toml:"id"`
	Relationship string `json:"relationship" toml:"relationship"`
}

// Record converts metadata to its wire form.
func (m *RuleMetadata) Record() MetadataRecord {
	rec := MetadataRecord{
		Name:        m.Name,
		Group:       m.Group,
		Category:    m.Category.String(),
		Language:    m.Language,
		Severity:    m.DefaultSeverity().String(),
		Recommended: m.Recommended,
		FixKind:     m.Fix.String(),
		Version:     m.Version,
		Domains:     m.Domains.Names(),
		Deprecated:  m.Deprecated,
		Docs:        m.Docs,
	}
	for _, s := range m.Sources {
		rec.Sources = append(rec.Sources, SourceRecord{Tool: s.Tool, ID: s.ID, Relationship: s.Relationship.String()})
	}
	return rec
}

// Records returns the wire form of every rule in registry order.
func (r *Registry) Records() []MetadataRecord {
	out := make([]MetadataRecord, 0, r.Len())
	for i := range r.Len() {
		out = append(out, r.Metadata(i).Record())
	}
	return out
}

// WriteMetadataJSON writes the rule metadata as an indented JSON array.
func WriteMetadataJSON(w io.Writer, reg *Registry) error {
	return WriteRecordsJSON(w, reg.Records())
}

// WriteMetadataTOML writes the rule metadata as an array of [[rule]] tables.
func WriteMetadataTOML(w io.Writer, reg *Registry) error {
	return WriteRecordsTOML(w, reg.Records())
}

// WriteRecordsJSON writes a selection of records as an indented JSON array.
func WriteRecordsJSON(w io.Writer, recs []MetadataRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encode rule metadata: %w", err)
	}
	return nil
}

// WriteRecordsTOML writes a selection of records as [[rule]] tables.
func WriteRecordsTOML(w io.Writer, recs []MetadataRecord) error {
	doc := struct {
		Rules []MetadataRecord `toml:"rule"`
	}{Rules: recs}
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode rule metadata: %w", err)
	}
	return nil
}
