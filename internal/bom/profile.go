package bom

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FieldMapping rewrites one source column name to a canonical field name.
// Mappings form an ordered association list: the first entry matching a
// source header wins, and a mapping never overwrites a canonical field
// that is already populated.
type FieldMapping struct {
	From string `toml:"from" json:"from"`
	To   string `toml:"to" json:"to"`
}

// DesignatorMeaning attaches a human label to a designator prefix. It is
// informational only; nothing in the pipeline branches on it.
type DesignatorMeaning struct {
	Prefix string `toml:"prefix" json:"prefix"`
	Label  string `toml:"label" json:"label"`
}

// ImportProfile configures how a source file's columns are interpreted.
type ImportProfile struct {
	// DesignatorColumn is the preferred source column for designators.
	DesignatorColumn string `toml:"designator_column" json:"designatorColumn"`

	// AlternateDesignatorColumns are checked in order when the preferred
	// column is absent from the file.
	AlternateDesignatorColumns []string `toml:"alternate_designator_columns" json:"alternateDesignatorColumns"`

	// FieldMappings rewrite source header variants to canonical names.
	FieldMappings []FieldMapping `toml:"field_mappings" json:"fieldMappings"`

	// KicadSyncParams are the canonical fields cross-referenced with
	// schematic-capture tools, in sync order. Consumed downstream.
	KicadSyncParams []string `toml:"kicad_sync_params" json:"kicadSyncParams"`

	// DesignatorMeanings document what each designator prefix denotes.
	DesignatorMeanings []DesignatorMeaning `toml:"designator_meanings" json:"designatorMeanings"`
}

// DefaultProfile returns the profile used when a caller supplies none.
// It covers the column variants produced by the common schematic-capture
// BOM exporters.
func DefaultProfile() *ImportProfile {
	return &ImportProfile{
		DesignatorColumn:           FieldDesignator,
		AlternateDesignatorColumns: append([]string(nil), DesignatorAliases...),
		FieldMappings: []FieldMapping{
			{From: "Qty", To: FieldQuantity},
			{From: "Qty.", To: FieldQuantity},
			{From: "QTY", To: FieldQuantity},
			{From: "Count", To: FieldQuantity},
			{From: "MPN", To: FieldMPN},
			{From: "Mfr Part #", To: FieldMPN},
			{From: "Manufacturer Part Number", To: FieldMPN},
			{From: "Mfg Part #", To: FieldMPN},
			{From: "Manufacturer", To: "Mfr."},
			{From: "Mfr", To: "Mfr."},
			{From: "Comment", To: "Value"},
			{From: "Val", To: "Value"},
			{From: "Package", To: "Footprint"},
		},
		KicadSyncParams: []string{
			FieldDesignator,
			"Value",
			"Footprint",
			FieldMPN,
			FieldLPN,
		},
		DesignatorMeanings: []DesignatorMeaning{
			{Prefix: "R", Label: "Resistor"},
			{Prefix: "C", Label: "Capacitor"},
			{Prefix: "L", Label: "Inductor"},
			{Prefix: "D", Label: "Diode"},
			{Prefix: "Q", Label: "Transistor"},
			{Prefix: "U", Label: "Integrated Circuit"},
			{Prefix: "J", Label: "Connector"},
			{Prefix: "SW", Label: "Switch"},
			{Prefix: "Y", Label: "Crystal / Oscillator"},
			{Prefix: "F", Label: "Fuse"},
			{Prefix: "TP", Label: "Test Point"},
		},
	}
}

// LoadProfile reads an ImportProfile from a TOML file.
func LoadProfile(path string) (*ImportProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p ImportProfile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// mappingFor returns the canonical name for a source header, first match
// wins. ok is false when no mapping covers the header.
func (p *ImportProfile) mappingFor(header string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, m := range p.FieldMappings {
		if m.From == header {
			return m.To, true
		}
	}
	return "", false
}
