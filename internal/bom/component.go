package bom

import (
	"strings"
	"time"
)

// Canonical field names produced by normalization and assignment.
const (
	FieldDesignator = "Designator"
	FieldQuantity   = "Quantity"
	FieldMPN        = "Mfr. Part #"
	FieldLPN        = "Local_Part_Number"
)

// MPNAliases lists the recognized manufacturer-part-number column names in
// priority order. The first populated field wins when locating a record's
// MPN, and every name in the list is locked once an LPN has been assigned.
var MPNAliases = []string{
	FieldMPN,
	"MPN",
	"Mfr Part #",
	"Manufacturer Part Number",
	"Manufacturer_Part_Number",
	"Mfg Part #",
}

// DesignatorAliases lists source column names that commonly carry the
// designator. They are candidates for designator-column discovery and are
// mirrored when flattening rewrites the designator on a copied row.
var DesignatorAliases = []string{
	"Reference",
	"References",
	"RefDes",
	"Ref",
}

// QuantityAliases lists column names recognized as a quantity during
// ambiguity detection.
var QuantityAliases = []string{
	FieldQuantity,
	"Qty",
	"Qty.",
	"QTY",
	"Count",
}

// Component is one canonical per-designator record. Fields holds the
// normalized column values; ID is unique across the whole store.
type Component struct {
	ID        string            `json:"id"`
	Project   string            `json:"project"`
	Fields    map[string]string `json:"fields"`
	UpdatedAt time.Time         `json:"updatedAt,omitzero"`
}

// Field returns the trimmed value of a field, or "" when absent.
func (c Component) Field(name string) string {
	return strings.TrimSpace(c.Fields[name])
}

// MPN returns the first populated manufacturer-part-number field and its
// column name. ok is false when no recognized alias carries a value.
func (c Component) MPN() (value, column string, ok bool) {
	for _, alias := range MPNAliases {
		if v := c.Field(alias); v != "" {
			return v, alias, true
		}
	}
	return "", "", false
}

// LPN returns the assigned local part number, or "" when none is set.
func (c Component) LPN() string {
	return c.Field(FieldLPN)
}

// Clone returns a deep copy of the component.
func (c Component) Clone() Component {
	out := c
	out.Fields = make(map[string]string, len(c.Fields))
	for k, v := range c.Fields {
		out.Fields[k] = v
	}
	return out
}

// AmbiguousComponent is a row parked during flattening because a quantity
// column claimed more than one unit. The base Component keeps the row
// verbatim; the extra members are the transient resolution markers and are
// never persisted onto a finalized record.
type AmbiguousComponent struct {
	Component
	Candidates       []string `json:"candidates"`
	OriginalQuantity string   `json:"originalQuantity"`
	QuantityColumn   string   `json:"quantityColumn"`
}

// IsMPNField reports whether name is a recognized manufacturer-part-number
// column. Matching ignores case and surrounding whitespace.
func IsMPNField(name string) bool {
	name = strings.TrimSpace(name)
	for _, alias := range MPNAliases {
		if strings.EqualFold(name, alias) {
			return true
		}
	}
	return false
}
