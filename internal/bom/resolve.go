package bom

// Policy is the user's decision for one ambiguous row.
type Policy string

const (
	// PolicyFlatten expands the stored candidate designators, one
	// component per token with quantity forced to 1.
	PolicyFlatten Policy = "flatten"

	// PolicyKeep emits the row as a single component exactly as listed.
	PolicyKeep Policy = "keep"

	// PolicySkip drops the row.
	PolicySkip Policy = "skip"
)

// Valid reports whether p is one of the recognized policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyFlatten, PolicyKeep, PolicySkip:
		return true
	}
	return false
}

// ResolveAmbiguous applies per-record policies to rows parked by Flatten.
//
// A record with no resolution entry is treated as skipped. Output order
// follows the input order of pending, with flatten expansions in stored
// candidate order. The transient markers (candidates, original quantity,
// quantity column) never appear on an emitted component: the base
// Component inside each AmbiguousComponent is already marker-free.
func ResolveAmbiguous(pending []AmbiguousComponent, resolutions map[string]Policy) []Component {
	var out []Component

	for _, amb := range pending {
		switch resolutions[amb.ID] {
		case PolicyFlatten:
			qtyColumn := amb.QuantityColumn
			if qtyColumn == "" {
				qtyColumn = FieldQuantity
			}
			for _, token := range amb.Candidates {
				comp := amb.Component.Clone()
				comp.ID = newID()
				setDesignator(comp.Fields, designatorSource(amb.Component), token)
				comp.Fields[qtyColumn] = "1"
				out = append(out, comp)
			}
		case PolicyKeep:
			out = append(out, amb.Component.Clone())
		default:
			// skip, explicit or absent
		}
	}

	return out
}

// designatorSource finds which field on the parked row held the raw
// designator list, so flattening can overwrite it in place.
func designatorSource(c Component) string {
	if _, ok := c.Fields[FieldDesignator]; ok {
		return FieldDesignator
	}
	for _, alias := range DesignatorAliases {
		if _, ok := c.Fields[alias]; ok {
			return alias
		}
	}
	return FieldDesignator
}
