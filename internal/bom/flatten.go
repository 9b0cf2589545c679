package bom

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FlattenResult separates rows that expanded cleanly from rows that need a
// human decision. Ambiguity is an expected output channel, not an error.
type FlattenResult struct {
	Flattened []Component          `json:"flattened"`
	Ambiguous []AmbiguousComponent `json:"ambiguous"`
}

// Flatten expands each row into one component per listed designator.
//
// Rows whose designator cell is blank are skipped outright. A row is
// parked as ambiguous instead of expanded when any recognized quantity
// column carries a numeric value strictly greater than 1 — even when the
// designator token count happens to equal that quantity, since a quantity
// listed against several designators still needs the user to say whether
// it means "one each" or "this many of each". Everything else expands:
// one shallow copy of the row per designator token, each with a fresh
// unique id, in token order within the row and row order across the call.
func Flatten(rows []RawRow, headers []string, project, designatorColumn string) FlattenResult {
	var res FlattenResult
	if len(rows) == 0 || len(headers) == 0 || project == "" || designatorColumn == "" {
		return res
	}

	qtyColumn, hasQty := quantityColumn(headers)

	for _, row := range rows {
		designators := strings.TrimSpace(row[designatorColumn])
		if designators == "" {
			continue
		}

		tokens := SplitDesignators(designators)
		if len(tokens) == 0 {
			continue
		}

		if hasQty {
			if qty, ok := parseQuantity(row[qtyColumn]); ok && qty > 1 {
				res.Ambiguous = append(res.Ambiguous, AmbiguousComponent{
					Component:        newComponent(project, row),
					Candidates:       tokens,
					OriginalQuantity: strings.TrimSpace(row[qtyColumn]),
					QuantityColumn:   qtyColumn,
				})
				continue
			}
		}

		for _, token := range tokens {
			comp := newComponent(project, row)
			setDesignator(comp.Fields, designatorColumn, token)
			res.Flattened = append(res.Flattened, comp)
		}
	}

	return res
}

// SplitDesignators tokenizes a designator cell. Commas, semicolons, and
// whitespace all separate tokens and a run of any mix of them counts as
// one separator, so "R1, R2 R3; R4" yields four tokens.
func SplitDesignators(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', ';', ' ', '\t':
			return true
		}
		return false
	})
}

// quantityColumn returns the first header recognized as a quantity column.
func quantityColumn(headers []string) (string, bool) {
	for _, alias := range QuantityAliases {
		for _, h := range headers {
			if h == alias {
				return h, true
			}
		}
	}
	return "", false
}

// parseQuantity reads a quantity cell as a number. Non-numeric or empty
// cells do not trigger ambiguity.
func parseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return q, true
}

// newComponent copies a row into a fresh component with a unique id.
func newComponent(project string, row RawRow) Component {
	fields := make(map[string]string, len(row)+1)
	for k, v := range row {
		fields[k] = v
	}
	return Component{
		ID:      newID(),
		Project: project,
		Fields:  fields,
	}
}

// newID mints a globally unique record id. UUIDs rather than timestamps:
// flattening one row can mint many ids in the same millisecond.
func newID() string {
	return uuid.NewString()
}

// setDesignator writes the expanded designator token onto a copied row,
// mirroring it into the source column and any alias fields the copy
// already carries so no stale multi-designator string survives.
func setDesignator(fields map[string]string, designatorColumn, token string) {
	fields[FieldDesignator] = token
	if designatorColumn != "" {
		if _, ok := fields[designatorColumn]; ok {
			fields[designatorColumn] = token
		}
	}
	for _, alias := range DesignatorAliases {
		if _, ok := fields[alias]; ok {
			fields[alias] = token
		}
	}
}
