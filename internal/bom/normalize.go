package bom

import "strings"

// FindDesignatorColumn resolves which source column carries designators.
// The profile's preferred column wins when present in headers; otherwise
// the alternates are checked in list order. ok is false when nothing
// matches (or headers/profile are absent), in which case the caller must
// ask the user to pick a column explicitly.
func FindDesignatorColumn(headers []string, p *ImportProfile) (string, bool) {
	if len(headers) == 0 || p == nil {
		return "", false
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	if p.DesignatorColumn != "" && present[p.DesignatorColumn] {
		return p.DesignatorColumn, true
	}
	for _, alt := range p.AlternateDesignatorColumns {
		if present[alt] {
			return alt, true
		}
	}
	return "", false
}

// NormalizeRow rewrites one row's keys to canonical field names.
//
// The designator cell is copied into the canonical Designator field unless
// a Designator value already exists under that exact name. Every other
// field is rewritten through the profile's alias mappings with
// first-writer-wins semantics: a mapped value never overwrites a canonical
// field that is already populated, which protects a direct canonical
// column from being clobbered by one of its aliases. Unmapped fields pass
// through under their original names. A nil profile degrades to
// pass-through plus the Designator copy.
//
// headers supplies the iteration order; without it the winner between two
// aliases of the same canonical field would depend on map ordering.
func NormalizeRow(row RawRow, headers []string, p *ImportProfile, designatorColumn string) RawRow {
	out := make(RawRow, len(row)+1)

	for _, h := range headers {
		v, present := row[h]
		if !present {
			continue
		}
		if canonical, mapped := p.mappingFor(h); mapped {
			if strings.TrimSpace(out[canonical]) == "" {
				out[canonical] = v
			}
			continue
		}
		if _, taken := out[h]; !taken {
			out[h] = v
		}
	}

	if designatorColumn != "" {
		if strings.TrimSpace(out[FieldDesignator]) == "" {
			out[FieldDesignator] = row[designatorColumn]
		}
	}

	return out
}

// NormalizedHeaders maps a source header list through the profile's alias
// table, preserving order and dropping duplicate canonical names, and
// guarantees the canonical Designator column appears when a designator
// source column was resolved.
func NormalizedHeaders(headers []string, p *ImportProfile, designatorColumn string) []string {
	out := make([]string, 0, len(headers)+1)
	seen := make(map[string]bool, len(headers)+1)

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, h := range headers {
		if canonical, mapped := p.mappingFor(h); mapped {
			add(canonical)
			continue
		}
		add(h)
	}
	if designatorColumn != "" {
		add(FieldDesignator)
	}
	return out
}
