package parts

import (
	"fmt"
	"strings"
)

// NoDesignatorColumnError reports that neither the profile nor an explicit
// override resolved a designator column for the file. Headers carries the
// parsed header list so the caller can present a manual chooser.
type NoDesignatorColumnError struct {
	Headers []string
}

func (e *NoDesignatorColumnError) Error() string {
	return fmt.Sprintf("no designator column found among headers [%s]", strings.Join(e.Headers, ", "))
}

// FieldLockedError reports an attempt to edit a manufacturer-part-number
// field on a record that already carries an LPN.
type FieldLockedError struct {
	Field string
}

func (e *FieldLockedError) Error() string {
	return fmt.Sprintf("field %q is locked by an assigned local part number", e.Field)
}

// InvalidPolicyError reports an unrecognized resolution policy.
type InvalidPolicyError struct {
	ID     string
	Policy string
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid resolution policy %q for record %s", e.Policy, e.ID)
}
