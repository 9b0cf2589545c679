package lpn

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
)

const (
	// DefaultPrefix is the project prefix used when none is configured.
	DefaultPrefix = "LPN"

	// MaxSequence is the highest sequence number the 5-digit field can
	// carry. Reservation past it fails with ErrSequenceExhausted.
	MaxSequence = 99999

	// emptyDigest is the defined digest of an empty MPN. Validation
	// rejects empty MPNs before assembly, but the digest function stays
	// total.
	emptyDigest = "000000"
)

var (
	// ErrMissingMPN means no recognized manufacturer-part-number field
	// is populated on the record.
	ErrMissingMPN = errors.New("lpn: record has no manufacturer part number")

	// ErrAlreadyAssigned means the record already carries an LPN.
	ErrAlreadyAssigned = errors.New("lpn: record already has a local part number")

	// ErrSequenceExhausted means the shared counter has reached
	// MaxSequence.
	ErrSequenceExhausted = errors.New("lpn: sequence space exhausted")
)

// NormalizeMPN trims surrounding whitespace and case-folds an MPN so that
// equivalent spellings digest identically.
func NormalizeMPN(mpn string) string {
	return strings.ToUpper(strings.TrimSpace(mpn))
}

// Digest returns the 6-character uppercase hexadecimal digest of an MPN.
// The digest is a pure function of NormalizeMPN(mpn); collision resistance
// beyond 24 bits is not a goal, since the sequence part already makes the
// full identifier unique.
func Digest(mpn string) string {
	normalized := NormalizeMPN(mpn)
	if normalized == "" {
		return emptyDigest
	}
	h := fnv.New32a()
	h.Write([]byte(normalized))
	return fmt.Sprintf("%06X", h.Sum32()&0xFFFFFF)
}

// FormatSequence renders a reserved sequence as the zero-padded 5-digit
// field of an LPN.
func FormatSequence(seq int) (string, error) {
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("%w: sequence %d outside 1..%d", ErrSequenceExhausted, seq, MaxSequence)
	}
	return fmt.Sprintf("%05d", seq), nil
}

// Format assembles the full identifier from prefix, sequence, and MPN.
func Format(prefix string, seq int, mpn string) (string, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	seqField, err := FormatSequence(seq)
	if err != nil {
		return "", err
	}
	return prefix + "-" + seqField + "-" + Digest(mpn), nil
}
