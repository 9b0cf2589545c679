// Package lpn mints and assigns Local Part Numbers.
//
// An LPN has the fixed shape PREFIX-SSSSS-HHHHHH: a zero-padded decimal
// sequence (1-99999) reserved from a single shared counter, and a
// 6-hex-digit uppercase digest of the manufacturer part number. The digest
// is deterministic for a given MPN regardless of case and surrounding
// whitespace, so the same part always hashes to the same suffix; the
// sequence is shared across all MPNs and strictly increases by one per
// successful reservation, with no reuse of freed slots.
//
// Assignment reuses identifiers: if any stored component already carries
// an LPN for the same normalized MPN, that LPN is copied instead of
// minting a new one. The lookup is a plain read, so two callers racing to
// assign a brand-new identical MPN can each miss the other and mint two
// LPNs for one part. That stale-read window is accepted here; closing it
// needs a uniqueness guard at the store layer. The sequence counter itself
// is reserved through the store's atomic primitive and can never hand the
// same number to two callers.
//
// A store failure after a successful reservation leaves that sequence
// number spent. One lost slot is preferred over any path that could issue
// a duplicate.
package lpn
