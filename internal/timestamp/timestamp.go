// Package timestamp implements the ISO 8601 / RFC 3339 timestamp type
// carried by chain records. Timestamps arrive as free-form text from
// remote, untrusted producers, so the type keeps the original text and
// defers all validation to the point of comparison or explicit conversion.
package timestamp

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Timestamp holds datetime text as received, expected to be in the ISO
// 8601 / RFC 3339 (more restrictive) format. Construction never validates:
// a record must remain displayable and hashable even when its timestamp is
// garbage. Use Instant to validate, Equal/Compare for meaning comparisons
// and SortCompare to arrange collections.
type Timestamp struct {
	raw string
}

// New wraps raw text in a Timestamp without validating it.
func New(text string) Timestamp {
	return Timestamp{raw: text}
}

// Raw returns the original text, unmodified.
func (t Timestamp) Raw() string {
	return t.raw
}

// Instant converts the timestamp to a validated instant. Straight RFC 3339
// input parses in a single pass; anything else goes through the permissive
// pattern, is reassembled into a fully-specified candidate, and the
// candidate is handed back to the same strict parser. The strict parser is
// the single authority on acceptance: it re-checks the calendar and rejects
// offsets such as +25 that the pattern alone cannot rule out. The result is
// recomputed on every call; nothing is cached on the value.
func (t Timestamp) Instant() (Instant, error) {
	if in, ok := parseStrict(t.raw); ok {
		return in, nil
	}
	candidate, ok := extractCandidate(t.raw)
	if !ok {
		return Instant{}, &ParseError{Input: t.raw}
	}
	in, ok := parseStrict(candidate)
	if !ok {
		return Instant{}, &ParseError{Input: t.raw, Candidate: candidate}
	}
	return in, nil
}

// Equal reports whether two timestamps denote the same absolute instant,
// regardless of formatting or offset: "2018-10-11T03:23:38-08:00" equals
// "2018-10-11T11:23:38Z". A timestamp that fails validation is equal to
// nothing, not even to itself, the same way a floating-point NaN compares.
// Callers that need a reflexive relation should use SortCompare.
func (t Timestamp) Equal(u Timestamp) bool {
	a, err := t.Instant()
	if err != nil {
		return false
	}
	b, err := u.Instant()
	if err != nil {
		return false
	}
	return a.Equal(b)
}

// Compare orders two timestamps by absolute instant. The boolean is false
// when either side fails validation; no ordering relation holds then and
// the int must be ignored.
func (t Timestamp) Compare(u Timestamp) (int, bool) {
	a, err := t.Instant()
	if err != nil {
		return 0, false
	}
	b, err := u.Instant()
	if err != nil {
		return 0, false
	}
	return a.Compare(b), true
}

// SortCompare is the total order used to arrange collections: valid
// timestamps order by instant, every invalid timestamp sorts before every
// valid one, and invalid timestamps are equal to each other whatever
// their text. It deliberately disagrees with Equal on invalid values
// (Equal is never true for them) so that sorting stays transitive and
// terminates. The signature matches slices.SortStableFunc.
func (t Timestamp) SortCompare(u Timestamp) int {
	a, errA := t.Instant()
	b, errB := u.Instant()
	switch {
	case errA == nil && errB == nil:
		return a.Compare(b)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return 0
	}
}

// String renders the raw text in quotes.
func (t Timestamp) String() string {
	return `"` + t.raw + `"`
}

// DebugString renders a diagnostic view: the canonical form alone when it
// matches the raw text, "canonical <- raw" when the two differ, and
// "raw -> error" when validation fails.
func (t Timestamp) DebugString() string {
	in, err := t.Instant()
	if err != nil {
		return fmt.Sprintf("Timestamp{%q -> %s}", t.raw, err)
	}
	if canonical := in.RFC3339(); canonical != t.raw {
		return fmt.Sprintf("Timestamp{%q <- %q}", canonical, t.raw)
	}
	return fmt.Sprintf("Timestamp{%q}", t.raw)
}

// MarshalJSON encodes the timestamp as its raw text.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.raw)
}

// UnmarshalJSON accepts any JSON string; validation stays deferred.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t.raw = s
	return nil
}

// Value stores the raw text in a TEXT column.
func (t Timestamp) Value() (driver.Value, error) {
	return t.raw, nil
}

// Scan restores a timestamp from a TEXT column.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.raw = ""
	case string:
		t.raw = v
	case []byte:
		t.raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
	return nil
}

// ParseError is the single error kind produced by timestamp validation. It
// carries the original input and, when the permissive pattern matched but
// the rebuilt candidate failed strict re-validation, the candidate too.
type ParseError struct {
	Input     string
	Candidate string
}

func (e *ParseError) Error() string {
	if e.Candidate != "" {
		return fmt.Sprintf("failed to validate RFC 3339 candidate %q derived from %q", e.Candidate, e.Input)
	}
	return fmt.Sprintf("failed to find ISO 8601 / RFC 3339 timestamp in %q", e.Input)
}
