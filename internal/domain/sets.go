package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// maxSets bounds the legacy {sets, reps} expansion.
const maxSets = 1000

// SetsBreakdown is the ordered per-set repetition counts of a log. Every entry
// is positive. A nil or empty value means no breakdown was recorded.
type SetsBreakdown []int

// NewSetsBreakdown validates caller-supplied set counts.
func NewSetsBreakdown(reps []int) (SetsBreakdown, error) {
	if len(reps) == 0 {
		return nil, nil
	}
	if len(reps) > maxSets {
		return nil, Invalid("sets", "at most %d sets", maxSets)
	}
	out := make(SetsBreakdown, len(reps))
	for i, r := range reps {
		if r <= 0 {
			return nil, Invalid("sets", "set %d must be positive", i+1)
		}
		out[i] = r
	}
	return out, nil
}

// ParseSetsBreakdown decodes a stored breakdown. It accepts a JSON array of
// positive integers, a JSON string that itself holds such an array, or the
// quick-add object {"sets": n, "reps": m}, which expands to n sets of m.
func ParseSetsBreakdown(raw []byte) (SetsBreakdown, error) {
	return parseSets(raw, 0)
}

func parseSets(raw []byte, depth int) (SetsBreakdown, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		if depth > 0 {
			return nil, errors.New("sets breakdown: nested string encoding")
		}
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("sets breakdown: %w", err)
		}
		return parseSets([]byte(inner), depth+1)
	case '[':
		var reps []int
		if err := json.Unmarshal(raw, &reps); err != nil {
			return nil, fmt.Errorf("sets breakdown: %w", err)
		}
		out, err := NewSetsBreakdown(reps)
		if err != nil {
			return nil, fmt.Errorf("sets breakdown: %w", err)
		}
		return out, nil
	case '{':
		var obj struct {
			Sets int `json:"sets"`
			Reps int `json:"reps"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("sets breakdown: %w", err)
		}
		if obj.Sets <= 0 || obj.Reps <= 0 || obj.Sets > maxSets {
			return nil, fmt.Errorf("sets breakdown: invalid sets=%d reps=%d", obj.Sets, obj.Reps)
		}
		out := make(SetsBreakdown, obj.Sets)
		for i := range out {
			out[i] = obj.Reps
		}
		return out, nil
	}
	return nil, fmt.Errorf("sets breakdown: unexpected %q", raw[0])
}

// DecodeSetsBreakdown is ParseSetsBreakdown with malformed input mapped to an
// explicit empty breakdown.
func DecodeSetsBreakdown(raw []byte) SetsBreakdown {
	s, err := ParseSetsBreakdown(raw)
	if err != nil {
		return SetsBreakdown{}
	}
	return s
}

// Sum returns the total of all sets.
func (s SetsBreakdown) Sum() int {
	total := 0
	for _, r := range s {
		total += r
	}
	return total
}

// Max returns the largest single set, or 0 when empty.
func (s SetsBreakdown) Max() int {
	m := 0
	for _, r := range s {
		if r > m {
			m = r
		}
	}
	return m
}

// Scan implements sql.Scanner for JSON/JSONB columns.
func (s *SetsBreakdown) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
	case []byte:
		*s = DecodeSetsBreakdown(v)
	case string:
		*s = DecodeSetsBreakdown([]byte(v))
	default:
		*s = SetsBreakdown{}
	}
	return nil
}

// Value implements driver.Valuer. An empty breakdown is stored as NULL.
func (s SetsBreakdown) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]int(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON always emits an array so clients never see null.
func (s SetsBreakdown) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(s))
}

// UnmarshalJSON accepts every stored shape; see ParseSetsBreakdown.
func (s *SetsBreakdown) UnmarshalJSON(data []byte) error {
	*s = DecodeSetsBreakdown(data)
	return nil
}
