package domain

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GroupCodeAlphabet holds the 32 invite-code symbols. I, O, 0 and 1 are left
// out because they are easy to misread.
const GroupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GroupCodeLength is the fixed length of an invite code.
const GroupCodeLength = 6

// Group is a named collection of profiles sharing an invite code.
type Group struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	GroupTarget *int      `json:"groupTarget"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GroupRepository is the port for group persistence.
type GroupRepository interface {
	// CreateGroup returns ErrGroupCodeTaken when code is already in use.
	CreateGroup(ctx context.Context, name, code string, target *int) (*Group, error)
	GroupByCode(ctx context.Context, code string) (*Group, error)
	GroupByID(ctx context.Context, id uuid.UUID) (*Group, error)
}

// GenerateGroupCode draws a random invite code from r.
// The alphabet has exactly 32 symbols so masking a byte to 5 bits is unbiased.
func GenerateGroupCode(r io.Reader) (string, error) {
	buf := make([]byte, GroupCodeLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("generate group code: %w", err)
	}
	var b strings.Builder
	b.Grow(GroupCodeLength)
	for _, c := range buf {
		b.WriteByte(GroupCodeAlphabet[c&0x1f])
	}
	return b.String(), nil
}

// NormalizeGroupCode upper-cases s and drops anything that is not A-Z or 0-9.
func NormalizeGroupCode(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidGroupCode reports whether code has the right length and only alphabet symbols.
func ValidGroupCode(code string) bool {
	if len(code) != GroupCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(GroupCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
