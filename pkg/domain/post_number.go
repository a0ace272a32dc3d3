package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	dErrors "stammdaten/pkg/domain-errors"
	s "stammdaten/pkg/string"
)

// PostNumber is a Deutsche Post registration number: nine digits, rendered
// in blocks of three.
type PostNumber uint32

const (
	minPostNumber PostNumber = 100_000_000
	maxPostNumber PostNumber = 999_999_999
)

// NewPostNumber validates the numeric form.
func NewPostNumber(value uint32) (PostNumber, error) {
	n := PostNumber(value)
	if n < minPostNumber || n > maxPostNumber {
		return 0, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("post number must have exactly 9 digits: %d", value))
	}
	return n, nil
}

// ParsePostNumber validates the textual form; whitespace anywhere in the
// input is tolerated.
func ParsePostNumber(value string) (PostNumber, error) {
	clean := s.StripSpace(value)
	number, err := strconv.ParseUint(clean, 10, 32)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid post number: %q", value))
	}
	return NewPostNumber(uint32(number))
}

// Uint32 returns the numeric value.
func (n PostNumber) Uint32() uint32 {
	return uint32(n)
}

// String renders the canonical grouped form, e.g. "123 456 789".
func (n PostNumber) String() string {
	digits := strconv.FormatUint(uint64(n), 10)
	return fmt.Sprintf("%s %s %s", digits[:3], digits[3:6], digits[6:9])
}

// MarshalJSON persists the canonical grouped form.
func (n PostNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// UnmarshalJSON re-validates the persisted form on load.
func (n *PostNumber) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePostNumber(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
