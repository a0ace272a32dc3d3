package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	dErrors "stammdaten/pkg/domain-errors"
	s "stammdaten/pkg/string"
)

// TaxId is the German personal tax identifier (Steuerliche
// Identifikationsnummer): an eleven-digit number. Only the digit count is
// enforced; the official structure rules beyond that are not modeled.
type TaxId uint64

const (
	minTaxId TaxId = 10_000_000_000
	maxTaxId TaxId = 99_999_999_999
)

// NewTaxId validates the numeric form.
func NewTaxId(value uint64) (TaxId, error) {
	id := TaxId(value)
	if id < minTaxId || id > maxTaxId {
		return 0, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("tax ID must have exactly 11 digits: %d", value))
	}
	return id, nil
}

// ParseTaxId validates the textual form. Whitespace anywhere in the input is
// tolerated, so grouped renderings like "12 123 456 789" parse fine.
func ParseTaxId(value string) (TaxId, error) {
	clean := s.StripSpace(value)
	number, err := strconv.ParseUint(clean, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid tax ID: %q", value))
	}
	return NewTaxId(number)
}

// Uint64 returns the numeric value.
func (id TaxId) Uint64() uint64 {
	return uint64(id)
}

// String renders the bare digit string without grouping.
func (id TaxId) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON persists the numeric form.
func (id TaxId) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(id))
}

// UnmarshalJSON re-validates the persisted numeric form on load.
func (id *TaxId) UnmarshalJSON(data []byte) error {
	var raw uint64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewTaxId(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
