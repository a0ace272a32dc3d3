// Package domain provides the validated value types of the master data
// model. Each type is constructed through a Parse function at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	dErrors "stammdaten/pkg/domain-errors"
	s "stammdaten/pkg/string"
)

// IdCardNumber is the serial number of a German national ID card: exactly
// nine characters over the issuing authority's 26-symbol alphabet. The
// alphabet excludes letters and digits that are easily confused (0/O, 1/I),
// see the BMI serial number scheme.
type IdCardNumber string

const idCardNumberLength = 9

var validIdCardChars = map[rune]bool{
	'C': true, 'F': true, 'G': true, 'H': true, 'J': true, 'K': true,
	'L': true, 'M': true, 'N': true, 'P': true, 'R': true, 'T': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,
	'1': true, '2': true, '3': true, '4': true, '5': true,
	'6': true, '7': true, '8': true, '9': true,
}

// ParseIdCardNumber validates and returns an IdCardNumber. Whitespace is
// stripped before validation. The value has no numeric interpretation; it is
// compared and rendered as text.
func ParseIdCardNumber(value string) (IdCardNumber, error) {
	clean := s.StripSpace(value)
	if len(clean) != idCardNumberLength {
		return "", dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("ID card number must have exactly %d characters: %q", idCardNumberLength, value))
	}
	for _, c := range clean {
		if !validIdCardChars[c] {
			return "", dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("ID card number contains invalid character %q: %q", c, value))
		}
	}
	return IdCardNumber(clean), nil
}

// String returns the canonical text form.
func (n IdCardNumber) String() string {
	return string(n)
}

// UnmarshalJSON validates on load so invalid numbers cannot enter through a
// persisted file.
func (n *IdCardNumber) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseIdCardNumber(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// IdCard pairs the card number with its expiry instant. It is always owned
// by exactly one Profile and never persisted on its own.
type IdCard struct {
	CardNumber   IdCardNumber `json:"card_number"`
	ExpiresAfter time.Time    `json:"expires_after"`
}

// TimeUntilExpiration returns the remaining validity relative to now.
// Negative once the card has expired.
func (c IdCard) TimeUntilExpiration(now time.Time) time.Duration {
	return c.ExpiresAfter.Sub(now)
}

// HasExpired reports whether the card is expired at the given instant.
// A card expiring exactly now counts as expired.
func (c IdCard) HasExpired(now time.Time) bool {
	return !c.ExpiresAfter.After(now)
}
