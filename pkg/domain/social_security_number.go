package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode"

	dErrors "stammdaten/pkg/domain-errors"
	s "stammdaten/pkg/string"
)

// RegionCode identifies the German pension insurance carrier that issued a
// social security number (Bereichsnummer).
type RegionCode uint8

// regionCarriers is the fixed table of valid carrier codes. A number whose
// first two digits are not in this table is rejected.
var regionCarriers = map[RegionCode]string{
	2:  "Mecklenburg-Vorpommern",
	3:  "Thüringen",
	4:  "Brandenburg",
	8:  "Sachsen-Anhalt",
	9:  "Sachsen",
	10: "Hannover",
	11: "Westfalen",
	12: "Hessen",
	13: "Rheinprovinz",
	14: "Oberbayern",
	15: "Niederbayern-Oberpfalz",
	16: "Rheinland-Pfalz",
	17: "Saarland",
	18: "Ober- und Mittelfranken",
	19: "Hamburg",
	20: "Unterfranken",
	21: "Schwaben",
	23: "Württemberg",
	24: "Baden",
	25: "Berlin",
	26: "Schleswig-Holstein",
	28: "Oldenburg-Bremen",
	29: "Braunschweig",
	38: "Knappschaft-Bahn-See (Bahn)",
	39: "Knappschaft-Bahn-See (Seefahrt)",
	40: "Zentrale Anlagestelle für das Altersvermögen",
	42: "Bund, Mecklenburg-Vorpommern",
	43: "Bund, Thüringen",
	44: "Bund, Brandenburg",
	48: "Bund, Sachsen-Anhalt",
	49: "Bund, Sachsen",
	50: "Bund, Hannover",
	51: "Bund, Westfalen",
	52: "Bund, Hessen",
	53: "Bund, Rheinprovinz",
	54: "Bund, Oberbayern",
	55: "Bund, Niederbayern-Oberpfalz",
	56: "Bund, Rheinland-Pfalz",
	57: "Bund, Saarland",
	58: "Bund, Ober- und Mittelfranken",
	59: "Bund, Hamburg",
	60: "Bund, Unterfranken",
	61: "Bund, Schwaben",
	63: "Bund, Württemberg",
	64: "Bund, Baden",
	65: "Bund, Berlin",
	66: "Bund, Schleswig-Holstein",
	68: "Bund, Oldenburg-Bremen",
	69: "Bund, Braunschweig",
	78: "Bund, Knappschaft-Bahn-See (Bahn)",
	79: "Bund, Knappschaft-Bahn-See (Seefahrt)",
	80: "Knappschaft-Bahn-See (BB, HN, WS, SH)",
	81: "Knappschaft-Bahn-See (HR)",
	82: "Knappschaft-Bahn-See (BW, BR, PS)",
	89: "Knappschaft-Bahn-See (BMV, SA, ST)",
}

// ParseRegionCode validates a two-digit carrier code against the fixed table.
func ParseRegionCode(v string) (RegionCode, error) {
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid region code: %q", v))
	}
	code := RegionCode(n)
	if !code.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown region code: %q", v))
	}
	return code, nil
}

// IsValid checks membership in the carrier table.
func (c RegionCode) IsValid() bool {
	_, ok := regionCarriers[c]
	return ok
}

// CarrierName returns the issuing carrier's name, or "" for invalid codes.
func (c RegionCode) CarrierName() string {
	return regionCarriers[c]
}

func (c RegionCode) String() string {
	return fmt.Sprintf("%02d", uint8(c))
}

// SocialSecurityNumber is a German pension insurance number
// (Versicherungsnummer). The twelve-character payload encodes the issuing
// carrier, the holder's date of birth, the first letter of their birth name,
// a serial number, and a check digit.
//
// The check digit is stored verbatim but NOT validated: the official
// algorithm was never re-derived for this implementation and inventing one
// would reject valid numbers. Known limitation.
type SocialSecurityNumber struct {
	regionCode       RegionCode
	dayOfBirth       uint8
	monthOfBirth     uint8
	yearOfBirth      uint8
	birthNameInitial rune
	serialNumber     uint8
	checkDigit       uint8
}

const ssnLength = 12

// ParseSocialSecurityNumber validates and returns a SocialSecurityNumber.
// All whitespace is stripped first, so any input grouping is accepted; the
// canonical rendering regroups regardless of how the input was spaced.
func ParseSocialSecurityNumber(v string) (SocialSecurityNumber, error) {
	clean := s.StripSpace(v)
	if len(clean) != ssnLength {
		return SocialSecurityNumber{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("social security number has wrong length: %q", v))
	}

	regionCode, err := ParseRegionCode(clean[0:2])
	if err != nil {
		return SocialSecurityNumber{}, err
	}

	day, err := parseSSNDigits(clean[2:4], "day of birth", v)
	if err != nil {
		return SocialSecurityNumber{}, err
	}
	month, err := parseSSNDigits(clean[4:6], "month of birth", v)
	if err != nil {
		return SocialSecurityNumber{}, err
	}
	year, err := parseSSNDigits(clean[6:8], "year of birth", v)
	if err != nil {
		return SocialSecurityNumber{}, err
	}

	initial := rune(clean[8])
	if !unicode.IsLetter(initial) {
		return SocialSecurityNumber{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("invalid birth name letter: %q", v))
	}

	serial, err := parseSSNDigits(clean[9:11], "serial number", v)
	if err != nil {
		return SocialSecurityNumber{}, err
	}
	check, err := parseSSNDigits(clean[11:12], "check digit", v)
	if err != nil {
		return SocialSecurityNumber{}, err
	}

	return SocialSecurityNumber{
		regionCode:       regionCode,
		dayOfBirth:       day,
		monthOfBirth:     month,
		yearOfBirth:      year,
		birthNameInitial: initial,
		serialNumber:     serial,
		checkDigit:       check,
	}, nil
}

func parseSSNDigits(part, label, original string) (uint8, error) {
	n, err := strconv.ParseUint(part, 10, 8)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("invalid %s: %q", label, original))
	}
	return uint8(n), nil
}

// RegionCode returns the issuing carrier code.
func (n SocialSecurityNumber) RegionCode() RegionCode {
	return n.regionCode
}

// String returns the canonical grouped form "RR DDMMYY LSSC". It normalizes
// spacing and is deliberately not the strict inverse of every accepted input.
func (n SocialSecurityNumber) String() string {
	return fmt.Sprintf("%02d %02d%02d%02d %c%02d%d",
		uint8(n.regionCode),
		n.dayOfBirth,
		n.monthOfBirth,
		n.yearOfBirth,
		n.birthNameInitial,
		n.serialNumber,
		n.checkDigit,
	)
}

// MarshalJSON persists the canonical text form.
func (n SocialSecurityNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// UnmarshalJSON re-validates the persisted form on load.
func (n *SocialSecurityNumber) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSocialSecurityNumber(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
