// Package codec owns the on-disk representation of the profile: a single
// UTF-8 JSON document mirroring the aggregate. Loading is strict — any
// malformed or shape-incompatible payload fails the whole load. There is no
// version field; an incompatible file is indistinguishable from a corrupt
// one and both abort the bootstrap rather than shadow persisted data.
package codec

import (
	"bytes"
	"encoding/json"

	"stammdaten/internal/profile/models"
	dErrors "stammdaten/pkg/domain-errors"
)

// Encode serializes a structurally valid profile into the persisted form.
// It is total for well-formed values; a failure here is fatal for the save
// attempt that triggered it.
func Encode(profile models.Profile) ([]byte, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode profile")
	}
	return data, nil
}

// Decode parses and re-validates a persisted profile document. Unknown
// fields fail the load; the value types re-run their constructors during
// unmarshaling, so a tampered or incompatible file cannot produce an
// invalid aggregate.
func Decode(data []byte) (models.Profile, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var profile models.Profile
	if err := dec.Decode(&profile); err != nil {
		return models.Profile{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed profile document")
	}

	// Older files predate the key/value list; absent means empty.
	if profile.KeyValueItems == nil {
		profile.KeyValueItems = []models.KeyValueItem{}
	}
	if profile.BankAccounts == nil {
		profile.BankAccounts = []models.BankAccount{}
	}
	return profile, nil
}
