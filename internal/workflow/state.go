package workflow

import (
	"stammdaten/internal/profile/models"
	dErrors "stammdaten/pkg/domain-errors"
)

// Phase identifies which top-level mode the workflow is in. Exactly one
// phase is active at a time.
type Phase string

const (
	// PhaseUninitialized means no profile exists yet. The only intent
	// accepted in this phase is profile creation.
	PhaseUninitialized Phase = "uninitialized"
	// PhaseViewing means a profile exists and no edit is in flight.
	PhaseViewing Phase = "viewing"
	// PhaseEditing means a profile exists and exactly one edit process
	// is in flight.
	PhaseEditing Phase = "editing"
)

// Nav identifies which section of the profile is in focus. It is pure
// presentation state and never affects which intents are accepted.
type Nav string

const (
	NavHome          Nav = "home"
	NavBankAccounts  Nav = "bank_accounts"
	NavMiscellaneous Nav = "miscellaneous"
)

// ParseNav validates a navigation target received from a client.
func ParseNav(s string) (Nav, error) {
	switch Nav(s) {
	case NavHome, NavBankAccounts, NavMiscellaneous:
		return Nav(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown navigation target: "+s)
}

// EditKind identifies which profile aspect an edit process targets.
type EditKind string

const (
	EditIdCard               EditKind = "id_card"
	EditSocialSecurityNumber EditKind = "social_security_number"
	EditTaxId                EditKind = "tax_id"
	EditPostNumber           EditKind = "post_number"
	EditBankAccount          EditKind = "bank_account"
	EditKeyValueItem         EditKind = "key_value_item"
)

// ParseEditKind validates an edit kind received from a client.
func ParseEditKind(s string) (EditKind, error) {
	switch EditKind(s) {
	case EditIdCard, EditSocialSecurityNumber, EditTaxId, EditPostNumber,
		EditBankAccount, EditKeyValueItem:
		return EditKind(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown edit kind: "+s)
}

// ClearField identifies an optional identifier that can be removed from
// the profile directly, without an edit process.
type ClearField string

const (
	ClearIdCard               ClearField = "id_card"
	ClearSocialSecurityNumber ClearField = "social_security_number"
	ClearTaxId                ClearField = "tax_id"
	ClearPostNumber           ClearField = "post_number"
)

// ParseClearField validates a clearable field name received from a client.
func ParseClearField(s string) (ClearField, error) {
	switch ClearField(s) {
	case ClearIdCard, ClearSocialSecurityNumber, ClearTaxId, ClearPostNumber:
		return ClearField(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "field cannot be cleared: "+s)
}

// Field keys used in draft values and per-field validation errors. Single
// value kinds use FieldValue as their only key.
const (
	FieldValue        = "value"
	FieldCardNumber   = "card_number"
	FieldExpiresAfter = "expires_after"
	FieldName         = "name"
	FieldIBAN         = "iban"
	FieldURL          = "url"
	FieldKey          = "key"
	FieldFirst        = "first"
	FieldLast         = "last"
)

// Draft holds the raw text a client submitted for an in-flight edit,
// together with any per-field validation errors from the last submission
// attempt. Raw input is kept verbatim so a rejected submission can be
// corrected instead of retyped.
type Draft struct {
	Values map[string]string `json:"values"`
	Errors map[string]string `json:"errors"`
}

func newDraft() Draft {
	return Draft{Values: map[string]string{}, Errors: map[string]string{}}
}

func (d Draft) clone() Draft {
	out := Draft{
		Values: make(map[string]string, len(d.Values)),
		Errors: make(map[string]string, len(d.Errors)),
	}
	for k, v := range d.Values {
		out.Values[k] = v
	}
	for k, v := range d.Errors {
		out.Errors[k] = v
	}
	return out
}

// Edit is the single in-flight edit process, if any.
type Edit struct {
	Kind  EditKind `json:"kind"`
	Draft Draft    `json:"draft"`
}

func (e *Edit) clone() *Edit {
	if e == nil {
		return nil
	}
	return &Edit{Kind: e.Kind, Draft: e.Draft.clone()}
}

// State is a full snapshot of the workflow. Snapshots handed out by the
// service are deep copies; mutating one never affects the live state.
type State struct {
	Phase   Phase           `json:"phase"`
	Nav     Nav             `json:"nav"`
	Profile *models.Profile `json:"profile,omitempty"`
	Edit    *Edit           `json:"edit,omitempty"`
	// CreateErrors carries per-field validation errors from the last
	// rejected profile creation attempt. Only populated while
	// uninitialized.
	CreateErrors map[string]string `json:"create_errors,omitempty"`
}

func (s State) clone() State {
	out := State{Phase: s.Phase, Nav: s.Nav, Edit: s.Edit.clone()}
	if s.Profile != nil {
		p := s.Profile.Clone()
		out.Profile = &p
	}
	if s.CreateErrors != nil {
		out.CreateErrors = make(map[string]string, len(s.CreateErrors))
		for k, v := range s.CreateErrors {
			out.CreateErrors[k] = v
		}
	}
	return out
}
