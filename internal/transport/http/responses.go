package httptransport

import (
	"time"

	"stammdaten/internal/profile/models"
	"stammdaten/internal/workflow"
)

// StateResponse is the snapshot handed to clients after every intent. It
// mirrors the workflow state but renders identifiers in their canonical
// display forms and adds derived facts such as ID card expiry.
type StateResponse struct {
	Phase        string            `json:"phase"`
	Nav          string            `json:"nav"`
	Profile      *ProfileResponse  `json:"profile,omitempty"`
	Edit         *EditResponse     `json:"edit,omitempty"`
	CreateErrors map[string]string `json:"create_errors,omitempty"`
}

type ProfileResponse struct {
	Name                 NameResponse            `json:"name"`
	IdCard               *IdCardResponse         `json:"id_card,omitempty"`
	SocialSecurityNumber *string                 `json:"social_security_number,omitempty"`
	TaxId                *uint64                 `json:"tax_id,omitempty"`
	PostNumber           *string                 `json:"post_number,omitempty"`
	BankAccounts         []BankAccountResponse   `json:"bank_accounts"`
	KeyValueItems        []KeyValueItemResponse  `json:"key_value_items"`
}

type NameResponse struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type IdCardResponse struct {
	CardNumber   string `json:"card_number"`
	ExpiresAfter string `json:"expires_after"`
	HasExpired   bool   `json:"has_expired"`
}

type BankAccountResponse struct {
	Name string `json:"name"`
	IBAN string `json:"iban"`
	URL  string `json:"url,omitempty"`
}

type KeyValueItemResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type EditResponse struct {
	Kind   string            `json:"kind"`
	Values map[string]string `json:"values"`
	Errors map[string]string `json:"errors"`
}

func toStateResponse(state workflow.State, now time.Time) StateResponse {
	out := StateResponse{
		Phase:        string(state.Phase),
		Nav:          string(state.Nav),
		CreateErrors: state.CreateErrors,
	}
	if state.Profile != nil {
		profile := toProfileResponse(*state.Profile, now)
		out.Profile = &profile
	}
	if state.Edit != nil {
		out.Edit = &EditResponse{
			Kind:   string(state.Edit.Kind),
			Values: state.Edit.Draft.Values,
			Errors: state.Edit.Draft.Errors,
		}
	}
	return out
}

func toProfileResponse(p models.Profile, now time.Time) ProfileResponse {
	out := ProfileResponse{
		Name:          NameResponse{First: p.Name.First, Last: p.Name.Last},
		BankAccounts:  make([]BankAccountResponse, 0, len(p.BankAccounts)),
		KeyValueItems: make([]KeyValueItemResponse, 0, len(p.KeyValueItems)),
	}

	if p.IdCard != nil {
		out.IdCard = &IdCardResponse{
			CardNumber:   p.IdCard.CardNumber.String(),
			ExpiresAfter: p.IdCard.ExpiresAfter.Format(workflow.ExpiryDateLayout),
			HasExpired:   p.IdCard.HasExpired(now),
		}
	}
	if p.SocialSecurityNumber != nil {
		rendered := p.SocialSecurityNumber.String()
		out.SocialSecurityNumber = &rendered
	}
	if p.TaxId != nil {
		value := p.TaxId.Uint64()
		out.TaxId = &value
	}
	if p.PostNumber != nil {
		rendered := p.PostNumber.String()
		out.PostNumber = &rendered
	}

	for _, account := range p.BankAccounts {
		out.BankAccounts = append(out.BankAccounts, BankAccountResponse{
			Name: account.Name,
			IBAN: account.IBAN,
			URL:  account.URL,
		})
	}
	for _, item := range p.KeyValueItems {
		out.KeyValueItems = append(out.KeyValueItems, KeyValueItemResponse{
			Key:   item.Key,
			Value: item.Value,
		})
	}
	return out
}
