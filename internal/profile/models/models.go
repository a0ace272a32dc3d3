// Package models holds the Profile aggregate: the complete record kept for
// one person. The aggregate owns at most one of each validated identifier
// and two insertion-ordered lists.
package models

import (
	"stammdaten/pkg/domain"
)

// Name is the owner's name pair.
type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// BankAccount references one account by display name and IBAN. Fields are
// free-form at construction; non-empty name/IBAN is enforced at the edit
// boundary, not here.
type BankAccount struct {
	Name string `json:"name"`
	IBAN string `json:"iban"`
	URL  string `json:"url,omitempty"`
}

// KeyValueItem is the free-form escape hatch for attributes the model does
// not special-case.
type KeyValueItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Profile is the aggregate root. Optional identifiers are nil when unset;
// the lists preserve insertion order.
type Profile struct {
	Name                 Name                         `json:"name"`
	IdCard               *domain.IdCard               `json:"id_card,omitempty"`
	SocialSecurityNumber *domain.SocialSecurityNumber `json:"social_security_number,omitempty"`
	TaxId                *domain.TaxId                `json:"tax_id,omitempty"`
	PostNumber           *domain.PostNumber           `json:"post_number,omitempty"`
	BankAccounts         []BankAccount                `json:"bank_accounts"`
	KeyValueItems        []KeyValueItem               `json:"key_value_items"`
}

// New creates a fresh profile holding only the owner's name. All optional
// identifiers start empty; every later mutation goes through the edit
// workflow field by field.
func New(firstName, lastName string) Profile {
	return Profile{
		Name:          Name{First: firstName, Last: lastName},
		BankAccounts:  []BankAccount{},
		KeyValueItems: []KeyValueItem{},
	}
}

// Clone returns a deep copy. State transitions hand exactly one copy from
// the concluding edit to the next viewing state, never an aliased one.
func (p Profile) Clone() Profile {
	out := p
	if p.IdCard != nil {
		card := *p.IdCard
		out.IdCard = &card
	}
	if p.SocialSecurityNumber != nil {
		ssn := *p.SocialSecurityNumber
		out.SocialSecurityNumber = &ssn
	}
	if p.TaxId != nil {
		taxId := *p.TaxId
		out.TaxId = &taxId
	}
	if p.PostNumber != nil {
		postNumber := *p.PostNumber
		out.PostNumber = &postNumber
	}
	out.BankAccounts = append([]BankAccount{}, p.BankAccounts...)
	out.KeyValueItems = append([]KeyValueItem{}, p.KeyValueItems...)
	return out
}

// SetIdCard sets or replaces the ID card.
func (p *Profile) SetIdCard(card domain.IdCard) {
	p.IdCard = &card
}

// ClearIdCard removes the ID card if present.
func (p *Profile) ClearIdCard() {
	p.IdCard = nil
}

// SetSocialSecurityNumber sets or replaces the social security number.
func (p *Profile) SetSocialSecurityNumber(number domain.SocialSecurityNumber) {
	p.SocialSecurityNumber = &number
}

// ClearSocialSecurityNumber removes the social security number if present.
func (p *Profile) ClearSocialSecurityNumber() {
	p.SocialSecurityNumber = nil
}

// SetTaxId sets or replaces the tax ID.
func (p *Profile) SetTaxId(id domain.TaxId) {
	p.TaxId = &id
}

// ClearTaxId removes the tax ID if present.
func (p *Profile) ClearTaxId() {
	p.TaxId = nil
}

// SetPostNumber sets or replaces the post number.
func (p *Profile) SetPostNumber(number domain.PostNumber) {
	p.PostNumber = &number
}

// ClearPostNumber removes the post number if present.
func (p *Profile) ClearPostNumber() {
	p.PostNumber = nil
}

// AddBankAccount appends an account, keeping insertion order. Uniqueness by
// IBAN is deliberately NOT enforced on insert, matching the historical
// behavior; removal is keyed by IBAN and drops every match.
func (p *Profile) AddBankAccount(account BankAccount) {
	p.BankAccounts = append(p.BankAccounts, account)
}

// RemoveBankAccount removes all accounts with the given IBAN and reports
// whether any were removed.
func (p *Profile) RemoveBankAccount(iban string) bool {
	kept := p.BankAccounts[:0]
	removed := false
	for _, account := range p.BankAccounts {
		if account.IBAN == iban {
			removed = true
			continue
		}
		kept = append(kept, account)
	}
	p.BankAccounts = kept
	return removed
}

// AddKeyValueItem appends an item, keeping insertion order.
func (p *Profile) AddKeyValueItem(item KeyValueItem) {
	p.KeyValueItems = append(p.KeyValueItems, item)
}

// RemoveKeyValueItem removes all items with the given key and reports
// whether any were removed.
func (p *Profile) RemoveKeyValueItem(key string) bool {
	kept := p.KeyValueItems[:0]
	removed := false
	for _, item := range p.KeyValueItems {
		if item.Key == key {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	p.KeyValueItems = kept
	return removed
}
