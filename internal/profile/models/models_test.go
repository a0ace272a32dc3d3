package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"stammdaten/pkg/domain"
)

type ProfileSuite struct {
	suite.Suite
}

func TestProfileSuite(t *testing.T) {
	suite.Run(t, new(ProfileSuite))
}

func (s *ProfileSuite) TestNew() {
	p := New("Max", "Mustermann")

	s.Equal(Name{First: "Max", Last: "Mustermann"}, p.Name)
	s.Nil(p.IdCard)
	s.Nil(p.SocialSecurityNumber)
	s.Nil(p.TaxId)
	s.Nil(p.PostNumber)
	s.Empty(p.BankAccounts)
	s.Empty(p.KeyValueItems)
}

func (s *ProfileSuite) TestOptionalIdentifiers_SetAndClear() {
	p := New("Max", "Mustermann")

	taxId, err := domain.NewTaxId(12_123_456_789)
	s.Require().NoError(err)

	p.SetTaxId(taxId)
	s.Require().NotNil(p.TaxId)
	s.Equal(taxId, *p.TaxId)

	// Setting again replaces, never accumulates.
	other, err := domain.NewTaxId(98_765_432_109)
	s.Require().NoError(err)
	p.SetTaxId(other)
	s.Equal(other, *p.TaxId)

	p.ClearTaxId()
	s.Nil(p.TaxId)
}

func (s *ProfileSuite) TestBankAccounts() {
	p := New("Max", "Mustermann")

	first := BankAccount{Name: "Checking", IBAN: "DE02 1203 0000 0000 2020 51"}
	second := BankAccount{Name: "Savings", IBAN: "DE02 5001 0517 5407 3249 31"}
	p.AddBankAccount(first)
	p.AddBankAccount(second)
	s.Equal([]BankAccount{first, second}, p.BankAccounts, "insertion order is kept")

	s.Run("duplicate IBANs may be inserted", func() {
		p.AddBankAccount(first)
		s.Len(p.BankAccounts, 3)
	})

	s.Run("removal by IBAN drops every match", func() {
		s.True(p.RemoveBankAccount(first.IBAN))
		s.Equal([]BankAccount{second}, p.BankAccounts)
	})

	s.Run("removing an unknown IBAN reports false", func() {
		s.False(p.RemoveBankAccount("DE00 0000 0000 0000 0000 00"))
		s.Len(p.BankAccounts, 1)
	})
}

func (s *ProfileSuite) TestKeyValueItems() {
	p := New("Max", "Mustermann")
	p.AddKeyValueItem(KeyValueItem{Key: "blood_type", Value: "0+"})
	p.AddKeyValueItem(KeyValueItem{Key: "shoe_size", Value: "44"})

	s.True(p.RemoveKeyValueItem("blood_type"))
	s.Equal([]KeyValueItem{{Key: "shoe_size", Value: "44"}}, p.KeyValueItems)
	s.False(p.RemoveKeyValueItem("blood_type"))
}

func (s *ProfileSuite) TestClone_IsDeep() {
	p := New("Max", "Mustermann")
	number, err := domain.ParseIdCardNumber("48328FGW9")
	s.Require().NoError(err)
	p.SetIdCard(domain.IdCard{CardNumber: number, ExpiresAfter: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)})
	p.AddBankAccount(BankAccount{Name: "Checking", IBAN: "DE02 1203 0000 0000 2020 51"})

	clone := p.Clone()
	clone.ClearIdCard()
	clone.BankAccounts[0].Name = "Mutated"
	clone.AddKeyValueItem(KeyValueItem{Key: "k", Value: "v"})

	s.NotNil(p.IdCard, "clearing the clone must not touch the original")
	s.Equal("Checking", p.BankAccounts[0].Name)
	s.Empty(p.KeyValueItems)
}
