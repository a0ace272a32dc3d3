package workflow

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"stammdaten/internal/profile/models"
	dErrors "stammdaten/pkg/domain-errors"
)

// TestBootstrap verifies how the service recovers its phase from the
// persistence gateway at startup.
func (s *ServiceSuite) TestBootstrap() {
	s.T().Run("empty store yields uninitialized", func(t *testing.T) {
		s.bootstrapFresh()

		state := s.service.Snapshot()
		s.Equal(PhaseUninitialized, state.Phase)
		s.Equal(NavHome, state.Nav)
		s.Nil(state.Profile)
	})

	s.T().Run("persisted profile yields viewing", func(t *testing.T) {
		persisted := models.New("Max", "Mustermann")
		s.mockStore.EXPECT().Load(gomock.Any()).Return(persisted, nil)

		svc, err := New(context.Background(), s.mockStore,
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		s.Require().NoError(err)

		state := svc.Snapshot()
		s.Equal(PhaseViewing, state.Phase)
		s.Require().NotNil(state.Profile)
		s.Equal("Max", state.Profile.Name.First)
	})

	s.T().Run("malformed document aborts startup", func(t *testing.T) {
		loadErr := dErrors.New(dErrors.CodeInvalidInput, "malformed profile document")
		s.mockStore.EXPECT().Load(gomock.Any()).Return(emptyProfile(), loadErr)

		_, err := New(context.Background(), s.mockStore)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestCreateProfile() {
	s.T().Run("blank names rejected per field without persisting", func(t *testing.T) {
		s.bootstrapFresh()

		state, err := s.service.CreateProfile(context.Background(), "  ", "")
		s.Require().NoError(err)
		s.Equal(PhaseUninitialized, state.Phase)
		s.Nil(state.Profile)
		s.Equal("first name must not be empty", state.CreateErrors[FieldFirst])
		s.Equal("last name must not be empty", state.CreateErrors[FieldLast])
	})

	s.T().Run("valid names create and commit the profile", func(t *testing.T) {
		s.bootstrapFresh()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		state, err := s.service.CreateProfile(context.Background(), " Erika ", "Mustermann")
		s.Require().NoError(err)
		s.Equal(PhaseViewing, state.Phase)
		s.Require().NotNil(state.Profile)
		s.Equal("Erika", state.Profile.Name.First)
		s.Empty(state.Profile.BankAccounts)
		s.Empty(state.Profile.KeyValueItems)
	})

	s.T().Run("second creation is a contract violation", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.CreateProfile(context.Background(), "Max", "Mustermann")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.T().Run("failed commit keeps the advanced state", func(t *testing.T) {
		s.bootstrapFresh()
		saveErr := dErrors.New(dErrors.CodeStorage, "disk full")
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(saveErr)

		state, err := s.service.CreateProfile(context.Background(), "Erika", "Mustermann")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeStorage))
		// The profile exists in memory even though the commit failed;
		// RetrySave is the recovery path.
		s.Equal(PhaseViewing, state.Phase)
		s.NotNil(state.Profile)
	})
}

func (s *ServiceSuite) TestSetNav() {
	s.T().Run("uninitialized rejects navigation", func(t *testing.T) {
		s.bootstrapFresh()

		_, err := s.service.SetNav(context.Background(), NavBankAccounts)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.T().Run("navigation changes focus without persisting", func(t *testing.T) {
		s.createProfile()

		state, err := s.service.SetNav(context.Background(), NavBankAccounts)
		s.Require().NoError(err)
		s.Equal(NavBankAccounts, state.Nav)
	})
}

func (s *ServiceSuite) TestStartEdit() {
	s.T().Run("uninitialized rejects edits", func(t *testing.T) {
		s.bootstrapFresh()

		_, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.T().Run("starting an edit moves to editing with an empty draft", func(t *testing.T) {
		s.createProfile()

		state, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)
		s.Equal(PhaseEditing, state.Phase)
		s.Require().NotNil(state.Edit)
		s.Equal(EditTaxId, state.Edit.Kind)
		s.Empty(state.Edit.Draft.Values)
		s.Empty(state.Edit.Draft.Errors)
	})

	s.T().Run("a second edit is a contract violation", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)

		_, err = s.service.StartEdit(context.Background(), EditPostNumber)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		// The original edit is untouched.
		state := s.service.Snapshot()
		s.Require().NotNil(state.Edit)
		s.Equal(EditTaxId, state.Edit.Kind)
	})

	s.T().Run("single-slot edits prefill the current value", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)
		_, err = s.service.SubmitEdit(context.Background(), map[string]string{
			FieldValue: "12345678901",
		})
		s.Require().NoError(err)

		state, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)
		s.Equal("12345678901", state.Edit.Draft.Values[FieldValue])
	})
}

func (s *ServiceSuite) TestCancelEdit() {
	s.T().Run("without an edit in flight it is a contract violation", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.CancelEdit(context.Background())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.T().Run("cancel discards the draft and its errors", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)
		_, err = s.service.SubmitEdit(context.Background(), map[string]string{
			FieldValue: "nonsense",
		})
		s.Require().NoError(err)

		state, err := s.service.CancelEdit(context.Background())
		s.Require().NoError(err)
		s.Equal(PhaseViewing, state.Phase)
		s.Nil(state.Edit)
		s.Nil(state.Profile.TaxId)
	})
}

func (s *ServiceSuite) TestSubmitEdit() {
	s.T().Run("valid tax id updates the profile and commits", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p models.Profile) error {
				s.Require().NotNil(p.TaxId)
				s.Equal(uint64(12345678901), p.TaxId.Uint64())
				return nil
			})

		_, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldValue: "12345678901",
		})
		s.Require().NoError(err)
		s.Equal(PhaseViewing, state.Phase)
		s.Nil(state.Edit)
	})

	s.T().Run("invalid value keeps the draft and does not persist", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldValue: "123",
		})
		s.Require().NoError(err)
		s.Equal(PhaseEditing, state.Phase)
		s.Require().NotNil(state.Edit)
		s.Equal("123", state.Edit.Draft.Values[FieldValue])
		s.NotEmpty(state.Edit.Draft.Errors[FieldValue])
		s.Nil(state.Profile.TaxId)
	})

	s.T().Run("id card reports the card number error first", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.StartEdit(context.Background(), EditIdCard)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldCardNumber:   "ABCDEF123",
			FieldExpiresAfter: "not a date",
		})
		s.Require().NoError(err)
		s.NotEmpty(state.Edit.Draft.Errors[FieldCardNumber])
		s.Empty(state.Edit.Draft.Errors[FieldExpiresAfter])
	})

	s.T().Run("id card with valid number reports the date error", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.StartEdit(context.Background(), EditIdCard)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldCardNumber:   "T22111129",
			FieldExpiresAfter: "2030-01-01",
		})
		s.Require().NoError(err)
		s.Empty(state.Edit.Draft.Errors[FieldCardNumber])
		s.NotEmpty(state.Edit.Draft.Errors[FieldExpiresAfter])
	})

	s.T().Run("valid id card stores card number and UTC expiry", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.StartEdit(context.Background(), EditIdCard)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldCardNumber:   "T22 111 129",
			FieldExpiresAfter: "31.12.2030",
		})
		s.Require().NoError(err)
		s.Require().NotNil(state.Profile.IdCard)
		s.Equal("T22111129", state.Profile.IdCard.CardNumber.String())
		s.Equal(time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC), state.Profile.IdCard.ExpiresAfter)
	})

	s.T().Run("valid social security number is canonicalized", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.StartEdit(context.Background(), EditSocialSecurityNumber)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldValue: "50 010101 N 01 2",
		})
		s.Require().NoError(err)
		s.Require().NotNil(state.Profile.SocialSecurityNumber)
		s.Equal("50 010101 N012", state.Profile.SocialSecurityNumber.String())
	})

	s.T().Run("valid post number is stored", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.StartEdit(context.Background(), EditPostNumber)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldValue: "123 456 789",
		})
		s.Require().NoError(err)
		s.Require().NotNil(state.Profile.PostNumber)
		s.Equal("123 456 789", state.Profile.PostNumber.String())
	})

	s.T().Run("bank account with blank iban stays editing without persisting", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.StartEdit(context.Background(), EditBankAccount)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldName: "Checking",
			FieldIBAN: "   ",
		})
		s.Require().NoError(err)
		s.Equal(PhaseEditing, state.Phase)
		s.NotEmpty(state.Edit.Draft.Errors[FieldIBAN])
		s.Empty(state.Edit.Draft.Errors[FieldName])
		s.Empty(state.Profile.BankAccounts)
	})

	s.T().Run("bank account reports name and iban errors independently", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.StartEdit(context.Background(), EditBankAccount)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{})
		s.Require().NoError(err)
		s.NotEmpty(state.Edit.Draft.Errors[FieldName])
		s.NotEmpty(state.Edit.Draft.Errors[FieldIBAN])
	})

	s.T().Run("valid bank account is appended", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.StartEdit(context.Background(), EditBankAccount)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldName: "Checking",
			FieldIBAN: "DE89370400440532013000",
			FieldURL:  "https://bank.example",
		})
		s.Require().NoError(err)
		s.Require().Len(state.Profile.BankAccounts, 1)
		s.Equal("Checking", state.Profile.BankAccounts[0].Name)
	})

	s.T().Run("valid key value item is appended", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.StartEdit(context.Background(), EditKeyValueItem)
		s.Require().NoError(err)

		state, err := s.service.SubmitEdit(context.Background(), map[string]string{
			FieldKey:   "blood type",
			FieldValue: "0+",
		})
		s.Require().NoError(err)
		s.Require().Len(state.Profile.KeyValueItems, 1)
		s.Equal("blood type", state.Profile.KeyValueItems[0].Key)
	})

	s.T().Run("without an edit in flight it is a contract violation", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.SubmitEdit(context.Background(), map[string]string{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ServiceSuite) TestDirectMutations() {
	s.T().Run("clear removes an optional identifier and commits", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)
		_, err = s.service.SubmitEdit(context.Background(), map[string]string{FieldValue: "12345678901"})
		s.Require().NoError(err)

		state, err := s.service.ClearField(context.Background(), ClearTaxId)
		s.Require().NoError(err)
		s.Nil(state.Profile.TaxId)
	})

	s.T().Run("clear is rejected while editing", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.StartEdit(context.Background(), EditTaxId)
		s.Require().NoError(err)

		_, err = s.service.ClearField(context.Background(), ClearTaxId)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.T().Run("removing an unknown bank account is not found", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.RemoveBankAccount(context.Background(), "DE00000000000000000000")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.T().Run("removing a bank account deletes every match", func(t *testing.T) {
		s.createProfile()
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(3)

		for i := 0; i < 2; i++ {
			_, err := s.service.StartEdit(context.Background(), EditBankAccount)
			s.Require().NoError(err)
			_, err = s.service.SubmitEdit(context.Background(), map[string]string{
				FieldName: "Checking",
				FieldIBAN: "DE89370400440532013000",
			})
			s.Require().NoError(err)
		}

		state, err := s.service.RemoveBankAccount(context.Background(), "DE89370400440532013000")
		s.Require().NoError(err)
		s.Empty(state.Profile.BankAccounts)
	})

	s.T().Run("removing an unknown key value item is not found", func(t *testing.T) {
		s.createProfile()

		_, err := s.service.RemoveKeyValueItem(context.Background(), "missing")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRetrySave() {
	s.T().Run("without a profile it is a contract violation", func(t *testing.T) {
		s.bootstrapFresh()

		_, err := s.service.RetrySave(context.Background())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.T().Run("recovers a profile that is ahead of its document", func(t *testing.T) {
		s.bootstrapFresh()
		saveErr := dErrors.New(dErrors.CodeStorage, "disk full")
		gomock.InOrder(
			s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(saveErr),
			s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
		)

		_, err := s.service.CreateProfile(context.Background(), "Erika", "Mustermann")
		s.Require().Error(err)

		state, err := s.service.RetrySave(context.Background())
		s.Require().NoError(err)
		s.Equal(PhaseViewing, state.Phase)
	})
}

// TestSnapshotIsolation guards against callers mutating the live state
// through a returned snapshot.
func (s *ServiceSuite) TestSnapshotIsolation() {
	s.createProfile()

	state := s.service.Snapshot()
	state.Profile.Name.First = "tampered"

	s.Equal("Erika", s.service.Snapshot().Profile.Name.First)
}
