// Package workflow drives the single-profile edit state machine. All
// mutations funnel through the Service, which serializes them, validates
// raw input at the boundary and commits every accepted change to the
// persistence gateway before handing out the next snapshot.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"stammdaten/internal/audit"
	"stammdaten/internal/platform/middleware"
	"stammdaten/internal/profile/models"
	"stammdaten/internal/profile/store"
	wfmetrics "stammdaten/internal/workflow/metrics"
	"stammdaten/internal/workflow/tracer"
	"stammdaten/pkg/domain"
	dErrors "stammdaten/pkg/domain-errors"
	stringutil "stammdaten/pkg/string"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

// ExpiryDateLayout is the accepted input format for ID card expiry dates.
const ExpiryDateLayout = "02.01.2006"

// Store is the persistence gateway the workflow commits to.
//
// Error Contract:
//   - Load returns store.ErrNotFound when nothing has been persisted yet.
//   - Load returns CodeInvalidInput when the persisted document is malformed.
//   - Save returns CodeStorage when the commit could not be written.
type Store interface {
	Load(ctx context.Context) (models.Profile, error)
	Save(ctx context.Context, profile models.Profile) error
}

// AuditPublisher records profile mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service owns the workflow state. A mutex serializes all intents; each
// accepted intent produces exactly one successor state.
type Service struct {
	mu      sync.Mutex
	state   State
	store   Store
	logger  *slog.Logger
	metrics *wfmetrics.Metrics
	auditor AuditPublisher
	tracer  tracer.Tracer
	now     func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *wfmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithClock overrides the time source. Tests use this to pin expiry
// checks and audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New bootstraps the workflow from the persistence gateway. A missing
// document yields the uninitialized state; a malformed document is fatal
// and surfaces as an error so the caller aborts startup instead of
// silently shadowing persisted data.
func New(ctx context.Context, st Store, opts ...Option) (*Service, error) {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	profile, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.state = State{Phase: PhaseUninitialized, Nav: NavHome}
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to bootstrap from persisted profile")
	default:
		s.state = State{Phase: PhaseViewing, Nav: NavHome, Profile: &profile}
	}

	s.logger.InfoContext(ctx, "workflow bootstrapped", "phase", s.state.Phase)
	return s, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// CreateProfile creates the profile from the owner's name. Blank names are
// rejected per field; the errors travel in the returned snapshot and the
// workflow stays uninitialized.
func (s *Service) CreateProfile(ctx context.Context, first, last string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != PhaseUninitialized {
		return s.state.clone(), dErrors.New(dErrors.CodeInvariantViolation, "profile already exists")
	}

	stringutil.TrimStrings(&first, &last)
	fieldErrors := map[string]string{}
	if first == "" {
		fieldErrors[FieldFirst] = "first name must not be empty"
	}
	if last == "" {
		fieldErrors[FieldLast] = "last name must not be empty"
	}
	if len(fieldErrors) > 0 {
		s.state.CreateErrors = fieldErrors
		return s.state.clone(), nil
	}

	profile := models.New(first, last)
	s.state = State{Phase: PhaseViewing, Nav: NavHome, Profile: &profile}

	s.emitAudit(ctx, audit.ActionProfileCreated, "", "")
	if s.metrics != nil {
		s.metrics.IncrementProfilesCreated()
	}

	if err := s.commit(ctx); err != nil {
		return s.state.clone(), err
	}
	return s.state.clone(), nil
}

// SetNav moves the section focus. Navigation is presentation state only
// and is never persisted.
func (s *Service) SetNav(ctx context.Context, nav Nav) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == PhaseUninitialized {
		return s.state.clone(), dErrors.New(dErrors.CodeInvariantViolation, "no profile exists yet")
	}
	s.state.Nav = nav
	return s.state.clone(), nil
}

// StartEdit opens an edit process for one profile aspect. Only one edit
// may be in flight; a second start is a contract violation, not a queue.
func (s *Service) StartEdit(ctx context.Context, kind EditKind) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.Phase {
	case PhaseUninitialized:
		return s.state.clone(), dErrors.New(dErrors.CodeInvariantViolation, "no profile exists yet")
	case PhaseEditing:
		return s.state.clone(), dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("an edit of %s is already in progress", s.state.Edit.Kind))
	}

	draft := newDraft()
	s.prefillDraft(kind, &draft)
	s.state.Phase = PhaseEditing
	s.state.Edit = &Edit{Kind: kind, Draft: draft}

	if s.metrics != nil {
		s.metrics.IncrementEditsStarted(string(kind))
	}
	return s.state.clone(), nil
}

// prefillDraft seeds the draft with the current value of single-slot
// aspects so a correction does not start from scratch. List aspects always
// start empty; they append, never replace.
func (s *Service) prefillDraft(kind EditKind, draft *Draft) {
	p := s.state.Profile
	switch kind {
	case EditIdCard:
		if p.IdCard != nil {
			draft.Values[FieldCardNumber] = p.IdCard.CardNumber.String()
			draft.Values[FieldExpiresAfter] = p.IdCard.ExpiresAfter.Format(ExpiryDateLayout)
		}
	case EditSocialSecurityNumber:
		if p.SocialSecurityNumber != nil {
			draft.Values[FieldValue] = p.SocialSecurityNumber.String()
		}
	case EditTaxId:
		if p.TaxId != nil {
			draft.Values[FieldValue] = p.TaxId.String()
		}
	case EditPostNumber:
		if p.PostNumber != nil {
			draft.Values[FieldValue] = p.PostNumber.String()
		}
	}
}

// CancelEdit discards the in-flight edit. The draft and its errors are
// dropped; the profile is untouched and nothing is persisted.
func (s *Service) CancelEdit(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != PhaseEditing {
		return s.state.clone(), dErrors.New(dErrors.CodeInvariantViolation, "no edit in progress")
	}

	kind := s.state.Edit.Kind
	s.state.Phase = PhaseViewing
	s.state.Edit = nil

	if s.metrics != nil {
		s.metrics.IncrementEditsCancelled(string(kind))
	}
	return s.state.clone(), nil
}

// SubmitEdit validates the submitted values against the edit's kind. On
// success the profile is updated, the edit concludes and the change is
// committed. On rejection the raw values and per-field errors stay in the
// draft, the workflow remains editing and nothing is persisted.
func (s *Service) SubmitEdit(ctx context.Context, values map[string]string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != PhaseEditing {
		return s.state.clone(), dErrors.New(dErrors.CodeInvariantViolation, "no edit in progress")
	}

	edit := s.state.Edit
	ctx, span := s.tracer.Start(ctx, tracer.SpanSubmit,
		tracer.String(tracer.AttrEditKind, string(edit.Kind)))
	defer func() { span.End(nil) }()

	edit.Draft.Values = copyValues(values)
	edit.Draft.Errors = map[string]string{}

	apply, fieldErrors := s.validateSubmission(edit.Kind, edit.Draft.Values)
	if len(fieldErrors) > 0 {
		edit.Draft.Errors = fieldErrors
		span.AddEvent(tracer.EventValidationFailed)
		span.SetAttributes(tracer.Bool(tracer.AttrCommitted, false))
		if s.metrics != nil {
			s.metrics.IncrementEditsRejected(string(edit.Kind))
		}
		return s.state.clone(), nil
	}

	apply(s.state.Profile)
	kind := edit.Kind
	s.state.Phase = PhaseViewing
	s.state.Edit = nil
	span.SetAttributes(tracer.Bool(tracer.AttrCommitted, true))

	s.emitAudit(ctx, auditActionFor(kind), string(kind), "")
	if s.metrics != nil {
		s.metrics.IncrementEditsCommitted(string(kind))
	}

	if err := s.commit(ctx); err != nil {
		return s.state.clone(), err
	}
	return s.state.clone(), nil
}

// validateSubmission parses the raw values for one edit kind. It returns
// either a mutation to apply or the per-field errors that rejected it.
func (s *Service) validateSubmission(kind EditKind, values map[string]string) (func(*models.Profile), map[string]string) {
	switch kind {
	case EditIdCard:
		return s.validateIdCard(values)
	case EditSocialSecurityNumber:
		number, err := domain.ParseSocialSecurityNumber(values[FieldValue])
		if err != nil {
			return nil, map[string]string{FieldValue: err.Error()}
		}
		return func(p *models.Profile) { p.SetSocialSecurityNumber(number) }, nil
	case EditTaxId:
		id, err := domain.ParseTaxId(strings.TrimSpace(values[FieldValue]))
		if err != nil {
			return nil, map[string]string{FieldValue: err.Error()}
		}
		return func(p *models.Profile) { p.SetTaxId(id) }, nil
	case EditPostNumber:
		number, err := domain.ParsePostNumber(values[FieldValue])
		if err != nil {
			return nil, map[string]string{FieldValue: err.Error()}
		}
		return func(p *models.Profile) { p.SetPostNumber(number) }, nil
	case EditBankAccount:
		return validateBankAccount(values)
	case EditKeyValueItem:
		return validateKeyValueItem(values)
	}
	return nil, map[string]string{FieldValue: "unknown edit kind"}
}

// validateIdCard checks the card number first and only then the expiry
// date, so the draft carries a single error at a time.
func (s *Service) validateIdCard(values map[string]string) (func(*models.Profile), map[string]string) {
	number, err := domain.ParseIdCardNumber(values[FieldCardNumber])
	if err != nil {
		return nil, map[string]string{FieldCardNumber: err.Error()}
	}
	expires, err := time.Parse(ExpiryDateLayout, strings.TrimSpace(values[FieldExpiresAfter]))
	if err != nil {
		return nil, map[string]string{FieldExpiresAfter: "expiry date must be of the form DD.MM.YYYY"}
	}
	card := domain.IdCard{CardNumber: number, ExpiresAfter: expires}
	return func(p *models.Profile) { p.SetIdCard(card) }, nil
}

func validateBankAccount(values map[string]string) (func(*models.Profile), map[string]string) {
	name := strings.TrimSpace(values[FieldName])
	iban := strings.TrimSpace(values[FieldIBAN])
	url := strings.TrimSpace(values[FieldURL])

	fieldErrors := map[string]string{}
	if name == "" {
		fieldErrors[FieldName] = "account name must not be empty"
	}
	if iban == "" {
		fieldErrors[FieldIBAN] = "IBAN must not be empty"
	}
	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	account := models.BankAccount{Name: name, IBAN: iban, URL: url}
	return func(p *models.Profile) { p.AddBankAccount(account) }, nil
}

func validateKeyValueItem(values map[string]string) (func(*models.Profile), map[string]string) {
	key := strings.TrimSpace(values[FieldKey])
	value := strings.TrimSpace(values[FieldValue])

	fieldErrors := map[string]string{}
	if key == "" {
		fieldErrors[FieldKey] = "key must not be empty"
	}
	if value == "" {
		fieldErrors[FieldValue] = "value must not be empty"
	}
	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	item := models.KeyValueItem{Key: key, Value: value}
	return func(p *models.Profile) { p.AddKeyValueItem(item) }, nil
}

// ClearField removes an optional identifier directly from viewing, without
// an edit process. Clearing an already-empty slot is a no-op that still
// commits, keeping the document in step with the state.
func (s *Service) ClearField(ctx context.Context, field ClearField) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireViewing(); err != nil {
		return s.state.clone(), err
	}

	switch field {
	case ClearIdCard:
		s.state.Profile.ClearIdCard()
	case ClearSocialSecurityNumber:
		s.state.Profile.ClearSocialSecurityNumber()
	case ClearTaxId:
		s.state.Profile.ClearTaxId()
	case ClearPostNumber:
		s.state.Profile.ClearPostNumber()
	}

	s.emitAudit(ctx, audit.ActionFieldCleared, string(field), "")
	if s.metrics != nil {
		s.metrics.IncrementFieldsCleared(string(field))
	}

	if err := s.commit(ctx); err != nil {
		return s.state.clone(), err
	}
	return s.state.clone(), nil
}

// RemoveBankAccount deletes every account carrying the given IBAN.
func (s *Service) RemoveBankAccount(ctx context.Context, iban string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireViewing(); err != nil {
		return s.state.clone(), err
	}

	if !s.state.Profile.RemoveBankAccount(iban) {
		return s.state.clone(), dErrors.New(dErrors.CodeNotFound, "no bank account with that IBAN")
	}

	s.emitAudit(ctx, audit.ActionBankAccountRemoved, "bank_accounts", "")
	if s.metrics != nil {
		s.metrics.IncrementFieldsCleared("bank_account")
	}

	if err := s.commit(ctx); err != nil {
		return s.state.clone(), err
	}
	return s.state.clone(), nil
}

// RemoveKeyValueItem deletes the item with the given key.
func (s *Service) RemoveKeyValueItem(ctx context.Context, key string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireViewing(); err != nil {
		return s.state.clone(), err
	}

	if !s.state.Profile.RemoveKeyValueItem(key) {
		return s.state.clone(), dErrors.New(dErrors.CodeNotFound, "no item with that key")
	}

	s.emitAudit(ctx, audit.ActionKeyValueRemoved, "key_value_items", key)
	if s.metrics != nil {
		s.metrics.IncrementFieldsCleared("key_value_item")
	}

	if err := s.commit(ctx); err != nil {
		return s.state.clone(), err
	}
	return s.state.clone(), nil
}

// RetrySave re-commits the current profile after a failed save. The state
// machine never rolls back on storage failure, so this is the recovery
// path for a profile that is ahead of its persisted document.
func (s *Service) RetrySave(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Profile == nil {
		return s.state.clone(), dErrors.New(dErrors.CodeInvariantViolation, "no profile exists yet")
	}

	s.emitAudit(ctx, audit.ActionSaveRetried, "", "")
	if err := s.commit(ctx); err != nil {
		return s.state.clone(), err
	}
	return s.state.clone(), nil
}

func (s *Service) requireViewing() error {
	switch s.state.Phase {
	case PhaseUninitialized:
		return dErrors.New(dErrors.CodeInvariantViolation, "no profile exists yet")
	case PhaseEditing:
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("an edit of %s is in progress", s.state.Edit.Kind))
	}
	return nil
}

// commit writes the current profile through the persistence gateway. The
// state has already advanced by the time commit runs; a failure is
// reported as CodeStorage and recovered via RetrySave, never by rolling
// the state back.
func (s *Service) commit(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCommit)

	start := s.now()
	err := s.store.Save(ctx, *s.state.Profile)
	elapsed := s.now().Sub(start)
	span.End(err)

	if s.metrics != nil {
		s.metrics.IncrementProfileSaves()
		s.metrics.ObserveSaveLatency(elapsed.Seconds())
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist profile", "error", err)
		s.emitAudit(ctx, audit.ActionSaveFailed, "", "")
		if s.metrics != nil {
			s.metrics.IncrementSaveFailures()
		}
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist profile")
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, field, detail string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Timestamp: s.now(),
		Action:    action,
		Field:     field,
		Detail:    detail,
		RequestID: middleware.GetRequestID(ctx),
	})
}

func auditActionFor(kind EditKind) audit.Action {
	switch kind {
	case EditBankAccount:
		return audit.ActionBankAccountAdded
	case EditKeyValueItem:
		return audit.ActionKeyValueAdded
	}
	return audit.ActionFieldSet
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
