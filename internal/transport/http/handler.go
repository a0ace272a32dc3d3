// Package httptransport is the thin HTTP layer over the edit workflow. It
// decodes intents, delegates to the workflow service and renders the
// resulting snapshot; no business logic lives here.
package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"stammdaten/internal/audit"
	"stammdaten/internal/workflow"
	dErrors "stammdaten/pkg/domain-errors"
	"stammdaten/pkg/httputil"
	"stammdaten/pkg/validation"
)

// WorkflowService defines the intents the transport accepts. Every
// mutation returns the successor snapshot so clients never poll.
type WorkflowService interface {
	Snapshot() workflow.State
	CreateProfile(ctx context.Context, first, last string) (workflow.State, error)
	SetNav(ctx context.Context, nav workflow.Nav) (workflow.State, error)
	StartEdit(ctx context.Context, kind workflow.EditKind) (workflow.State, error)
	CancelEdit(ctx context.Context) (workflow.State, error)
	SubmitEdit(ctx context.Context, values map[string]string) (workflow.State, error)
	ClearField(ctx context.Context, field workflow.ClearField) (workflow.State, error)
	RemoveBankAccount(ctx context.Context, iban string) (workflow.State, error)
	RemoveKeyValueItem(ctx context.Context, key string) (workflow.State, error)
	RetrySave(ctx context.Context) (workflow.State, error)
}

// AuditReader lists the recorded mutation trail.
type AuditReader interface {
	List(ctx context.Context) ([]audit.Event, error)
}

type Handler struct {
	workflow WorkflowService
	trail    AuditReader
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(h *Handler)

// WithClock overrides the time source used to derive expiry facts in
// responses.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func New(service WorkflowService, trail AuditReader, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		workflow: service,
		trail:    trail,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/state", h.HandleGetState)
	r.Post("/profile", h.HandleCreateProfile)
	r.Post("/profile/nav", h.HandleSetNav)
	r.Post("/profile/save", h.HandleRetrySave)
	r.Delete("/profile/bank-accounts/{iban}", h.HandleRemoveBankAccount)
	r.Delete("/profile/key-value-items/{key}", h.HandleRemoveKeyValueItem)
	r.Delete("/profile/{field}", h.HandleClearField)
	r.Post("/edits/cancel", h.HandleCancelEdit)
	r.Post("/edits/submit", h.HandleSubmitEdit)
	r.Post("/edits/{kind}", h.HandleStartEdit)
	r.Get("/audit", h.HandleListAudit)
}

// HandleGetState returns the current snapshot without mutating anything.
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toStateResponse(h.workflow.Snapshot(), h.now()))
}

func (h *Handler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[CreateProfileRequest](w, r, h.logger)
	if !ok {
		return
	}

	state, err := h.workflow.CreateProfile(r.Context(), req.First, req.Last)
	h.writeResult(w, r, state, err)
}

func (h *Handler) HandleSetNav(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[SetNavRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := validation.Validate(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	nav, err := workflow.ParseNav(req.Nav)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	state, err := h.workflow.SetNav(r.Context(), nav)
	h.writeResult(w, r, state, err)
}

func (h *Handler) HandleStartEdit(w http.ResponseWriter, r *http.Request) {
	kind, err := workflow.ParseEditKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	state, err := h.workflow.StartEdit(r.Context(), kind)
	h.writeResult(w, r, state, err)
}

func (h *Handler) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	state, err := h.workflow.CancelEdit(r.Context())
	h.writeResult(w, r, state, err)
}

func (h *Handler) HandleSubmitEdit(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[SubmitEditRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := validation.Validate(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	state, err := h.workflow.SubmitEdit(r.Context(), req.Values)
	h.writeResult(w, r, state, err)
}

func (h *Handler) HandleClearField(w http.ResponseWriter, r *http.Request) {
	field, err := workflow.ParseClearField(chi.URLParam(r, "field"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	state, err := h.workflow.ClearField(r.Context(), field)
	h.writeResult(w, r, state, err)
}

func (h *Handler) HandleRemoveBankAccount(w http.ResponseWriter, r *http.Request) {
	iban := chi.URLParam(r, "iban")
	if iban == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "IBAN required"))
		return
	}

	state, err := h.workflow.RemoveBankAccount(r.Context(), iban)
	h.writeResult(w, r, state, err)
}

func (h *Handler) HandleRemoveKeyValueItem(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "key required"))
		return
	}

	state, err := h.workflow.RemoveKeyValueItem(r.Context(), key)
	h.writeResult(w, r, state, err)
}

func (h *Handler) HandleRetrySave(w http.ResponseWriter, r *http.Request) {
	state, err := h.workflow.RetrySave(r.Context())
	h.writeResult(w, r, state, err)
}

// HandleListAudit returns the mutation trail, oldest first.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	events, err := h.trail.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list audit trail", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]audit.Event{"events": events})
}

// writeResult renders an intent outcome. Validation rejections ride inside
// the snapshot with status 200; a failed commit answers 500 but still
// carries the advanced snapshot so clients see the state they must retry
// from.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, state workflow.State, err error) {
	if err == nil {
		httputil.WriteJSON(w, http.StatusOK, toStateResponse(state, h.now()))
		return
	}

	h.logger.ErrorContext(r.Context(), "intent rejected",
		"error", err,
		"path", r.URL.Path,
	)

	if dErrors.HasCode(err, dErrors.CodeStorage) {
		var domainErr *dErrors.Error
		response := map[string]any{
			"error": httputil.DomainCodeToHTTPCode(dErrors.CodeStorage),
			"state": toStateResponse(state, h.now()),
		}
		if errors.As(err, &domainErr) && domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		httputil.WriteJSON(w, http.StatusInternalServerError, response)
		return
	}

	httputil.WriteError(w, err)
}
