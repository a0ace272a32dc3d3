// Package store persists the profile aggregate. Stores are
// interface-driven so the workflow stays testable and the file-backed
// implementation can be swapped without rewiring business code.
package store

import (
	"context"

	"stammdaten/internal/profile/models"
	dErrors "stammdaten/pkg/domain-errors"
)

// Error Contract:
// - Load returns ErrNotFound when no profile has ever been persisted; this
//   is benign and selects the uninitialized workflow state.
// - Load returns an invalid-input error for a present but malformed file.
// - Save returns nil on success or a storage error; partial writes must not
//   be observable.
type Store interface {
	Load(ctx context.Context) (models.Profile, error)
	Save(ctx context.Context, profile models.Profile) error
}

// ErrNotFound keeps "no profile yet" consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "no profile persisted")
