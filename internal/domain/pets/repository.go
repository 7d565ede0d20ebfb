package pets

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven los adapters de storage.
var ErrNotFound = errors.New("pet not found")

// ListFilter: campos vacíos = sin filtro.
type ListFilter struct {
	OwnerUserID string
	Status      Status
}

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, f ListFilter) ([]Pet, error)
}
