package vaccines

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("vaccine not found")

type Repository interface {
	ListVaccines(ctx context.Context) ([]Vaccine, error)
	// GetByType compara sin distinguir mayúsculas.
	GetByType(ctx context.Context, vaxType string) (Vaccine, error)
	AddRecord(ctx context.Context, r Record) error
	// ListByPet devuelve los registros con VaccineType resuelto, más recientes primero.
	ListByPet(ctx context.Context, petID string) ([]Record, error)
}
