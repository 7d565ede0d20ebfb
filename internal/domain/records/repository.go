package records

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Tx agrupa las operaciones que corren dentro de una misma transacción.
type Tx interface {
	GetRecord(ctx context.Context, id string) (Record, error)
	InsertRecord(ctx context.Context, r Record) error
	UpdateRecord(ctx context.Context, r Record) error

	InsertDiagnosis(ctx context.Context, d Diagnosis) error
	UpdateDiagnosisText(ctx context.Context, id, text string) error

	GetSurgery(ctx context.Context, id string) (Surgery, error)
	InsertSurgery(ctx context.Context, s Surgery) error
	UpdateSurgery(ctx context.Context, s Surgery) error
	// DetachSurgery nulea record_info.surgery_id. Siempre antes de DeleteSurgery.
	DetachSurgery(ctx context.Context, recordID string) error
	DeleteSurgery(ctx context.Context, id string) error

	FindLabByDescription(ctx context.Context, description string) (Lab, error)
	InsertLab(ctx context.Context, l Lab) error
	// LinkLab inserta o actualiza la fila de match_record_lab.
	LinkLab(ctx context.Context, recordID, labID string) error

	GetDetail(ctx context.Context, id string) (Detail, error)
}

type Repository interface {
	// InTx hace commit si fn devuelve nil y rollback en cualquier otro caso.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetDetail(ctx context.Context, id string) (Detail, error)
	ListByPet(ctx context.Context, petID string, f ListFilter) ([]Detail, error)
}
