package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"vet-clinic/internal/domain/vaccines"
)

type VaccinesRepo struct {
	db *sql.DB
}

func NewVaccinesRepo(db *sql.DB) *VaccinesRepo {
	return &VaccinesRepo{db: db}
}

func (r *VaccinesRepo) ListVaccines(ctx context.Context) ([]vaccines.Vaccine, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT vax_id, vax_type FROM vaccines ORDER BY vax_type ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vaccines.Vaccine, 0)
	for rows.Next() {
		var v vaccines.Vaccine
		if err := rows.Scan(&v.ID, &v.Type); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VaccinesRepo) GetByType(ctx context.Context, vaxType string) (vaccines.Vaccine, error) {
	var v vaccines.Vaccine
	err := r.db.QueryRowContext(ctx,
		`SELECT vax_id, vax_type FROM vaccines WHERE lower(vax_type) = lower($1)`,
		strings.TrimSpace(vaxType),
	).Scan(&v.ID, &v.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return vaccines.Vaccine{}, vaccines.ErrNotFound
	}
	return v, err
}

func (r *VaccinesRepo) AddRecord(ctx context.Context, rec vaccines.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_vaccinations (imm_rec_id, pet_id, vax_id, imm_rec_quantity, imm_rec_date)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.PetID, rec.VaccineID, rec.Quantity, rec.Date)
	return err
}

func (r *VaccinesRepo) ListByPet(ctx context.Context, petID string) ([]vaccines.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pv.imm_rec_id, pv.pet_id, pv.vax_id, v.vax_type, pv.imm_rec_quantity, pv.imm_rec_date
		FROM pet_vaccinations pv
		JOIN vaccines v ON v.vax_id = pv.vax_id
		WHERE pv.pet_id = $1
		ORDER BY pv.imm_rec_date DESC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vaccines.Record, 0)
	for rows.Next() {
		var rec vaccines.Record
		if err := rows.Scan(&rec.ID, &rec.PetID, &rec.VaccineID, &rec.VaccineType, &rec.Quantity, &rec.Date); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
