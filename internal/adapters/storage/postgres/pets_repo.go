package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vet-clinic/internal/domain/pets"
)

const petColumns = `
	id, owner_user_id,
	name, species, breed, sex,
	birthday, age_years, age_months,
	microchip, notes, status,
	created_at, updated_at`

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.Species,
		p.Breed,
		string(p.Sex),
		nullDate(p.Birthday),
		p.AgeYears,
		p.AgeMonths,
		p.Microchip,
		p.Notes,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			sex = $5,
			birthday = $6,
			age_years = $7,
			age_months = $8,
			microchip = $9,
			notes = $10,
			status = $11,
			updated_at = $12
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Species,
		p.Breed,
		string(p.Sex),
		nullDate(p.Birthday),
		p.AgeYears,
		p.AgeMonths,
		p.Microchip,
		p.Notes,
		string(p.Status),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)

	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + petColumns + ` FROM pets WHERE 1=1`)

	args := []any{}
	if f.OwnerUserID != "" {
		args = append(args, f.OwnerUserID)
		sb.WriteString(fmt.Sprintf(" AND owner_user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		sb.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}
	sb.WriteString(" ORDER BY created_at ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var sex, status string
	var bd sql.NullTime
	if err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&sex,
		&bd,
		&p.AgeYears,
		&p.AgeMonths,
		&p.Microchip,
		&p.Notes,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Sex = pets.Sex(sex)
	p.Status = pets.Status(status)
	// birthday es DATE; pgx lo mapea a medianoche UTC
	p.Birthday = datePtr(bd)
	return p, nil
}
