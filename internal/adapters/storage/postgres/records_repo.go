package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vet-clinic/internal/domain/records"
)

// querier lo cumplen *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const recordColumns = `
	record_id, pet_id,
	record_date, record_weight, record_temp,
	record_condition, record_symptom, record_recent_visit,
	record_purchase, record_purpose, record_lab_file,
	lab_id, diagnosis_id, surgery_id`

const detailSelect = `
	SELECT
		r.record_id, r.pet_id,
		r.record_date, r.record_weight, r.record_temp,
		r.record_condition, r.record_symptom, r.record_recent_visit,
		r.record_purchase, r.record_purpose, r.record_lab_file,
		r.lab_id, r.diagnosis_id, r.surgery_id,
		p.name,
		d.diagnosis_text,
		s.surgery_type, s.surgery_date,
		l.lab_description
	FROM record_info r
	JOIN pets p ON p.id = r.pet_id
	LEFT JOIN diagnosis_info d ON d.diagnosis_id = r.diagnosis_id
	LEFT JOIN surgery_info s ON s.surgery_id = r.surgery_id
	LEFT JOIN laboratories l ON l.lab_id = r.lab_id`

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

// InTx corre fn dentro de una transacción; rollback si fn o el commit fallan.
func (r *RecordsRepo) InTx(ctx context.Context, fn func(tx records.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&recordsTx{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *RecordsRepo) GetDetail(ctx context.Context, id string) (records.Detail, error) {
	return getDetail(ctx, r.db, id)
}

func (r *RecordsRepo) ListByPet(ctx context.Context, petID string, f records.ListFilter) ([]records.Detail, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(detailSelect)
	sb.WriteString(" WHERE r.pet_id = $1")

	args := []any{petID}
	if f.From != nil {
		args = append(args, *f.From)
		sb.WriteString(fmt.Sprintf(" AND r.record_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		sb.WriteString(fmt.Sprintf(" AND r.record_date <= $%d", len(args)))
	}

	if f.SortAsc {
		sb.WriteString(" ORDER BY r.record_date ASC, r.record_id ASC")
	} else {
		sb.WriteString(" ORDER BY r.record_date DESC, r.record_id ASC")
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Detail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func getDetail(ctx context.Context, q querier, id string) (records.Detail, error) {
	row := q.QueryRowContext(ctx, detailSelect+` WHERE r.record_id = $1`, id)
	d, err := scanDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Detail{}, records.ErrNotFound
	}
	return d, err
}

func scanDetail(row rowScanner) (records.Detail, error) {
	var d records.Detail
	var (
		labFile, labID, diagID, surgID sql.NullString
		diagText, surgType, labDesc    sql.NullString
		surgDate                       sql.NullTime
	)
	if err := row.Scan(
		&d.ID, &d.PetID,
		&d.Date, &d.Weight, &d.Temperature,
		&d.Condition, &d.Symptom, &d.RecentVisit,
		&d.RecentPurchase, &d.Purpose, &labFile,
		&labID, &diagID, &surgID,
		&d.PetName,
		&diagText,
		&surgType, &surgDate,
		&labDesc,
	); err != nil {
		return records.Detail{}, err
	}

	d.LabFile = stringPtr(labFile)
	d.LabID = stringPtr(labID)
	d.DiagnosisID = stringPtr(diagID)
	d.SurgeryID = stringPtr(surgID)
	d.DiagnosisText = stringPtr(diagText)
	d.SurgeryType = stringPtr(surgType)
	d.SurgeryDate = datePtr(surgDate)
	d.LabDescription = stringPtr(labDesc)
	return d, nil
}

type recordsTx struct {
	q querier
}

func (t *recordsTx) GetRecord(ctx context.Context, id string) (records.Record, error) {
	row := t.q.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM record_info WHERE record_id = $1 FOR UPDATE`, id)

	var rec records.Record
	var labFile, labID, diagID, surgID sql.NullString
	if err := row.Scan(
		&rec.ID, &rec.PetID,
		&rec.Date, &rec.Weight, &rec.Temperature,
		&rec.Condition, &rec.Symptom, &rec.RecentVisit,
		&rec.RecentPurchase, &rec.Purpose, &labFile,
		&labID, &diagID, &surgID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return records.Record{}, records.ErrNotFound
		}
		return records.Record{}, err
	}

	rec.LabFile = stringPtr(labFile)
	rec.LabID = stringPtr(labID)
	rec.DiagnosisID = stringPtr(diagID)
	rec.SurgeryID = stringPtr(surgID)
	return rec, nil
}

func (t *recordsTx) InsertRecord(ctx context.Context, rec records.Record) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO record_info (`+recordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		rec.ID, rec.PetID,
		rec.Date, rec.Weight, rec.Temperature,
		rec.Condition, rec.Symptom, rec.RecentVisit,
		rec.RecentPurchase, rec.Purpose, nullString(rec.LabFile),
		nullString(rec.LabID), nullString(rec.DiagnosisID), nullString(rec.SurgeryID),
	)
	return err
}

func (t *recordsTx) UpdateRecord(ctx context.Context, rec records.Record) error {
	res, err := t.q.ExecContext(ctx, `
		UPDATE record_info
		SET
			record_date = $2,
			record_weight = $3,
			record_temp = $4,
			record_condition = $5,
			record_symptom = $6,
			record_recent_visit = $7,
			record_purchase = $8,
			record_purpose = $9,
			record_lab_file = $10,
			lab_id = $11,
			diagnosis_id = $12,
			surgery_id = $13
		WHERE record_id = $1
	`,
		rec.ID,
		rec.Date, rec.Weight, rec.Temperature,
		rec.Condition, rec.Symptom, rec.RecentVisit,
		rec.RecentPurchase, rec.Purpose, nullString(rec.LabFile),
		nullString(rec.LabID), nullString(rec.DiagnosisID), nullString(rec.SurgeryID),
	)
	return requireRow(res, err)
}

func (t *recordsTx) InsertDiagnosis(ctx context.Context, d records.Diagnosis) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO diagnosis_info (diagnosis_id, diagnosis_text) VALUES ($1, $2)`,
		d.ID, d.Text,
	)
	return err
}

func (t *recordsTx) UpdateDiagnosisText(ctx context.Context, id, text string) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE diagnosis_info SET diagnosis_text = $2 WHERE diagnosis_id = $1`,
		id, text,
	)
	return requireRow(res, err)
}

func (t *recordsTx) GetSurgery(ctx context.Context, id string) (records.Surgery, error) {
	var s records.Surgery
	var date sql.NullTime
	err := t.q.QueryRowContext(ctx,
		`SELECT surgery_id, surgery_type, surgery_date FROM surgery_info WHERE surgery_id = $1`,
		id,
	).Scan(&s.ID, &s.Type, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Surgery{}, records.ErrNotFound
	}
	if err != nil {
		return records.Surgery{}, err
	}
	s.Date = datePtr(date)
	return s, nil
}

func (t *recordsTx) InsertSurgery(ctx context.Context, s records.Surgery) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO surgery_info (surgery_id, surgery_type, surgery_date) VALUES ($1, $2, $3)`,
		s.ID, s.Type, nullDate(s.Date),
	)
	return err
}

func (t *recordsTx) UpdateSurgery(ctx context.Context, s records.Surgery) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE surgery_info SET surgery_type = $2, surgery_date = $3 WHERE surgery_id = $1`,
		s.ID, s.Type, nullDate(s.Date),
	)
	return requireRow(res, err)
}

func (t *recordsTx) DetachSurgery(ctx context.Context, recordID string) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE record_info SET surgery_id = NULL WHERE record_id = $1`,
		recordID,
	)
	return requireRow(res, err)
}

func (t *recordsTx) DeleteSurgery(ctx context.Context, id string) error {
	_, err := t.q.ExecContext(ctx, `DELETE FROM surgery_info WHERE surgery_id = $1`, id)
	return err
}

func (t *recordsTx) FindLabByDescription(ctx context.Context, description string) (records.Lab, error) {
	var l records.Lab
	err := t.q.QueryRowContext(ctx,
		`SELECT lab_id, lab_description FROM laboratories WHERE lab_description = $1`,
		description,
	).Scan(&l.ID, &l.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Lab{}, records.ErrNotFound
	}
	return l, err
}

func (t *recordsTx) InsertLab(ctx context.Context, l records.Lab) error {
	_, err := t.q.ExecContext(ctx,
		`INSERT INTO laboratories (lab_id, lab_description) VALUES ($1, $2)`,
		l.ID, l.Description,
	)
	return err
}

func (t *recordsTx) LinkLab(ctx context.Context, recordID, labID string) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO match_record_lab (record_id, lab_id) VALUES ($1, $2)
		ON CONFLICT (record_id) DO UPDATE SET lab_id = EXCLUDED.lab_id
	`, recordID, labID)
	return err
}

func (t *recordsTx) GetDetail(ctx context.Context, id string) (records.Detail, error) {
	return getDetail(ctx, t.q, id)
}

func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}
