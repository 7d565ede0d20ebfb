package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"vet-clinic/internal/domain/records"
)

type recordsState struct {
	records   map[string]records.Record
	diagnoses map[string]records.Diagnosis
	surgeries map[string]records.Surgery
	labs      map[string]records.Lab
	matches   map[string]string // record_id -> lab_id
}

func newRecordsState() recordsState {
	return recordsState{
		records:   make(map[string]records.Record),
		diagnoses: make(map[string]records.Diagnosis),
		surgeries: make(map[string]records.Surgery),
		labs:      make(map[string]records.Lab),
		matches:   make(map[string]string),
	}
}

func (s recordsState) clone() recordsState {
	c := newRecordsState()
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.diagnoses {
		c.diagnoses[k] = v
	}
	for k, v := range s.surgeries {
		c.surgeries[k] = v
	}
	for k, v := range s.labs {
		c.labs[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	return c
}

// RecordsRepo guarda records y sus sub-entidades. Cada InTx trabaja sobre una
// copia que reemplaza al estado sólo si fn devuelve nil. Las transacciones se
// serializan.
type RecordsRepo struct {
	mu   sync.RWMutex
	st   recordsState
	pets *PetRepo
}

// NewRecordsRepo: petRepo (opcional) resuelve pet_name en los Detail.
func NewRecordsRepo(petRepo *PetRepo) *RecordsRepo {
	return &RecordsRepo{st: newRecordsState(), pets: petRepo}
}

func (r *RecordsRepo) InTx(ctx context.Context, fn func(tx records.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &recordsTx{st: r.st.clone(), pets: r.pets}
	if err := fn(tx); err != nil {
		return err
	}
	r.st = tx.st
	return nil
}

func (r *RecordsRepo) GetDetail(ctx context.Context, id string) (records.Detail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return detail(r.st, r.pets, id)
}

func (r *RecordsRepo) ListByPet(ctx context.Context, petID string, f records.ListFilter) ([]records.Detail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.Detail, 0)
	for id, rec := range r.st.records {
		if rec.PetID != petID {
			continue
		}
		if f.From != nil && rec.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && rec.Date.After(*f.To) {
			continue
		}
		d, err := detail(r.st, r.pets, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			if f.SortAsc {
				return a.Date.Before(b.Date)
			}
			return a.Date.After(b.Date)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func detail(st recordsState, petRepo *PetRepo, id string) (records.Detail, error) {
	rec, ok := st.records[id]
	if !ok {
		return records.Detail{}, records.ErrNotFound
	}

	d := records.Detail{Record: rec}
	if petRepo != nil {
		d.PetName = petRepo.name(rec.PetID)
	}
	if rec.DiagnosisID != nil {
		if dg, ok := st.diagnoses[*rec.DiagnosisID]; ok {
			text := dg.Text
			d.DiagnosisText = &text
		}
	}
	if rec.SurgeryID != nil {
		if sg, ok := st.surgeries[*rec.SurgeryID]; ok {
			typ := sg.Type
			d.SurgeryType = &typ
			d.SurgeryDate = sg.Date
		}
	}
	if labID, ok := st.matches[rec.ID]; ok {
		if l, ok := st.labs[labID]; ok {
			desc := l.Description
			d.LabID = &l.ID
			d.LabDescription = &desc
		}
	}
	return d, nil
}

type recordsTx struct {
	st   recordsState
	pets *PetRepo
}

func (t *recordsTx) GetRecord(ctx context.Context, id string) (records.Record, error) {
	rec, ok := t.st.records[id]
	if !ok {
		return records.Record{}, records.ErrNotFound
	}
	return rec, nil
}

func (t *recordsTx) InsertRecord(ctx context.Context, rec records.Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id required")
	}
	if _, exists := t.st.records[rec.ID]; exists {
		return errors.New("record already exists")
	}
	t.st.records[rec.ID] = rec
	return nil
}

func (t *recordsTx) UpdateRecord(ctx context.Context, rec records.Record) error {
	if _, exists := t.st.records[rec.ID]; !exists {
		return records.ErrNotFound
	}
	t.st.records[rec.ID] = rec
	return nil
}

func (t *recordsTx) InsertDiagnosis(ctx context.Context, d records.Diagnosis) error {
	t.st.diagnoses[d.ID] = d
	return nil
}

func (t *recordsTx) UpdateDiagnosisText(ctx context.Context, id, text string) error {
	if _, ok := t.st.diagnoses[id]; !ok {
		return records.ErrNotFound
	}
	t.st.diagnoses[id] = records.Diagnosis{ID: id, Text: text}
	return nil
}

func (t *recordsTx) GetSurgery(ctx context.Context, id string) (records.Surgery, error) {
	sg, ok := t.st.surgeries[id]
	if !ok {
		return records.Surgery{}, records.ErrNotFound
	}
	return sg, nil
}

func (t *recordsTx) InsertSurgery(ctx context.Context, sg records.Surgery) error {
	t.st.surgeries[sg.ID] = sg
	return nil
}

func (t *recordsTx) UpdateSurgery(ctx context.Context, sg records.Surgery) error {
	if _, ok := t.st.surgeries[sg.ID]; !ok {
		return records.ErrNotFound
	}
	t.st.surgeries[sg.ID] = sg
	return nil
}

func (t *recordsTx) DetachSurgery(ctx context.Context, recordID string) error {
	rec, ok := t.st.records[recordID]
	if !ok {
		return records.ErrNotFound
	}
	rec.SurgeryID = nil
	t.st.records[recordID] = rec
	return nil
}

// DeleteSurgery se comporta como la FK de postgres: falla si algún record
// todavía la referencia.
func (t *recordsTx) DeleteSurgery(ctx context.Context, id string) error {
	for _, rec := range t.st.records {
		if rec.SurgeryID != nil && *rec.SurgeryID == id {
			return fmt.Errorf("surgery %s still referenced by record %s", id, rec.ID)
		}
	}
	delete(t.st.surgeries, id)
	return nil
}

func (t *recordsTx) FindLabByDescription(ctx context.Context, description string) (records.Lab, error) {
	for _, l := range t.st.labs {
		if l.Description == description {
			return l, nil
		}
	}
	return records.Lab{}, records.ErrNotFound
}

func (t *recordsTx) InsertLab(ctx context.Context, l records.Lab) error {
	for _, existing := range t.st.labs {
		if existing.Description == l.Description {
			return fmt.Errorf("lab %q already exists", l.Description)
		}
	}
	t.st.labs[l.ID] = l
	return nil
}

func (t *recordsTx) LinkLab(ctx context.Context, recordID, labID string) error {
	if _, ok := t.st.labs[labID]; !ok {
		return records.ErrNotFound
	}
	t.st.matches[recordID] = labID
	return nil
}

func (t *recordsTx) GetDetail(ctx context.Context, id string) (records.Detail, error) {
	return detail(t.st, t.pets, id)
}
