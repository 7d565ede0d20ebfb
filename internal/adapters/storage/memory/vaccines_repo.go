package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"vet-clinic/internal/domain/vaccines"
)

// DefaultVaccines es el mismo catálogo que carga la migración 002.
var DefaultVaccines = []vaccines.Vaccine{
	{ID: "vax-rabies", Type: "Rabies"},
	{ID: "vax-dhpp", Type: "DHPP"},
	{ID: "vax-bordetella", Type: "Bordetella"},
	{ID: "vax-leptospirosis", Type: "Leptospirosis"},
	{ID: "vax-lyme", Type: "Lyme"},
	{ID: "vax-fvrcp", Type: "FVRCP"},
	{ID: "vax-felv", Type: "FeLV"},
}

type VaccinesRepo struct {
	mu      sync.RWMutex
	catalog []vaccines.Vaccine
	records []vaccines.Record
}

func NewVaccinesRepo(catalog []vaccines.Vaccine) *VaccinesRepo {
	c := make([]vaccines.Vaccine, len(catalog))
	copy(c, catalog)
	return &VaccinesRepo{catalog: c}
}

func (r *VaccinesRepo) ListVaccines(ctx context.Context) ([]vaccines.Vaccine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vaccines.Vaccine, len(r.catalog))
	copy(out, r.catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (r *VaccinesRepo) GetByType(ctx context.Context, vaxType string) (vaccines.Vaccine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.catalog {
		if strings.EqualFold(v.Type, strings.TrimSpace(vaxType)) {
			return v, nil
		}
	}
	return vaccines.Vaccine{}, vaccines.ErrNotFound
}

func (r *VaccinesRepo) AddRecord(ctx context.Context, rec vaccines.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *VaccinesRepo) ListByPet(ctx context.Context, petID string) ([]vaccines.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vaccines.Record, 0)
	for _, rec := range r.records {
		if rec.PetID == petID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
