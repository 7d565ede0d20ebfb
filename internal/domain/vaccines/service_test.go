package vaccines

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	catalog []Vaccine
	records []Record
	addErr  error
}

func (r *testRepo) ListVaccines(ctx context.Context) ([]Vaccine, error) {
	return r.catalog, nil
}

func (r *testRepo) GetByType(ctx context.Context, vaxType string) (Vaccine, error) {
	for _, v := range r.catalog {
		if strings.EqualFold(v.Type, vaxType) {
			return v, nil
		}
	}
	return Vaccine{}, ErrNotFound
}

func (r *testRepo) AddRecord(ctx context.Context, rec Record) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *testRepo) ListByPet(ctx context.Context, petID string) ([]Record, error) {
	out := make([]Record, 0)
	for _, rec := range r.records {
		if rec.PetID == petID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type testPets map[string]string

func (p testPets) OwnerOf(ctx context.Context, petID string) (string, error) {
	o, ok := p[petID]
	if !ok {
		return "", apperr.NotFound("Pet not found.")
	}
	return o, nil
}

var (
	doctor = auth.Claims{UserID: "doc-1", Role: auth.RoleDoctor}
	owner  = auth.Claims{UserID: "owner-1", Role: auth.RoleOwner}
	other  = auth.Claims{UserID: "owner-2", Role: auth.RoleOwner}
)

func newTestService(now time.Time) (*Service, *testRepo) {
	repo := &testRepo{catalog: []Vaccine{{ID: "vax-rabies", Type: "Rabies"}, {ID: "vax-dhpp", Type: "DHPP"}}}
	svc := NewService(repo, testPets{"pet-1": owner.UserID}, Options{})
	svc.now = func() time.Time { return now }
	svc.newID = func() string { return "imm-1" }
	return svc, repo
}

func qty(n int) *int { return &n }

func TestAddRecord_Success(t *testing.T) {
	svc, repo := newTestService(time.Now())
	date := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	rec, err := svc.AddRecord(context.Background(), "pet-1", doctor, AddInput{Type: "rabies", Quantity: qty(1), Date: &date})
	require.NoError(t, err)
	assert.Equal(t, "vax-rabies", rec.VaccineID)
	assert.Equal(t, "Rabies", rec.VaccineType)
	assert.Equal(t, date, rec.Date)
	require.Len(t, repo.records, 1)
}

func TestAddRecord_DefaultsDateToToday(t *testing.T) {
	now := time.Date(2025, 4, 1, 15, 30, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	rec, err := svc.AddRecord(context.Background(), "pet-1", owner, AddInput{Type: "DHPP", Quantity: qty(2)})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), rec.Date)
}

func TestAddRecord_MissingFields(t *testing.T) {
	svc, repo := newTestService(time.Now())

	cases := []AddInput{
		{Type: "Rabies"},
		{Quantity: qty(1)},
		{Type: "  ", Quantity: qty(1)},
		{Type: "Rabies", Quantity: qty(0)},
	}
	for _, in := range cases {
		_, err := svc.AddRecord(context.Background(), "pet-1", doctor, in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errRequired), "got %v", err)
	}
	assert.Empty(t, repo.records)
}

func TestAddRecord_InvalidType(t *testing.T) {
	svc, _ := newTestService(time.Now())

	_, err := svc.AddRecord(context.Background(), "pet-1", doctor, AddInput{Type: "InvalidVaccine", Quantity: qty(1)})
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.True(t, errors.Is(err, errInvalidType))
}

func TestAddRecord_RepoFailure_ServerError(t *testing.T) {
	svc, repo := newTestService(time.Now())
	repo.addErr = errors.New("db down")

	_, err := svc.AddRecord(context.Background(), "pet-1", doctor, AddInput{Type: "Rabies", Quantity: qty(1)})
	require.Error(t, err)
	assert.Equal(t, apperr.KindServer, apperr.KindOf(err))
	assert.Contains(t, err.Error(), msgAddFailed)
}

func TestAddRecord_Access(t *testing.T) {
	svc, _ := newTestService(time.Now())

	_, err := svc.AddRecord(context.Background(), "pet-1", other, AddInput{Type: "Rabies", Quantity: qty(1)})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.AddRecord(context.Background(), "missing", doctor, AddInput{Type: "Rabies", Quantity: qty(1)})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListByPet(t *testing.T) {
	svc, repo := newTestService(time.Now())
	repo.records = []Record{
		{ID: "a", PetID: "pet-1", VaccineType: "Rabies", Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", PetID: "pet-1", VaccineType: "DHPP", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "c", PetID: "pet-2", VaccineType: "DHPP", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	items, err := svc.ListByPet(context.Background(), "pet-1", owner)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)

	_, err = svc.ListByPet(context.Background(), "pet-1", other)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
