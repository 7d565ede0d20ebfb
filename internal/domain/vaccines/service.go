package vaccines

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/metrics"
	"vet-clinic/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	errRequired    = apperr.BadRequest("Vaccine type and dose quantity are required.")
	errInvalidType = apperr.BadRequest("Invalid vaccine type. Please select a valid vaccine.")
	errForbidden   = apperr.Forbidden("You do not have access to this pet.")

	msgAddFailed   = "Server error while adding record."
	msgFetchFailed = "Failed to fetch vaccination records"
)

// PetDirectory: mismo contrato que usa records.
type PetDirectory interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

type Options struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

type Service struct {
	repo    Repository
	pets    PetDirectory
	log     logger.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, petDir PetDirectory, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		pets:    petDir,
		log:     log.With(map[string]any{"component": "vaccines"}),
		metrics: opts.Metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *Service) ListVaccines(ctx context.Context) ([]Vaccine, error) {
	items, err := s.repo.ListVaccines(ctx)
	if err != nil {
		return nil, apperr.Server("Failed to fetch vaccines", err)
	}
	return items, nil
}

// AddRecord registra una dosis. Sin fecha se usa el día de hoy.
func (s *Service) AddRecord(ctx context.Context, petID string, actor auth.Claims, in AddInput) (out Record, err error) {
	defer func() { s.metrics.RecordOp("vaccination_add", outcome(err)) }()

	vaxType := strings.TrimSpace(in.Type)
	if vaxType == "" || in.Quantity == nil || *in.Quantity <= 0 {
		return Record{}, errRequired
	}
	if err := s.authorize(ctx, actor, petID); err != nil {
		return Record{}, err
	}

	v, err := s.repo.GetByType(ctx, vaxType)
	if errors.Is(err, ErrNotFound) {
		return Record{}, errInvalidType
	}
	if err != nil {
		s.log.Error(msgAddFailed, map[string]any{"pet_id": petID, "err": err.Error()})
		return Record{}, apperr.Server(msgAddFailed, err)
	}

	date := s.now().UTC().Truncate(24 * time.Hour)
	if in.Date != nil {
		date = *in.Date
	}

	rec := Record{
		ID:          s.newID(),
		PetID:       petID,
		VaccineID:   v.ID,
		VaccineType: v.Type,
		Quantity:    *in.Quantity,
		Date:        date,
	}
	if err := s.repo.AddRecord(ctx, rec); err != nil {
		s.log.Error(msgAddFailed, map[string]any{"pet_id": petID, "err": err.Error()})
		return Record{}, apperr.Server(msgAddFailed, err)
	}
	return rec, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string, actor auth.Claims) ([]Record, error) {
	if err := s.authorize(ctx, actor, petID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return nil, apperr.Server(msgFetchFailed, err)
	}
	return items, nil
}

func (s *Service) authorize(ctx context.Context, actor auth.Claims, petID string) error {
	ownerID, err := s.pets.OwnerOf(ctx, petID)
	if err != nil {
		return err
	}
	if !pets.CanAccess(actor, ownerID) {
		return errForbidden
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperr.KindOf(err)))
}
