package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	errMissingFields = apperr.BadRequest("Pet name and species are required.")
	errInvalidSex    = apperr.BadRequest("Sex must be male, female or unknown.")
	errNegativeAge   = apperr.BadRequest("Age cannot be negative.")
	errAgeMonths     = apperr.BadRequest("Age months must be between 0 and 11.")
)

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	Sex       string
	Birthday  *time.Time
	AgeYears  *int
	AgeMonths *int
	Microchip string
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, apperr.Unauthorized("unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Species) == "" {
		return Pet{}, errMissingFields
	}
	sex, ok := parseSex(strings.ToLower(strings.TrimSpace(in.Sex)))
	if !ok {
		return Pet{}, errInvalidSex
	}

	now := s.now()
	age, err := resolveAge(in.Birthday, in.AgeYears, in.AgeMonths, Age{}, now)
	if err != nil {
		return Pet{}, err
	}

	p := Pet{
		ID:          s.newID(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Species:     strings.ToLower(strings.TrimSpace(in.Species)),
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         sex,
		Birthday:    in.Birthday,
		AgeYears:    age.Years,
		AgeMonths:   age.Months,
		Microchip:   strings.TrimSpace(in.Microchip),
		Notes:       strings.TrimSpace(in.Notes),
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, apperr.Server("Server error while adding pet.", err)
	}
	return p, nil
}

// Get devuelve la mascota si el actor puede verla.
func (s *Service) Get(ctx context.Context, id string, actor auth.Claims) (Pet, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if err := authorize(actor, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// List: owner ve las suyas, staff ve todas. status vacío = todas.
func (s *Service) List(ctx context.Context, actor auth.Claims, status Status) ([]Pet, error) {
	f := ListFilter{Status: status}
	switch actor.Role {
	case auth.RoleDoctor, auth.RoleClinician, auth.RoleAdmin:
	case auth.RoleOwner:
		if strings.TrimSpace(actor.UserID) == "" {
			return nil, apperr.Unauthorized("unauthorized")
		}
		f.OwnerUserID = actor.UserID
	default:
		return nil, errPetForbidden
	}

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Server("Server error while fetching pets.", err)
	}
	return items, nil
}

// patchBirthday distingue "no enviado" de "enviado null" (limpiar).
type patchBirthday struct {
	Present bool
	Value   *time.Time
}

type UpdateProfileInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string
	Species   *string
	Breed     *string
	Sex       *string
	Birthday  patchBirthday
	AgeYears  *int
	AgeMonths *int
	Microchip *string
	Notes     *string
}

func (s *Service) UpdateProfile(ctx context.Context, petID string, actor auth.Claims, in UpdateProfileInput) (Pet, error) {
	p, err := s.Get(ctx, petID, actor)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Pet{}, errMissingFields
		}
		p.Name = v
	}
	if in.Species != nil {
		v := strings.ToLower(strings.TrimSpace(*in.Species))
		if v == "" {
			return Pet{}, errMissingFields
		}
		p.Species = v
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		sex, ok := parseSex(strings.ToLower(strings.TrimSpace(*in.Sex)))
		if !ok {
			return Pet{}, errInvalidSex
		}
		p.Sex = sex
	}
	if in.Microchip != nil {
		p.Microchip = strings.TrimSpace(*in.Microchip)
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	now := s.now()

	// La edad se revalida si cambia el cumpleaños o si envían edad.
	if in.Birthday.Present || in.AgeYears != nil || in.AgeMonths != nil {
		if in.Birthday.Present {
			p.Birthday = in.Birthday.Value
		}
		age, err := resolveAge(p.Birthday, in.AgeYears, in.AgeMonths, Age{Years: p.AgeYears, Months: p.AgeMonths}, now)
		if err != nil {
			return Pet{}, err
		}
		p.AgeYears, p.AgeMonths = age.Years, age.Months
	}

	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, s.mapRepoErr(err, "Server error while updating pet.")
	}
	return p, nil
}

func (s *Service) Archive(ctx context.Context, petID string, actor auth.Claims) (Pet, error) {
	return s.setStatus(ctx, petID, actor, StatusArchived)
}

func (s *Service) Restore(ctx context.Context, petID string, actor auth.Claims) (Pet, error) {
	return s.setStatus(ctx, petID, actor, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, petID string, actor auth.Claims, st Status) (Pet, error) {
	p, err := s.Get(ctx, petID, actor)
	if err != nil {
		return Pet{}, err
	}
	if p.Status == st {
		return p, nil
	}

	p.Status = st
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, s.mapRepoErr(err, "Server error while updating pet status.")
	}
	return p, nil
}

func (s *Service) load(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, errPetNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, s.mapRepoErr(err, "Server error while fetching pet.")
	}
	return p, nil
}

func (s *Service) mapRepoErr(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return errPetNotFound
	}
	return apperr.Server(msg, err)
}

// resolveAge: con cumpleaños, la edad guardada es siempre la calculada y la
// enviada (si viene) tiene que coincidir. Sin cumpleaños se acepta la enviada.
func resolveAge(birthday *time.Time, years, months *int, current Age, now time.Time) (Age, error) {
	submitted := current
	if years != nil {
		submitted.Years = *years
	}
	if months != nil {
		submitted.Months = *months
	}
	if submitted.Years < 0 || submitted.Months < 0 {
		return Age{}, errNegativeAge
	}
	if submitted.Months > 11 {
		return Age{}, errAgeMonths
	}

	if birthday == nil {
		return submitted, nil
	}
	if years == nil && months == nil {
		return ComputeAge(*birthday, now)
	}
	return ValidateAge(*birthday, now, submitted.Years, submitted.Months)
}
