package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errUnauthorized     = apperr.Unauthorized("unauthorized")
	errUserNotFound     = apperr.NotFound("User not found.")
	errAdminOnly        = apperr.Forbidden("Only admins can create accounts.")
	errNotStaff         = apperr.Forbidden("Only clinic staff have an employee profile.")
	errNotOwner         = apperr.Forbidden("Only pet owners have an owner profile.")
	errAccountFields    = apperr.BadRequest("First name, last name, email, password and role are required.")
	errProfileFields    = apperr.BadRequest("First name, last name and email are required.")
	errInvalidEmail     = apperr.BadRequest("Invalid email address.")
	errEmailTaken       = apperr.BadRequest("Email is already in use.")
	errInvalidRole      = apperr.BadRequest("Invalid role.")
	errPasswordFields   = apperr.BadRequest("All fields are required!")
	errPasswordMismatch = apperr.BadRequest("New passwords do not match!")
	errWeakPassword     = apperr.BadRequest("Password must be at least 8 characters and include an uppercase letter, a lowercase letter, a number and a symbol.")
	errPasswordTooLong  = apperr.BadRequest("Password must be at most 72 bytes.")
	errWrongPassword    = apperr.Unauthorized("Incorrect current password.")

	msgCreateFailed   = "Server error while creating account."
	msgFetchFailed    = "Server error while fetching profile."
	msgProfileFailed  = "Server error while updating profile."
	msgPasswordFailed = "Server error while changing password."
)

const minPasswordLen = 8

type Options struct {
	Logger logger.Logger
	// BcryptCost: 0 = bcrypt.DefaultCost. Los tests usan bcrypt.MinCost.
	BcryptCost int
}

type Service struct {
	repo Repository
	log  logger.Logger
	cost int

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		repo:  repo,
		log:   log.With(map[string]any{"component": "users"}),
		cost:  cost,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// ProfileInput: campos comunes a todo perfil. Contact vacío se guarda como NULL.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Contact   *string
}

type OwnerProfileInput struct {
	ProfileInput
	Address     string
	AltPerson1  *string
	AltContact1 *string
	AltPerson2  *string
	AltContact2 *string
}

type CreateAccountInput struct {
	OwnerProfileInput
	Password string
	Role     string
}

type ChangePasswordInput struct {
	Current string
	New     string
	Confirm string
}

// CreateAccount da de alta un usuario. Sólo admins; el perfil de dueño se
// crea cuando el rol es owner.
func (s *Service) CreateAccount(ctx context.Context, actor auth.Claims, in CreateAccountInput) (Account, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return Account{}, errUnauthorized
	}
	if actor.Role != auth.RoleAdmin {
		return Account{}, errAdminOnly
	}
	if blankProfile(in.ProfileInput) || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return Account{}, errAccountFields
	}
	role := auth.ParseRole(in.Role)
	if role == auth.RoleUnknown {
		return Account{}, errInvalidRole
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Account{}, err
	}
	if err := checkPassword(in.Password); err != nil {
		return Account{}, err
	}
	if err := s.ensureEmailFree(ctx, email, "", msgCreateFailed); err != nil {
		return Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Account{}, apperr.Server(msgCreateFailed, err)
	}

	now := s.now()
	u := User{
		ID:           s.newID(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Contact:      optional(in.Contact),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var owner *OwnerProfile
	if role == auth.RoleOwner {
		owner = ownerProfile(u.ID, in.OwnerProfileInput)
	}

	if err := s.repo.Create(ctx, u, owner); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Account{}, errEmailTaken
		}
		return Account{}, s.serverErr(err, msgCreateFailed, u.ID)
	}

	s.log.Info("account created", map[string]any{"user_id": u.ID, "role": string(role), "by": actor.UserID})
	return Account{User: u, Owner: owner}, nil
}

// EmployeeProfile devuelve el perfil del personal autenticado.
func (s *Service) EmployeeProfile(ctx context.Context, actor auth.Claims) (User, error) {
	u, err := s.self(ctx, actor, msgFetchFailed)
	if err != nil {
		return User{}, err
	}
	if !u.Role.IsStaff() {
		return User{}, errNotStaff
	}
	return u, nil
}

// OwnerAccount devuelve el usuario dueño junto con su perfil de dueño.
func (s *Service) OwnerAccount(ctx context.Context, actor auth.Claims) (Account, error) {
	u, err := s.self(ctx, actor, msgFetchFailed)
	if err != nil {
		return Account{}, err
	}
	if u.Role != auth.RoleOwner {
		return Account{}, errNotOwner
	}
	p, err := s.repo.GetOwnerProfile(ctx, u.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		p = OwnerProfile{UserID: u.ID}
	case err != nil:
		return Account{}, s.serverErr(err, msgFetchFailed, u.ID)
	}
	return Account{User: u, Owner: &p}, nil
}

func (s *Service) UpdateEmployeeProfile(ctx context.Context, actor auth.Claims, in ProfileInput) (User, error) {
	u, err := s.self(ctx, actor, msgProfileFailed)
	if err != nil {
		return User{}, err
	}
	if !u.Role.IsStaff() {
		return User{}, errNotStaff
	}
	if err := s.applyProfile(ctx, &u, in); err != nil {
		return User{}, err
	}

	if err := s.repo.UpdateProfile(ctx, u, nil); err != nil {
		return User{}, s.mapUpdateErr(err, u.ID)
	}
	return u, nil
}

func (s *Service) UpdateOwnerProfile(ctx context.Context, actor auth.Claims, in OwnerProfileInput) (Account, error) {
	u, err := s.self(ctx, actor, msgProfileFailed)
	if err != nil {
		return Account{}, err
	}
	if u.Role != auth.RoleOwner {
		return Account{}, errNotOwner
	}
	if err := s.applyProfile(ctx, &u, in.ProfileInput); err != nil {
		return Account{}, err
	}
	owner := ownerProfile(u.ID, in)

	if err := s.repo.UpdateProfile(ctx, u, owner); err != nil {
		return Account{}, s.mapUpdateErr(err, u.ID)
	}
	return Account{User: u, Owner: owner}, nil
}

// ChangePassword: campos, coincidencia y fortaleza se validan antes de tocar
// el storage; la contraseña actual se verifica contra el hash guardado.
func (s *Service) ChangePassword(ctx context.Context, actor auth.Claims, in ChangePasswordInput) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return errUnauthorized
	}
	if in.Current == "" || in.New == "" || in.Confirm == "" {
		return errPasswordFields
	}
	if in.New != in.Confirm {
		return errPasswordMismatch
	}
	if err := checkPassword(in.New); err != nil {
		return err
	}

	u, err := s.self(ctx, actor, msgPasswordFailed)
	if err != nil {
		return err
	}
	switch err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Current)); {
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return errWrongPassword
	case err != nil:
		return s.serverErr(err, msgPasswordFailed, u.ID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), s.cost)
	if err != nil {
		return s.serverErr(err, msgPasswordFailed, u.ID)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errUserNotFound
		}
		return s.serverErr(err, msgPasswordFailed, u.ID)
	}

	s.log.Info("password changed", map[string]any{"user_id": u.ID})
	return nil
}

func (s *Service) self(ctx context.Context, actor auth.Claims, msg string) (User, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return User{}, errUnauthorized
	}
	u, err := s.repo.GetByID(ctx, actor.UserID)
	if errors.Is(err, ErrNotFound) {
		return User{}, errUserNotFound
	}
	if err != nil {
		return User{}, s.serverErr(err, msg, actor.UserID)
	}
	return u, nil
}

func (s *Service) applyProfile(ctx context.Context, u *User, in ProfileInput) error {
	if blankProfile(in) {
		return errProfileFields
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return err
	}
	if email != u.Email {
		if err := s.ensureEmailFree(ctx, email, u.ID, msgProfileFailed); err != nil {
			return err
		}
	}

	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Email = email
	u.Contact = optional(in.Contact)
	u.UpdatedAt = s.now()
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptID, msg string) error {
	taken, err := s.repo.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return s.serverErr(err, msg, exceptID)
	}
	if taken {
		return errEmailTaken
	}
	return nil
}

func (s *Service) mapUpdateErr(err error, userID string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return errUserNotFound
	case errors.Is(err, ErrEmailTaken):
		return errEmailTaken
	default:
		return s.serverErr(err, msgProfileFailed, userID)
	}
}

func (s *Service) serverErr(err error, msg, userID string) error {
	s.log.Error(msg, map[string]any{"user_id": userID, "err": err.Error()})
	return apperr.Server(msg, err)
}

func blankProfile(in ProfileInput) bool {
	return strings.TrimSpace(in.FirstName) == "" ||
		strings.TrimSpace(in.LastName) == "" ||
		strings.TrimSpace(in.Email) == ""
}

func normalizeEmail(s string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errInvalidEmail
	}
	return email, nil
}

func checkPassword(pw string) error {
	if len(pw) > 72 {
		return errPasswordTooLong
	}
	if len(pw) < minPasswordLen {
		return errWeakPassword
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errWeakPassword
	}
	return nil
}

func ownerProfile(userID string, in OwnerProfileInput) *OwnerProfile {
	return &OwnerProfile{
		UserID:      userID,
		Address:     strings.TrimSpace(in.Address),
		AltPerson1:  optional(in.AltPerson1),
		AltContact1: optional(in.AltContact1),
		AltPerson2:  optional(in.AltPerson2),
		AltContact2: optional(in.AltContact2),
	}
}

func optional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
