package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"vet-clinic/internal/domain/users"
)

type UserRepo struct {
	mu     sync.RWMutex
	byID   map[string]users.User
	owners map[string]users.OwnerProfile
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:   make(map[string]users.User),
		owners: make(map[string]users.OwnerProfile),
	}
}

func (r *UserRepo) Create(ctx context.Context, u users.User, owner *users.OwnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	if r.emailTaken(u.Email, "") {
		return users.ErrEmailTaken
	}
	r.byID[u.ID] = u
	if owner != nil {
		r.owners[u.ID] = *owner
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetOwnerProfile(ctx context.Context, userID string) (users.OwnerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.owners[userID]
	if !ok {
		return users.OwnerProfile{}, users.ErrNotFound
	}
	return p, nil
}

func (r *UserRepo) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailTaken(email, exceptID), nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u users.User, owner *users.OwnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[u.ID]
	if !ok {
		return users.ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return users.ErrEmailTaken
	}
	cur.FirstName, cur.LastName, cur.Email, cur.Contact = u.FirstName, u.LastName, u.Email, u.Contact
	cur.UpdatedAt = u.UpdatedAt
	r.byID[u.ID] = cur
	if owner != nil {
		r.owners[u.ID] = *owner
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return users.ErrNotFound
	}
	u.PasswordHash = hash
	r.byID[id] = u
	return nil
}

func (r *UserRepo) emailTaken(email, exceptID string) bool {
	for id, u := range r.byID {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
