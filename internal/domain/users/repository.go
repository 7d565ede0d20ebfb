package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type Repository interface {
	// Create guarda el usuario y, si viene, su perfil de dueño en una sola operación.
	Create(ctx context.Context, u User, owner *OwnerProfile) error
	GetByID(ctx context.Context, id string) (User, error)
	GetOwnerProfile(ctx context.Context, userID string) (OwnerProfile, error)
	// EmailTaken ignora al usuario exceptID (para updates del propio perfil).
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	// UpdateProfile actualiza nombre, email y contacto; owner != nil también
	// actualiza el perfil de dueño.
	UpdateProfile(ctx context.Context, u User, owner *OwnerProfile) error
	UpdatePassword(ctx context.Context, id, hash string) error
}
