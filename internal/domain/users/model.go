package users

import (
	"time"

	"vet-clinic/internal/ports/auth"
)

// User es la cuenta (dueño o personal de la clínica). El ID coincide con el
// user id de los claims.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Contact      *string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnerProfile: datos extra de un dueño de mascotas (dirección y contactos alternativos).
type OwnerProfile struct {
	UserID      string
	Address     string
	AltPerson1  *string
	AltContact1 *string
	AltPerson2  *string
	AltContact2 *string
}

// Account es lo que ve el propio usuario. Owner sólo viene para RoleOwner.
type Account struct {
	User  User
	Owner *OwnerProfile
}
