package auth

import "strings"

// Role es el rol del usuario autenticado. Conjunto cerrado: cualquier valor
// desconocido se trata como RoleUnknown y no habilita nada.
type Role string

const (
	RoleUnknown   Role = ""
	RoleOwner     Role = "owner"
	RoleDoctor    Role = "doctor"
	RoleClinician Role = "clinician"
	RoleAdmin     Role = "admin"
)

// ParseRole acepta también "petowner" (nombre histórico del rol dueño).
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "owner", "petowner", "pet_owner":
		return RoleOwner
	case "doctor":
		return RoleDoctor
	case "clinician":
		return RoleClinician
	case "admin":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// IsStaff: roles de la clínica (ven todas las mascotas y registros).
func (r Role) IsStaff() bool {
	switch r {
	case RoleDoctor, RoleClinician, RoleAdmin:
		return true
	default:
		return false
	}
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}
