package pets

import (
	"context"

	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/ports/auth"
)

var (
	errPetNotFound  = apperr.NotFound("Pet not found.")
	errPetForbidden = apperr.Forbidden("You do not have access to this pet.")
)

// OwnerOf expone el ownerUserID de una mascota.
// Lo usan records y vaccines para autorizar sin depender del modelo completo.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.load(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}

// CanAccess: el staff de la clínica ve todo; un owner sólo sus mascotas.
func CanAccess(actor auth.Claims, ownerUserID string) bool {
	switch actor.Role {
	case auth.RoleDoctor, auth.RoleClinician, auth.RoleAdmin:
		return true
	case auth.RoleOwner:
		return actor.UserID != "" && actor.UserID == ownerUserID
	default:
		return false
	}
}

func authorize(actor auth.Claims, p Pet) error {
	if !CanAccess(actor, p.OwnerUserID) {
		return errPetForbidden
	}
	return nil
}
