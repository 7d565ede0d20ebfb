package pets

import "time"

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func parseSex(s string) (Sex, bool) {
	switch Sex(s) {
	case SexMale, SexFemale, SexUnknown:
		return Sex(s), true
	case "":
		return SexUnknown, true
	default:
		return "", false
	}
}

// Status: las mascotas archivadas no se borran, salen del listado activo.
// @Enum active, archived
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Pet representa el perfil de una mascota registrada en la clínica.
// AgeYears/AgeMonths siempre son los calculados desde Birthday al momento de escribir.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species string
	Breed   string
	Sex     Sex

	Birthday  *time.Time
	AgeYears  int
	AgeMonths int

	Microchip string
	Notes     string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
