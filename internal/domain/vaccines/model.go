package vaccines

import "time"

// Vaccine es una entrada del catálogo (tabla vaccines, se carga por migración).
type Vaccine struct {
	ID   string
	Type string
}

// Record es una dosis aplicada a una mascota.
type Record struct {
	ID          string
	PetID       string
	VaccineID   string
	VaccineType string
	Quantity    int
	Date        time.Time
}

type AddInput struct {
	Type     string
	Quantity *int
	Date     *time.Time
}
