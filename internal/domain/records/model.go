package records

import "time"

// Record es una visita a la clínica (tabla record_info).
// DiagnosisID existe sólo si hay texto de diagnóstico; SurgeryID sólo mientras
// hadSurgery sea true.
type Record struct {
	ID    string
	PetID string

	Date           time.Time
	Weight         float64
	Temperature    float64
	Condition      string
	Symptom        string
	RecentVisit    string
	RecentPurchase string
	Purpose        string

	LabFile     *string
	LabID       *string
	DiagnosisID *string
	SurgeryID   *string
}

type Diagnosis struct {
	ID   string
	Text string
}

// Surgery pertenece a un único record; se borra cuando se desvincula.
type Surgery struct {
	ID   string
	Type string
	Date *time.Time
}

// Lab se deduplica por Description.
type Lab struct {
	ID          string
	Description string
}

// Detail es el record con sus sub-entidades resueltas (lo que devuelve la API).
type Detail struct {
	Record

	PetName        string
	DiagnosisText  *string
	SurgeryType    *string
	SurgeryDate    *time.Time
	LabDescription *string
}

func (d Detail) HadSurgery() bool {
	return d.SurgeryID != nil
}

// ListFilter para ListByPet. Default: más reciente primero.
type ListFilter struct {
	From    *time.Time
	To      *time.Time
	SortAsc bool
}
