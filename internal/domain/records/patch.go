package records

import (
	"strings"
	"time"
)

// Patch es una actualización parcial: nil = no tocar.
type Patch struct {
	Date           *time.Time
	Weight         *float64
	Temperature    *float64
	Condition      *string
	Symptom        *string
	RecentVisit    *string
	RecentPurchase *string
	Purpose        *string

	LabFile        *string
	LabDescription *string

	DiagnosisText *string
	AccessCode    string

	HadSurgery  *bool
	SurgeryType *string
	SurgeryDate *time.Time
}

// apply mergea los campos escalares sobre el estado actual.
// Las sub-entidades (lab, diagnosis, surgery) las resuelve el service.
func (p Patch) apply(r *Record) {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Weight != nil {
		r.Weight = *p.Weight
	}
	if p.Temperature != nil {
		r.Temperature = *p.Temperature
	}
	if p.Condition != nil {
		r.Condition = strings.TrimSpace(*p.Condition)
	}
	if p.Symptom != nil {
		r.Symptom = strings.TrimSpace(*p.Symptom)
	}
	if p.RecentVisit != nil {
		r.RecentVisit = strings.TrimSpace(*p.RecentVisit)
	}
	if p.RecentPurchase != nil {
		r.RecentPurchase = strings.TrimSpace(*p.RecentPurchase)
	}
	if p.Purpose != nil {
		r.Purpose = strings.TrimSpace(*p.Purpose)
	}
	if p.LabFile != nil {
		v := strings.TrimSpace(*p.LabFile)
		if v == "" {
			r.LabFile = nil
		} else {
			r.LabFile = &v
		}
	}
}

// CreateInput usa punteros para poder distinguir campos obligatorios ausentes.
type CreateInput struct {
	PetID string

	Date           *time.Time
	Weight         *float64
	Temperature    *float64
	Condition      *string
	Symptom        *string
	RecentVisit    *string
	RecentPurchase *string
	Purpose        *string

	LabFile        *string
	LabDescription *string
	DiagnosisText  *string
	SurgeryType    *string
	SurgeryDate    *time.Time
}

func (in CreateInput) missingRequired() bool {
	if in.Date == nil || in.Weight == nil || in.Temperature == nil {
		return true
	}
	for _, s := range []*string{in.Condition, in.Symptom, in.RecentVisit, in.RecentPurchase, in.Purpose} {
		if blank(s) {
			return true
		}
	}
	return false
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func trimmed(s *string) *string {
	if blank(s) {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
