package records

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// RegisterRoutes: lectura para owner y staff; escritura sólo staff.
// El PATCH necesita middleware.Session aplicado por el router.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	staff := middleware.RequireRole(auth.RoleDoctor, auth.RoleClinician, auth.RoleAdmin)

	r.Route("/pets/{petID}/records", func(rr chi.Router) {
		rr.Get("/", listRecordsHandler(svc, log))
		rr.With(staff).Post("/", createRecordHandler(svc, log))
	})

	r.Get("/records/{recordID}", getRecordHandler(svc, log))
	r.With(staff).Patch("/records/{recordID}", updateRecordHandler(svc, log))
}

// flexFloat acepta 10, 10.5 o "10.5" (los formularios mandan strings).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

type createRecordRequest struct {
	Date           string     `json:"record_date"` // YYYY-MM-DD
	Weight         *flexFloat `json:"record_weight" swaggertype:"number"`
	Temperature    *flexFloat `json:"record_temp" swaggertype:"number"`
	Condition      *string    `json:"record_condition"`
	Symptom        *string    `json:"record_symptom"`
	RecentVisit    *string    `json:"record_recent_visit"`
	RecentPurchase *string    `json:"record_purchase"`
	Purpose        *string    `json:"record_purpose"`
	LabFile        *string    `json:"record_lab_file"`
	LabDescription *string    `json:"lab_description"`
	DiagnosisText  *string    `json:"diagnosis_text"`
	SurgeryType    *string    `json:"surgery_type"`
	SurgeryDate    string     `json:"surgery_date"` // YYYY-MM-DD
}

type updateRecordRequest struct {
	Date           *string    `json:"record_date"`
	Weight         *flexFloat `json:"record_weight" swaggertype:"number"`
	Temperature    *flexFloat `json:"record_temp" swaggertype:"number"`
	Condition      *string    `json:"record_condition"`
	Symptom        *string    `json:"record_symptom"`
	RecentVisit    *string    `json:"record_recent_visit"`
	RecentPurchase *string    `json:"record_purchase"`
	Purpose        *string    `json:"record_purpose"`
	LabFile        *string    `json:"record_lab_file"`
	LabDescription *string    `json:"lab_description"`
	DiagnosisText  *string    `json:"diagnosis_text"`
	AccessCode     string     `json:"accessCode"`
	HadSurgery     *bool      `json:"hadSurgery"`
	SurgeryType    *string    `json:"surgery_type"`
	SurgeryDate    *string    `json:"surgery_date"`
}

type recordResponse struct {
	ID             string  `json:"id"`
	PetID          string  `json:"pet_id"`
	PetName        string  `json:"pet_name"`
	Date           string  `json:"record_date"`
	Weight         float64 `json:"record_weight"`
	Temperature    float64 `json:"record_temp"`
	Condition      string  `json:"record_condition"`
	Symptom        string  `json:"record_symptom"`
	RecentVisit    string  `json:"record_recent_visit"`
	RecentPurchase string  `json:"record_purchase"`
	Purpose        string  `json:"record_purpose"`
	LabFile        *string `json:"record_lab_file"`
	LabID          *string `json:"lab_id"`
	LabDescription *string `json:"lab_description"`
	DiagnosisID    *string `json:"diagnosis_id"`
	DiagnosisText  *string `json:"diagnosis_text"`
	HadSurgery     bool    `json:"hadSurgery"`
	SurgeryID      *string `json:"surgery_id"`
	SurgeryType    *string `json:"surgery_type"`
	SurgeryDate    *string `json:"surgery_date"`
}

type updateRecordResponse struct {
	Message string         `json:"message"`
	Record  recordResponse `json:"record"`
}

// createRecordHandler godoc
// @Summary Registrar visita
// @Description Crea un registro médico para la mascota. Campos obligatorios: record_date, record_weight, record_temp, record_condition, record_symptom, record_recent_visit, record_purchase, record_purpose. Los clinicians no pueden cargar diagnóstico al crear.
// @Tags records
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev (doctor, clinician, admin)"
// @Param body body createRecordRequest true "Registro"
// @Success 201 {object} recordResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /pets/{petID}/records [post]
func createRecordHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := CreateInput{
			PetID:          chi.URLParam(r, "petID"),
			Weight:         req.Weight.ptr(),
			Temperature:    req.Temperature.ptr(),
			Condition:      req.Condition,
			Symptom:        req.Symptom,
			RecentVisit:    req.RecentVisit,
			RecentPurchase: req.RecentPurchase,
			Purpose:        req.Purpose,
			LabFile:        req.LabFile,
			LabDescription: req.LabDescription,
			DiagnosisText:  req.DiagnosisText,
			SurgeryType:    req.SurgeryType,
		}

		var err error
		if in.Date, err = parseDate(req.Date); err != nil {
			http.Error(w, "record_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if in.SurgeryDate, err = parseDate(req.SurgeryDate); err != nil {
			http.Error(w, "surgery_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		d, err := svc.Create(r.Context(), claims, in)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(d))
	}
}

// updateRecordHandler godoc
// @Summary Editar visita
// @Description PATCH parcial. `diagnosis_text`: doctor, o clinician con `accessCode` pedido en la sesión. `hadSurgery=false` desvincula y borra la cirugía. `lab_description` busca o crea el laboratorio. Todo corre en una transacción.
// @Tags records
// @Accept json
// @Produce json
// @Param recordID path string true "ID del registro"
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev (doctor, clinician, admin)"
// @Param body body updateRecordRequest true "Campos a modificar"
// @Success 200 {object} updateRecordResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /records/{recordID} [patch]
func updateRecordHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req updateRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p := Patch{
			Weight:         req.Weight.ptr(),
			Temperature:    req.Temperature.ptr(),
			Condition:      req.Condition,
			Symptom:        req.Symptom,
			RecentVisit:    req.RecentVisit,
			RecentPurchase: req.RecentPurchase,
			Purpose:        req.Purpose,
			LabFile:        req.LabFile,
			LabDescription: req.LabDescription,
			DiagnosisText:  req.DiagnosisText,
			AccessCode:     req.AccessCode,
			HadSurgery:     req.HadSurgery,
			SurgeryType:    req.SurgeryType,
		}

		var err error
		if req.Date != nil {
			if p.Date, err = parseDate(*req.Date); err != nil || p.Date == nil {
				http.Error(w, "record_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
		}
		if req.SurgeryDate != nil {
			if p.SurgeryDate, err = parseDate(*req.SurgeryDate); err != nil {
				http.Error(w, "surgery_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
		}

		sess := session.FromContext(r.Context())
		d, err := svc.Update(r.Context(), chi.URLParam(r, "recordID"), claims, sess, p)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, updateRecordResponse{
			Message: "Medical record updated successfully!",
			Record:  toRecordResponse(d),
		})
	}
}

// getRecordHandler godoc
// @Summary Obtener visita
// @Tags records
// @Produce json
// @Param recordID path string true "ID del registro"
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev"
// @Success 200 {object} recordResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /records/{recordID} [get]
func getRecordHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		d, err := svc.GetDetail(r.Context(), chi.URLParam(r, "recordID"), claims)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(d))
	}
}

// listRecordsHandler godoc
// @Summary Listar visitas de una mascota
// @Description Filtros opcionales por fecha; orden por record_date (DESC por defecto).
// @Tags records
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param sort_order query string false "ASC o DESC"
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev"
// @Success 200 {array} recordResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /pets/{petID}/records [get]
func listRecordsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		var (
			f   ListFilter
			err error
		)
		if f.From, err = parseDate(q.Get("start_date")); err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if f.To, err = parseDate(q.Get("end_date")); err != nil {
			http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		switch strings.ToUpper(strings.TrimSpace(q.Get("sort_order"))) {
		case "", "DESC":
		case "ASC":
			f.SortAsc = true
		default:
			http.Error(w, "sort_order must be ASC or DESC", http.StatusBadRequest)
			return
		}

		items, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"), claims, f)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toRecordResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func toRecordResponse(d Detail) recordResponse {
	return recordResponse{
		ID:             d.ID,
		PetID:          d.PetID,
		PetName:        d.PetName,
		Date:           d.Date.Format(dateLayout),
		Weight:         d.Weight,
		Temperature:    d.Temperature,
		Condition:      d.Condition,
		Symptom:        d.Symptom,
		RecentVisit:    d.RecentVisit,
		RecentPurchase: d.RecentPurchase,
		Purpose:        d.Purpose,
		LabFile:        d.LabFile,
		LabID:          d.LabID,
		LabDescription: d.LabDescription,
		DiagnosisID:    d.DiagnosisID,
		DiagnosisText:  d.DiagnosisText,
		HadSurgery:     d.HadSurgery(),
		SurgeryID:      d.SurgeryID,
		SurgeryType:    d.SurgeryType,
		SurgeryDate:    formatDate(d.SurgeryDate),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
