package vaccines

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/vaccines", listVaccinesHandler(svc, log))

	r.Route("/pets/{petID}/vaccines", func(vr chi.Router) {
		vr.Get("/", listPetVaccinationsHandler(svc, log))
		vr.Post("/", addVaccinationHandler(svc, log))
	})
}

type vaccineResponse struct {
	ID   string `json:"vax_id"`
	Type string `json:"vax_type"`
}

type addVaccinationRequest struct {
	Type     string `json:"vax_type"`
	Quantity *int   `json:"imm_rec_quantity"`
	Date     string `json:"imm_rec_date"` // YYYY-MM-DD, opcional
}

type vaccinationResponse struct {
	ID          string `json:"imm_rec_id"`
	PetID       string `json:"pet_id"`
	VaccineID   string `json:"vax_id"`
	VaccineType string `json:"vax_type"`
	Quantity    int    `json:"imm_rec_quantity"`
	Date        string `json:"imm_rec_date"`
}

// listVaccinesHandler godoc
// @Summary Catálogo de vacunas
// @Tags vaccines
// @Produce json
// @Success 200 {array} vaccineResponse
// @Router /vaccines [get]
func listVaccinesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListVaccines(r.Context())
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		out := make([]vaccineResponse, 0, len(items))
		for _, v := range items {
			out = append(out, vaccineResponse{ID: v.ID, Type: v.Type})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// addVaccinationHandler godoc
// @Summary Registrar vacunación
// @Description `vax_type` tiene que existir en el catálogo. Sin `imm_rec_date` se usa la fecha de hoy.
// @Tags vaccines
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev"
// @Param petID path string true "Pet ID"
// @Param body body addVaccinationRequest true "Dosis"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID}/vaccines [post]
func addVaccinationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req addVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := AddInput{Type: req.Type, Quantity: req.Quantity}
		if strings.TrimSpace(req.Date) != "" {
			t, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
			if err != nil {
				apperr.Write(w, log, apperr.BadRequest("imm_rec_date must be YYYY-MM-DD"))
				return
			}
			in.Date = &t
		}

		rec, err := svc.AddRecord(r.Context(), chi.URLParam(r, "petID"), claims, in)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Vaccination record added successfully!",
			"record":  toVaccinationResponse(rec),
		})
	}
}

// listPetVaccinationsHandler godoc
// @Summary Vacunas de una mascota
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev"
// @Param petID path string true "Pet ID"
// @Success 200 {array} vaccinationResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID}/vaccines [get]
func listPetVaccinationsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"), claims)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		out := make([]vaccinationResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toVaccinationResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toVaccinationResponse(rec Record) vaccinationResponse {
	return vaccinationResponse{
		ID:          rec.ID,
		PetID:       rec.PetID,
		VaccineID:   rec.VaccineID,
		VaccineType: rec.VaccineType,
		Quantity:    rec.Quantity,
		Date:        rec.Date.Format(dateLayout),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
