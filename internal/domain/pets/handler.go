package pets

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

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, log))
		pr.Get("/", listPetsHandler(svc, log, ""))
		pr.Get("/active", listPetsHandler(svc, log, StatusActive))
		pr.Get("/archived", listPetsHandler(svc, log, StatusArchived))

		pr.Get("/{petID}", getPetHandler(svc, log))
		pr.Patch("/{petID}", updatePetHandler(svc, log))
		pr.Post("/{petID}/archive", statusHandler(svc, log, StatusArchived))
		pr.Post("/{petID}/restore", statusHandler(svc, log, StatusActive))
	})
}

type createPetRequest struct {
	Name      string `json:"name"`
	Species   string `json:"species"`
	Breed     string `json:"breed"`
	Sex       string `json:"sex" enums:"male,female,unknown"`
	Birthday  string `json:"birthday"` // YYYY-MM-DD opcional
	AgeYears  *int   `json:"age_years"`
	AgeMonths *int   `json:"age_months"`
	Microchip string `json:"microchip"`
	Notes     string `json:"notes"`
}

type petResponse struct {
	ID          string     `json:"id"`
	OwnerUserID string     `json:"owner_user_id"`
	Name        string     `json:"name"`
	Species     string     `json:"species"`
	Breed       string     `json:"breed"`
	Sex         Sex        `json:"sex"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	AgeYears    int        `json:"age_years"`
	AgeMonths   int        `json:"age_months"`
	Microchip   string     `json:"microchip"`
	Notes       string     `json:"notes"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type updatePetRequest struct {
	Name      *string `json:"name"`
	Species   *string `json:"species"`
	Breed     *string `json:"breed"`
	Sex       *string `json:"sex"`
	AgeYears  *int    `json:"age_years"`
	AgeMonths *int    `json:"age_months"`
	Microchip *string `json:"microchip"`
	Notes     *string `json:"notes"`
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description Crea el perfil de una mascota para el usuario autenticado. Si viene `birthday`, la edad se calcula; si además viene `age_years`/`age_months` tiene que coincidir.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev (owner, doctor, clinician, admin)"
// @Param body body createPetRequest true "Mascota"
// @Success 201 {object} petResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.Birthday) != "" {
			t, err := time.Parse("2006-01-02", req.Birthday)
			if err != nil {
				http.Error(w, "birthday must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			Birthday:  bd,
			AgeYears:  req.AgeYears,
			AgeMonths: req.AgeMonths,
			Microchip: req.Microchip,
			Notes:     req.Notes,
		})
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Owner: sus mascotas. Staff: todas. `/pets/active` y `/pets/archived` filtran por estado.
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev"
// @Success 200 {array} petResponse
// @Failure 401 {object} map[string]string
// @Router /pets [get]
// @Router /pets/active [get]
// @Router /pets/archived [get]
func listPetsHandler(svc *Service, log logger.Logger, status Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context(), claims, status)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev"
// @Success 200 {object} petResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Get(r.Context(), chi.URLParam(r, "petID"), claims)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Editar perfil de mascota
// @Description PATCH parcial. `birthday: null` limpia el cumpleaños. Si cambia el cumpleaños o se envía edad, se valida la consistencia: "Age mismatch! The computed age based on birthday is {Y} years and {M} months."
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev"
// @Param body body updatePetRequest true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Decodificamos a map primero para detectar "birthday": null.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updatePetRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		bd := patchBirthday{}
		if v, exists := raw["birthday"]; exists {
			bd.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birthday must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
				if err != nil {
					http.Error(w, "birthday must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &t
			}
		}

		updated, err := svc.UpdateProfile(r.Context(), chi.URLParam(r, "petID"), claims, UpdateProfileInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			Birthday:  bd,
			AgeYears:  req.AgeYears,
			AgeMonths: req.AgeMonths,
			Microchip: req.Microchip,
			Notes:     req.Notes,
		})
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

// statusHandler godoc
// @Summary Archivar / restaurar mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev"
// @Success 200 {object} petResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pets/{petID}/archive [post]
// @Router /pets/{petID}/restore [post]
func statusHandler(svc *Service, log logger.Logger, st Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")

		var (
			p   Pet
			err error
		)
		if st == StatusArchived {
			p, err = svc.Archive(r.Context(), petID, claims)
		} else {
			p, err = svc.Restore(r.Context(), petID, claims)
		}
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Sex:         p.Sex,
		Birthday:    p.Birthday,
		AgeYears:    p.AgeYears,
		AgeMonths:   p.AgeMonths,
		Microchip:   p.Microchip,
		Notes:       p.Notes,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// writeJSON está duplicado en cada handler de dominio a propósito;
// se extrae a un helper común recién si aparece un cuarto módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
