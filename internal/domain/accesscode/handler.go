package accesscode

import (
	"encoding/json"
	"net/http"

	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes espera que el router ya haya aplicado middleware.Session.
func RegisterRoutes(r chi.Router, g *Gate, log logger.Logger) {
	r.With(middleware.RequireRole(auth.RoleClinician)).
		Post("/records/access-code", requestAccessCodeHandler(g, log))
}

type accessCodeResponse struct {
	Message    string `json:"message"`
	AccessCode string `json:"accessCode"`
}

// requestAccessCodeHandler godoc
// @Summary Pedir código de acceso a diagnóstico
// @Description Genera un código de 8 caracteres, lo envía por email al dueño de la clínica y lo guarda en la sesión (cookie `vetclinic_sid`). Sólo clinicians. Un nuevo pedido invalida el código anterior.
// @Tags records
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-User-Role header string false "Solo en modo dev (clinician)"
// @Success 200 {object} accessCodeResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /records/access-code [post]
func requestAccessCodeHandler(g *Gate, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := g.Issue(r.Context(), session.FromContext(r.Context()))
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, accessCodeResponse{
			Message:    "Access code sent to the clinic owner.",
			AccessCode: code,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
