package users

import (
	"encoding/json"
	"net/http"

	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/apperr"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	staff := middleware.RequireRole(auth.RoleDoctor, auth.RoleClinician, auth.RoleAdmin)
	owner := middleware.RequireRole(auth.RoleOwner)
	anyone := middleware.RequireRole(auth.RoleOwner, auth.RoleDoctor, auth.RoleClinician, auth.RoleAdmin)

	r.Route("/users", func(ur chi.Router) {
		ur.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", createAccountHandler(svc, log))

		ur.With(staff).Get("/myAccount", employeeProfileHandler(svc, log))
		ur.With(owner).Get("/owner/myAccount", ownerAccountHandler(svc, log))
		ur.With(staff).Put("/update-employee-profile", updateEmployeeProfileHandler(svc, log))
		ur.With(owner).Put("/update-petowner-profile", updateOwnerProfileHandler(svc, log))
		ur.With(anyone).Post("/change-password", changePasswordHandler(svc, log))
	})
}

type profileRequest struct {
	FirstName string  `json:"firstname"`
	LastName  string  `json:"lastname"`
	Email     string  `json:"email"`
	Contact   *string `json:"contact"`
}

type ownerProfileRequest struct {
	profileRequest
	Address     string  `json:"address"`
	AltPerson   *string `json:"altperson"`
	AltContact  *string `json:"altcontact"`
	AltPerson2  *string `json:"altperson2"`
	AltContact2 *string `json:"altcontact2"`
}

type createAccountRequest struct {
	ownerProfileRequest
	Password string `json:"password"`
	Role     string `json:"role" enums:"owner,doctor,clinician,admin"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type userResponse struct {
	UserID    string    `json:"user_id"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Email     string    `json:"email"`
	Contact   *string   `json:"contact"`
	Role      auth.Role `json:"role"`
}

type ownerResponse struct {
	userResponse
	Address     string  `json:"address"`
	AltPerson   *string `json:"altperson"`
	AltContact  *string `json:"altcontact"`
	AltPerson2  *string `json:"altperson2"`
	AltContact2 *string `json:"altcontact2"`
}

type messageResponse struct {
	Message string `json:"message"`
	Profile any    `json:"profile,omitempty"`
}

// createAccountHandler godoc
// @Summary Crear cuenta
// @Description Alta de dueño o personal. Sólo admin. Con rol owner se guarda también dirección y contactos alternativos.
// @Tags users
// @Accept json
// @Produce json
// @Param body body createAccountRequest true "Cuenta"
// @Success 201 {object} messageResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /users [post]
func createAccountHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		acc, err := svc.CreateAccount(r.Context(), claims, CreateAccountInput{
			OwnerProfileInput: req.ownerProfileRequest.input(),
			Password:          req.Password,
			Role:              req.Role,
		})
		if err != nil {
			apperr.Write(w, log, err)
			return
		}

		var profile any = toUserResponse(acc.User)
		if acc.Owner != nil {
			profile = toOwnerResponse(acc.User, *acc.Owner)
		}
		writeJSON(w, http.StatusCreated, messageResponse{Message: "Account created successfully!", Profile: profile})
	}
}

// employeeProfileHandler godoc
// @Summary Mi cuenta (personal)
// @Tags users
// @Produce json
// @Success 200 {object} userResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/myAccount [get]
func employeeProfileHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		u, err := svc.EmployeeProfile(r.Context(), claims)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// ownerAccountHandler godoc
// @Summary Mi cuenta (dueño)
// @Tags users
// @Produce json
// @Success 200 {object} ownerResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/owner/myAccount [get]
func ownerAccountHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		acc, err := svc.OwnerAccount(r.Context(), claims)
		if err != nil {
			apperr.Write(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(acc.User, *acc.Owner))
	}
}

// updateEmployeeProfileHandler godoc
// @Summary Editar perfil de personal
// @Tags users
// @Accept json
// @Produce json
// @Param body body profileRequest true "Perfil"
// @Success 200 {object} userResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /users/update-employee-profile [put]
func updateEmployeeProfileHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.UpdateEmployeeProfile(r.Context(), claims, req.input())
		if err != nil {
			apperr.Write(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// updateOwnerProfileHandler godoc
// @Summary Editar perfil de dueño
// @Tags users
// @Accept json
// @Produce json
// @Param body body ownerProfileRequest true "Perfil"
// @Success 200 {object} messageResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /users/update-petowner-profile [put]
func updateOwnerProfileHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req ownerProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		acc, err := svc.UpdateOwnerProfile(r.Context(), claims, req.input())
		if err != nil {
			apperr.Write(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{
			Message: "Pet owner profile updated successfully!",
			Profile: toOwnerResponse(acc.User, *acc.Owner),
		})
	}
}

// changePasswordHandler godoc
// @Summary Cambiar contraseña
// @Tags users
// @Accept json
// @Produce json
// @Param body body changePasswordRequest true "Contraseñas"
// @Success 200 {object} messageResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /users/change-password [post]
func changePasswordHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		err := svc.ChangePassword(r.Context(), claims, ChangePasswordInput{
			Current: req.CurrentPassword,
			New:     req.NewPassword,
			Confirm: req.ConfirmPassword,
		})
		if err != nil {
			apperr.Write(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Password changed successfully!"})
	}
}

func (req profileRequest) input() ProfileInput {
	return ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Contact:   req.Contact,
	}
}

func (req ownerProfileRequest) input() OwnerProfileInput {
	return OwnerProfileInput{
		ProfileInput: req.profileRequest.input(),
		Address:      req.Address,
		AltPerson1:   req.AltPerson,
		AltContact1:  req.AltContact,
		AltPerson2:   req.AltPerson2,
		AltContact2:  req.AltContact2,
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Contact:   u.Contact,
		Role:      u.Role,
	}
}

func toOwnerResponse(u User, p OwnerProfile) ownerResponse {
	return ownerResponse{
		userResponse: toUserResponse(u),
		Address:      p.Address,
		AltPerson:    p.AltPerson1,
		AltContact:   p.AltContact1,
		AltPerson2:   p.AltPerson2,
		AltContact2:  p.AltContact2,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
