package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloudforge/invoice-service/internal/metrics"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	// Registration / login
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)

	// Verification
	VerifyAccount(w http.ResponseWriter, r *http.Request)
	VerifyCode(w http.ResponseWriter, r *http.Request)

	// Password reset
	PasswordResetRequest(w http.ResponseWriter, r *http.Request)
	PasswordResetValidate(w http.ResponseWriter, r *http.Request)
	PasswordResetConfirm(w http.ResponseWriter, r *http.Request)
	PasswordChange(w http.ResponseWriter, r *http.Request)

	// Profile / account management
	Profile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	ToggleMFA(w http.ResponseWriter, r *http.Request)

	// Admin
	AdminAccountSettings(w http.ResponseWriter, r *http.Request)
	AdminSetRole(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health  HealthHandler
	Account AccountHandler

	MetaMW  func(http.Handler) http.Handler
	AuthMW  func(http.Handler) http.Handler
	AdminMW func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Account == nil {
		return nil, fmt.Errorf("nil Account handler")
	}
	if deps.MetaMW == nil {
		return nil, fmt.Errorf("nil Meta middleware")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}

	r := chi.NewRouter()
	r.Use(deps.MetaMW)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/user", func(r chi.Router) {
		// --- Registration / login ---
		r.Post("/register", deps.Account.Register)
		r.Post("/login", deps.Account.Login)
		r.Post("/refresh", deps.Account.Refresh)
		r.Post("/logout", deps.Account.Logout)

		// --- Verification links and codes ---
		r.Get("/verify/account/{token}", deps.Account.VerifyAccount)
		r.Get("/verify/password/{token}", deps.Account.PasswordResetValidate)
		r.Post("/verify/code", deps.Account.VerifyCode)

		// --- Password reset ---
		r.Post("/resetpassword", deps.Account.PasswordResetRequest)
		r.Post("/resetpassword/confirm", deps.Account.PasswordResetConfirm)

		// --- Authenticated account management ---
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW)

			r.Get("/profile", deps.Account.Profile)
			r.Patch("/update", deps.Account.UpdateProfile)
			r.Post("/update/password", deps.Account.PasswordChange)
			r.Patch("/togglemfa", deps.Account.ToggleMFA)
		})

		// --- Admin ---
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Use(deps.AdminMW)

			r.Patch("/update/settings", deps.Account.AdminAccountSettings)
			r.Patch("/update/role", deps.Account.AdminSetRole)
		})
	})

	return r, nil
}
