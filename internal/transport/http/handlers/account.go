package http_handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cloudforge/invoice-service/internal/application/account"
	"github.com/cloudforge/invoice-service/internal/audit"
	"github.com/cloudforge/invoice-service/internal/domain"
	"github.com/cloudforge/invoice-service/internal/logger"
	"github.com/cloudforge/invoice-service/internal/metrics"
	"github.com/cloudforge/invoice-service/internal/transport/http/dto"
	"github.com/cloudforge/invoice-service/internal/transport/http/middleware"
	"github.com/cloudforge/invoice-service/internal/transport/http/response"
)

type AccountHandler struct {
	svc *account.Service
	aud *audit.Logger
}

func NewAccountHandler(svc *account.Service, aud *audit.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, aud: aud}
}

// ---- Registration / login ----

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	metrics.RecordRegistration()
	logger.WithCtx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_registered")

	// No tokens: the account stays disabled until the emailed
	// verification link is consumed.
	response.Created(w, dto.RegisterData{User: dto.NewUserView(u)})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		metrics.RecordLogin("failure")
		h.aud.LoginFailed(r.Context(), req.Email, err.Error())
		response.WriteError(w, r, err)
		return
	}

	if res.MFAPending {
		// Credentials passed but the account uses MFA: send a code and
		// hold the tokens until it is verified.
		if err := h.svc.IssueMFACode(r.Context(), res.User.ID); err != nil {
			response.WriteError(w, r, err)
			return
		}
		metrics.RecordLogin("mfa_pending")
		metrics.RecordMFAChallenge()
		h.aud.MFAChallengeSent(r.Context(), res.User.ID)
		response.OK(w, dto.LoginData{
			User:       dto.NewUserView(res.User),
			MFAPending: true,
		})
		return
	}

	metrics.RecordLogin("success")
	h.aud.LoginSuccess(r.Context(), res.User.ID, res.User.Email)

	response.OK(w, dto.LoginData{
		User: dto.NewUserView(res.User),
		Tokens: &dto.TokensView{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			TokenType:    res.Tokens.TokenType,
			ExpiresIn:    res.Tokens.ExpiresIn,
		},
	})
}

// ---- Account verification ----

func (h *AccountHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		response.WriteError(w, r, domain.ErrMissingField("token"))
		return
	}

	u, err := h.svc.VerifyAccount(r.Context(), token)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	h.aud.AccountVerified(r.Context(), u.ID, u.Email)
	response.OK(w, map[string]string{"status": "verified"})
}

// ---- MFA ----

func (h *AccountHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyCodeRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.VerifyMFACode(r.Context(), req.Email, req.Code)
	if err != nil {
		metrics.RecordLogin("failure")
		response.WriteError(w, r, err)
		return
	}

	metrics.RecordLogin("success")
	h.aud.MFAVerified(r.Context(), res.User.ID)

	response.OK(w, dto.LoginData{
		User: dto.NewUserView(res.User),
		Tokens: &dto.TokensView{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			TokenType:    res.Tokens.TokenType,
			ExpiresIn:    res.Tokens.ExpiresIn,
		},
	})
}

func (h *AccountHandler) ToggleMFA(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	u, _, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	updated, err := h.svc.ToggleMFA(r.Context(), u.Email)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	h.aud.MFAToggled(r.Context(), updated.Email, updated.UsingMFA)
	response.OK(w, dto.RegisterData{User: dto.NewUserView(updated)})
}

// ---- Password reset ----

func (h *AccountHandler) PasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}

	h.aud.PasswordResetRequested(r.Context(), req.Email)
	response.NoContent(w)
}

func (h *AccountHandler) PasswordResetValidate(w http.ResponseWriter, r *http.Request) {
	q := dto.PasswordResetValidateQuery{Token: strings.TrimSpace(chi.URLParam(r, "token"))}
	if err := q.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if _, err := h.svc.ValidateResetToken(r.Context(), q.Token); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, map[string]bool{"valid": true})
}

func (h *AccountHandler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirmRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.NoContent(w)
}

func (h *AccountHandler) PasswordChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	var req dto.PasswordChangeRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	h.aud.PasswordChanged(r.Context(), userID)
	response.NoContent(w)
}

// ---- Profile ----

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	u, events, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.ProfileData{
		User:   dto.NewUserView(u),
		Events: dto.NewEventViews(events),
	})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	var req dto.ProfileUpdateRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), userID, account.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		Title:     req.Title,
		Bio:       req.Bio,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	h.aud.ProfileUpdated(r.Context(), userID)
	response.OK(w, dto.RegisterData{User: dto.NewUserView(u)})
}

// ---- Sessions ----

func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	toks, u, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.RefreshData{
		User: dto.NewUserView(u),
		Tokens: dto.TokensView{
			AccessToken:  toks.AccessToken,
			RefreshToken: toks.RefreshToken,
			TokenType:    toks.TokenType,
			ExpiresIn:    toks.ExpiresIn,
		},
	})
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.LogoutRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	_ = h.svc.Logout(r.Context(), req.RefreshToken) // keep idempotent
	response.NoContent(w)
}

// ---- Admin ----

func (h *AccountHandler) AdminAccountSettings(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())

	var req dto.AccountSettingsRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateAccountSettings(r.Context(), req.UserID, req.Enabled, req.Locked)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	h.aud.SettingsChanged(r.Context(), req.UserID, actorID, req.Enabled, req.Locked)
	response.OK(w, dto.RegisterData{User: dto.NewUserView(u)})
}

func (h *AccountHandler) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())

	var req dto.SetRoleRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.SetRole(r.Context(), req.UserID, req.Role)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	h.aud.RoleChanged(r.Context(), req.UserID, actorID, req.Role)
	response.OK(w, dto.RegisterData{User: dto.NewUserView(u)})
}
