package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/advancelms/lms-api/internal/config"
	"github.com/advancelms/lms-api/internal/httputil"
	"github.com/advancelms/lms-api/internal/middleware"
	"github.com/advancelms/lms-api/internal/model"
	"github.com/advancelms/lms-api/internal/payload"
	"github.com/advancelms/lms-api/internal/usecase"
)

type UserHandler struct {
	userUsecase usecase.UserUsecase
	validator   *payload.Validator
	cfg         *config.Config
	logger      *zerolog.Logger
}

func NewUserHandler(
	userUsecase usecase.UserUsecase,
	validator *payload.Validator,
	cfg *config.Config,
	logger *zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		validator:   validator,
		cfg:         cfg,
		logger:      logger,
	}
}

// Register handles POST /api/user/register (multipart, avatar optional).
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := payload.RegisterRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := usecase.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if avatar, cleanup, err := formFile(r, "file"); err == nil {
		defer cleanup()
		params.Avatar = avatar
	}

	user, token, err := h.userUsecase.Register(r.Context(), params)
	if err != nil {
		h.writeUserError(w, err, "failed to register user")
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Registered successfully",
		"user":    user,
	})
}

// Login handles POST /api/user/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.userUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeUserError(w, err, "failed to log in user")
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged in successfully",
		"user":    user,
	})
}

// Logout handles GET /api/user/logout by expiring the session cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Me handles GET /api/user/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

// UpdateProfile handles PUT /api/user/updateprofile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req payload.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.userUsecase.UpdateProfile(r.Context(), user.ID.Hex(), usecase.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
	}); err != nil {
		h.writeUserError(w, err, "failed to update profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
	})
}

// ChangePassword handles PUT /api/user/changepassword.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req payload.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userUsecase.ChangePassword(r.Context(), user.ID.Hex(), req.OldPassword, req.NewPassword); err != nil {
		h.writeUserError(w, err, "failed to change password")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Password changed successfully",
	})
}

// ChangeAvatar handles PUT /api/user/updateprofilepicture (multipart).
func (h *UserHandler) ChangeAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	avatar, cleanup, err := formFile(r, "file")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "profile picture is required")
		return
	}
	defer cleanup()

	if _, err := h.userUsecase.ChangeAvatar(r.Context(), user.ID.Hex(), avatar); err != nil {
		h.writeUserError(w, err, "failed to change profile picture")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile picture updated successfully",
	})
}

// ForgotPassword handles POST /api/user/forgetpassword.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
		httputil.WriteError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Reset link sent to your email if the account exists",
	})
}

// ResetPassword handles PUT /api/user/resetpassword/{token}.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userUsecase.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password); err != nil {
		h.writeUserError(w, err, "failed to reset password")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Password reset successfully",
	})
}

// ListUsers handles GET /api/user/admin/users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUsecase.ListUsers(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list users")
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	if users == nil {
		users = []*model.User{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
	})
}

// UpdateRole handles PUT /api/user/admin/user/{id}.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Validate(req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.userUsecase.UpdateUserRole(r.Context(), chi.URLParam(r, "id"), model.Role(req.Role)); err != nil {
		h.writeUserError(w, err, "failed to update user role")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User role updated successfully",
	})
}

// DeleteUser handles DELETE /api/user/admin/user/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userUsecase.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeUserError(w, err, "failed to delete user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JWTExpires),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidID):
		httputil.WriteError(w, http.StatusBadRequest, "invalid id format")
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		httputil.WriteError(w, http.StatusConflict, "user already exists")
	case errors.Is(err, usecase.ErrInvalidCredentials):
		httputil.WriteError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, usecase.ErrUserNotFound):
		httputil.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, usecase.ErrIncorrectPassword):
		httputil.WriteError(w, http.StatusBadRequest, "incorrect old password")
	case errors.Is(err, usecase.ErrResetTokenInvalid):
		httputil.WriteError(w, http.StatusBadRequest, "password reset token is invalid or has expired")
	case errors.Is(err, usecase.ErrInvalidRole):
		httputil.WriteError(w, http.StatusBadRequest, "invalid role")
	case errors.Is(err, usecase.ErrFileRequired):
		httputil.WriteError(w, http.StatusBadRequest, "file is required")
	case errors.Is(err, usecase.ErrUploadFailed):
		h.logger.Error().Err(err).Msg(logMsg)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to process upload")
	default:
		h.logger.Error().Err(err).Msg(logMsg)
		httputil.WriteError(w, http.StatusInternalServerError, "something went wrong")
	}
}
