package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/thinkbeforeclick/platform/internal/account"
	"github.com/thinkbeforeclick/platform/internal/identity"
	"github.com/thinkbeforeclick/platform/internal/pkg/httputil"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// Login handles POST /api/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	if req.Username == "" || req.Password == "" {
		httputil.MissingFields(w, "username", "password")
		return
	}

	profile, err := h.accounts.Login(r.Context(), req.Username, req.Password, strings.TrimSpace(req.UserType))
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrBadCredentials):
			httputil.Unauthorized(w, "Incorrect username or password")
		case errors.Is(err, identity.ErrUserNotFound):
			httputil.Unauthorized(w, "User not found")
		case errors.Is(err, identity.ErrNotConfirmed):
			httputil.Forbidden(w, "Please verify your email address")
		default:
			logger.Error("login failed", "user", req.Username, "error", err)
			httputil.InternalError(w, err)
		}
		return
	}

	httputil.OK(w, profile)
}

// Register handles POST /api/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req account.RegisterInput
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.MissingFields(w, "username", "password")
		return
	}

	res, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, identity.ErrDuplicate) {
			httputil.BadRequest(w, "An account with this email already exists")
			return
		}
		logger.Error("registration failed", "email", req.Username, "error", err)
		httputil.Error(w, http.StatusInternalServerError,
			"Registration failed during database operation. Please contact support.")
		return
	}

	httputil.OK(w, res)
}

type verifyCodeRequest struct {
	Code string `json:"code"`
}

type verifyCodeResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// VerifyCode handles POST /api/verify-code.
func (h *Handlers) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		httputil.BadRequest(w, "Missing 'code'")
		return
	}

	status, err := h.accounts.VerifyCode(r.Context(), code)
	if err != nil {
		logger.Error("code verification failed", "error", err)
		httputil.InternalError(w, err)
		return
	}

	message := "Code is not valid."
	switch status {
	case "valid":
		message = "Code is valid."
	case "not_found":
		message = "Code not found."
	}
	httputil.OK(w, verifyCodeResponse{OK: true, Message: message, Status: status})
}
