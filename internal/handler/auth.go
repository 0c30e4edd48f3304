package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/osouvenir/souvenirs/internal/service"
	"github.com/osouvenir/souvenirs/internal/ui"
	"github.com/osouvenir/souvenirs/internal/validation"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{
		authService: authService,
	}
}

type loginCheckRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginCheck exchanges API credentials for a bearer token.
func (h *authHandler) LoginCheck(w http.ResponseWriter, r *http.Request) {
	var req loginCheckRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeInvalid(w, fmt.Errorf("%w: username and password are required", service.ErrInvalidInput))
		return
	}

	user, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		slog.Warn("api login failed", "error", err, "email", req.Username)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"code":    http.StatusUnauthorized,
			"message": "Invalid credentials.",
		})
		return
	}
	if err != nil {
		writeInternal(w, r, "api login failed", err)
		return
	}

	token, _, err := h.authService.GenerateJWT(user)
	if err != nil {
		writeInternal(w, r, "failed to generate JWT", err, "user_id", user.ID)
		return
	}

	slog.Info("api token issued", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *authHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, ui.Login("", safeNext(r.URL.Query().Get("next")), ""))
}

// Login signs an administrator into the back office.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))

	if email == "" || password == "" {
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, ui.Login(email, next, "Email et mot de passe requis"))
		return
	}

	err := validation.ValidateEmail(email)
	if err != nil {
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, ui.Login(email, next, "Adresse email invalide"))
		return
	}

	user, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			slog.Warn("back office login failed", "error", err, "email", email)
		} else {
			slog.Error("back office login failed", "error", err, "email", email)
		}
		ui.RenderStatus(w, r, http.StatusUnauthorized, ui.Login(email, next, "Identifiants invalides"))
		return
	}

	if !user.IsAdmin() {
		slog.Warn("back office login refused", "user_id", user.ID)
		ui.RenderStatus(w, r, http.StatusForbidden, ui.Login(email, next, "Accès réservé aux administrateurs"))
		return
	}

	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		ui.RenderStatus(w, r, http.StatusInternalServerError, ui.Login(email, next, "Une erreur est survenue, veuillez réessayer."))
		return
	}
	h.authService.SetJWTCookie(w, token, expiry)

	slog.Info("admin logged in", "user_id", user.ID)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/back/login", http.StatusSeeOther)
}

// safeNext keeps redirects inside the back office.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/back/") && !strings.HasPrefix(next, "/back/login") && !strings.ContainsAny(next, "\\\r\n") {
		return next
	}
	return "/back/location/"
}
