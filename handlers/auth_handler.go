package handlers

import (
	"log/slog"
	"net/http"

	"github.com/arenaops/esports-platform/middleware"
	"github.com/arenaops/esports-platform/services"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   string
	logger      *slog.Logger
}

func NewAuthHandler(authService services.AuthService, jwtSecret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// No token on registration; the client logs in afterwards.
	writeJSON(w, http.StatusCreated, envelope{"user": user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := middleware.GenerateToken(h.jwtSecret, user)
	if err != nil {
		h.logger.Error("failed to sign token", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, envelope{"user": user, "token": token})
}
