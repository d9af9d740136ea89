package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/parisxmas/OxiDB/OxiStory/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeUserError(w, http.StatusBadRequest, "missing credentials",
			"Campos obrigatórios", "Por favor, preencha email e senha.", nil)
		return
	}
	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeUserError(w, http.StatusUnauthorized, "invalid credentials",
			"Credenciais inválidas", "Email ou senha incorretos.", nil)
		return
	}
	if err != nil {
		log.Printf("Warning: login: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
