package http

import (
	"errors"
	"net/http"

	"github.com/couchcryptid/rainwater-estimator-service/internal/auth"
)

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the envelope the form client expects from register and login.
type authResponse struct {
	Msg  string     `json:"msg"`
	Data *auth.User `json:"data,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		s.authOutcome("register", "invalid")
		writeJSON(w, http.StatusBadRequest, authResponse{Msg: "Invalid request body"})
		return
	}

	user, err := s.deps.Auth.Register(r.Context(), c.Name, c.Email, c.Password)
	switch {
	case err == nil:
		s.authOutcome("register", "success")
		writeJSON(w, http.StatusCreated, authResponse{Msg: "Registered successfully", Data: &user})
	case errors.Is(err, auth.ErrConflict):
		s.authOutcome("register", "conflict")
		writeJSON(w, http.StatusConflict, authResponse{Msg: "User already exists"})
	case errors.Is(err, auth.ErrInvalidInput):
		s.authOutcome("register", "invalid")
		writeJSON(w, http.StatusBadRequest, authResponse{Msg: "Name, email and password are required"})
	default:
		s.authOutcome("register", "error")
		s.logger.Error("register failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Msg: "Registration failed"})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		s.authOutcome("login", "invalid")
		writeJSON(w, http.StatusBadRequest, authResponse{Msg: "Invalid request body"})
		return
	}

	user, err := s.deps.Auth.Login(r.Context(), c.Email, c.Password)
	switch {
	case err == nil:
		s.authOutcome("login", "success")
		writeJSON(w, http.StatusOK, authResponse{Msg: "Login successful", Data: &user})
	case errors.Is(err, auth.ErrUserNotFound):
		s.authOutcome("login", "not_found")
		writeJSON(w, http.StatusNotFound, authResponse{Msg: "User not found"})
	case errors.Is(err, auth.ErrInvalidPassword):
		s.authOutcome("login", "invalid_password")
		writeJSON(w, http.StatusUnauthorized, authResponse{Msg: "Invalid password"})
	case errors.Is(err, auth.ErrInvalidInput):
		s.authOutcome("login", "invalid")
		writeJSON(w, http.StatusBadRequest, authResponse{Msg: "Email and password are required"})
	default:
		s.authOutcome("login", "error")
		s.logger.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Msg: "Login failed"})
	}
}

func (s *Server) authOutcome(operation, outcome string) {
	s.deps.Metrics.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}
