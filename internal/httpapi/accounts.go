package httpapi

import (
	"errors"
	"net/http"

	"github.com/writgo/theorie/internal/auth"
)

var signupMessages = fieldMessages{
	"Email.email":  "Ongeldig e-mailadres",
	"Password.min": "Wachtwoord moet minimaal 8 tekens bevatten",
	"":             "Email en wachtwoord zijn verplicht",
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if !bind(w, r, &in, signupMessages) {
		return
	}

	u, err := s.auth.Signup(r.Context(), in)
	if errors.Is(err, auth.ErrEmailTaken) {
		writeError(w, http.StatusBadRequest, "Gebruiker bestaat al")
		return
	}
	if err != nil {
		fail(w, r, err, msgGeneric, msgGeneric)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Gebruiker succesvol aangemaakt",
		"user":    u,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !bind(w, r, &req, fieldMessages{"": "Email en wachtwoord zijn verplicht"}) {
		return
	}

	token, u, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Ongeldige inloggegevens")
		return
	}
	if err != nil {
		fail(w, r, err, msgGeneric, msgGeneric)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	u, err := s.auth.User(r.Context(), claims)
	if errors.Is(err, auth.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}
	if err != nil {
		fail(w, r, err, msgGeneric, msgGeneric)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
