package http

import (
	"errors"
	"log/slog"
	"net/http"

	"messbook/internal/auth"
	"messbook/internal/core"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleSignInRequest struct {
	IDToken string `json:"id_token"`
	// ClientError is the provider error code the browser reported when it
	// could not obtain a token (for example a blocked popup).
	ClientError string `json:"client_error"`
}

type profileResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Profile profileResponse `json:"profile"`
}

func sessionPayload(token string, p core.Profile) sessionResponse {
	return sessionResponse{
		Token:   token,
		Profile: profileResponse{ID: p.ID, Email: p.Email, Name: p.Name},
	}
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	session, err := s.sessions.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.writeAuthError(w, r, "signup", err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionPayload(session.Token, session.Profile))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	session, err := s.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, r, "signin", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(session.Token, session.Profile))
}

func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	session, err := s.sessions.SignInWithGoogle(r.Context(), req.IDToken, req.ClientError)
	if err != nil {
		s.writeAuthError(w, r, "google signin", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(session.Token, session.Profile))
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.sessions.SignOut(r.Context(), ownerFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, "email_exists", "email already registered")
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters")
	case errors.Is(err, core.ErrEmptyEmail):
		writeError(w, http.StatusBadRequest, "invalid_request", "email is required")
	case errors.Is(err, auth.ErrSignInBlocked):
		writeError(w, http.StatusBadRequest, "sign_in_blocked", "the sign-in window was blocked; allow popups and retry")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	default:
		slog.ErrorContext(r.Context(), "Auth operation failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
