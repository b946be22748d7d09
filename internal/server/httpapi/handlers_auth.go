package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

func authData(u *models.User, token string) api.AuthData {
	return api.AuthData{UserID: u.ID, Email: u.Email, Username: u.Username, Token: token}
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := s.userService.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "User registered successfully", authData(user, token))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := s.userService.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "Login successful", authData(user, token))
}

func (s *Server) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.Profile(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "", api.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req api.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.userService.ChangePassword(r.Context(), userIDFrom(r.Context()), req); err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password changed successfully")
}
