package http

import (
	"net/http"
	"time"

	"policyvault/internal/model"
	"policyvault/internal/nav"
	"policyvault/internal/roles"
)

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	User    *sessionUser `json:"user"`
	Loading bool         `json:"loading"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{}
	if claims := s.optionalClaims(r); claims != nil {
		resp.User = &sessionUser{ID: claims.UserID(), Email: claims.Email}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	token := bearerToken(r.Header.Get("Authorization"))
	expiresAt := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(r.Context(), token, expiresAt); err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "sign_out_failed", "Failed to sign out. Please try again.", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out", "redirect": nav.LoginPath})
}

type meResponse struct {
	Profile *model.Profile `json:"profile"`
	roles.Access
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := s.roles.Profile(r.Context(), currentUserID(r))
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "profile_fetch_failed", "Failed to load profile.", err)
		return
	}
	s.writeJSON(w, http.StatusOK, meResponse{Profile: profile, Access: roles.AccessFor(profile)})
}

type navigationResponse struct {
	Route    nav.Route `json:"route"`
	Redirect string    `json:"redirect,omitempty"`
	Menu     *nav.Menu `json:"menu,omitempty"`
}

// handleGetNavigation resolves ?path= for the client shell: which route it is,
// whether the visitor must log in first, and the sidebar they may see.
func (s *Server) handleGetNavigation(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	claims := s.optionalClaims(r)
	resp := navigationResponse{
		Route:    nav.Match(path),
		Redirect: nav.Guard(path, claims != nil, false),
	}
	if claims != nil {
		access, err := s.roles.Access(r.Context(), claims.UserID())
		if err != nil {
			s.writeFailure(w, r, http.StatusInternalServerError, "role_lookup_failed", "Failed to load user role.", err)
			return
		}
		menu := nav.Sidebar(access, path)
		resp.Menu = &menu
	}
	s.writeJSON(w, http.StatusOK, resp)
}

