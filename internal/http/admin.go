package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"policyvault/internal/audit"
	"policyvault/internal/cache"
	"policyvault/internal/export"
	"policyvault/internal/model"
	"policyvault/internal/repository"
	"policyvault/internal/users"
)

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListRecentLogs(r.Context())
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "log_fetch_failed", "Failed to load logs.", err)
		return
	}
	s.writeJSON(w, http.StatusOK, audit.NewViews(entries))
}

func (s *Server) handleGetBackupStats(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	key := cache.Key{Entity: cache.EntityBackupStats, Owner: userID}
	counts, err := cache.Fetch(r.Context(), s.cache, key, func(ctx context.Context) (export.Counts, error) {
		return export.Stats(ctx, s.store, userID)
	})
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "backup_stats_failed", "Failed to load backup statistics.", err)
		return
	}
	s.writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_format")
		return
	}
	claims := currentClaims(r)
	file, err := export.Export(r.Context(), s.store, claims.UserID(), claims.Email, f, s.now())
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "export_failed", "Failed to export data", err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.users.List(r.Context())
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "user_fetch_failed", "Failed to load users.", err)
		return
	}
	s.writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	// Decoded leniently: every body, well formed or not, gets the same 501.
	var req users.CreateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if _, err := s.users.Create(r.Context(), req); errors.Is(err, users.ErrUserCreationUnsupported) {
		s.writeJSON(w, http.StatusNotImplemented, failureBody{Error: "user_creation_unsupported", Message: users.CreationUnsupportedMessage})
		return
	}
	s.writeError(w, http.StatusInternalServerError, "server_error")
}

type updateRoleRequest struct {
	Role model.Role `json:"role"`
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	targetID := chi.URLParam(r, "userId")
	if !validID(targetID) {
		s.writeError(w, http.StatusNotFound, "user_not_found")
		return
	}
	profile, err := s.users.ChangeRole(r.Context(), currentUserID(r), targetID, req.Role)
	switch {
	case errors.Is(err, users.ErrInvalidRole):
		s.writeError(w, http.StatusBadRequest, "invalid_role")
	case errors.Is(err, repository.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "user_not_found")
	case err != nil:
		s.writeFailure(w, r, http.StatusInternalServerError, "role_update_failed", "Failed to update user role.", err)
	default:
		s.writeJSON(w, http.StatusOK, profile)
	}
}
