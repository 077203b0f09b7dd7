package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"policyvault/internal/cache"
	"policyvault/internal/claims"
	"policyvault/internal/form"
	"policyvault/internal/model"
	"policyvault/internal/repository"
)

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	key := cache.Key{Entity: cache.EntityClaims, Owner: userID}
	list, err := cache.Fetch(r.Context(), s.cache, key, func(ctx context.Context) ([]model.Claim, error) {
		return s.store.ListClaims(ctx, userID)
	})
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "claim_fetch_failed", "Failed to load claims.", err)
		return
	}
	filter := claims.Filter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}
	s.writeJSON(w, http.StatusOK, filter.Apply(list))
}

func (s *Server) handleListPolicyOptions(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	key := cache.Key{Entity: cache.EntityPolicyOptions, Owner: userID}
	options, err := cache.Fetch(r.Context(), s.cache, key, func(ctx context.Context) ([]model.PolicySummary, error) {
		return s.store.ListPolicyOptions(ctx, userID)
	})
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "policy_fetch_failed", "Failed to load policies.", err)
		return
	}
	s.writeJSON(w, http.StatusOK, options)
}

func (s *Server) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	var f claims.Form
	if err := decodeJSON(r, &f); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	userID := currentUserID(r)
	claim, err := f.Build(userID)
	if errors.Is(err, claims.ErrInvalidStatus) {
		s.writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, form.Code(err))
		return
	}

	if !validID(claim.PolicyID) {
		s.writeError(w, http.StatusNotFound, "policy_not_found")
		return
	}
	created, err := s.store.CreateClaim(r.Context(), claim)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "policy_not_found")
		return
	}
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "claim_create_failed", "Failed to create claim. Please try again.", err)
		return
	}
	s.invalidate(r.Context(), userID, cache.EntityClaims, cache.EntityBackupStats)
	s.writeJSON(w, http.StatusCreated, created)
}

// handleDeleteClaim deletes immediately; unlike policies there is no confirmation step.
func (s *Server) handleDeleteClaim(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	claimID := chi.URLParam(r, "claimId")
	if !validID(claimID) {
		s.writeError(w, http.StatusNotFound, "claim_not_found")
		return
	}
	err := s.store.DeleteClaim(r.Context(), userID, claimID)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "claim_not_found")
		return
	}
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "claim_delete_failed", "Failed to delete claim. Please try again.", err)
		return
	}
	s.invalidate(r.Context(), userID, cache.EntityClaims, cache.EntityBackupStats)
	w.WriteHeader(http.StatusNoContent)
}
