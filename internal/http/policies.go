package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"policyvault/internal/audit"
	"policyvault/internal/cache"
	"policyvault/internal/form"
	"policyvault/internal/model"
	"policyvault/internal/policy"
	"policyvault/internal/repository"
)

// Entities derived from a user's policies.
var policyEntities = []cache.Entity{
	cache.EntityPolicies,
	cache.EntityPolicyOptions,
	cache.EntityDashboard,
	cache.EntityBackupStats,
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	key := cache.Key{Entity: cache.EntityPolicies, Owner: userID}
	policies, err := cache.Fetch(r.Context(), s.cache, key, func(ctx context.Context) ([]model.Policy, error) {
		return s.store.ListPolicies(ctx, userID)
	})
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "policy_fetch_failed", "Failed to load policies.", err)
		return
	}

	query := r.URL.Query()
	filter := policy.Filter{
		Search: query.Get("search"),
		Type:   query.Get("type"),
		Status: query.Get("status"),
	}
	now := s.now()
	views := make([]policy.View, 0, len(policies))
	for _, p := range filter.Apply(policies) {
		views = append(views, policy.NewView(p, now))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPolicy(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, policy.NewView(p, s.now()))
}

func (s *Server) handleGetPolicyForm(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPolicy(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, policy.FormFrom(p))
}

func (s *Server) loadPolicy(w http.ResponseWriter, r *http.Request) (model.Policy, bool) {
	policyID := chi.URLParam(r, "policyId")
	if !validID(policyID) {
		s.writeError(w, http.StatusNotFound, "policy_not_found")
		return model.Policy{}, false
	}
	p, err := s.store.GetPolicy(r.Context(), currentUserID(r), policyID)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "policy_not_found")
		return model.Policy{}, false
	}
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "policy_fetch_failed", "Failed to load policy.", err)
		return model.Policy{}, false
	}
	return p, true
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePolicyForm(w, r)
	if !ok {
		return
	}
	created, err := s.store.CreatePolicy(r.Context(), p)
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "policy_create_failed", "Failed to create policy. Please try again.", err)
		return
	}
	s.recordPolicyChange(r, model.ActionCreatePolicy, created)
	s.writeJSON(w, http.StatusCreated, policy.NewView(created, s.now()))
}

func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePolicyForm(w, r)
	if !ok {
		return
	}
	p.ID = chi.URLParam(r, "policyId")
	if !validID(p.ID) {
		s.writeError(w, http.StatusNotFound, "policy_not_found")
		return
	}
	updated, err := s.store.UpdatePolicy(r.Context(), p)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "policy_not_found")
		return
	}
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "policy_update_failed", "Failed to update policy. Please try again.", err)
		return
	}
	s.recordPolicyChange(r, model.ActionUpdatePolicy, updated)
	s.writeJSON(w, http.StatusOK, policy.NewView(updated, s.now()))
}

// handleDeletePolicy only deletes with ?confirm=true.
func (s *Server) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		s.writeError(w, http.StatusPreconditionRequired, "confirmation_required")
		return
	}
	p, ok := s.loadPolicy(w, r)
	if !ok {
		return
	}
	err := s.store.DeletePolicy(r.Context(), p.UserID, p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "policy_not_found")
		return
	}
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "policy_delete_failed", "Failed to delete policy. Please try again.", err)
		return
	}
	s.recordPolicyChange(r, model.ActionDeletePolicy, p)
	s.invalidate(r.Context(), p.UserID, cache.EntityClaims)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodePolicyForm(w http.ResponseWriter, r *http.Request) (model.Policy, bool) {
	var f policy.Form
	if err := decodeJSON(r, &f); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request")
		return model.Policy{}, false
	}
	p, err := f.Build(currentUserID(r))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, policyFormErrorCode(err))
		return model.Policy{}, false
	}
	return p, true
}

func policyFormErrorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownPolicyType):
		return "invalid_policy_type"
	case errors.Is(err, policy.ErrExpiryBeforeStart):
		return "expiry_before_start"
	case errors.Is(err, policy.ErrInvalidStatus):
		return "invalid_status"
	}
	return form.Code(err)
}

// recordPolicyChange writes the audit row and drops stale caches. The mutation
// already succeeded, so a failed audit insert is only logged.
func (s *Server) recordPolicyChange(r *http.Request, action string, p model.Policy) {
	userID := currentUserID(r)
	if err := s.store.InsertLog(r.Context(), audit.PolicyEntry(action, userID, p)); err != nil {
		s.logger.Error("audit log insert failed", zap.String("action", action), zap.String("policy_id", p.ID), zap.Error(err))
	}
	s.invalidate(r.Context(), userID, policyEntities...)
}
