package http

import (
	"context"
	"net/http"

	"policyvault/internal/cache"
	"policyvault/internal/dashboard"
)

func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	key := cache.Key{Entity: cache.EntityDashboard, Owner: userID}
	summary, err := cache.Fetch(r.Context(), s.cache, key, func(ctx context.Context) (dashboard.Summary, error) {
		policies, err := s.store.ListPolicies(ctx, userID)
		if err != nil {
			return dashboard.Summary{}, err
		}
		return dashboard.Summarize(policies, s.now(), s.cfg.RenewalWindowDays), nil
	})
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "dashboard_fetch_failed", "Failed to load dashboard.", err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}
