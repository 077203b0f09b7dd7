package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"policyvault/internal/auth"
	"policyvault/internal/cache"
	"policyvault/internal/config"
	"policyvault/internal/documents"
	"policyvault/internal/export"
	"policyvault/internal/model"
	"policyvault/internal/roles"
	"policyvault/internal/users"
)

// Store is everything the API reads and writes.
type Store interface {
	roles.ProfileReader
	users.Store
	export.Source
	export.Counter

	ListPolicyOptions(ctx context.Context, userID string) ([]model.PolicySummary, error)
	GetPolicy(ctx context.Context, userID, policyID string) (model.Policy, error)
	CreatePolicy(ctx context.Context, p model.Policy) (model.Policy, error)
	UpdatePolicy(ctx context.Context, p model.Policy) (model.Policy, error)
	DeletePolicy(ctx context.Context, userID, policyID string) error

	GetClaim(ctx context.Context, userID, claimID string) (model.Claim, error)
	CreateClaim(ctx context.Context, c model.Claim) (model.Claim, error)
	DeleteClaim(ctx context.Context, userID, claimID string) error

	ListRecentLogs(ctx context.Context) ([]model.LogEntry, error)
	InsertLog(ctx context.Context, entry model.LogEntry) error
}

type Server struct {
	cfg      config.Config
	store    Store
	cache    cache.Cache
	denylist *auth.Denylist
	roles    *roles.Lookup
	users    *users.Service
	uploader *documents.Uploader
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics
	now      func() time.Time
}

func NewServer(cfg config.Config, store Store, c cache.Cache, uploader *documents.Uploader, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		cfg:      cfg,
		store:    store,
		cache:    c,
		denylist: auth.NewDenylist(c),
		roles:    roles.NewLookup(store, c),
		users:    users.NewService(store, c),
		uploader: uploader,
		logger:   logger,
		registry: registry,
		metrics:  newMetrics(registry),
		now:      time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleGetSession)
		r.Get("/navigation", s.handleGetNavigation)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/session/sign-out", s.handleSignOut)
			r.Get("/me", s.handleGetMe)
			r.Get("/dashboard", s.handleGetDashboard)

			r.Get("/policies", s.handleListPolicies)
			r.Post("/policies", s.handleCreatePolicy)
			r.Get("/policies/{policyId}", s.handleGetPolicy)
			r.Get("/policies/{policyId}/form", s.handleGetPolicyForm)
			r.Put("/policies/{policyId}", s.handleUpdatePolicy)
			r.Delete("/policies/{policyId}", s.handleDeletePolicy)
			r.Post("/policies/{policyId}/documents", s.handleUploadPolicyDocuments)

			r.Get("/claims", s.handleListClaims)
			r.Post("/claims", s.handleCreateClaim)
			r.Get("/claims/policy-options", s.handleListPolicyOptions)
			r.Delete("/claims/{claimId}", s.handleDeleteClaim)
			r.Post("/claims/{claimId}/documents", s.handleUploadClaimDocuments)

			r.Get("/backup/stats", s.handleGetBackupStats)
			r.Get("/backup/export", s.handleExport)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSuperAdmin)
				r.Get("/logs", s.handleListLogs)
				r.Get("/users", s.handleListUsers)
				r.Post("/users", s.handleCreateUser)
				r.Patch("/users/{userId}/role", s.handleUpdateUserRole)
			})
		})
	})

	return r
}

// invalidate drops cached queries after a mutation. Failures only cost freshness.
func (s *Server) invalidate(ctx context.Context, owner string, entities ...cache.Entity) {
	if err := s.cache.Invalidate(ctx, cache.OwnerKeys(owner, entities...)...); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("owner", owner), zap.Error(err))
	}
}
