package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"policyvault/internal/auth"
	"policyvault/internal/nav"
)

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			s.writeAuthError(w, "missing_token")
			return
		}
		claims, err := s.authenticate(r.Context(), token)
		if err != nil {
			s.writeAuthError(w, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type authError string

func (e authError) Error() string { return string(e) }

// authenticate verifies the token and checks it was not signed out. A denylist
// outage lets the token through.
func (s *Server) authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
	if err != nil {
		return nil, authError("invalid_token")
	}
	revoked, err := s.denylist.Revoked(ctx, token)
	if err != nil {
		s.logger.Warn("denylist lookup failed", zap.Error(err))
	}
	if revoked {
		return nil, authError("token_revoked")
	}
	return claims, nil
}

// optionalClaims resolves the caller for routes that also serve anonymous visitors.
func (s *Server) optionalClaims(r *http.Request) *auth.Claims {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil
	}
	claims, err := s.authenticate(r.Context(), token)
	if err != nil {
		return nil
	}
	return claims
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func (s *Server) requireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			s.writeAuthError(w, "missing_token")
			return
		}
		access, err := s.roles.Access(r.Context(), claims.UserID())
		if err != nil {
			s.writeFailure(w, r, http.StatusInternalServerError, "role_lookup_failed", "Failed to load user role.", err)
			return
		}
		if !access.IsSuperAdmin {
			s.writeError(w, http.StatusForbidden, "super_admin_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeAuthError(w http.ResponseWriter, code string) {
	s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": code, "redirect": nav.LoginPath})
}
