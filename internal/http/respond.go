package http

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"policyvault/internal/auth"
)

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

// writeJSON encodes before writing the header so an unencodable payload
// becomes a 500 instead of an empty success.
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("response encode failed", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"encode_failed"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string) {
	s.writeJSON(w, status, map[string]string{"error": code})
}

type failureBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeFailure logs a remote failure and answers with a fixed code and message.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	s.logger.Error("request failed",
		zap.String("code", code),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("user_id", claimsFromContext(r.Context()).UserID()),
		zap.Error(err),
	)
	s.writeJSON(w, status, failureBody{Error: code, Message: message})
}

func currentUserID(r *http.Request) string {
	return claimsFromContext(r.Context()).UserID()
}

func currentClaims(r *http.Request) *auth.Claims {
	return claimsFromContext(r.Context())
}

// validID reports whether id can name a row; anything else is treated as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
