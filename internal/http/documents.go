package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"policyvault/internal/cache"
	"policyvault/internal/documents"
	"policyvault/internal/model"
	"policyvault/internal/repository"
)

const (
	multipartMemory = 32 << 20
	// maxUploadFiles bounds one request; the body cap is derived from it.
	maxUploadFiles = 10
	// multipartOverhead covers part headers and boundaries.
	multipartOverhead = 64 << 10
)

type uploadResponse struct {
	Results []documents.Result `json:"results"`
}

func (s *Server) handleUploadPolicyDocuments(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPolicy(w, r)
	if !ok {
		return
	}
	s.uploadDocuments(w, r, model.DocumentOwnerPolicy, p.ID)
}

func (s *Server) handleUploadClaimDocuments(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claimId")
	if !validID(claimID) {
		s.writeError(w, http.StatusNotFound, "claim_not_found")
		return
	}
	claim, err := s.store.GetClaim(r.Context(), currentUserID(r), claimID)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "claim_not_found")
		return
	}
	if err != nil {
		s.writeFailure(w, r, http.StatusInternalServerError, "claim_fetch_failed", "Failed to load claim.", err)
		return
	}
	s.uploadDocuments(w, r, model.DocumentOwnerClaim, claim.ID)
}

// uploadDocuments answers 200 with one result per file even when some were
// rejected or failed; the caller decides what to retry.
func (s *Server) uploadDocuments(w http.ResponseWriter, r *http.Request, owner model.DocumentOwner, ownerID string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploader.MaxBytes()*maxUploadFiles+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid_multipart")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, "missing_field:files")
		return
	}
	if len(headers) > maxUploadFiles {
		s.writeError(w, http.StatusBadRequest, "too_many_files")
		return
	}

	files := make([]documents.File, 0, len(headers))
	for _, header := range headers {
		data, err := readPart(header, s.uploader.MaxBytes())
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid_multipart")
			return
		}
		files = append(files, documents.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	userID := currentUserID(r)
	results := s.uploader.Upload(r.Context(), userID, owner, ownerID, files)
	s.invalidate(r.Context(), userID, cache.EntityBackupStats)
	s.writeJSON(w, http.StatusOK, uploadResponse{Results: results})
}

// readPart reads at most maxBytes+1 so oversized files are still recognised as such.
func readPart(header *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxBytes+1))
}
