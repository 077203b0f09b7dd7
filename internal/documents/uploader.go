package documents

import (
	"context"
	"time"

	"go.uber.org/zap"

	"policyvault/internal/model"
	"policyvault/internal/storage"
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// Result reports what happened to one submitted file.
type Result struct {
	FileName string          `json:"file_name"`
	Status   Status          `json:"status"`
	Path     string          `json:"path,omitempty"`
	Error    string          `json:"error,omitempty"`
	Document *model.Document `json:"document,omitempty"`
}

// Recorder persists the metadata row for a stored file.
type Recorder interface {
	CreateDocument(ctx context.Context, d model.Document) (model.Document, error)
}

type Uploader struct {
	store    storage.ObjectStore
	records  Recorder
	buckets  map[model.DocumentOwner]string
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

func NewUploader(store storage.ObjectStore, records Recorder, policyBucket, claimBucket string, maxBytes int64, logger *zap.Logger) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{
		store:   store,
		records: records,
		buckets: map[model.DocumentOwner]string{
			model.DocumentOwnerPolicy: policyBucket,
			model.DocumentOwnerClaim:  claimBucket,
		},
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Upload validates every file first, then stores the accepted ones one at a
// time. Earlier uploads are kept when a later one fails.
func (u *Uploader) Upload(ctx context.Context, userID string, owner model.DocumentOwner, ownerID string, files []File) []Result {
	results := make([]Result, len(files))
	accepted := make([]int, 0, len(files))
	for i, f := range files {
		results[i] = Result{FileName: f.Name}
		if err := Validate(f, u.maxBytes); err != nil {
			results[i].Status = StatusRejected
			results[i].Error = RejectedMessage
			u.logger.Info("document rejected", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		accepted = append(accepted, i)
	}

	bucket := u.buckets[owner]
	for _, i := range accepted {
		f := files[i]
		path := ObjectPath(userID, ownerID, u.now(), f.Name)
		if err := u.store.Put(ctx, bucket, path, PDFMimeType, f.Data); err != nil {
			u.logger.Error("document upload failed", zap.String("bucket", bucket), zap.String("path", path), zap.Error(err))
			results[i].Status = StatusFailed
			results[i].Error = "upload_failed"
			continue
		}
		results[i].Path = path

		size := int64(len(f.Data))
		mimeType := PDFMimeType
		doc, err := u.records.CreateDocument(ctx, model.Document{
			Owner:    owner,
			OwnerID:  ownerID,
			FileName: f.Name,
			FilePath: path,
			FileSize: &size,
			MimeType: &mimeType,
		})
		if err != nil {
			u.logger.Error("document record failed", zap.String("path", path), zap.Error(err))
			results[i].Status = StatusFailed
			results[i].Error = "record_failed"
			continue
		}
		results[i].Status = StatusUploaded
		results[i].Document = &doc
	}
	return results
}
