package model

import "time"

// DocumentOwner names the record a stored file hangs off.
type DocumentOwner string

const (
	DocumentOwnerPolicy DocumentOwner = "policy"
	DocumentOwnerClaim  DocumentOwner = "claim"
)

type Document struct {
	ID         string        `json:"id"`
	Owner      DocumentOwner `json:"-"`
	OwnerID    string        `json:"-"`
	PolicyID   string        `json:"policy_id,omitempty"`
	ClaimID    string        `json:"claim_id,omitempty"`
	FileName   string        `json:"file_name"`
	FilePath   string        `json:"file_path"`
	FileSize   *int64        `json:"file_size"`
	MimeType   *string       `json:"mime_type"`
	UploadedAt time.Time     `json:"uploaded_at"`
}
