package repository

import (
	"context"
	"fmt"

	"policyvault/internal/model"
)

// CreateDocument records an uploaded file against its policy or claim.
func (s *Store) CreateDocument(ctx context.Context, d model.Document) (model.Document, error) {
	var sql string
	switch d.Owner {
	case model.DocumentOwnerPolicy:
		sql = `
    INSERT INTO policy_documents (policy_id, file_name, file_path, file_size, mime_type)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, uploaded_at`
		d.PolicyID = d.OwnerID
	case model.DocumentOwnerClaim:
		sql = `
    INSERT INTO claim_documents (claim_id, file_name, file_path, file_size, mime_type)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, uploaded_at`
		d.ClaimID = d.OwnerID
	default:
		return model.Document{}, fmt.Errorf("document owner %q", d.Owner)
	}

	err := s.pool.QueryRow(ctx, sql, d.OwnerID, d.FileName, d.FilePath, d.FileSize, d.MimeType).Scan(&d.ID, &d.UploadedAt)
	if err != nil {
		return model.Document{}, err
	}
	return d, nil
}

// ListPolicyDocuments returns documents attached to any policy owned by userID.
func (s *Store) ListPolicyDocuments(ctx context.Context, userID string) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT d.id, d.policy_id, d.file_name, d.file_path, d.file_size, d.mime_type, d.uploaded_at
    FROM policy_documents d
    JOIN insurance_policies p ON p.id = d.policy_id
    WHERE p.user_id = $1
    ORDER BY d.uploaded_at DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		d := model.Document{Owner: model.DocumentOwnerPolicy}
		if err := rows.Scan(&d.ID, &d.PolicyID, &d.FileName, &d.FilePath, &d.FileSize, &d.MimeType, &d.UploadedAt); err != nil {
			return nil, err
		}
		d.OwnerID = d.PolicyID
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
