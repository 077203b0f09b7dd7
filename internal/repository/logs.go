package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"policyvault/internal/db"
	"policyvault/internal/model"
)

const recentLogsLimit = 100

// ListRecentLogs returns the newest log entries across all users with the
// acting profile attached when one exists.
func (s *Store) ListRecentLogs(ctx context.Context) ([]model.LogEntry, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT l.id, l.user_id, l.action, l.description, l.entity_type, l.entity_id, l.metadata, l.created_at,
      pr.user_id IS NOT NULL, pr.full_name, pr.email
    FROM global_logs l
    LEFT JOIN profiles pr ON pr.user_id = l.user_id
    ORDER BY l.created_at DESC
    LIMIT $1
  `, recentLogsLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.LogEntry{}
	for rows.Next() {
		var (
			entry    model.LogEntry
			metadata []byte
			hasActor bool
			actor    model.Actor
		)
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Description, &entry.EntityType,
			&entry.EntityID, &metadata, &entry.CreatedAt, &hasActor, &actor.FullName, &actor.Email)
		if err != nil {
			return nil, err
		}
		entry.Metadata = metadata
		if hasActor {
			entry.Actor = &actor
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) ListUserLogs(ctx context.Context, userID string) ([]model.LogEntry, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id, user_id, action, description, entity_type, entity_id, metadata, created_at
    FROM global_logs
    WHERE user_id = $1
    ORDER BY created_at DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.LogEntry{}
	for rows.Next() {
		var (
			entry    model.LogEntry
			metadata []byte
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Description, &entry.EntityType,
			&entry.EntityID, &metadata, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Metadata = metadata
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) InsertLog(ctx context.Context, entry model.LogEntry) error {
	return insertLog(ctx, s.pool, entry)
}

func insertLog(ctx context.Context, q db.Querier, entry model.LogEntry) error {
	var metadata []byte
	if len(entry.Metadata) > 0 {
		metadata = entry.Metadata
	}
	_, err := q.Exec(ctx, `
    INSERT INTO global_logs (user_id, action, description, entity_type, entity_id, metadata)
    VALUES ($1, $2, $3, $4, $5, $6)
  `, entry.UserID, entry.Action, entry.Description, entry.EntityType, entry.EntityID, metadata)
	return err
}

var _ db.Querier = (pgx.Tx)(nil)
