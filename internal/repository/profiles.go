package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"policyvault/internal/db"
	"policyvault/internal/model"
)

const profileColumns = `id, user_id, email, full_name, phone, role::text, created_at, updated_at`

func (s *Store) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	profile, err := scanProfile(row)
	return profile, notFound(err)
}

// ListAdminProfiles returns every admin and super admin, newest first.
func (s *Store) ListAdminProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT `+profileColumns+`
    FROM profiles
    WHERE role IN ('admin', 'super_admin')
    ORDER BY created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// UpdateRole changes a user's role and records the change in the audit log in
// the same transaction.
func (s *Store) UpdateRole(ctx context.Context, targetUserID string, role model.Role, entry model.LogEntry) (model.Profile, error) {
	var updated model.Profile
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
      UPDATE profiles
      SET role = $2::user_role, updated_at = now()
      WHERE user_id = $1
      RETURNING `+profileColumns, targetUserID, string(role))
		profile, err := scanProfile(row)
		if err != nil {
			return notFound(err)
		}
		updated = profile
		return insertLog(ctx, tx, entry)
	})
	return updated, err
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var (
		p    model.Profile
		role string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Email, &p.FullName, &p.Phone, &role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Profile{}, err
	}
	p.Role = model.Role(role)
	return p, nil
}
