package repository

import "context"

func (s *Store) CountPolicies(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM insurance_policies WHERE user_id = $1`, userID)
}

func (s *Store) CountClaims(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM claims WHERE user_id = $1`, userID)
}

func (s *Store) CountPolicyDocuments(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `
    SELECT count(*)
    FROM policy_documents d
    JOIN insurance_policies p ON p.id = d.policy_id
    WHERE p.user_id = $1
  `, userID)
}

func (s *Store) CountLogs(ctx context.Context, userID string) (int, error) {
	return s.count(ctx, `SELECT count(*) FROM global_logs WHERE user_id = $1`, userID)
}

func (s *Store) count(ctx context.Context, sql string, args ...any) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}
