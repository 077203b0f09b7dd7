package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"policyvault/internal/model"
)

const claimColumns = `c.id, c.user_id, c.policy_id, c.claim_number, c.claim_date, c.claim_amount, c.claim_status,
  c.description, c.notes, c.created_at, c.updated_at,
  p.id, p.policy_number, p.policy_type, p.insured_name`

// ListClaims returns the user's claims joined with their parent policy, newest first.
func (s *Store) ListClaims(ctx context.Context, userID string) ([]model.Claim, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT `+claimColumns+`
    FROM claims c
    JOIN insurance_policies p ON p.id = c.policy_id
    WHERE c.user_id = $1
    ORDER BY c.created_at DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := []model.Claim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

func (s *Store) GetClaim(ctx context.Context, userID, claimID string) (model.Claim, error) {
	row := s.pool.QueryRow(ctx, `
    SELECT `+claimColumns+`
    FROM claims c
    JOIN insurance_policies p ON p.id = c.policy_id
    WHERE c.id = $1 AND c.user_id = $2
  `, claimID, userID)
	claim, err := scanClaim(row)
	return claim, notFound(err)
}

// CreateClaim inserts the claim only when its policy belongs to the same user;
// otherwise ErrNotFound.
func (s *Store) CreateClaim(ctx context.Context, c model.Claim) (model.Claim, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
    INSERT INTO claims (user_id, policy_id, claim_number, claim_date, claim_amount, claim_status, description, notes)
    SELECT $1, p.id, $3, $4, $5, $6, $7, $8
    FROM insurance_policies p
    WHERE p.id = $2 AND p.user_id = $1
    RETURNING id
  `, c.UserID, c.PolicyID, c.ClaimNumber, time.Time(c.ClaimDate), c.ClaimAmount, string(c.ClaimStatus), c.Description, c.Notes).Scan(&id)
	if err != nil {
		return model.Claim{}, notFound(err)
	}
	return s.GetClaim(ctx, c.UserID, id)
}

func (s *Store) DeleteClaim(ctx context.Context, userID, claimID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM claims WHERE id = $1 AND user_id = $2`, claimID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClaim(row pgx.Row) (model.Claim, error) {
	var (
		c         model.Claim
		policy    model.PolicySummary
		claimDate time.Time
		status    string
	)
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.PolicyID,
		&c.ClaimNumber,
		&claimDate,
		&c.ClaimAmount,
		&status,
		&c.Description,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
		&policy.ID,
		&policy.PolicyNumber,
		&policy.PolicyType,
		&policy.InsuredName,
	)
	if err != nil {
		return model.Claim{}, err
	}
	c.ClaimDate = model.Date(claimDate)
	c.ClaimStatus = model.ClaimStatus(status)
	c.Policy = &policy
	return c, nil
}
