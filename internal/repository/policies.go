package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"policyvault/internal/model"
)

const policyColumns = `id, user_id, policy_type, policy_number, insurer_name, insured_name, vehicle_details,
  premium_amount, coverage_amount, start_date, expiry_date, agent_name, agent_phone, agent_email,
  notes, status, created_at, updated_at`

func (s *Store) ListPolicies(ctx context.Context, userID string) ([]model.Policy, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT `+policyColumns+`
    FROM insurance_policies
    WHERE user_id = $1
    ORDER BY expiry_date ASC
  `, userID)
	if err != nil {
		return nil, err
	}
	return collectPolicies(rows)
}

func (s *Store) ListPolicyOptions(ctx context.Context, userID string) ([]model.PolicySummary, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id, policy_number, policy_type, insured_name
    FROM insurance_policies
    WHERE user_id = $1
    ORDER BY policy_number
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []model.PolicySummary{}
	for rows.Next() {
		var option model.PolicySummary
		if err := rows.Scan(&option.ID, &option.PolicyNumber, &option.PolicyType, &option.InsuredName); err != nil {
			return nil, err
		}
		options = append(options, option)
	}
	return options, rows.Err()
}

func (s *Store) GetPolicy(ctx context.Context, userID, policyID string) (model.Policy, error) {
	row := s.pool.QueryRow(ctx, `
    SELECT `+policyColumns+`
    FROM insurance_policies
    WHERE id = $1 AND user_id = $2
  `, policyID, userID)
	policy, err := scanPolicy(row)
	return policy, notFound(err)
}

func (s *Store) CreatePolicy(ctx context.Context, p model.Policy) (model.Policy, error) {
	row := s.pool.QueryRow(ctx, `
    INSERT INTO insurance_policies (user_id, policy_type, policy_number, insurer_name, insured_name, vehicle_details,
      premium_amount, coverage_amount, start_date, expiry_date, agent_name, agent_phone, agent_email, notes, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    RETURNING `+policyColumns,
		p.UserID, string(p.Type()), p.PolicyNumber, p.InsurerName, p.InsuredName, p.VehicleDetails(),
		p.PremiumAmount, p.CoverageAmount, p.StartDate, p.ExpiryDate, p.AgentName, p.AgentPhone, p.AgentEmail,
		p.Notes, string(statusOrActive(p.Status)))
	return scanPolicy(row)
}

// UpdatePolicy overwrites the editable columns of a policy owned by p.UserID.
func (s *Store) UpdatePolicy(ctx context.Context, p model.Policy) (model.Policy, error) {
	row := s.pool.QueryRow(ctx, `
    UPDATE insurance_policies
    SET policy_type = $3, policy_number = $4, insurer_name = $5, insured_name = $6, vehicle_details = $7,
      premium_amount = $8, coverage_amount = $9, start_date = $10, expiry_date = $11, agent_name = $12,
      agent_phone = $13, agent_email = $14, notes = $15, status = $16, updated_at = now()
    WHERE id = $1 AND user_id = $2
    RETURNING `+policyColumns,
		p.ID, p.UserID, string(p.Type()), p.PolicyNumber, p.InsurerName, p.InsuredName, p.VehicleDetails(),
		p.PremiumAmount, p.CoverageAmount, p.StartDate, p.ExpiryDate, p.AgentName, p.AgentPhone, p.AgentEmail,
		p.Notes, string(statusOrActive(p.Status)))
	policy, err := scanPolicy(row)
	return policy, notFound(err)
}

func (s *Store) DeletePolicy(ctx context.Context, userID, policyID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM insurance_policies WHERE id = $1 AND user_id = $2`, policyID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActivePoliciesExpiringOn returns active policies of every user whose
// expiry date equals day.
func (s *Store) ListActivePoliciesExpiringOn(ctx context.Context, day time.Time) ([]model.Policy, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT `+policyColumns+`
    FROM insurance_policies
    WHERE status = 'active' AND expiry_date = $1::date
  `, day)
	if err != nil {
		return nil, err
	}
	return collectPolicies(rows)
}

func collectPolicies(rows pgx.Rows) ([]model.Policy, error) {
	defer rows.Close()
	policies := []model.Policy{}
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}

func scanPolicy(row pgx.Row) (model.Policy, error) {
	var (
		p              model.Policy
		policyType     string
		vehicleDetails *string
		status         string
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&policyType,
		&p.PolicyNumber,
		&p.InsurerName,
		&p.InsuredName,
		&vehicleDetails,
		&p.PremiumAmount,
		&p.CoverageAmount,
		&p.StartDate,
		&p.ExpiryDate,
		&p.AgentName,
		&p.AgentPhone,
		&p.AgentEmail,
		&p.Notes,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return model.Policy{}, err
	}
	coverage, err := model.CoverageFor(model.PolicyType(policyType), vehicleDetails)
	if err != nil {
		return model.Policy{}, fmt.Errorf("policy %s: %w", p.ID, err)
	}
	p.Coverage = coverage
	p.Status = model.PolicyStatus(status)
	return p, nil
}

func statusOrActive(status model.PolicyStatus) model.PolicyStatus {
	if status == "" {
		return model.PolicyStatusActive
	}
	return status
}
