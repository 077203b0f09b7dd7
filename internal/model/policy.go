package model

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
)

type PolicyType string

const (
	PolicyTypeMotor  PolicyType = "motor"
	PolicyTypeHealth PolicyType = "health"
)

type PolicyStatus string

const (
	PolicyStatusActive  PolicyStatus = "active"
	PolicyStatusExpired PolicyStatus = "expired"
)

var ErrUnknownPolicyType = errors.New("unknown policy type")

// Coverage is the type-specific part of a policy. Exactly one of MotorCoverage
// or HealthCoverage.
type Coverage interface {
	Type() PolicyType
	coverage()
}

type MotorCoverage struct {
	VehicleDetails string
}

func (MotorCoverage) Type() PolicyType { return PolicyTypeMotor }
func (MotorCoverage) coverage()        {}

type HealthCoverage struct{}

func (HealthCoverage) Type() PolicyType { return PolicyTypeHealth }
func (HealthCoverage) coverage()        {}

// CoverageFor builds the variant for a stored policy_type / vehicle_details pair.
func CoverageFor(policyType PolicyType, vehicleDetails *string) (Coverage, error) {
	switch policyType {
	case PolicyTypeMotor:
		c := MotorCoverage{}
		if vehicleDetails != nil {
			c.VehicleDetails = *vehicleDetails
		}
		return c, nil
	case PolicyTypeHealth:
		return HealthCoverage{}, nil
	default:
		return nil, ErrUnknownPolicyType
	}
}

type Policy struct {
	ID             string
	UserID         string
	PolicyNumber   string
	InsurerName    string
	InsuredName    string
	Coverage       Coverage
	PremiumAmount  float64
	CoverageAmount *float64
	StartDate      time.Time
	ExpiryDate     time.Time
	AgentName      *string
	AgentPhone     *string
	AgentEmail     *string
	Notes          *string
	Status         PolicyStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Type reports the policy variant; a policy without coverage has no type.
func (p Policy) Type() PolicyType {
	if p.Coverage == nil {
		return ""
	}
	return p.Coverage.Type()
}

// VehicleDetails returns the motor vehicle description, nil for health policies
// or when none was recorded.
func (p Policy) VehicleDetails() *string {
	motor, ok := p.Coverage.(MotorCoverage)
	if !ok || motor.VehicleDetails == "" {
		return nil
	}
	details := motor.VehicleDetails
	return &details
}

type policyRow struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	PolicyType     PolicyType   `json:"policy_type"`
	PolicyNumber   string       `json:"policy_number"`
	InsurerName    string       `json:"insurer_name"`
	InsuredName    string       `json:"insured_name"`
	VehicleDetails *string      `json:"vehicle_details"`
	PremiumAmount  float64      `json:"premium_amount"`
	CoverageAmount *float64     `json:"coverage_amount"`
	StartDate      Date         `json:"start_date"`
	ExpiryDate     Date         `json:"expiry_date"`
	AgentName      *string      `json:"agent_name"`
	AgentPhone     *string      `json:"agent_phone"`
	AgentEmail     *string      `json:"agent_email"`
	Notes          *string      `json:"notes"`
	Status         PolicyStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// MarshalJSON flattens the coverage variant into the insurance_policies row shape.
func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(policyRow{
		ID:             p.ID,
		UserID:         p.UserID,
		PolicyType:     p.Type(),
		PolicyNumber:   p.PolicyNumber,
		InsurerName:    p.InsurerName,
		InsuredName:    p.InsuredName,
		VehicleDetails: p.VehicleDetails(),
		PremiumAmount:  p.PremiumAmount,
		CoverageAmount: p.CoverageAmount,
		StartDate:      Date(p.StartDate),
		ExpiryDate:     Date(p.ExpiryDate),
		AgentName:      p.AgentName,
		AgentPhone:     p.AgentPhone,
		AgentEmail:     p.AgentEmail,
		Notes:          p.Notes,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	})
}

func (p *Policy) UnmarshalJSON(data []byte) error {
	var row policyRow
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	coverage, err := CoverageFor(row.PolicyType, row.VehicleDetails)
	if err != nil {
		return err
	}
	*p = Policy{
		ID:             row.ID,
		UserID:         row.UserID,
		PolicyNumber:   row.PolicyNumber,
		InsurerName:    row.InsurerName,
		InsuredName:    row.InsuredName,
		Coverage:       coverage,
		PremiumAmount:  row.PremiumAmount,
		CoverageAmount: row.CoverageAmount,
		StartDate:      time.Time(row.StartDate),
		ExpiryDate:     time.Time(row.ExpiryDate),
		AgentName:      row.AgentName,
		AgentPhone:     row.AgentPhone,
		AgentEmail:     row.AgentEmail,
		Notes:          row.Notes,
		Status:         row.Status,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	return nil
}

// PolicySummary is the subset of a policy joined onto claims and dropdowns.
type PolicySummary struct {
	ID           string     `json:"id"`
	PolicyNumber string     `json:"policy_number"`
	PolicyType   PolicyType `json:"policy_type"`
	InsuredName  string     `json:"insured_name"`
}
