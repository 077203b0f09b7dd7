package model

import "time"

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
	ClaimStatusPaid     ClaimStatus = "paid"
)

func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusApproved, ClaimStatusRejected, ClaimStatusPaid:
		return true
	}
	return false
}

type Claim struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	PolicyID    string         `json:"policy_id"`
	ClaimNumber string         `json:"claim_number"`
	ClaimDate   Date           `json:"claim_date"`
	ClaimAmount float64        `json:"claim_amount"`
	ClaimStatus ClaimStatus    `json:"claim_status"`
	Description *string        `json:"description"`
	Notes       *string        `json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Policy      *PolicySummary `json:"insurance_policies,omitempty"`
}
