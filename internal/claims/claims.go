// Package claims filters claim lists and parses the add-claim form.
package claims

import (
	"errors"
	"strings"

	"policyvault/internal/form"
	"policyvault/internal/model"
)

var ErrInvalidStatus = errors.New("invalid claim status")

type Filter struct {
	Search string
	Status string
}

// Match searches claim number, description and the joined policy number.
func (f Filter) Match(c model.Claim) bool {
	if f.Status != "" && f.Status != "all" && f.Status != string(c.ClaimStatus) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.ClaimNumber), term) {
		return true
	}
	if c.Description != nil && strings.Contains(strings.ToLower(*c.Description), term) {
		return true
	}
	return c.Policy != nil && strings.Contains(strings.ToLower(c.Policy.PolicyNumber), term)
}

func (f Filter) Apply(claims []model.Claim) []model.Claim {
	out := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

type Form struct {
	PolicyID    form.Value `json:"policy_id"`
	ClaimNumber form.Value `json:"claim_number"`
	ClaimDate   form.Value `json:"claim_date"`
	ClaimAmount form.Value `json:"claim_amount"`
	ClaimStatus form.Value `json:"claim_status"`
	Description form.Value `json:"description"`
	Notes       form.Value `json:"notes"`
}

// Build parses the form into a claim owned by userID; status defaults to pending.
func (f Form) Build(userID string) (model.Claim, error) {
	var (
		c   = model.Claim{UserID: userID, ClaimStatus: model.ClaimStatusPending}
		err error
	)
	if c.PolicyID, err = form.Required("policy_id", f.PolicyID); err != nil {
		return model.Claim{}, err
	}
	if c.ClaimNumber, err = form.Required("claim_number", f.ClaimNumber); err != nil {
		return model.Claim{}, err
	}
	day, err := form.Date("claim_date", f.ClaimDate)
	if err != nil {
		return model.Claim{}, err
	}
	c.ClaimDate = model.Date(day)
	if c.ClaimAmount, err = form.Amount("claim_amount", f.ClaimAmount); err != nil {
		return model.Claim{}, err
	}
	if status := model.ClaimStatus(f.ClaimStatus.Trimmed()); status != "" {
		if !status.Valid() {
			return model.Claim{}, ErrInvalidStatus
		}
		c.ClaimStatus = status
	}
	c.Description = form.Optional(f.Description)
	c.Notes = form.Optional(f.Notes)
	return c, nil
}
