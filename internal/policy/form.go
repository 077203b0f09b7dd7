package policy

import (
	"errors"
	"strconv"

	"policyvault/internal/form"
	"policyvault/internal/format"
	"policyvault/internal/model"
)

var (
	ErrExpiryBeforeStart = errors.New("expiry date before start date")
	ErrInvalidStatus     = errors.New("invalid policy status")
)

// Form is the create/edit input. Every field arrives as text.
type Form struct {
	PolicyType     form.Value `json:"policy_type"`
	PolicyNumber   form.Value `json:"policy_number"`
	InsurerName    form.Value `json:"insurer_name"`
	InsuredName    form.Value `json:"insured_name"`
	VehicleDetails form.Value `json:"vehicle_details"`
	PremiumAmount  form.Value `json:"premium_amount"`
	CoverageAmount form.Value `json:"coverage_amount"`
	StartDate      form.Value `json:"start_date"`
	ExpiryDate     form.Value `json:"expiry_date"`
	AgentName      form.Value `json:"agent_name"`
	AgentPhone     form.Value `json:"agent_phone"`
	AgentEmail     form.Value `json:"agent_email"`
	Notes          form.Value `json:"notes"`
	Status         form.Value `json:"status"`
}

// FormFrom pre-fills the edit form from a stored policy.
func FormFrom(p model.Policy) Form {
	f := Form{
		PolicyType:    form.Value(p.Type()),
		PolicyNumber:  form.Value(p.PolicyNumber),
		InsurerName:   form.Value(p.InsurerName),
		InsuredName:   form.Value(p.InsuredName),
		PremiumAmount: form.Value(formatAmount(p.PremiumAmount)),
		StartDate:     form.Value(format.DateForInput(p.StartDate)),
		ExpiryDate:    form.Value(format.DateForInput(p.ExpiryDate)),
		AgentName:     deref(p.AgentName),
		AgentPhone:    deref(p.AgentPhone),
		AgentEmail:    deref(p.AgentEmail),
		Notes:         deref(p.Notes),
		Status:        form.Value(p.Status),
	}
	if v := p.VehicleDetails(); v != nil {
		f.VehicleDetails = form.Value(*v)
	}
	if p.CoverageAmount != nil {
		f.CoverageAmount = form.Value(formatAmount(*p.CoverageAmount))
	}
	return f
}

// Build validates the form and produces a policy owned by userID. Vehicle
// details only survive for motor policies.
func (f Form) Build(userID string) (model.Policy, error) {
	typeText, err := form.Required("policy_type", f.PolicyType)
	if err != nil {
		return model.Policy{}, err
	}
	var vehicle *string
	if model.PolicyType(typeText) == model.PolicyTypeMotor {
		vehicle = form.Optional(f.VehicleDetails)
	}
	coverage, err := model.CoverageFor(model.PolicyType(typeText), vehicle)
	if err != nil {
		return model.Policy{}, err
	}

	p := model.Policy{UserID: userID, Coverage: coverage}
	if p.PolicyNumber, err = form.Required("policy_number", f.PolicyNumber); err != nil {
		return model.Policy{}, err
	}
	if p.InsurerName, err = form.Required("insurer_name", f.InsurerName); err != nil {
		return model.Policy{}, err
	}
	if p.InsuredName, err = form.Required("insured_name", f.InsuredName); err != nil {
		return model.Policy{}, err
	}
	if p.PremiumAmount, err = form.Amount("premium_amount", f.PremiumAmount); err != nil {
		return model.Policy{}, err
	}
	if p.CoverageAmount, err = form.OptionalAmount("coverage_amount", f.CoverageAmount); err != nil {
		return model.Policy{}, err
	}
	if p.StartDate, err = form.Date("start_date", f.StartDate); err != nil {
		return model.Policy{}, err
	}
	if p.ExpiryDate, err = form.Date("expiry_date", f.ExpiryDate); err != nil {
		return model.Policy{}, err
	}
	if p.ExpiryDate.Before(p.StartDate) {
		return model.Policy{}, ErrExpiryBeforeStart
	}

	p.Status = model.PolicyStatusActive
	switch model.PolicyStatus(f.Status.Trimmed()) {
	case "":
	case model.PolicyStatusActive, model.PolicyStatusExpired:
		p.Status = model.PolicyStatus(f.Status.Trimmed())
	default:
		return model.Policy{}, ErrInvalidStatus
	}

	p.AgentName = form.Optional(f.AgentName)
	p.AgentPhone = form.Optional(f.AgentPhone)
	p.AgentEmail = form.Optional(f.AgentEmail)
	p.Notes = form.Optional(f.Notes)
	return p, nil
}

func deref(s *string) form.Value {
	if s == nil {
		return ""
	}
	return form.Value(*s)
}

func formatAmount(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
