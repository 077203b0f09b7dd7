package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyvault/internal/model"
)

var exportTime = time.Date(2024, time.June, 1, 8, 30, 15, 0, time.UTC)

type fakeSource struct {
	policies []model.Policy
	claims   []model.Claim
	docs     []model.Document
	logs     []model.LogEntry
	err      error
}

func (f fakeSource) ListPolicies(context.Context, string) ([]model.Policy, error) {
	return f.policies, f.err
}
func (f fakeSource) ListClaims(context.Context, string) ([]model.Claim, error) { return f.claims, nil }
func (f fakeSource) ListPolicyDocuments(context.Context, string) ([]model.Document, error) {
	return f.docs, nil
}
func (f fakeSource) ListUserLogs(context.Context, string) ([]model.LogEntry, error) { return f.logs, nil }

func (f fakeSource) CountPolicies(context.Context, string) (int, error)        { return len(f.policies), f.err }
func (f fakeSource) CountClaims(context.Context, string) (int, error)          { return len(f.claims), nil }
func (f fakeSource) CountPolicyDocuments(context.Context, string) (int, error) { return len(f.docs), nil }
func (f fakeSource) CountLogs(context.Context, string) (int, error)            { return len(f.logs), nil }

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func samplePolicies() []model.Policy {
	coverage := 500000.0
	return []model.Policy{
		{
			ID: "p1", PolicyNumber: "MOT-1", InsuredName: `Ravi "RK" Kumar`, InsurerName: "HDFC Ergo",
			Coverage: model.MotorCoverage{VehicleDetails: "Swift"}, PremiumAmount: 8450.5,
			StartDate: day("2024-01-01"), ExpiryDate: day("2024-12-31"), Status: model.PolicyStatusActive,
		},
		{
			ID: "p2", PolicyNumber: "HLT-1", InsuredName: "Anita Das", InsurerName: "Star Health",
			Coverage: model.HealthCoverage{}, PremiumAmount: 12000, CoverageAmount: &coverage,
			StartDate: day("2023-04-01"), ExpiryDate: day("2024-03-31"), Status: model.PolicyStatusExpired,
		},
	}
}

func TestPoliciesCSV(t *testing.T) {
	out := PoliciesCSV(samplePolicies())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Policy Type,Policy Number,Insured Name,Insurer Name,Start Date,Expiry Date,Premium Amount,Coverage Amount,Status", lines[0])
	assert.Equal(t, `"motor","MOT-1","Ravi ""RK"" Kumar","HDFC Ergo","2024-01-01","2024-12-31","8450.5","","active"`, lines[1])
	assert.Equal(t, `"health","HLT-1","Anita Das","Star Health","2023-04-01","2024-03-31","12000","500000","expired"`, lines[2])
}

func TestPoliciesCSVEmpty(t *testing.T) {
	assert.Equal(t, strings.Join(csvHeader, ","), PoliciesCSV(nil))
}

func TestExportJSONCountsMatchArrays(t *testing.T) {
	src := fakeSource{
		policies: samplePolicies(),
		claims:   []model.Claim{{ID: "c1", ClaimStatus: model.ClaimStatusPending}},
		logs:     []model.LogEntry{{ID: "l1", Action: model.ActionCreatePolicy}, {ID: "l2", Action: model.ActionUpdatePolicy}},
	}
	file, err := Export(context.Background(), src, "u1", "owner@example.com", FormatJSON, exportTime)
	require.NoError(t, err)
	assert.Equal(t, "insurance-backup-2024-06-01.json", file.Name)
	assert.Equal(t, "application/json", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Body), "{\n  \"export_info\""))

	var decoded struct {
		ExportInfo Info              `json:"export_info"`
		Policies   []json.RawMessage `json:"policies"`
		Claims     []json.RawMessage `json:"claims"`
		Documents  []json.RawMessage `json:"documents"`
		Logs       []json.RawMessage `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(file.Body, &decoded))
	assert.Equal(t, "2024-06-01T08:30:15.000Z", decoded.ExportInfo.ExportedAt)
	assert.Equal(t, "owner@example.com", decoded.ExportInfo.ExportedBy)
	assert.Equal(t, FormatJSON, decoded.ExportInfo.Format)
	assert.Equal(t, len(decoded.Policies), decoded.ExportInfo.Counts.Policies)
	assert.Equal(t, len(decoded.Claims), decoded.ExportInfo.Counts.Claims)
	assert.Equal(t, len(decoded.Documents), decoded.ExportInfo.Counts.Documents)
	assert.Equal(t, len(decoded.Logs), decoded.ExportInfo.Counts.Logs)
	assert.NotNil(t, decoded.Documents)
}

func TestExportCSV(t *testing.T) {
	file, err := Export(context.Background(), fakeSource{policies: samplePolicies()}, "u1", "", FormatCSV, exportTime)
	require.NoError(t, err)
	assert.Equal(t, "insurance-policies-2024-06-01.csv", file.Name)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Len(t, strings.Split(string(file.Body), "\n"), 3)
}

func TestExportPropagatesSourceError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Export(context.Background(), fakeSource{err: boom}, "u1", "", FormatJSON, exportTime)
	assert.ErrorIs(t, err, boom)
}

func TestStats(t *testing.T) {
	counts, err := Stats(context.Background(), fakeSource{policies: samplePolicies(), docs: []model.Document{{ID: "d"}}}, "u1")
	require.NoError(t, err)
	assert.Equal(t, Counts{Policies: 2, Documents: 1}, counts)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
