// Package export produces the backup documents a user can download: every
// table as JSON, or the policy table as CSV.
package export

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"policyvault/internal/format"
	"policyvault/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV:
		return Format(s), nil
	}
	return "", ErrUnknownFormat
}

// Source reads every row a user's backup covers.
type Source interface {
	ListPolicies(ctx context.Context, userID string) ([]model.Policy, error)
	ListClaims(ctx context.Context, userID string) ([]model.Claim, error)
	ListPolicyDocuments(ctx context.Context, userID string) ([]model.Document, error)
	ListUserLogs(ctx context.Context, userID string) ([]model.LogEntry, error)
}

type Counter interface {
	CountPolicies(ctx context.Context, userID string) (int, error)
	CountClaims(ctx context.Context, userID string) (int, error)
	CountPolicyDocuments(ctx context.Context, userID string) (int, error)
	CountLogs(ctx context.Context, userID string) (int, error)
}

type Counts struct {
	Policies  int `json:"policies"`
	Claims    int `json:"claims"`
	Documents int `json:"documents"`
	Logs      int `json:"logs"`
}

// Stats runs the four counts concurrently.
func Stats(ctx context.Context, c Counter, userID string) (Counts, error) {
	var counts Counts
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { counts.Policies, err = c.CountPolicies(ctx, userID); return })
	g.Go(func() (err error) { counts.Claims, err = c.CountClaims(ctx, userID); return })
	g.Go(func() (err error) { counts.Documents, err = c.CountPolicyDocuments(ctx, userID); return })
	g.Go(func() (err error) { counts.Logs, err = c.CountLogs(ctx, userID); return })
	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

type Info struct {
	ExportedAt string `json:"exported_at"`
	ExportedBy string `json:"exported_by"`
	Format     Format `json:"format"`
	Counts     Counts `json:"counts"`
}

type Document struct {
	ExportInfo Info             `json:"export_info"`
	Policies   []model.Policy   `json:"policies"`
	Claims     []model.Claim    `json:"claims"`
	Documents  []model.Document `json:"documents"`
	Logs       []model.LogEntry `json:"logs"`
}

// Collect fetches the four tables concurrently. Counts always match the
// fetched slices.
func Collect(ctx context.Context, src Source, userID, exportedBy string, f Format, now time.Time) (Document, error) {
	var doc Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { doc.Policies, err = src.ListPolicies(gctx, userID); return })
	g.Go(func() (err error) { doc.Claims, err = src.ListClaims(gctx, userID); return })
	g.Go(func() (err error) { doc.Documents, err = src.ListPolicyDocuments(gctx, userID); return })
	g.Go(func() (err error) { doc.Logs, err = src.ListUserLogs(gctx, userID); return })
	if err := g.Wait(); err != nil {
		return Document{}, err
	}

	if doc.Policies == nil {
		doc.Policies = []model.Policy{}
	}
	if doc.Claims == nil {
		doc.Claims = []model.Claim{}
	}
	if doc.Documents == nil {
		doc.Documents = []model.Document{}
	}
	if doc.Logs == nil {
		doc.Logs = []model.LogEntry{}
	}
	doc.ExportInfo = Info{
		ExportedAt: now.UTC().Format("2006-01-02T15:04:05.000Z"),
		ExportedBy: exportedBy,
		Format:     f,
		Counts: Counts{
			Policies:  len(doc.Policies),
			Claims:    len(doc.Claims),
			Documents: len(doc.Documents),
			Logs:      len(doc.Logs),
		},
	}
	return doc, nil
}

// File is a rendered export ready to be served as an attachment.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

func Render(doc Document, now time.Time) (File, error) {
	day := format.DateForInput(now.UTC())
	switch doc.ExportInfo.Format {
	case FormatJSON:
		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return File{}, err
		}
		return File{Name: "insurance-backup-" + day + ".json", ContentType: "application/json", Body: body}, nil
	case FormatCSV:
		return File{Name: "insurance-policies-" + day + ".csv", ContentType: "text/csv", Body: []byte(PoliciesCSV(doc.Policies))}, nil
	}
	return File{}, ErrUnknownFormat
}

// Export collects and renders in one step.
func Export(ctx context.Context, src Source, userID, exportedBy string, f Format, now time.Time) (File, error) {
	doc, err := Collect(ctx, src, userID, exportedBy, f, now)
	if err != nil {
		return File{}, err
	}
	return Render(doc, now)
}
