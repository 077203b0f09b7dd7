package export

import (
	"strconv"
	"strings"

	"policyvault/internal/format"
	"policyvault/internal/model"
)

var csvHeader = []string{
	"Policy Type", "Policy Number", "Insured Name", "Insurer Name",
	"Start Date", "Expiry Date", "Premium Amount", "Coverage Amount", "Status",
}

// PoliciesCSV renders one header line and one line per policy. The header is
// bare; every row field is quoted with embedded quotes doubled. There is no
// trailing newline.
func PoliciesCSV(policies []model.Policy) string {
	lines := make([]string, 0, len(policies)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, p := range policies {
		coverage := ""
		if p.CoverageAmount != nil && *p.CoverageAmount != 0 {
			coverage = formatNumber(*p.CoverageAmount)
		}
		row := []string{
			string(p.Type()),
			p.PolicyNumber,
			p.InsuredName,
			p.InsurerName,
			format.DateForInput(p.StartDate),
			format.DateForInput(p.ExpiryDate),
			formatNumber(p.PremiumAmount),
			coverage,
			string(p.Status),
		}
		for i, cell := range row {
			row[i] = quote(cell)
		}
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
