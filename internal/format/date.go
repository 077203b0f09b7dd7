// Package format renders dates and rupee amounts the way the policy views display them.
package format

import (
	"strings"
	"time"
)

const (
	layoutDDMMYYYY     = "02/01/2006"
	layoutDateTimeDDMM = "02/01/2006 15:04"
	layoutInput        = "2006-01-02"
)

// DateDDMMYYYY formats t as DD/MM/YYYY.
func DateDDMMYYYY(t time.Time) string {
	return t.Format(layoutDDMMYYYY)
}

// DateTimeDDMMYYYY formats t as DD/MM/YYYY HH:mm.
func DateTimeDDMMYYYY(t time.Time) string {
	return t.Format(layoutDateTimeDDMM)
}

func ParseDateDDMMYYYY(value string) (time.Time, error) {
	return time.Parse(layoutDDMMYYYY, strings.TrimSpace(value))
}

// DateForInput formats t as YYYY-MM-DD, the layout used by date inputs and DATE columns.
func DateForInput(t time.Time) string {
	return t.Format(layoutInput)
}

func ParseDateFromInput(value string) (time.Time, error) {
	return time.Parse(layoutInput, strings.TrimSpace(value))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDay returns t's calendar date as midnight UTC so that dates read from
// DATE columns compare equal regardless of the caller's zone.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
