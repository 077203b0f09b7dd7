package model

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD, matching DATE columns.
type Date time.Time

func (d Date) MarshalJSON() ([]byte, error) {
	t := time.Time(d)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		*d = Date{}
		return nil
	}
	if len(value) > len(dateLayout) {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return err
		}
		*d = Date(parsed)
		return nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return err
	}
	*d = Date(parsed)
	return nil
}

func (d Date) String() string {
	return time.Time(d).Format(dateLayout)
}
