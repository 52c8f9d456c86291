package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component, normalized to UTC midnight.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. A time-of-day suffix introduced by 'T' or
// a space is accepted and dropped, matching what spreadsheets and browsers usually
// submit; any other trailing text is an error.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	datePart := value
	if len(value) > len(DateLayout) {
		datePart = value[:len(DateLayout)]
		if !validTimeSuffix(value[len(DateLayout):]) {
			return Date{}, fmt.Errorf("invalid date %q: unexpected trailing text", value)
		}
	}
	t, err := time.Parse(DateLayout, datePart)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return NewDate(t), nil
}

var timeSuffixLayouts = []string{
	"15:04",
	"15:04:05",
	"15:04:05.999999999",
	"15:04Z07:00",
	"15:04:05Z07:00",
	"15:04:05.999999999Z07:00",
}

func validTimeSuffix(suffix string) bool {
	if len(suffix) < 2 || (suffix[0] != 'T' && suffix[0] != ' ') {
		return false
	}
	clock := suffix[1:]
	for _, layout := range timeSuffixLayouts {
		if _, err := time.Parse(layout, clock); err == nil {
			return true
		}
	}
	return false
}

// DatePtr returns a pointer to a copy of d.
func DatePtr(d Date) *Date {
	return &d
}

// OptionalDate copies d, mapping nil and the zero date (a JSON null or "") to nil.
func OptionalDate(d *Date) *Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return DatePtr(*d)
}

// String formats the date as YYYY-MM-DD, or an empty string for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a YYYY-MM-DD string, null, or an empty string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
