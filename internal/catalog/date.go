package catalog

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the exchange format for every date in and out of the engine.
const DateLayout = "01/02/2006"

// parseLayouts accepts zero-padded and bare month/day parts, plus ISO dates
// some extractor runs emit.
var parseLayouts = []string{"1/2/2006", "2006-01-02", "1-2-2006"}

// Date is a calendar date. The zero value means absent.
type Date struct {
	t time.Time
}

// ParseDate parses an extracted date value. Unparseable input is reported as
// absent rather than as an error.
func ParseDate(raw string) (Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, raw); err == nil && !t.IsZero() {
			return Date{t: t.UTC()}, true
		}
	}
	return Date{}, false
}

// NewDate builds a date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) IsZero() bool { return d.t.IsZero() }

// Equal compares calendar dates exactly.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

// String formats as MM/DD/YYYY, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, _ := ParseDate(s)
	*d = parsed
	return nil
}
