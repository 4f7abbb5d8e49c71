package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  Date
		valid bool
	}{
		{"zero padded", "09/03/2025", NewDate(2025, time.September, 3), true},
		{"bare parts", "9/3/2025", NewDate(2025, time.September, 3), true},
		{"surrounding space", "  04/02/2029 ", NewDate(2029, time.April, 2), true},
		{"iso", "2023-02-15", NewDate(2023, time.February, 15), true},
		{"empty", "", Date{}, false},
		{"sentinel", "N/A", Date{}, false},
		{"impossible day", "02/30/2024", Date{}, false},
		{"free text", "see attached", Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestDateStringRoundTrip(t *testing.T) {
	d := NewDate(2021, time.June, 8)
	assert.Equal(t, "06/08/2021", d.String())
	assert.Equal(t, "", Date{}.String())

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"06/08/2021"`, string(b))
}

func FuzzParseDate(f *testing.F) {
	f.Add("09/03/2025")
	f.Add("2023-02-15")
	f.Add("13/45/0000")
	f.Add("")
	f.Fuzz(func(t *testing.T, raw string) {
		d, ok := ParseDate(raw)
		if !ok {
			if !d.IsZero() {
				t.Fatalf("unparseable input %q produced non-zero date", raw)
			}
			return
		}
		again, ok := ParseDate(d.String())
		if !ok || !again.Equal(d) {
			t.Fatalf("date %q did not survive formatting: %q", raw, d.String())
		}
	})
}
