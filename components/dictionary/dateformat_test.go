package dictionary

import (
	"testing"
	"time"
)

func TestDateFormatterFormat(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	cases := []struct {
		name     string
		location *time.Location
		raw      string
		want     string
	}{
		{name: "rfc3339", raw: "2024-03-05T07:08:09Z", want: "2024-03-05 07:08:09"},
		{name: "fractional", raw: "2024-03-05T07:08:09.123456Z", want: "2024-03-05 07:08:09"},
		{name: "local layout", raw: "2024-03-05 07:08:09", want: "2024-03-05 07:08:09"},
		{name: "converted", location: shanghai, raw: "2024-03-05T07:08:09Z", want: "2024-03-05 15:08:09"},
		{name: "date only", raw: "2024-03-05", want: "2024-03-05 00:00:00"},
		{name: "empty", raw: "  ", want: ""},
		{name: "unparseable", raw: "yesterday", want: "yesterday"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DateFormatter{Location: tc.location}.Format(tc.raw)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	if FormatTimestamp(time.Time{}) != "" {
		t.Fatalf("expected empty string for zero time")
	}
	ts := time.Date(2024, 1, 2, 11, 4, 5, 0, time.FixedZone("X", 3600))
	if got := FormatTimestamp(ts); got != "2024-01-02T10:04:05Z" {
		t.Fatalf("unexpected timestamp %q", got)
	}
}
