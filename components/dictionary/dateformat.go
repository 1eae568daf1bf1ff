package dictionary

import (
	"strings"
	"time"
)

// DisplayLayout is the fixed format used to render server timestamps.
const DisplayLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	DisplayLayout,
	time.DateOnly,
}

// DateFormatter renders raw timestamps in a fixed human readable format.
type DateFormatter struct {
	Location *time.Location
}

// Format parses raw with the known layouts and renders it with DisplayLayout.
// Values that cannot be parsed are returned unchanged.
func (f DateFormatter) Format(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if f.Location != nil {
			parsed = parsed.In(f.Location)
		}
		return parsed.Format(DisplayLayout)
	}
	return raw
}

// FormatTimestamp encodes server timestamps for the wire.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
