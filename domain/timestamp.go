package domain

import "time"

// TimestampLayout is the canonical text form of record timestamps:
// millisecond precision with an explicit zone.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Older rows and hand-written requests may use these forms. Zone-less
// values are read as UTC.
var legacyTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts TimestampLayout and the legacy layouts.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err == nil {
		return t, nil
	}
	for _, layout := range legacyTimestampLayouts {
		if parsed, lerr := time.Parse(layout, s); lerr == nil {
			return parsed, nil
		}
	}
	return time.Time{}, err
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
