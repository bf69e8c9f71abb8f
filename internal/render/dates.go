package render

import (
	"fmt"

	"aesthetic_doctor_bot/internal/domain"
)

const (
	dateLayout     = "2/1/2006"
	dateTimeLayout = "2/1/2006, 15:04:05"
)

// FormatDate renders a day as d/m/yyyy. Unparseable values are returned as is.
func FormatDate(value string) string {
	if value == "" {
		return domain.Placeholder
	}
	ts, ok := domain.ParseTimestamp(value)
	if !ok {
		return value
	}
	return ts.Format(dateLayout)
}

// FormatDateTime renders a timestamp as d/m/yyyy, hh:mm:ss in UTC.
func FormatDateTime(value string) string {
	if value == "" {
		return domain.Placeholder
	}
	ts, ok := domain.ParseTimestamp(value)
	if !ok {
		return value
	}
	return ts.Format(dateTimeLayout)
}

// ShortDate renders a day as d/m, the label used on chart axes.
func ShortDate(value string) string {
	if value == "" {
		return domain.Placeholder
	}
	ts, ok := domain.ParseTimestamp(value)
	if !ok {
		return value
	}
	return fmt.Sprintf("%d/%d", ts.Day(), int(ts.Month()))
}
