// Package domain defines shared domain constants and types.
package domain

import "strings"

// MetricKey names one aggregated dataset served by the metrics endpoint.
type MetricKey string

const (
	MetricTreatmentsDaily          MetricKey = "treatments_daily"
	MetricPatientsTotals           MetricKey = "patients_totals"
	MetricTreatmentsPerPatient     MetricKey = "treatments_per_patient"
	MetricPhotosPerTreatment       MetricKey = "photos_per_treatment"
	MetricComparisonsSummary       MetricKey = "comparisons_summary"
	MetricComparisonsDaily         MetricKey = "comparisons_daily"
	MetricComparisonsExportsRecent MetricKey = "comparisons_exports_recent"
	MetricDoctorActivity           MetricKey = "doctor_activity"
)

// AllMetricKeys is the fixed default request used when a command names no
// valid metric. Order matters: renderers walk keys in request order.
var AllMetricKeys = []MetricKey{
	MetricTreatmentsDaily,
	MetricPatientsTotals,
	MetricTreatmentsPerPatient,
	MetricPhotosPerTreatment,
	MetricComparisonsSummary,
	MetricComparisonsDaily,
	MetricComparisonsExportsRecent,
	MetricDoctorActivity,
}

// ChartableMetricKeys lists the metrics with a time-series projection, in
// preference order.
var ChartableMetricKeys = []MetricKey{
	MetricTreatmentsDaily,
	MetricComparisonsDaily,
}

// ParseMetricKey reports whether token names a known metric.
func ParseMetricKey(token string) (MetricKey, bool) {
	for _, key := range AllMetricKeys {
		if string(key) == token {
			return key, true
		}
	}
	return "", false
}

// Chartable reports whether the metric can be rendered as a chart.
func (k MetricKey) Chartable() bool {
	for _, key := range ChartableMetricKeys {
		if key == k {
			return true
		}
	}
	return false
}

// Format is the representation requested for a metrics reply.
type Format string

const (
	FormatJSON  Format = "json"
	FormatText  Format = "text"
	FormatCSV   Format = "csv"
	FormatChart Format = "chart"
)

// DefaultFormat applies when a command names no format.
const DefaultFormat = FormatJSON

// Formats lists every supported output format.
var Formats = []Format{FormatJSON, FormatText, FormatCSV, FormatChart}

// ParseFormat reports whether token names a known format.
func ParseFormat(token string) (Format, bool) {
	for _, format := range Formats {
		if string(format) == token {
			return format, true
		}
	}
	return "", false
}

// JoinKeys renders keys separated by sep.
func JoinKeys(keys []MetricKey, sep string) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = string(key)
	}
	return strings.Join(parts, sep)
}
