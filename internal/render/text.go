// Package render turns a metrics snapshot into text, CSV, JSON or chart data.
// Every function here is pure.
package render

import (
	"fmt"
	"strings"

	"aesthetic_doctor_bot/internal/domain"
)

// NoDataText is returned when a text summary ends up empty.
const NoDataText = "No data available."

type blockRenderer struct {
	title string
	limit int
	line  func(domain.Row) string
}

var blockRenderers = map[domain.MetricKey]blockRenderer{
	domain.MetricTreatmentsDaily: {
		title: "📅 Daily treatments (last 5):",
		limit: 5,
		line: func(row domain.Row) string {
			r := domain.NewTreatmentsDaily(row)
			return fmt.Sprintf("%s: %s → %d", FormatDate(r.Day), r.Owner.DisplayName(), r.Treatments)
		},
	},
	domain.MetricPatientsTotals: {
		title: "👩‍⚕️ Patients managed (top 5):",
		limit: 5,
		line: func(row domain.Row) string {
			r := domain.NewPatientsTotal(row)
			return fmt.Sprintf("%s → %d", r.Owner.DisplayName(), r.Patients)
		},
	},
	domain.MetricTreatmentsPerPatient: {
		title: "🙋‍♀️ Treatments per patient (top 5):",
		limit: 5,
		line: func(row domain.Row) string {
			r := domain.NewTreatmentsPerPatient(row)
			patient := strings.TrimSpace(r.PatientFirstName + " " + r.PatientLastName)
			return fmt.Sprintf("%s (%s) → %d", patient, r.Owner.DisplayName(), r.Treatments)
		},
	},
	domain.MetricPhotosPerTreatment: {
		title: "📷 Photos per treatment (top 3):",
		limit: 3,
		line: func(row domain.Row) string {
			r := domain.NewPhotosPerTreatment(row)
			return fmt.Sprintf("%s: tot %d (before %d, after %d)", r.TreatmentID, r.Total, r.Before, r.After)
		},
	},
	domain.MetricComparisonsSummary: {
		title: "🆚 Comparisons per doctor (top 5):",
		limit: 5,
		line: func(row domain.Row) string {
			r := domain.NewComparisonsSummary(row)
			return fmt.Sprintf("%s → tot %d (final %d, draft %d)", r.Owner.DisplayName(), r.Total, r.Complete, r.Incomplete)
		},
	},
	domain.MetricComparisonsDaily: {
		title: "📈 Daily comparisons (last 7 days):",
		limit: 7,
		line: func(row domain.Row) string {
			r := domain.NewComparisonsDaily(row)
			return fmt.Sprintf("%s → %d", FormatDate(r.Day), r.Created)
		},
	},
	domain.MetricComparisonsExportsRecent: {
		title: "📤 Recent comparison exports (top 5):",
		limit: 5,
		line: func(row domain.Row) string {
			r := domain.NewComparisonExport(row)
			last := "–"
			if r.LastExport != "" {
				last = FormatDateTime(r.LastExport)
			}
			return fmt.Sprintf("%s → %s", r.Owner.DisplayName(), last)
		},
	},
	domain.MetricDoctorActivity: {
		title: "🩺 Doctor activity (top 7):",
		limit: 7,
		line: func(row domain.Row) string {
			r := domain.NewDoctorActivity(row)
			return fmt.Sprintf("%s → patients %d, treatments %d, photos %d", r.Name(), r.Patients, r.Treatments, r.Photos)
		},
	},
}

// NoDataLine is the placeholder emitted for a metric without rows.
func NoDataLine(key domain.MetricKey) string {
	return fmt.Sprintf("%s: no data available", key)
}

// Text builds the human readable summary of the requested metrics.
func Text(snapshot domain.Snapshot, keys []domain.MetricKey) string {
	var lines []string

	for _, key := range keys {
		rows := snapshot.Rows(key)
		if len(rows) == 0 {
			lines = append(lines, NoDataLine(key), "")
			continue
		}

		renderer, ok := blockRenderers[key]
		if !ok {
			lines = append(lines, fmt.Sprintf("%s: %d rows", key, len(rows)), "")
			continue
		}

		lines = append(lines, renderer.title)
		for _, row := range head(rows, renderer.limit) {
			lines = append(lines, "  • "+renderer.line(row))
		}
		lines = append(lines, "")
	}

	summary := strings.TrimSpace(strings.Join(lines, "\n"))
	if summary == "" {
		return NoDataText
	}
	return summary
}

func head(rows []domain.Row, limit int) []domain.Row {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
