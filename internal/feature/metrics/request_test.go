package metrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"aesthetic_doctor_bot/internal/domain"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name   string
		args   string
		forced domain.Format
		want   Request
	}{
		{
			name: "empty defaults to json and every metric",
			args: "",
			want: Request{Format: domain.FormatJSON, Keys: domain.AllMetricKeys},
		},
		{
			name: "first format token picks format",
			args: "text treatments_daily",
			want: Request{Format: domain.FormatText, Keys: []domain.MetricKey{domain.MetricTreatmentsDaily}},
		},
		{
			name: "later format tokens are dropped once format is chosen",
			args: "csv patients_totals chart",
			want: Request{Format: domain.FormatCSV, Keys: []domain.MetricKey{domain.MetricPatientsTotals}},
		},
		{
			name: "explicit json keeps format detection open",
			args: "json csv",
			want: Request{Format: domain.FormatCSV, Keys: domain.AllMetricKeys},
		},
		{
			name: "format after metrics still counts",
			args: "comparisons_daily chart",
			want: Request{Format: domain.FormatChart, Keys: []domain.MetricKey{domain.MetricComparisonsDaily}},
		},
		{
			name: "commas whitespace and case",
			args: "  TEXT,patients_totals,,\tComparisons_Daily  ",
			want: Request{Format: domain.FormatText, Keys: []domain.MetricKey{domain.MetricPatientsTotals, domain.MetricComparisonsDaily}},
		},
		{
			name: "unknown tokens dropped and duplicates collapsed",
			args: "patients_totals bogus patients_totals photos_per_treatment",
			want: Request{Format: domain.FormatJSON, Keys: []domain.MetricKey{domain.MetricPatientsTotals, domain.MetricPhotosPerTreatment}},
		},
		{
			name: "only unknown tokens expands to every metric",
			args: "foo bar",
			want: Request{Format: domain.FormatJSON, Keys: domain.AllMetricKeys},
		},
		{
			name:   "forced format treats format tokens as metric candidates",
			args:   "csv treatments_daily",
			forced: domain.FormatText,
			want:   Request{Format: domain.FormatText, Keys: []domain.MetricKey{domain.MetricTreatmentsDaily}},
		},
		{
			name:   "forced format with nothing valid",
			args:   "chart",
			forced: domain.FormatChart,
			want:   Request{Format: domain.FormatChart, Keys: domain.AllMetricKeys},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRequest(tt.args, tt.forced)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("ParseRequest(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestParseRequestNeverReturnsUnknownKeys(t *testing.T) {
	inputs := []string{"", "x y z", "json json", "doctor_activity, nope", "treatments_daily treatments_daily"}

	for _, input := range inputs {
		req := ParseRequest(input, "")
		if len(req.Keys) == 0 {
			t.Fatalf("ParseRequest(%q) returned no keys", input)
		}
		for _, key := range req.Keys {
			if _, ok := domain.ParseMetricKey(string(key)); !ok {
				t.Fatalf("ParseRequest(%q) returned unknown key %q", input, key)
			}
		}
	}
}

func TestParseRequestDoesNotAliasDefaultKeys(t *testing.T) {
	req := ParseRequest("", "")
	req.Keys[0] = "mutated"

	if domain.AllMetricKeys[0] != domain.MetricTreatmentsDaily {
		t.Fatalf("expected default key list to stay untouched")
	}
}
