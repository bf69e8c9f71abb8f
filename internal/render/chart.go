package render

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"aesthetic_doctor_bot/internal/domain"
)

// MaxChartDays bounds the treatments_daily series.
const MaxChartDays = 20

var (
	ErrNoChartableMetric = errors.New("no chartable metric requested")
	ErrNoData            = errors.New("no data for chart")
)

// Series is a chart-ready time series.
type Series struct {
	Metric domain.MetricKey
	Title  string
	Labels []string
	Values []int64
}

// FileName is the attachment name of the rendered image.
func (s Series) FileName() string {
	return fmt.Sprintf("%s-chart.png", s.Metric)
}

// Caption is "<title> (<last label>)".
func (s Series) Caption() string {
	last := ""
	if len(s.Labels) > 0 {
		last = s.Labels[len(s.Labels)-1]
	}
	return fmt.Sprintf("%s (%s)", s.Title, last)
}

// ChartMetric picks the first chartable key in request order.
func ChartMetric(keys []domain.MetricKey) (domain.MetricKey, error) {
	for _, key := range keys {
		if key.Chartable() {
			return key, nil
		}
	}
	return "", ErrNoChartableMetric
}

// ChartSeries projects the first chartable requested metric into a series.
func ChartSeries(snapshot domain.Snapshot, keys []domain.MetricKey) (Series, error) {
	metric, err := ChartMetric(keys)
	if err != nil {
		return Series{}, err
	}

	rows := snapshot.Rows(metric)
	if len(rows) == 0 {
		return Series{Metric: metric}, fmt.Errorf("%s: %w", metric, ErrNoData)
	}

	if metric == domain.MetricComparisonsDaily {
		return comparisonsDailySeries(rows), nil
	}
	return treatmentsDailySeries(rows), nil
}

// comparisonsDailySeries reverses the newest-first rows.
func comparisonsDailySeries(rows []domain.Row) Series {
	series := Series{
		Metric: domain.MetricComparisonsDaily,
		Title:  "Comparisons per day",
		Labels: make([]string, 0, len(rows)),
		Values: make([]int64, 0, len(rows)),
	}
	for i := len(rows) - 1; i >= 0; i-- {
		r := domain.NewComparisonsDaily(rows[i])
		series.Labels = append(series.Labels, ShortDate(r.Day))
		series.Values = append(series.Values, r.Created)
	}
	return series
}

type dayBucket struct {
	label  string
	day    time.Time
	parsed bool
	total  int64
}

// sortDatedBuckets orders the buckets with a parseable day chronologically
// among the slots they occupy. Undated buckets keep their first-seen slot.
func sortDatedBuckets(buckets []*dayBucket) {
	var slots []int
	var dated []*dayBucket
	for i, bucket := range buckets {
		if bucket.parsed {
			slots = append(slots, i)
			dated = append(dated, bucket)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].day.Before(dated[j].day)
	})
	for i, slot := range slots {
		buckets[slot] = dated[i]
	}
}

// treatmentsDailySeries sums every owner's treatments per day and keeps the
// most recent MaxChartDays days in chronological order.
func treatmentsDailySeries(rows []domain.Row) Series {
	var buckets []*dayBucket
	index := make(map[string]*dayBucket)

	for _, row := range rows {
		r := domain.NewTreatmentsDaily(row)
		label := ShortDate(r.Day)

		bucket, ok := index[label]
		if !ok {
			day, parsed := domain.ParseTimestamp(r.Day)
			bucket = &dayBucket{label: label, day: day, parsed: parsed}
			index[label] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.total += r.Treatments
	}

	sortDatedBuckets(buckets)
	if len(buckets) > MaxChartDays {
		buckets = buckets[len(buckets)-MaxChartDays:]
	}

	series := Series{
		Metric: domain.MetricTreatmentsDaily,
		Title:  "Treatments per day (totals)",
		Labels: make([]string, 0, len(buckets)),
		Values: make([]int64, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		series.Labels = append(series.Labels, bucket.label)
		series.Values = append(series.Values, bucket.total)
	}
	return series
}
