// Package metrics answers the metrics commands: it parses the request, fetches
// a snapshot and renders it in the requested format.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"aesthetic_doctor_bot/internal/chart"
	"aesthetic_doctor_bot/internal/domain"
	"aesthetic_doctor_bot/internal/instrument"
	"aesthetic_doctor_bot/internal/render"
)

const (
	replyNotConfigured = "The metrics feature is not configured (METRICS_ENDPOINT / METRICS_BOT_TOKEN missing)."
	replyFetchFailed   = "Unable to fetch metrics right now, please try again later."
	replyChartFailed   = "Unable to generate the chart right now, please try again later."
	replyRenderFailed  = "Unable to prepare the metrics file right now, please try again later."
)

// Command describes how a bot command drives the metrics pipeline. Empty
// fields leave the choice to the command arguments.
type Command struct {
	Name    string
	Format  domain.Format
	Metrics []domain.MetricKey
}

// Commands served by Service.
var (
	CommandMetrics        = Command{Name: "metrics"}
	CommandMetricsText    = Command{Name: "metrics_text", Format: domain.FormatText}
	CommandMetricsCSV     = Command{Name: "metrics_csv", Format: domain.FormatCSV}
	CommandMetricsChart   = Command{Name: "metrics_chart", Format: domain.FormatChart}
	CommandDoctorActivity = Command{
		Name:    "doctor_activity",
		Format:  domain.FormatText,
		Metrics: []domain.MetricKey{domain.MetricDoctorActivity},
	}
)

// Fetcher loads a metrics snapshot.
type Fetcher interface {
	Fetch(ctx context.Context, keys []domain.MetricKey) (domain.Snapshot, error)
}

// ChartRenderer turns a line chart into an image.
type ChartRenderer interface {
	Render(ctx context.Context, line chart.Line) ([]byte, error)
}

type Config struct {
	Logger *logrus.Entry

	// Optional. A nil Fetcher means the feature is not configured.
	Fetcher Fetcher
	Charts  ChartRenderer
	Clock   clockwork.Clock
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Fetcher != nil && c.Charts == nil {
		return errors.New("chart renderer is required when metrics are configured")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Service answers metrics commands.
type Service struct {
	cfg Config
}

func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg}, nil
}

// Handle runs one metrics command with its raw arguments.
func (s *Service) Handle(ctx context.Context, cmd Command, args string) domain.Reply {
	if s.cfg.Fetcher == nil {
		return domain.TextReply(replyNotConfigured)
	}

	req := ParseRequest(args, cmd.Format)
	if len(cmd.Metrics) > 0 {
		req.Keys = append([]domain.MetricKey(nil), cmd.Metrics...)
	}

	logger := s.cfg.Logger.WithFields(logrus.Fields{
		"command": cmd.Name,
		"format":  req.Format,
		"metrics": domain.JoinKeys(req.Keys, ","),
	})

	if req.Format == domain.FormatChart {
		if _, err := render.ChartMetric(req.Keys); err != nil {
			return domain.TextReply(fmt.Sprintf("To use the chart format specify a supported metric (%s).", domain.JoinKeys(domain.ChartableMetricKeys, ", ")))
		}
	}

	snapshot, err := s.cfg.Fetcher.Fetch(ctx, req.Keys)
	if err != nil {
		instrument.UpstreamFailures.WithLabelValues(instrument.ServiceMetrics).Inc()
		logger.WithError(err).Error("failed to fetch metrics")
		return domain.TextReply(replyFetchFailed)
	}

	reply := s.render(ctx, logger, req, snapshot)
	instrument.MetricsReplies.WithLabelValues(string(req.Format)).Inc()
	return reply
}

func (s *Service) render(ctx context.Context, logger *logrus.Entry, req Request, snapshot domain.Snapshot) domain.Reply {
	now := s.cfg.Clock.Now()

	switch req.Format {
	case domain.FormatText:
		return domain.TextReply(render.Text(snapshot, req.Keys))
	case domain.FormatCSV:
		doc := render.CSV(snapshot, req.Keys, now)
		return domain.Reply{Attachment: &doc}
	case domain.FormatChart:
		return s.renderChart(ctx, logger, req, snapshot)
	default:
		doc, err := render.JSON(snapshot, req.Keys, now)
		if err != nil {
			logger.WithError(err).Error("failed to encode metrics snapshot")
			return domain.TextReply(replyRenderFailed)
		}
		return domain.Reply{Attachment: &doc}
	}
}

func (s *Service) renderChart(ctx context.Context, logger *logrus.Entry, req Request, snapshot domain.Snapshot) domain.Reply {
	series, err := render.ChartSeries(snapshot, req.Keys)
	if errors.Is(err, render.ErrNoData) {
		return domain.TextReply(fmt.Sprintf("No data available for %s.", series.Metric))
	}
	if err != nil {
		logger.WithError(err).Warn("chart series unavailable")
		return domain.TextReply(replyChartFailed)
	}

	image, err := s.cfg.Charts.Render(ctx, chart.Line{
		Title:  series.Title,
		Labels: series.Labels,
		Values: series.Values,
	})
	if err != nil {
		instrument.UpstreamFailures.WithLabelValues(instrument.ServiceChart).Inc()
		logger.WithError(err).Error("failed to render chart")
		return domain.TextReply(replyChartFailed)
	}

	return domain.Reply{Attachment: &domain.Attachment{
		Kind:     domain.AttachmentPhoto,
		FileName: series.FileName(),
		Data:     image,
		Caption:  series.Caption(),
	}}
}
