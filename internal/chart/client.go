// Package chart renders line charts through a QuickChart compatible service.
package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	lineColor = "#6366F1"
	fillColor = "rgba(99,102,241,0.15)"
)

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-200 answer from the chart service.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chart service responded with %d", e.StatusCode)
}

// Line is a single-dataset line chart.
type Line struct {
	Title  string
	Labels []string
	Values []int64
}

// Client posts chart definitions and returns the rendered image.
type Client struct {
	endpoint string
	http     HTTPDoer
}

// NewClient builds a Client. A nil doer uses http.DefaultClient.
func NewClient(endpoint string, doer HTTPDoer) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("chart endpoint is required")
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: doer}, nil
}

// Render returns the PNG bytes of the chart.
func (c *Client) Render(ctx context.Context, line Line) ([]byte, error) {
	body, err := json.Marshal(request{Chart: lineConfig(line)})
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chart image: %w", err)
	}
	return image, nil
}

type request struct {
	Chart config `json:"chart"`
}

type config struct {
	Type    string  `json:"type"`
	Data    data    `json:"data"`
	Options options `json:"options"`
}

type data struct {
	Labels   []string  `json:"labels"`
	Datasets []dataset `json:"datasets"`
}

type dataset struct {
	Label           string  `json:"label"`
	Data            []int64 `json:"data"`
	Fill            bool    `json:"fill"`
	BorderColor     string  `json:"borderColor"`
	BackgroundColor string  `json:"backgroundColor"`
	Tension         float64 `json:"tension"`
}

type options struct {
	Responsive bool    `json:"responsive"`
	Plugins    plugins `json:"plugins"`
	Scales     scales  `json:"scales"`
}

type plugins struct {
	Legend toggle `json:"legend"`
	Title  title  `json:"title"`
}

type toggle struct {
	Display bool `json:"display"`
}

type title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type scales struct {
	Y axis `json:"y"`
}

type axis struct {
	BeginAtZero bool  `json:"beginAtZero"`
	Ticks       ticks `json:"ticks"`
}

type ticks struct {
	Precision int `json:"precision"`
}

func lineConfig(line Line) config {
	labels := line.Labels
	if labels == nil {
		labels = []string{}
	}
	values := line.Values
	if values == nil {
		values = []int64{}
	}

	return config{
		Type: "line",
		Data: data{
			Labels: labels,
			Datasets: []dataset{{
				Label:           line.Title,
				Data:            values,
				Fill:            true,
				BorderColor:     lineColor,
				BackgroundColor: fillColor,
				Tension:         0.3,
			}},
		},
		Options: options{
			Responsive: true,
			Plugins: plugins{
				Legend: toggle{Display: false},
				Title:  title{Display: true, Text: line.Title},
			},
			Scales: scales{Y: axis{BeginAtZero: true, Ticks: ticks{Precision: 0}}},
		},
	}
}
