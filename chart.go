package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	chartTimeout = 15 * time.Second
	chartTitle   = "Прогноз температуры в Иркутске"
	chartWidth   = 800
	chartHeight  = 400
	maxChartSize = 10 << 20
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// ChartProvider turns a chart spec into PNG bytes.
type ChartProvider interface {
	RenderChart(ctx context.Context, spec ChartSpec) ([]byte, error)
}

// ChartSpec is a Chart.js line chart config as accepted by QuickChart.
type ChartSpec struct {
	Type    string       `json:"type"`
	Data    chartData    `json:"data"`
	Options chartOptions `json:"options"`
}

type chartData struct {
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

type chartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	Fill            bool      `json:"fill"`
}

type chartOptions struct {
	Title chartTitleOptions `json:"title"`
}

type chartTitleOptions struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// NewChartSpec builds the day/night temperature chart for f.
func NewChartSpec(f Forecast) ChartSpec {
	return ChartSpec{
		Type: "line",
		Data: chartData{
			Labels: f.Labels(),
			Datasets: []chartDataset{
				{
					Label:           "Днём",
					Data:            f.Highs(),
					BorderColor:     "rgb(255, 99, 132)",
					BackgroundColor: "rgba(255, 99, 132, 0.2)",
				},
				{
					Label:           "Ночью",
					Data:            f.Lows(),
					BorderColor:     "rgb(54, 162, 235)",
					BackgroundColor: "rgba(54, 162, 235, 0.2)",
				},
			},
		},
		Options: chartOptions{
			Title: chartTitleOptions{Display: true, Text: chartTitle},
		},
	}
}

type quickChartRequest struct {
	BackgroundColor string    `json:"backgroundColor"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	Format          string    `json:"format"`
	Chart           ChartSpec `json:"chart"`
}

// QuickChartClient renders charts through the QuickChart HTTP API.
type QuickChartClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

var _ ChartProvider = (*QuickChartClient)(nil)

func NewQuickChartClient(cfg Config, log *logrus.Entry) *QuickChartClient {
	base := strings.TrimSpace(cfg.ChartURL)
	if base == "" {
		base = defaultChartURL
	}
	return &QuickChartClient{
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: chartTimeout,
		},
		log: log,
	}
}

// RenderChart posts spec and returns the PNG body. Transport errors and
// non-2xx answers wrap ErrChartUnavailable, anything else ErrChartFailed.
func (c *QuickChartClient) RenderChart(ctx context.Context, spec ChartSpec) ([]byte, error) {
	payload, err := json.Marshal(quickChartRequest{
		BackgroundColor: "white",
		Width:           chartWidth,
		Height:          chartHeight,
		Format:          "png",
		Chart:           spec,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode spec: %v", ErrChartFailed, err)
	}
	c.log.WithField("spec", string(payload)).Debug("rendering chart")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrChartFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrChartUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrChartUnavailable, resp.StatusCode, string(snippet))
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxChartSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrChartUnavailable, err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		return nil, fmt.Errorf("%w: response is not a png (%d bytes)", ErrChartFailed, len(img))
	}
	return img, nil
}
