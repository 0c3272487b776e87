package main

import "errors"

var (
	ErrMissingToken        = errors.New("BOT_TOKEN is required")
	ErrInvalidHorizon      = errors.New("forecast horizon out of range")
	ErrForecastUnavailable = errors.New("forecast unavailable")
	// ErrChartUnavailable covers transport errors and non-2xx answers of the chart service.
	ErrChartUnavailable = errors.New("chart service unavailable")
	// ErrChartFailed covers everything else that prevents producing a PNG.
	ErrChartFailed = errors.New("chart generation failed")
)
