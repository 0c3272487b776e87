package main

import (
	"strconv"
	"strings"
)

const forecastHeader = "🌤 Прогноз погоды в Иркутске:"

// FormatForecast renders one line per day under a fixed header.
func FormatForecast(f Forecast) string {
	var sb strings.Builder
	sb.WriteString(forecastHeader)
	sb.WriteString("\n\n")
	for _, d := range f.Days {
		sb.WriteString("📅 ")
		sb.WriteString(shortDate(d.Date))
		sb.WriteString("    🌡 Днём: ")
		sb.WriteString(formatTemp(d.High))
		sb.WriteString("°C    🌙 Ночью: ")
		sb.WriteString(formatTemp(d.Low))
		sb.WriteString("°C\n")
	}
	return sb.String()
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
