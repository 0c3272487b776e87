package main

import "time"

// DayForecast is one forecast entry: the calendar day and its temperature range in °C.
type DayForecast struct {
	Date time.Time `json:"date"`
	High float64   `json:"high"`
	Low  float64   `json:"low"`
}

// Forecast holds consecutive days ordered by date ascending.
type Forecast struct {
	Days []DayForecast `json:"days"`
}

// Labels returns the shortened (month-day) date of every entry.
func (f Forecast) Labels() []string {
	out := make([]string, 0, len(f.Days))
	for _, d := range f.Days {
		out = append(out, shortDate(d.Date))
	}
	return out
}

func (f Forecast) Highs() []float64 {
	out := make([]float64, 0, len(f.Days))
	for _, d := range f.Days {
		out = append(out, d.High)
	}
	return out
}

func (f Forecast) Lows() []float64 {
	out := make([]float64, 0, len(f.Days))
	for _, d := range f.Days {
		out = append(out, d.Low)
	}
	return out
}

func shortDate(t time.Time) string {
	return t.Format("01-02")
}

// CommandRecord is one journal entry describing a handled command.
type CommandRecord struct {
	ID        string        `json:"id"`
	ChatID    int64         `json:"chat_id"`
	Action    string        `json:"action"`
	Outcome   string        `json:"outcome"`
	Duration  time.Duration `json:"duration"`
	HandledAt time.Time     `json:"handled_at"`
}
