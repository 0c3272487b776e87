package main

import (
	"context"
	"io"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// fakeAPI records every outgoing call in order.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []tgbot.Chattable
	updates chan tgbot.Update
	sendErr error
	stopped bool
}

func (f *fakeAPI) Send(c tgbot.Chattable) (tgbot.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return tgbot.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbot.Chattable) (*tgbot.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return &tgbot.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbot.UpdateConfig) tgbot.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) recorded() []tgbot.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tgbot.Chattable, len(f.calls))
	copy(out, f.calls)
	return out
}

// texts returns the text of every sent message, in order.
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.recorded() {
		if m, ok := c.(tgbot.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

type stubForecasts struct {
	forecast Forecast
	err      error
	panicMsg string
	calls    int
	days     []int
	ctxErrs  []error
}

func (s *stubForecasts) FetchForecast(ctx context.Context, days int) (Forecast, error) {
	s.calls++
	s.days = append(s.days, days)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.forecast, s.err
}

type stubCharts struct {
	img   []byte
	err   error
	calls int
	spec  ChartSpec
}

func (s *stubCharts) RenderChart(_ context.Context, spec ChartSpec) ([]byte, error) {
	s.calls++
	s.spec = spec
	return s.img, s.err
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testBot() (*Bot, *fakeAPI) {
	api := &fakeAPI{}
	return &Bot{api: api, log: testLogger()}, api
}

func testConfig() Config {
	return Config{
		TelegramToken: "123:abc",
		WebhookSecret: "secret",
		ForecastDays:  16,
		ChartDays:     7,
		MenuEnabled:   true,
		Workers:       1,
	}
}
