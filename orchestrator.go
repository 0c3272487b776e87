package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	msgGreeting = "Привет! Я бот погоды в Иркутске.\n" +
		"Используй /weather, чтобы узнать прогноз на ближайшие дни, " +
		"или /chart, чтобы получить график температуры."
	msgFetching         = "Получаю данные о погоде..."
	msgForecastFailed   = "Не удалось получить прогноз. Попробуйте позже."
	msgChartUnavailable = "Сервис графиков временно недоступен. Попробуйте позже."
	msgChartFailed      = "Не удалось построить график."
	msgHint             = "Нажмите /start, чтобы начать."
)

const (
	outcomeOK               = "ok"
	outcomeForecastFailed   = "forecast_unavailable"
	outcomeChartUnavailable = "chart_unavailable"
	outcomeChartFailed      = "chart_failed"
)

type stage int

const (
	stageIdle stage = iota
	stageAcknowledged
	stageResolved
)

func (s stage) String() string {
	switch s {
	case stageIdle:
		return "idle"
	case stageAcknowledged:
		return "acknowledged"
	case stageResolved:
		return "resolved"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

var errStageOrder = errors.New("invocation stage out of order")

// invocation tracks a single command from receipt to reply. It lives only
// for the duration of one event.
type invocation struct {
	id      string
	chatID  int64
	action  string
	stage   stage
	started time.Time
	log     *logrus.Entry
}

// advance moves to next, which must directly follow the current stage.
func (inv *invocation) advance(next stage) error {
	if next != inv.stage+1 {
		return fmt.Errorf("%w: %s -> %s", errStageOrder, inv.stage, next)
	}
	inv.stage = next
	return nil
}

// reply is the resolution of an invocation: either text or a PNG.
type reply struct {
	text    string
	photo   []byte
	caption string
	outcome string
}

type Orchestrator struct {
	bot          *Bot
	forecasts    ForecastProvider
	charts       ChartProvider
	journal      Journal
	forecastDays int
	chartDays    int
	menu         bool
	log          *logrus.Entry
	now          func() time.Time
}

func NewOrchestrator(bot *Bot, forecasts ForecastProvider, charts ChartProvider, journal Journal, cfg Config, log *logrus.Entry) *Orchestrator {
	return &Orchestrator{
		bot:          bot,
		forecasts:    forecasts,
		charts:       charts,
		journal:      journal,
		forecastDays: cfg.ForecastDays,
		chartDays:    cfg.ChartDays,
		menu:         cfg.MenuEnabled,
		log:          log,
		now:          time.Now,
	}
}

// Handle runs action for chatID. Unknown actions are ignored.
func (o *Orchestrator) Handle(ctx context.Context, chatID int64, action string) {
	switch action {
	case actionStart:
		o.run(ctx, o.begin(chatID, action), nil, o.greet)
	case actionWeather:
		o.run(ctx, o.begin(chatID, action), o.ackText, o.weather)
	case actionChart:
		o.run(ctx, o.begin(chatID, action), o.ackUpload, o.chart)
	default:
		o.log.WithField("action", action).Debug("ignoring unknown action")
	}
}

func (o *Orchestrator) begin(chatID int64, action string) *invocation {
	id := uuid.NewString()
	return &invocation{
		id:      id,
		chatID:  chatID,
		action:  action,
		stage:   stageIdle,
		started: o.now(),
		log: o.log.WithFields(logrus.Fields{
			"invocation": id,
			"chat_id":    chatID,
			"action":     action,
		}),
	}
}

func (o *Orchestrator) run(ctx context.Context, inv *invocation, ack func(chatID int64), resolve func(context.Context, *invocation) reply) {
	if ack != nil {
		ack(inv.chatID)
	}
	if err := inv.advance(stageAcknowledged); err != nil {
		inv.log.WithError(err).Error("invocation aborted")
		return
	}

	r := resolve(ctx, inv)
	o.deliver(inv.chatID, r)
	if err := inv.advance(stageResolved); err != nil {
		inv.log.WithError(err).Error("invocation aborted")
		return
	}

	if o.menu {
		_ = o.bot.SendWithKeyboard(inv.chatID, menuPrompt, menuKeyboard())
	}
	o.finish(ctx, inv, r.outcome)
}

func (o *Orchestrator) ackText(chatID int64) {
	_ = o.bot.SendText(chatID, msgFetching)
}

func (o *Orchestrator) ackUpload(chatID int64) {
	_ = o.bot.SendChatAction(chatID, tgbot.ChatUploadPhoto)
}

func (o *Orchestrator) greet(context.Context, *invocation) reply {
	return reply{text: msgGreeting, outcome: outcomeOK}
}

func (o *Orchestrator) weather(ctx context.Context, inv *invocation) reply {
	f, err := o.forecasts.FetchForecast(ctx, o.forecastDays)
	if err != nil {
		inv.log.WithError(err).Error("fetch forecast")
		return reply{text: msgForecastFailed, outcome: outcomeForecastFailed}
	}
	return reply{text: FormatForecast(f), outcome: outcomeOK}
}

func (o *Orchestrator) chart(ctx context.Context, inv *invocation) reply {
	f, err := o.forecasts.FetchForecast(ctx, o.chartDays)
	if err != nil {
		inv.log.WithError(err).Error("fetch forecast")
		return reply{text: msgForecastFailed, outcome: outcomeForecastFailed}
	}

	img, err := o.charts.RenderChart(ctx, NewChartSpec(f))
	switch {
	case errors.Is(err, ErrChartUnavailable):
		inv.log.WithError(err).Error("render chart")
		return reply{text: msgChartUnavailable, outcome: outcomeChartUnavailable}
	case err != nil:
		inv.log.WithError(err).Error("render chart")
		return reply{text: msgChartFailed, outcome: outcomeChartFailed}
	}
	return reply{
		photo:   img,
		caption: fmt.Sprintf("📈 Температура в Иркутске на %d дн.", len(f.Days)),
		outcome: outcomeOK,
	}
}

func (o *Orchestrator) deliver(chatID int64, r reply) {
	if r.photo != nil {
		_ = o.bot.SendPNG(chatID, r.photo, r.caption)
		return
	}
	_ = o.bot.SendText(chatID, r.text)
}

func (o *Orchestrator) finish(ctx context.Context, inv *invocation, outcome string) {
	elapsed := o.now().Sub(inv.started)
	inv.log.WithFields(logrus.Fields{
		"outcome":  outcome,
		"duration": elapsed,
	}).Info("command handled")

	if o.journal == nil {
		return
	}
	rec := CommandRecord{
		ID:        inv.id,
		ChatID:    inv.chatID,
		Action:    inv.action,
		Outcome:   outcome,
		Duration:  elapsed,
		HandledAt: inv.started,
	}
	if err := o.journal.Record(ctx, rec); err != nil {
		inv.log.WithError(err).Warn("journal record failed")
	}
}
