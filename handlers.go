package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const updateBuffer = 100

// ------------------------ Worker pool ------------------------

// Dispatcher feeds updates from polling or the webhook into a fixed pool of
// workers. Each update is handled on its own, nothing is shared between them.
type Dispatcher struct {
	bot     *Bot
	orch    *Orchestrator
	updates chan *tgbot.Update
	workers int
	wg      sync.WaitGroup
	log     *logrus.Entry

	// mu guards closed; senders hold it shared while blocked in Enqueue
	mu       sync.RWMutex
	closed   bool
	quit     chan struct{}
	stopOnce sync.Once
}

func NewDispatcher(b *Bot, orch *Orchestrator, workers int, log *logrus.Entry) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		bot:     b,
		orch:    orch,
		updates: make(chan *tgbot.Update, updateBuffer),
		workers: workers,
		log:     log,
		quit:    make(chan struct{}),
	}
}

// Start launches the workers. Updates are handled with a context that is
// not cancelled together with ctx, so queued commands finish during Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for upd := range d.updates {
				d.process(ctx, upd)
			}
		}()
	}
}

// Stop rejects further updates, drains the queue and waits for the workers.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)
		d.mu.Lock()
		d.closed = true
		close(d.updates)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

// Enqueue blocks until a worker slot is free. It returns false when ctx is
// done or the dispatcher is stopping.
func (d *Dispatcher) Enqueue(ctx context.Context, upd *tgbot.Update) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.updates <- upd:
		return true
	case <-ctx.Done():
		return false
	case <-d.quit:
		return false
	}
}

// Poll forwards long-polling updates until src closes or ctx is done.
func (d *Dispatcher) Poll(ctx context.Context, src tgbot.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-src:
			if !ok {
				return
			}
			if !d.Enqueue(ctx, &upd) {
				return
			}
		}
	}
}

// ------------------------ Webhook ------------------------

func (d *Dispatcher) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		var upd tgbot.Update
		if err := json.Unmarshal(body, &upd); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if !d.Enqueue(r.Context(), &upd) {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func newMux(cfg Config, d *Dispatcher) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.WebhookPath(), d.WebhookHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// process handles one update. A panic is logged and the update dropped so
// the worker keeps serving.
func (d *Dispatcher) process(ctx context.Context, upd *tgbot.Update) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithFields(logrus.Fields{
				"update_id": upd.UpdateID,
				"panic":     r,
				"stack":     string(debug.Stack()),
			}).Error("exception while handling an update")
		}
	}()

	if upd.Message != nil {
		d.handleMessage(ctx, upd.Message)
	} else if upd.CallbackQuery != nil {
		d.handleCallback(ctx, upd.CallbackQuery)
	}
}

// ------------------------ Message handlers ------------------------

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbot.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch cmd := msg.Command(); cmd {
		case actionStart, actionWeather, actionChart:
			d.orch.Handle(ctx, chatID, cmd)
			return
		}
	}

	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	_ = d.bot.SendText(chatID, msgHint)
}

// ------------------------ Callbacks ------------------------

func (d *Dispatcher) handleCallback(ctx context.Context, q *tgbot.CallbackQuery) {
	// answer first, otherwise the button keeps spinning until the reply is ready
	_ = d.bot.AnswerCallback(q.ID)

	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	switch q.Data {
	case actionWeather, actionChart:
		d.orch.Handle(ctx, q.Message.Chat.ID, q.Data)
	default:
		d.log.WithField("data", q.Data).Debug("unknown callback")
	}
}
