package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := LoadConfig()
	log := newLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log = newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := NewBot(cfg, componentLogger(log, "bot"))
	if err != nil {
		log.WithError(err).Fatal("init bot")
	}
	defer bot.Shutdown()

	// Journal: Postgres when configured, otherwise in memory
	var journal Journal
	if cfg.DatabaseURL != "" {
		pj, err := NewPostgresJournal(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("init postgres journal")
		}
		journal = pj
		log.Info("using postgres command journal")
	} else {
		journal = NewMemoryJournal(defaultMemoryJournalSize)
		log.Info("using in-memory command journal")
	}
	defer journal.Close()

	orch := NewOrchestrator(
		bot,
		NewOpenMeteoClient(cfg),
		NewQuickChartClient(cfg, componentLogger(log, "chart")),
		journal,
		cfg,
		componentLogger(log, "orchestrator"),
	)
	disp := NewDispatcher(bot, orch, cfg.Workers, componentLogger(log, "dispatcher"))
	disp.Start(ctx)
	defer disp.Stop()

	if !cfg.Webhook() {
		if err := bot.DeleteWebhook(); err != nil {
			log.WithError(err).Warn("deleteWebhook")
		}
		log.Info("starting polling")
		disp.Poll(ctx, bot.Updates())
		log.Info("polling stopped")
		return
	}

	wh := cfg.WebhookURL + cfg.WebhookPath()
	if err := bot.SetWebhook(wh); err != nil {
		log.WithError(err).Fatal("setWebhook")
	}
	log.WithField("port", cfg.Port).Info("webhook set")

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newMux(cfg, disp),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// ListenAndServe returns as soon as Shutdown begins; disp.Stop must wait
	// until in-flight webhook handlers are done
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("server shutdown")
		}
	}()

	log.Infof("listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server error")
		stop()
	}
	<-shutdownDone
}
