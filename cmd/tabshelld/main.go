// Command tabshelld is the session-hosting daemon: it owns every local and
// SSH session, the command-block/history/resolver pipeline, and an
// HTTP/WebSocket surface an external UI process attaches to. Startup
// order, the signal-driven graceful shutdown, and the periodic background
// maintenance loops follow control-plane/main.go's shape; the daily
// maintenance job uses robfig/cron (already part of this stack) in place
// of the teacher's own hand-rolled ticker-plus-select loops, since a
// single daily job has no need for a dedicated goroutine per concern.
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gluk-w/tabshell/internal/aiclient"
	"github.com/gluk-w/tabshell/internal/api"
	"github.com/gluk-w/tabshell/internal/config"
	"github.com/gluk-w/tabshell/internal/history"
	"github.com/gluk-w/tabshell/internal/logging"
	"github.com/gluk-w/tabshell/internal/scheduler"
	"github.com/gluk-w/tabshell/internal/store"
)

func main() {
	config.Load()
	logging.Init()

	if err := store.Init(); err != nil {
		log.Fatalf("store init: %v", err)
	}
	defer store.Close()

	if err := history.Init(config.Cfg.HistoryPath); err != nil {
		log.Fatalf("history init: %v", err)
	}
	defer history.Close()

	manager := scheduler.New()
	timers := scheduler.NewTimers(manager)
	timers.Start()
	defer timers.Stop()

	if config.Cfg.RestoreOnStart {
		selected, err := scheduler.Restore(manager, scheduler.DefaultHostFactory{})
		if err != nil {
			log.Printf("WARNING: session restore failed: %v", err)
		} else if selected != "" {
			log.Printf("restored previous session selection: %s", selected)
		}
	}

	aiClient, err := aiclient.NewClient()
	var translator aiclient.Translator
	var embedder aiclient.Embedder
	if err != nil {
		log.Printf("AI translator/embedder disabled: %v", err)
	} else {
		translator = aiClient
		embedder = aiClient
	}

	srv := &api.Server{
		Manager:    manager,
		Timers:     timers,
		Translator: translator,
		Embedder:   embedder,
		MaxRetries: config.Cfg.MaxRetries,
	}

	httpServer := &http.Server{
		Addr:    config.Cfg.APIAddr,
		Handler: srv.Router(),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc("@daily", func() { runDailyMaintenance(manager) }); err != nil {
		log.Printf("WARNING: failed to schedule daily maintenance: %v", err)
	} else {
		c.Start()
		defer c.Stop()
	}

	go func() {
		log.Printf("tabshelld listening on %s", config.Cfg.APIAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARNING: http server shutdown: %v", err)
	}

	if err := scheduler.Persist(manager); err != nil {
		log.Printf("WARNING: session persist failed: %v", err)
	}

	log.Println("tabshelld stopped")
}

// runDailyMaintenance logs aggregate history statistics as a lightweight
// daily heartbeat. It is the natural place to add retention/pruning
// policies should the history store need them later.
func runDailyMaintenance(manager *scheduler.Manager) {
	stats, err := history.GetStatistics()
	if err != nil {
		log.Printf("[maintenance] history statistics failed: %v", err)
		return
	}
	log.Printf("[maintenance] history: %d total, %d successful, %d active sessions",
		stats.Total, stats.SuccessCount, len(manager.List()))
}
