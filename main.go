package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/craftops/panel/internal/config"
	"github.com/craftops/panel/internal/handlers"
	"github.com/craftops/panel/internal/logging"
	"github.com/craftops/panel/internal/sched"
	"github.com/craftops/panel/internal/session"
	"github.com/craftops/panel/internal/store"
)

func main() {
	config.Load()
	logging.Init()

	if err := store.Init(config.Cfg.DatabasePath); err != nil {
		// The core session/exec surface works without persistence; saved
		// hosts, schedules, and the audit trail come back when it does.
		log.Printf("WARNING: database init failed, persistence disabled: %v", err)
	}
	defer store.Close()

	connectTimeout, err := time.ParseDuration(config.Cfg.ConnectTimeout)
	if err != nil {
		connectTimeout = 25 * time.Second
	}
	idleTimeout, err := time.ParseDuration(config.Cfg.SessionIdleTimeout)
	if err != nil {
		idleTimeout = 2 * time.Hour
	}

	registry := session.NewRegistry(
		session.WithConnectTimeout(connectTimeout),
		session.WithIdleTimeout(idleTimeout),
	)

	ctx := context.Background()
	registry.StartIdleSweeper(ctx)
	log.Printf("Session registry initialized (connect_timeout=%s, idle_timeout=%s)", connectTimeout, idleTimeout)

	apiOpts := []func(*handlers.API){}
	var scheduler *sched.Scheduler
	if config.Cfg.SchedulerEnabled && store.DB != nil {
		scheduler = sched.New(registry)
		if err := scheduler.Start(); err != nil {
			log.Printf("WARNING: scheduler start failed: %v", err)
			scheduler = nil
		} else {
			apiOpts = append(apiOpts, handlers.WithScheduler(scheduler))
		}
	}

	api := handlers.New(registry, apiOpts...)

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", api.Routes)

	srv := &http.Server{
		Addr:    config.Cfg.ListenAddr,
		Handler: r,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on %s", config.Cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	log.Println("Shutting down...")

	if scheduler != nil {
		scheduler.Stop()
	}
	registry.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
