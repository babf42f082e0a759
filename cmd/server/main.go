// Command server runs the Camel Up match server: a websocket API over
// the rules engine, with optional postgres persistence and redis action
// history.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jmansell/camelup/internal/auth"
	"github.com/jmansell/camelup/internal/cache"
	"github.com/jmansell/camelup/internal/config"
	"github.com/jmansell/camelup/internal/database"
	"github.com/jmansell/camelup/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			logrus.WithError(err).Fatal("connect database")
		}
		defer database.Close()
	} else {
		logrus.Warn("no database configured, match persistence disabled")
	}

	if cfg.RedisAddr != "" {
		if err := cache.Init(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			logrus.WithError(err).Fatal("connect redis")
		}
	} else {
		logrus.Warn("no redis configured, action history disabled")
	}

	authSvc := auth.NewService(cfg.JWTSecret, 0)
	server := ws.NewServer(authSvc, time.Duration(cfg.TurnTimerSec)*time.Second)

	mux := http.NewServeMux()
	server.Routes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.ListenAddr).Info("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown")
	}
}
