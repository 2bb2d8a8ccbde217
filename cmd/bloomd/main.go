// Command bloomd runs the bloom filter daemon: named, independently
// configured bloom filters served over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/probitech/bloomd/registry"
	"github.com/probitech/bloomd/server"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 3000

	shutdownGrace = 5 * time.Second
)

func main() {
	host := pflag.String("host", envOr("BLOOMD_HOST", defaultHost), "host to listen on")
	port := pflag.IntP("port", "p", envOrInt("BLOOMD_PORT", defaultPort), "port to listen on")
	logLevel := pflag.String("log-level", envOr("BLOOMD_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	pflag.Parse()

	log := newLogger(*logLevel)

	reg := registry.New(log)
	srv := server.New(reg, log)

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("bloomd listening", "addr", "http://"+addr)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("bloomd exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// envOr returns the environment value for key, or def when unset. Flags
// still win: the env value only replaces the flag's default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
