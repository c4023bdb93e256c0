package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"

	"ayu/internal/handlers"
	"ayu/internal/logging"
	"ayu/internal/server"
	"ayu/internal/storage"
)

func main() {
	addr := flag.String("addr", getenv("AYU_ADDR", ":8080"), "listen address")
	pollDelay := flag.Duration("poll-delay", handlers.DefaultPollDelay, "longest time a poll request is held open")
	driver := flag.String("db-driver", "sqlite", "database driver: postgres or sqlite")
	dsn := flag.String("dsn", "", "database DSN (default $AYU_DSN); games are kept in memory only when empty")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	logging.Setup(os.Stderr, *debug)

	if *dsn == "" {
		*dsn = getenv("AYU_DSN", "")
	}
	if err := run(*addr, *pollDelay, *driver, *dsn); err != nil {
		log.Fatal(err)
	}
}

func run(addr string, pollDelay time.Duration, driver, dsn string) error {
	var store *storage.Store
	if dsn != "" {
		db, err := storage.Open(driver, dsn)
		if err != nil {
			return err
		}
		store = storage.NewStore(db)
		slog.Info("using database", "driver", driver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(store, clock.New())
	go hub.RunCleanup(ctx, time.Hour)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.NewHandler(hub, pollDelay).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("ayu server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	// open polls are cut short; clients poll again after a restart
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
