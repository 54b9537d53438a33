package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"slotline/internal/config"
	"slotline/internal/domain"
	"slotline/internal/notify"
	"slotline/internal/service/booking"
	"slotline/internal/store"
	"slotline/internal/store/memory"
	"slotline/internal/store/postgres"
	"slotline/internal/transport/httpapi"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "slotline-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "slotline-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr()),
		slog.String("log_level", cfg.LogLevel),
		slog.Int("work_start_hour", cfg.WorkingHours.StartHour),
		slog.Int("work_end_hour", cfg.WorkingHours.EndHour),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store init failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer cleanup()

	if cfg.SeedDemoBooking {
		if err := seedDemoBooking(ctx, st, cfg.WorkingHours); err != nil {
			log.Warn("demo booking seed failed", slog.Any("err", err))
		}
	}

	svc := booking.NewService(st, cfg.WorkingHours, notify.NewLogSender(log))
	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      httpapi.NewServer(svc, log).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, srv, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store", slog.Int("blocked_dates", len(cfg.BlockedDates)))
		return memory.New(domain.NewDateSet(cfg.BlockedDates...)), func() {}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}
	return postgres.NewStore(db), cleanup, nil
}

// seedDemoBooking places a sample "Client Meeting" on the next open day so a
// fresh demo calendar is not entirely empty.
func seedDemoBooking(ctx context.Context, st store.Store, hours domain.WorkingHours) error {
	blocked, err := st.BlockedDates(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := 1; i <= 14; i++ {
		day := now.AddDate(0, 0, i)
		if !hours.IsWorkingDay(day) || blocked.Contains(day) {
			continue
		}

		y, m, d := day.Date()
		start := time.Date(y, m, d, 10, 0, 0, 0, day.Location())

		return st.InTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
			_, err := tx.AppendBooking(ctx, domain.Booking{
				Title:     "Client Meeting",
				StartTime: start,
				EndTime:   start.Add(time.Hour),
			})
			if errors.Is(err, store.ErrConflict) {
				return nil
			}
			return err
		})
	}
	return nil
}

func shutdown(log *slog.Logger, srv *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown timed out; forcing close", slog.Any("err", err))
		_ = srv.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
