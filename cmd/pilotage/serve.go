package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/mazzdev/pilotage/internal/api"
	"github.com/mazzdev/pilotage/internal/config"
	"github.com/mazzdev/pilotage/internal/metrics"
	"github.com/mazzdev/pilotage/internal/planning"
	"github.com/mazzdev/pilotage/internal/ratelimit"
	"github.com/mazzdev/pilotage/internal/recap"
	"github.com/mazzdev/pilotage/internal/shareholder"
	"github.com/mazzdev/pilotage/internal/timeentry"
	"github.com/mazzdev/pilotage/internal/user"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Pilotage API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("connected to database")

	userStore := user.NewStore(pool, cfg.Auth.SessionDuration)
	entryStore := timeentry.NewStore(pool)
	planningStore := planning.NewStore(pool)
	shareholderStore := shareholder.NewStore(pool)

	m := metrics.New()
	m.RegisterDBPoolCollector(pool.Stat)

	limiter := ratelimit.New(cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)

	router := api.NewRouter(api.RouterDeps{
		Users:          userStore,
		TimeEntries:    entryStore,
		Planning:       planningStore,
		Shareholders:   shareholderStore,
		Sessions:       user.NewAuthAdapter(userStore),
		LoginLimiter:   limiter,
		Metrics:        m,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// Expired sessions accumulate otherwise.
	go cleanSessions(ctx, userStore)

	scheduler := startRecapSchedule(cfg, entryStore, shareholderStore, m, logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	return srv.Shutdown(shutdownCtx)
}

// cleanSessions deletes expired sessions on an hourly tick.
func cleanSessions(ctx context.Context, store *user.Store) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.CleanExpiredSessions(ctx)
			if err != nil {
				slog.Error("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("cleaned expired sessions", "count", n)
			}
		}
	}
}

// startRecapSchedule wires the monthly recap job onto a cron scheduler.
// Returns nil when no schedule is configured.
func startRecapSchedule(cfg *config.Config, entries *timeentry.Store, shareholders *shareholder.Store, m *metrics.Metrics, logger *slog.Logger) *cron.Cron {
	if cfg.Recap.Schedule == "" {
		return nil
	}

	job := &recap.Job{
		Entries:    entries,
		Recipients: shareholders,
		Generator:  recap.NewAnthropicClient(cfg.Recap.AnthropicAPIKey, cfg.Recap.AnthropicModel, cfg.Recap.AnthropicURL),
		Mailer: recap.NewSMTPMailer(cfg.Recap.SMTP.Host, cfg.Recap.SMTP.Port,
			cfg.Recap.SMTP.From, cfg.Recap.SMTP.Username, cfg.Recap.SMTP.Password),
		Logger: logger,
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.Recap.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		month, year := recap.PreviousMonth(time.Now().UTC())
		start := time.Now()
		res, err := job.Run(ctx, month, year)
		if err != nil {
			m.ObserveRecapRun("error", time.Since(start).Seconds(), 0)
			slog.Error("recap run failed", "month", month, "year", year, "error", err)
			return
		}
		sent := 0
		if res.Sent {
			sent = res.Recipients
		}
		m.ObserveRecapRun("success", time.Since(start).Seconds(), sent)
	})
	if err != nil {
		slog.Error("invalid recap schedule, recap disabled", "schedule", cfg.Recap.Schedule, "error", err)
		return nil
	}

	scheduler.Start()
	slog.Info("recap schedule active", "schedule", cfg.Recap.Schedule)
	return scheduler
}
