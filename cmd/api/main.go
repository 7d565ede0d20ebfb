package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vet-clinic/internal/adapters/auth/jwtauth"
	"vet-clinic/internal/adapters/mail/smtp"
	pg "vet-clinic/internal/adapters/storage/postgres"
	rdb "vet-clinic/internal/adapters/storage/redis"
	"vet-clinic/internal/config"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/metrics"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"
	"vet-clinic/internal/router"
)

// @title Vet Clinic API
// @version 1.0
// @description Mascotas, historia clínica, vacunas, cuentas y código de acceso a diagnósticos.
// @BasePath /
func main() {
	rootCmd := &cobra.Command{
		Use:   "vetclinic",
		Short: "Veterinary clinic API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN, cfg.DBMaxOpenConns)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer opened.Close()
		db = opened
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	var sessions session.Store
	if cfg.RedisURL != "" {
		client, err := rdb.Open(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = rdb.NewSessionStore(client, cfg.SessionTTL)
		log.Info("using redis sessions", nil)
	}

	var verifier auth.AuthVerifier
	if cfg.JWTSigningKey != "" {
		verifier = jwtauth.NewVerifier(cfg.JWTSigningKey)
	} else {
		log.Warn("JWT_SIGNING_KEY not set, dev auth headers enabled", nil)
	}

	mailer := smtp.NewSender(smtp.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.EmailUser,
		Pass:     cfg.EmailPass,
		FromName: cfg.EmailFromName,
		Timeout:  cfg.SMTPTimeout,
	})

	handler := router.NewRouter(router.Options{
		AuthVerifier:        verifier,
		DB:                  db,
		Sessions:            sessions,
		Mailer:              mailer,
		ClinicOwnerEmail:    cfg.ClinicOwnerEmail,
		SessionTTL:          cfg.SessionTTL,
		SessionCookieSecure: cfg.SessionCookieSecure,
		RequestTimeout:      cfg.RequestTimeout,
		Logger:              log,
		Metrics:             metrics.New(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *pg.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *pg.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}

				fmt.Printf("%-10s %-30s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					status, appliedAt := "pending", ""
					if s.Applied {
						status = "applied"
						appliedAt = s.AppliedAt.Format(time.RFC3339)
					}
					fmt.Printf("%-10d %-30s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(ctx context.Context, m *pg.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DBDSN == "" {
		return errors.New("DB_DSN is required for migrations")
	}

	db, err := pg.Open(cfg.DBDSN, cfg.DBMaxOpenConns)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	return fn(context.Background(), pg.NewMigrator(db))
}
