package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hanzi/internal/api"
	"hanzi/internal/clock"
	"hanzi/internal/config"
	"hanzi/internal/handler"
	"hanzi/internal/importer"
	"hanzi/internal/jobs"
	"hanzi/internal/metrics"
	"hanzi/internal/repository"
	"hanzi/internal/repository/postgres"
	"hanzi/internal/repository/sqlite"
	"hanzi/internal/service"
	"hanzi/internal/srs"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type stores struct {
	users repository.UserRepository
	cards repository.CardRepository
	chars repository.CharacterRepository
	close func() error
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Hanzi",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("bot", cfg.Bot.Enabled),
		zap.Bool("http", cfg.HTTP.Enabled),
		zap.Bool("reminder", cfg.Reminder.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer st.close()

	scheduler, err := srs.NewScheduler(cfg.Study.Policy)
	if err != nil {
		logger.Fatal("Invalid scheduling policy", zap.Error(err))
	}

	clk := clock.System{}
	collector := metrics.NewCollector("hanzi")

	authService := service.NewAuthService(st.users, cfg.Bot.Password)
	charService := service.NewCharacterService(st.chars, logger)
	progressService := service.NewProgressService(st.cards, clk, collector, logger)
	studyService := service.NewStudyService(st.cards, scheduler, clk, service.StudyOptions{
		PassGrade:     cfg.PassGrade(),
		RequeueLapses: cfg.Study.RequeueLapses,
		SessionLimit:  cfg.Study.SessionLimit,
		SessionTTL:    cfg.Study.SessionTTL,
	}, collector, logger)

	if err := runImport(ctx, cfg.Import, charService, logger); err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}
	if cfg.Import.Only {
		logger.Info("Import finished, exiting")
		return
	}

	var bot *tele.Bot
	var h *handler.Handler
	if cfg.Bot.Enabled {
		bot, err = tele.NewBot(tele.Settings{
			Token:  cfg.Bot.Token,
			Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		})
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}

		h = handler.NewHandler(bot, authService, studyService, charService, progressService, logger)
		h.RegisterHandlers()

		go func() {
			logger.Info("Bot started")
			bot.Start()
		}()
	}

	var srv *http.Server
	if cfg.HTTP.Enabled {
		apiServer := api.NewServer(studyService, charService, progressService, authService, collector, logger)
		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           apiServer.Router(cfg.HTTP.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", zap.Error(err))
				stop()
			}
		}()
	}

	var reminder *jobs.Reminder
	if cfg.Reminder.Enabled {
		if h == nil {
			logger.Warn("Reminders need the Telegram bot, not starting them")
		} else {
			reminder = jobs.NewReminder(h, progressService, authService, clk, jobs.ReminderConfig{
				EveryHours: cfg.Reminder.EveryHours,
				StartHour:  cfg.Reminder.StartHour,
				EndHour:    cfg.Reminder.EndHour,
			}, collector, logger)
			if err := reminder.Start(); err != nil {
				logger.Fatal("Failed to start reminders", zap.Error(err))
			}
		}
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping...")

	if reminder != nil {
		reminder.Stop()
	}
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", zap.Error(err))
		}
		cancel()
	}
	if bot != nil {
		bot.Stop()
	}

	logger.Info("Stopped gracefully")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStores connects to the configured database and builds the repositories
func openStores(cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("SQLite database opened", zap.String("path", cfg.Database.Path))
		return &stores{
			users: sqlite.NewUserRepo(db),
			cards: sqlite.NewCardRepo(db),
			chars: sqlite.NewCharacterRepo(db),
			close: db.Close,
		}, nil
	default:
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established")

		if err := runMigrations(db, logger); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			users: postgres.NewUserRepo(db),
			cards: postgres.NewCardRepo(db),
			chars: postgres.NewCharacterRepo(db),
			close: db.Close,
		}, nil
	}
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}
	return nil
}

// runImport loads the configured dataset, syncing its git repository first when one is set
func runImport(ctx context.Context, cfg config.ImportConfig, chars *service.CharacterService, logger *zap.Logger) error {
	path := cfg.File
	if cfg.GitURL != "" {
		dir, err := importer.SyncGit(cfg.GitURL, cfg.ReposDir, logger)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, cfg.GitPath)
	}
	if path == "" {
		return nil
	}

	data, err := importer.LoadFile(path)
	if err != nil {
		return err
	}
	_, err = chars.Import(ctx, data)
	return err
}
