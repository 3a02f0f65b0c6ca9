package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/client-portal/internal/access"
	"github.com/iliyamo/client-portal/internal/activity"
	"github.com/iliyamo/client-portal/internal/auth"
	"github.com/iliyamo/client-portal/internal/config"
	"github.com/iliyamo/client-portal/internal/database"
	"github.com/iliyamo/client-portal/internal/handler"
	"github.com/iliyamo/client-portal/internal/logging"
	"github.com/iliyamo/client-portal/internal/repository"
	"github.com/iliyamo/client-portal/internal/router"
)

func main() {
	// Missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(cfg.Env)
	log := logging.Logger

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store repository.Store
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.WithError(err).Fatal("mysql connect failed")
		}
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		store = repository.NewMySQLStore(db)
	default:
		store = repository.NewMemoryStore()
	}
	log.WithField("backend", cfg.StoreBackend).Info("store ready")

	if err := repository.Seed(ctx, store, auth.HashPassword); err != nil {
		log.WithError(err).Fatal("seed failed")
	}

	// Expired sessions are also deleted lazily on resolve; this just
	// keeps the table from accumulating rows across restarts.
	if n, err := store.DeleteExpiredSessions(ctx); err != nil {
		log.WithError(err).Warn("session sweep failed")
	} else if n > 0 {
		log.WithField("count", n).Info("expired sessions removed")
	}

	sessions := auth.NewSessionManager(store, time.Duration(cfg.SessionTTLHours)*time.Hour)
	engine := access.NewEngine(store)
	publish := os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != ""
	recorder := activity.NewRecorder(store, publish)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(store, sessions, recorder),
		Projects: handler.NewProjectHandler(store, engine, recorder),
		Tasks:    handler.NewTaskHandler(store, engine, recorder),
		Messages: handler.NewMessageHandler(store, engine, recorder),
		Finance:  handler.NewFinanceHandler(store, engine, recorder),
		Tickets:  handler.NewTicketHandler(store, engine, recorder),
		Admin:    handler.NewAdminHandler(store, recorder),
	}, sessions, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
