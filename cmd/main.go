package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"infobot/internal/config"
	"infobot/internal/infrastructure"
	"infobot/internal/interfaces/bot"
	"infobot/internal/interfaces/http"
	"infobot/internal/lib/sl"
	"infobot/internal/repository"
	"infobot/internal/usecases"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)
	log.Info("starting infobot", slog.String("env", cfg.Env))

	db, err := infrastructure.NewSQLiteClient(cfg.DBFile)
	if err != nil {
		log.Error("failed to open database", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	special, err := repository.NewSpecialUsers(db.DB)
	if err != nil {
		log.Error("failed to load special users", sl.Err(err))
		os.Exit(1)
	}
	if err := special.Seed(cfg.SeedSpecialUsers()); err != nil {
		log.Warn("failed to seed special users", sl.Err(err))
	}

	ledger := repository.NewCreditLedger(db.DB, special, log)
	fetcher := infrastructure.NewFetcher(log)

	tg, err := infrastructure.NewTelegramClient(cfg.BotToken, log)
	if err != nil {
		log.Error("failed to connect to telegram", sl.Err(err))
		os.Exit(1)
	}
	log.Info("telegram connected", slog.String("username", tg.Bot.Self.UserName))

	lookups := usecases.NewLookupService(ledger, fetcher, tg, log)
	account := usecases.NewAccountService(ledger, special, lookups, tg, log, cfg.AdminID, cfg.UPIAddress)
	admin := usecases.NewAdminService(ledger, special, tg, log)

	auth, err := usecases.NewAuthUsecase(cfg.AdminID, cfg.AdminPassword, cfg.JWTSecret)
	if err != nil {
		log.Error("failed to init auth", sl.Err(err))
		os.Exit(1)
	}

	if cfg.Env == envProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	http.SetupRoutes(r, ledger, auth, http.NewMiddleware(auth))
	go func() {
		if err := r.Run(cfg.HTTPAddr); err != nil {
			log.Error("http server stopped", sl.Err(err))
			os.Exit(1)
		}
	}()

	router := bot.NewRouter(tg, lookups, account, admin, cfg.AdminID, log)

	// Polling restarts forever; a crashed long poll should never take the
	// process down.
	for {
		if err := router.Run(); err != nil {
			log.Error("polling stopped, restarting", sl.Err(err))
		}
		time.Sleep(5 * time.Second)
	}
}

func setupLogger(env string) *slog.Logger {
	var handler slog.Handler
	switch env {
	case envLocal:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler)
}
