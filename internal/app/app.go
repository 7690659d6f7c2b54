package app

import (
	"context"
	"log/slog"

	httpserver "github.com/nezqt3/MiniAppShopTgBot/internal/app/http-server"
	"github.com/nezqt3/MiniAppShopTgBot/internal/bot"
	"github.com/nezqt3/MiniAppShopTgBot/internal/config"
	"github.com/nezqt3/MiniAppShopTgBot/internal/handlers"
	"github.com/nezqt3/MiniAppShopTgBot/internal/repository/postgres"
	"github.com/nezqt3/MiniAppShopTgBot/internal/repository/redis"
	"github.com/nezqt3/MiniAppShopTgBot/internal/routes"
	"github.com/nezqt3/MiniAppShopTgBot/internal/services"
)

type App struct {
	HTTPServer *httpserver.Server
	Bot        *bot.Bot
	storage    *postgres.Storage
}

func New(log *slog.Logger, cfg *config.Config) *App {
	storage, err := postgres.NewPostgres(context.Background(), cfg.Database.PostgresConn, cfg.Database.QueryTimeout)
	if err != nil {
		panic(err)
	}

	locks, err := redis.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		cfg.Redis.LockTTL, cfg.Redis.LockWait)
	if err != nil {
		panic(err)
	}

	ledgerService := services.NewLedgerService(log, storage, locks)
	referralService := services.NewReferralService(log, storage, ledgerService)
	purchaseService := services.NewPurchaseService(log, ledgerService, storage, storage,
		cfg.Loyalty.PointRate, cfg.Loyalty.MinPointsToRedeem)
	historyService := services.NewHistoryService(log, ledgerService, storage)

	userHandler := handlers.NewUserHandler(log, referralService, ledgerService, historyService)
	purchaseHandler := handlers.NewPurchaseHandler(log, purchaseService)

	r := routes.InitRoutes(userHandler, purchaseHandler)

	server := httpserver.NewServer(log, cfg.Server.Address, r)

	tgBot, err := bot.NewBot(log, cfg.Bot.Token, referralService, ledgerService, historyService,
		cfg.Bot.ReferralLinkBase)
	if err != nil {
		panic(err)
	}

	return &App{
		HTTPServer: server,
		Bot:        tgBot,
		storage:    storage,
	}
}

func (a *App) Close() error {
	return a.storage.Close()
}
