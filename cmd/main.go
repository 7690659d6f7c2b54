package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nezqt3/MiniAppShopTgBot/internal/app"
	"github.com/nezqt3/MiniAppShopTgBot/internal/config"
)

func main() {
	cfg := config.MustLoad()

	fmt.Println(`   _____                       _____ __
  / ___/__  ______  ___  _____/ ___// /_  ____  ____
  \__ \/ / / / __ \/ _ \/ ___/\__ \/ __ \/ __ \/ __ \
 ___/ / /_/ / /_/ /  __/ /   ___/ / / / / /_/ / /_/ /
/____/\__,_/ .___/\___/_/   /____/_/ /_/\____/ .___/
          /_/                               /_/      `)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("Starting backend", "env", cfg.Server.Env)

	application := app.New(log, cfg)

	go application.HTTPServer.MustRun()

	botCtx, stopBot := context.WithCancel(context.Background())
	go func() {
		if err := application.Bot.Start(botCtx); err != nil {
			log.Error("Bot stopped with error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	sign := <-stop

	log.Info("Application stopped", slog.String("signal", sign.String()))

	stopBot()
	application.Bot.Stop()

	if err := application.HTTPServer.Stop(context.Background()); err != nil {
		log.Error("Failed to stop http server", slog.String("error", err.Error()))
	}

	if err := application.Close(); err != nil {
		log.Error("Failed to close storage", slog.String("error", err.Error()))
	}
}
