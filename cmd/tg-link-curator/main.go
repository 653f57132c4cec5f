package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-link-curator/pkg/bot/conversation"
	"github.com/smith3v/tg-link-curator/pkg/bot/handlers"
	"github.com/smith3v/tg-link-curator/pkg/config"
	"github.com/smith3v/tg-link-curator/pkg/db"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/metrics"
	"github.com/smith3v/tg-link-curator/pkg/ui"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}
	if err := config.AppConfig.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(config.AppConfig); err != nil {
		logger.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	gdb, err := db.Open(cfg.Database, cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	store := db.NewStore(gdb, cfg.Database.Timeout())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conversations := conversation.NewManager(time.Now, cfg.Conversation.Timeout())
	queue := conversation.NewQueue()
	h := handlers.New(store, conversations, queue, cfg.Admin.UserID)

	opts := []bot.Option{
		bot.WithDefaultHandler(h.Serial(h.DefaultHandler)),
		bot.WithNotAsyncHandlers(),
	}
	b, err := bot.New(cfg.Telegram.Token, opts...)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.Serial(h.HandleStart))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/add", bot.MatchTypeExact, h.Serial(h.HandleAdd))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/mylinks", bot.MatchTypeExact, h.Serial(h.HandleMyLinks))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, h.Serial(h.HandleCancel))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypeExact, h.Serial(h.HandleExport))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.Serial(h.HandleHelp))
	b.RegisterHandlerMatchFunc(isModerationCallback, h.Serial(h.HandleModerationCallback))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		conversations.StartSweeper(gctx)
		return nil
	})
	g.Go(func() error {
		return metrics.Serve(gctx, cfg.Metrics.ListenAddr)
	})
	g.Go(func() error {
		logger.Info("Starting bot...", "admin_id", cfg.Admin.UserID)
		b.Start(gctx)
		return nil
	})

	err = g.Wait()
	queue.Wait()
	logger.Info("bot stopped")
	return err
}

func isModerationCallback(update *models.Update) bool {
	return update.CallbackQuery != nil && ui.IsModerationCallback(update.CallbackQuery.Data)
}
