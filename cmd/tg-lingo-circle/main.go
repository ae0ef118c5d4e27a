package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/go-telegram/bot"
	"github.com/ysaito/tg-lingo-circle/pkg/ai"
	"github.com/ysaito/tg-lingo-circle/pkg/bot/broadcast"
	"github.com/ysaito/tg-lingo-circle/pkg/bot/handlers"
	"github.com/ysaito/tg-lingo-circle/pkg/config"
	"github.com/ysaito/tg-lingo-circle/pkg/db"
	"github.com/ysaito/tg-lingo-circle/pkg/dict"
	"github.com/ysaito/tg-lingo-circle/pkg/identity"
	"github.com/ysaito/tg-lingo-circle/pkg/logger"
	"github.com/ysaito/tg-lingo-circle/pkg/points"
	"github.com/ysaito/tg-lingo-circle/pkg/ui"
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
	if err := config.Validate(config.AppConfig); err != nil {
		logger.Error("configuration is unusable", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	mirror := setupMirror(ctx)

	registry := identity.DefaultRegistry
	ledger := points.DefaultLedger
	rehydrate(registry, ledger, mirror)
	registry.SetOnChange(mirror.UpsertUser)
	ledger.SetOnChange(mirror.UpsertPoints)

	h := handlers.New(registry, ledger, newGenerator(ctx))
	h.Dictionary = dict.NewClient()
	h.Mirror = mirror
	h.Broadcasts = broadcast.NewTracker()
	h.ChannelChatID = config.AppConfig.Circle.ChannelChatID
	h.Rewards = config.AppConfig.Rewards

	opts := []bot.Option{
		bot.WithDefaultHandler(h.Protect("update", h.HandleUpdate)),
		bot.WithAllowedUpdates(bot.AllowedUpdates{
			"message",
			"callback_query",
			"message_reaction",
		}),
	}
	b, err := bot.New(config.AppConfig.Telegram.Token, opts...)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.Protect("start", h.HandleStart))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypeExact, h.Protect("settings", h.HandleSettings))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/leaderboard", bot.MatchTypeExact, h.Protect("leaderboard", h.HandleLeaderboard))
	b.RegisterHandler(bot.HandlerTypeMessageText, "/prompt", bot.MatchTypeExact, h.Protect("prompt", h.HandlePrompt))
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, ui.CallbackPrefix, bot.MatchTypePrefix, h.Protect("settings_callback", h.HandleSettingsCallback))

	deps := broadcast.Deps{
		Bot:           b,
		Registry:      registry,
		Generator:     h.Generator,
		Mirror:        mirror,
		Tracker:       h.Broadcasts,
		ChannelChatID: config.AppConfig.Circle.ChannelChatID,
		Schedule:      config.AppConfig.Broadcast,
	}
	h.TriggerBroadcast = func(ctx context.Context) {
		broadcast.Run(ctx, deps)
	}
	go broadcast.StartSchedule(ctx, deps)

	logger.Info("Starting bot...")
	b.Start(ctx)

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := mirror.Flush(flushCtx); err != nil {
		logger.Error("failed to flush persistence mirror", "error", err)
	}
}

// setupMirror connects the write-behind persistence layer. Missing
// database configuration is not fatal: the bot runs memory-only and
// loses state on restart.
func setupMirror(ctx context.Context) *db.Mirror {
	if config.AppConfig.Database.Host == "" {
		logger.Warn("no database configured, running memory-only")
		return nil
	}
	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database, running memory-only", "error", err)
		return nil
	}
	mirror := db.NewMirror(db.DB)
	go mirror.Run(ctx)
	return mirror
}

func rehydrate(registry *identity.Registry, ledger *points.Ledger, mirror *db.Mirror) {
	state, err := mirror.LoadAll()
	if err != nil {
		logger.Error("failed to load persisted state", "error", err)
		return
	}
	registry.Rehydrate(state.Users, state.Pseudonyms)
	ledger.Rehydrate(state.Points)
	if len(state.Users) > 0 {
		logger.Info("rehydrated persisted state", "users", len(state.Users))
	}
}

// newGenerator picks the AI backend. Without an API key the canned
// prompt table serves instead; prompt quality drops but nothing breaks.
func newGenerator(ctx context.Context) ai.Generator {
	if config.AppConfig.Gemini.APIKey == "" {
		logger.Warn("no Gemini API key configured, using canned prompts")
		return ai.NewCanned()
	}
	gen, err := ai.NewGemini(ctx, config.AppConfig.Gemini.APIKey, config.AppConfig.Gemini.Model)
	if err != nil {
		logger.Error("failed to create Gemini client, using canned prompts", "error", err)
		return ai.NewCanned()
	}
	return gen
}
