package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"sales-ai-brain/internal/analytics"
	"sales-ai-brain/internal/api"
	"sales-ai-brain/internal/config"
	"sales-ai-brain/internal/conversation"
	"sales-ai-brain/internal/ingest"
	"sales-ai-brain/internal/llm"
	"sales-ai-brain/internal/logger"
	"sales-ai-brain/internal/mcptools"
	"sales-ai-brain/internal/memory"
	"sales-ai-brain/internal/oracle"
	"sales-ai-brain/internal/realtime"
	"sales-ai-brain/internal/scheduler"
	"sales-ai-brain/internal/storage"
	"sales-ai-brain/internal/telegram"
)

func main() {
	envErr := godotenv.Load(".env")

	cfg, err := config.New()
	if err != nil {
		boot := logger.New("info", true)
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if envErr != nil {
		log.Warn().Err(envErr).Msg(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, pinger, closeBackend := openSnapshotter(ctx, cfg, log)
	defer func() {
		if err := closeBackend(); err != nil {
			log.Warn().Err(err).Msg("failed to close memory backend")
		}
	}()
	cache := memory.New(ctx, backend,
		memory.WithMode(memory.ParseMode(cfg.MemoryMode)),
		memory.WithLogger(log.With().Str("component", "memory").Logger()),
	)

	store := conversation.NewStore()
	hub := realtime.NewHub(cfg.HubQueueSize, log.With().Str("component", "hub").Logger())
	defer hub.Close()
	ingestSvc := ingest.NewService(store, hub, log.With().Str("component", "ingest").Logger())
	engine := analytics.NewEngine(store, nil)

	var recorder ingest.Recorder = ingestSvc
	botStopped := func(userID string) bool { return store.BotStopped(userID) }
	if cfg.MonitorURL != "" {
		recorder = ingest.NewClient(cfg.MonitorURL, nil)
		botStopped = nil
		log.Info().Str("monitor", cfg.MonitorURL).Msg("recording conversations to remote monitor")
	}

	var reporter scheduler.Reporter = scheduler.LogReporter{Log: log}
	var relay api.Relay
	bot := startBot(ctx, cfg, log, cache, recorder, botStopped)
	if bot != nil {
		relay = bot
		if cfg.AdminUserID != 0 {
			reporter = bot
		}
	}

	sched := scheduler.New(cfg.ReportCron, log.With().Str("component", "scheduler").Logger())
	sched.SetReportFunction(scheduler.DailyReport(engine, reporter))
	if err := sched.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	mcpServer := mcptools.NewServer("sales-brain", mcptools.New(engine, cache, log.With().Str("component", "mcp").Logger()))
	router := api.NewRouter(api.Deps{
		Store:       store,
		Engine:      engine,
		Ingest:      ingestSvc,
		Hub:         hub,
		Memory:      cache,
		Relay:       relay,
		Pinger:      pinger,
		MCP:         mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return mcpServer }),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Int("memory", cache.Stats().Total).Msg("🚀 sales brain listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openSnapshotter prefers Redis when configured and falls back to the file.
// The returned close func releases the backend connection.
func openSnapshotter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Snapshotter, api.Pinger, func() error) {
	if cfg.RedisURL != "" {
		rs, err := storage.NewRedisSnapshotter(ctx, cfg.RedisURL, cfg.MemoryRedisKey)
		if err == nil {
			return rs, rs, rs.Close
		}
		log.Error().Err(err).Msg("redis unavailable, falling back to file memory")
	}
	fs, err := storage.NewFileSnapshotter(cfg.MemoryFilePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.MemoryFilePath).Msg("failed to open memory file")
	}
	return fs, nil, func() error { return nil }
}

func startBot(ctx context.Context, cfg *config.Config, log zerolog.Logger, cache *memory.Cache, rec ingest.Recorder, botStopped func(string) bool) *telegram.Bot {
	if cfg.TelegramBotToken == "" {
		log.Warn().Msg("TELEGRAM_TOKEN not set, running dashboard only")
		return nil
	}

	client, err := llm.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create llm client")
	}
	gateway := oracle.New(client,
		oracle.WithTimeout(cfg.OracleTimeout),
		oracle.WithSystemPrompt(readSystemPrompt(cfg.SystemPromptPath, log)),
		oracle.WithLogger(log.With().Str("component", "oracle").Logger()),
	)

	bot, err := telegram.New(cfg.TelegramBotToken, telegram.Options{
		Memory:      cache,
		Oracle:      gateway,
		Recorder:    rec,
		BotStopped:  botStopped,
		AdminUserID: cfg.AdminUserID,
		Fallback:    cfg.FallbackMessage,
		Logger:      log.With().Str("component", "telegram").Logger(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}
	go bot.Start(ctx)
	return bot
}

func readSystemPrompt(path string, log zerolog.Logger) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("system prompt file unreadable, using built-in prompt")
		return ""
	}
	return strings.TrimSpace(string(data))
}
