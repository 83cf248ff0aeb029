package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"sales-ai-brain/internal/config"
	"sales-ai-brain/internal/mcptools"
	"sales-ai-brain/internal/memory"
	"sales-ai-brain/internal/storage"
)

// Serves the memorized answers over MCP on stdin/stdout. Logs go to stderr.
func main() {
	_ = godotenv.Load(".env")
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ failed to load config")
	}

	ctx := context.Background()
	var backend storage.Snapshotter
	if cfg.RedisURL != "" {
		rs, err := storage.NewRedisSnapshotter(ctx, cfg.RedisURL, cfg.MemoryRedisKey)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ redis unavailable")
		}
		defer rs.Close()
		backend = rs
	} else {
		fs, err := storage.NewFileSnapshotter(cfg.MemoryFilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ failed to open memory file")
		}
		backend = fs
	}

	cache := memory.New(ctx, backend, memory.WithMode(memory.ParseMode(cfg.MemoryMode)), memory.WithLogger(log))
	server := mcptools.NewServer("sales-brain-memory", mcptools.New(nil, cache, log))

	log.Info().Str("backend", cache.Backend()).Msg("🔗 starting server on stdin/stdout")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		log.Fatal().Err(err).Msg("❌ server failed")
	}
}
