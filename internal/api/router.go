package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"sales-ai-brain/internal/analytics"
	"sales-ai-brain/internal/api/middleware"
	"sales-ai-brain/internal/conversation"
	"sales-ai-brain/internal/ingest"
	"sales-ai-brain/internal/memory"
	"sales-ai-brain/internal/realtime"
)

// MaxRequestBody caps every request body.
const MaxRequestBody = 64 * 1024

// Deps wires the router. Memory, Relay, Pinger and MCP are optional.
type Deps struct {
	Store       *conversation.Store
	Engine      *analytics.Engine
	Ingest      *ingest.Service
	Hub         *realtime.Hub
	Memory      *memory.Cache
	Relay       Relay
	Pinger      Pinger
	MCP         http.Handler
	CORSOrigins []string
	Logger      zerolog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.MaxBodySize(MaxRequestBody))

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := &Handler{
		store:  d.Store,
		engine: d.Engine,
		ingest: d.Ingest,
		hub:    d.Hub,
		memory: d.Memory,
		relay:  d.Relay,
		pinger: d.Pinger,
		log:    d.Logger,
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Handle("/ws", realtime.NewHandler(d.Hub, d.Logger))
	if d.MCP != nil {
		r.Handle("/mcp", d.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/telegram/message", h.IngestMessage)
		r.Post("/demo/message", h.DemoMessage)

		r.Get("/chats/active", h.RecentUsers)
		r.Get("/chats/{userID}/full", h.FullHistory)
		r.Post("/chats/{userID}/intervention", h.SetIntervention)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", h.Stats)
			r.Get("/alerts", h.Alerts)
			r.Get("/active-chats", h.ActiveChats)
			r.Get("/bot-status", h.BotStatus)
			r.Get("/recent-interventions", h.Interventions)
			r.Get("/overview", h.Overview)
		})

		r.Post("/bot/stop", h.StopBot)
		r.Post("/bot/start", h.StartBot)
		r.Post("/admin/send-message", h.AdminSendMessage)
	})

	return r
}
