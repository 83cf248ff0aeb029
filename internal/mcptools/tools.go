package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"sales-ai-brain/internal/analytics"
	"sales-ai-brain/internal/memory"
)

// Tools exposes read-only views of the monitor to MCP clients. Engine may be nil
// when only the memory snapshot is available.
type Tools struct {
	engine *analytics.Engine
	memory *memory.Cache
	log    zerolog.Logger
}

func New(engine *analytics.Engine, cache *memory.Cache, log zerolog.Logger) *Tools {
	return &Tools{engine: engine, memory: cache, log: log}
}

// NewServer builds an MCP server with every tool the available dependencies support.
func NewServer(name string, t *Tools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: "1.0.0",
	}, nil)

	registered := 0
	if t.memory != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "memory_lookup",
			Description: "Looks up a memorized answer for an exact question. Optional user_id for per-user memory.",
		}, t.MemoryLookup)
		mcp.AddTool(server, &mcp.Tool{
			Name:        "memory_stats",
			Description: "Returns memory size and the most recently learned questions",
		}, t.MemoryStats)
		registered += 2
	}
	if t.engine != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "dashboard_overview",
			Description: "Returns stats, alerts, active chats, bot status and interventions in one document",
		}, t.DashboardOverview)
		mcp.AddTool(server, &mcp.Tool{
			Name:        "chat_history",
			Description: "Returns the last 50 messages and risk summary for a user_id",
		}, t.ChatHistory)
		registered += 2
	}
	t.log.Info().Int("tools", registered).Str("server", name).Msg("📋 registered MCP tools")
	return server
}

func (t *Tools) MemoryLookup(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
	question, ok := params.Arguments["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return errorResult("❌ question parameter is required and must be a string"), nil
	}
	userID, _ := params.Arguments["user_id"].(string)

	answer, hit := t.memory.LookupFor(userID, question)
	if !hit {
		return textResult("No memorized answer for this question"), nil
	}
	return textResult(answer), nil
}

func (t *Tools) MemoryStats(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
	stats := t.memory.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "Memory: %d total (%d exact, %d partial), mode %s\n", stats.Total, stats.Exact, stats.Partial, t.memory.Mode())
	recent := t.memory.Recent(5)
	if len(recent) == 0 {
		b.WriteString("No questions learned yet")
	}
	for i, e := range recent {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Question())
	}
	return textResult(b.String()), nil
}

func (t *Tools) DashboardOverview(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
	return jsonResult(t.engine.Overview())
}

func (t *Tools) ChatHistory(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
	userID := argString(params.Arguments["user_id"])
	if userID == "" {
		return errorResult("❌ user_id parameter is required"), nil
	}
	hist, ok := t.engine.History(userID)
	if !ok {
		return errorResult("❌ No messages for user " + userID), nil
	}
	return jsonResult(hist)
}

// argString accepts both strings and JSON numbers, since Telegram ids are numeric.
func argString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return fmt.Sprintf("%.0f", x)
	default:
		return ""
	}
}

func jsonResult(v any) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("❌ Failed to encode result: %v", err)), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
