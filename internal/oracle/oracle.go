package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sales-ai-brain/internal/llm"
	"sales-ai-brain/internal/metrics"
)

// DefaultSystemPrompt frames the oracle as the shop's sales assistant.
const DefaultSystemPrompt = `Sən bir satış köməkçisi botsan. Müştərilərə məhsullar, qiymətlər, çatdırılma, zəmanət, geri qaytarma və digər satış məsələlərində kömək edirsən. Cavablarını qısa, aydın və faydalı ver. Rəsmi və mehriban üslubdan istifadə et.`

const DefaultTimeout = 30 * time.Second

type Kind string

const (
	KindTimeout   Kind = "timeout"
	KindTransport Kind = "transport"
	KindRemote    Kind = "remote_error"
)

// Failure is the only error type Ask returns.
type Failure struct {
	Kind Kind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("oracle %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// IsTimeout reports whether err is an oracle timeout.
func IsTimeout(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == KindTimeout
}

type Result struct {
	Answer string
	Err    error
}

type Option func(*Gateway)

func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithSystemPrompt(p string) Option {
	return func(g *Gateway) {
		if strings.TrimSpace(p) != "" {
			g.systemPrompt = p
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// Gateway asks the oracle one question at a time. It holds no per-call state and never retries.
type Gateway struct {
	client       llm.Client
	systemPrompt string
	timeout      time.Duration
	log          zerolog.Logger
}

func New(client llm.Client, opts ...Option) *Gateway {
	g := &Gateway{
		client:       client,
		systemPrompt: DefaultSystemPrompt,
		timeout:      DefaultTimeout,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ask returns the oracle's answer or a *Failure.
func (g *Gateway) Ask(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Generate(ctx, []llm.Message{
		{Role: "system", Content: g.systemPrompt},
		{Role: "user", Content: question},
	})
	metrics.OracleLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		f := classify(ctx, err)
		metrics.OracleCalls.WithLabelValues(string(f.Kind)).Inc()
		g.log.Error().Err(err).Str("kind", string(f.Kind)).Dur("latency", time.Since(start)).Msg("oracle call failed")
		return "", f
	}
	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		metrics.OracleCalls.WithLabelValues(string(KindRemote)).Inc()
		return "", &Failure{Kind: KindRemote, Err: errors.New("empty answer")}
	}

	metrics.OracleCalls.WithLabelValues("ok").Inc()
	g.log.Info().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.PromptTokens).
		Int("completion_tokens", resp.CompletionTokens).
		Dur("latency", time.Since(start)).
		Msg("✅ oracle answered")
	return answer, nil
}

// AskAsync runs Ask in its own goroutine. The channel yields one Result and is closed.
func (g *Gateway) AskAsync(ctx context.Context, question string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		answer, err := g.Ask(ctx, question)
		out <- Result{Answer: answer, Err: err}
	}()
	return out
}

func classify(ctx context.Context, err error) *Failure {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Failure{Kind: KindTimeout, Err: err}
	}
	var re *llm.RemoteError
	if errors.As(err, &re) {
		return &Failure{Kind: KindRemote, Err: err}
	}
	return &Failure{Kind: KindTransport, Err: err}
}
