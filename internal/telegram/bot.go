package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"sales-ai-brain/internal/ingest"
	"sales-ai-brain/internal/memory"
	"sales-ai-brain/internal/oracle"
)

const DefaultFallback = "Üzr istəyirəm, texniki problem yaşandı. Bir az sonra yenidən cəhd edin."

// Answerer is the oracle as the bot sees it.
type Answerer interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Scorer assigns a risk score to inbound text. Scoring lives outside this service;
// without one every message is recorded with score 0.
type Scorer func(text string) (int, []string)

type Options struct {
	Memory      *memory.Cache
	Oracle      Answerer
	Recorder    ingest.Recorder
	BotStopped  func(userID string) bool
	Scorer      Scorer
	AdminUserID int64
	Fallback    string
	Logger      zerolog.Logger
}

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	memory      *memory.Cache
	oracle      Answerer
	recorder    ingest.Recorder
	botStopped  func(userID string) bool
	scorer      Scorer
	adminUserID int64
	fallback    string
	log         zerolog.Logger
}

func New(botToken string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(apiSender{api: api}, opts)
	b.api = api
	return b, nil
}

func newBot(s sender, opts Options) *Bot {
	b := &Bot{
		s:           s,
		memory:      opts.Memory,
		oracle:      opts.Oracle,
		recorder:    opts.Recorder,
		botStopped:  opts.BotStopped,
		scorer:      opts.Scorer,
		adminUserID: opts.AdminUserID,
		fallback:    opts.Fallback,
		log:         opts.Logger,
	}
	if b.fallback == "" {
		b.fallback = DefaultFallback
	}
	if b.scorer == nil {
		b.scorer = func(string) (int, []string) { return 0, nil }
	}
	if b.botStopped == nil {
		b.botStopped = func(string) bool { return false }
	}
	return b
}

// Start long-polls Telegram until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Str("bot", b.api.Self.UserName).Int("memory", b.memory.Stats().Total).Msg("🤖 sales assistant bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	question := strings.TrimSpace(msg.Text)
	if question == "" {
		return
	}

	userID := strconv.FormatInt(msg.From.ID, 10)
	username := displayName(msg.From)
	b.log.Info().Str("user_id", userID).Str("username", username).Str("text", excerpt(question, 50)).Msg("📨 incoming message")

	risk, reasons := b.scorer(question)
	b.record(ctx, ingest.Request{UserID: userID, Username: username, Body: question, RiskScore: risk, RiskReasons: reasons})

	if b.botStopped(userID) {
		b.log.Info().Str("user_id", userID).Msg("automation stopped for user, leaving reply to operator")
		return
	}

	if answer, ok := b.memory.LookupFor(userID, question); ok {
		b.log.Info().Str("user_id", userID).Msg("✅ answered from memory")
		b.reply(ctx, msg.Chat.ID, userID, username, answer)
		return
	}

	b.log.Info().Str("user_id", userID).Msg("memory miss, asking oracle")
	answer, err := b.oracle.Ask(ctx, question)
	if err != nil {
		if oracle.IsTimeout(err) {
			b.log.Warn().Err(err).Str("user_id", userID).Msg("⏱ oracle timed out, sending fallback")
		} else {
			var f *oracle.Failure
			kind := "unknown"
			if errors.As(err, &f) {
				kind = string(f.Kind)
			}
			b.log.Error().Err(err).Str("kind", kind).Str("user_id", userID).Msg("oracle failed, sending fallback")
		}
		b.reply(ctx, msg.Chat.ID, userID, username, b.fallback)
		return
	}

	b.reply(ctx, msg.Chat.ID, userID, username, answer)

	learned, err := b.memory.LearnFor(ctx, userID, question, answer)
	switch {
	case err != nil:
		b.log.Error().Err(err).Msg("❌ answer could not be persisted")
	case learned:
		b.log.Info().Str("question", excerpt(question, 30)).Msg("💾 answer added to memory")
	}
}

// reply sends text and records it as a bot message under the user's conversation.
func (b *Bot) reply(ctx context.Context, chatID int64, userID, username, text string) {
	b.sendMessage(chatID, text)
	b.record(ctx, ingest.Request{UserID: userID, Username: username, Body: text, IsBot: true})
}

func (b *Bot) record(ctx context.Context, req ingest.Request) {
	if b.recorder == nil {
		return
	}
	if _, err := b.recorder.Ingest(ctx, req); err != nil {
		b.log.Warn().Err(err).Str("user_id", req.UserID).Msg("failed to record message")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

// SendText relays an operator message. For private chats the Telegram chat id equals the user id.
func (b *Bot) SendText(_ context.Context, userID, text string) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("user_id %q is not a telegram id", userID)
	}
	if _, err := b.s.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

// SendReport delivers the scheduled digest to the admin chat.
func (b *Bot) SendReport(_ context.Context, text string) error {
	if b.adminUserID == 0 {
		return errors.New("ADMIN_USER is not configured")
	}
	if _, err := b.s.Send(tgbotapi.NewMessage(b.adminUserID, text)); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

func displayName(u *tgbotapi.User) string {
	switch {
	case u.UserName != "":
		return "@" + u.UserName
	case u.FirstName != "":
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	default:
		return strconv.FormatInt(u.ID, 10)
	}
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
