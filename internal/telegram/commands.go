package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cmdStart  = "start"
	cmdMemory = "memory"
	cmdStats  = "stats"
	cmdClear  = "clear"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case cmdStart:
		b.sendMessage(msg.Chat.ID, b.welcomeText(msg.From.FirstName))
	case cmdMemory, cmdStats:
		b.sendMessage(msg.Chat.ID, b.memoryText())
	case cmdClear:
		if b.adminUserID != 0 && msg.From.ID != b.adminUserID {
			b.sendMessage(msg.Chat.ID, "⛔ Bu əmr yalnız admin üçündür.")
			return
		}
		if err := b.memory.Clear(ctx); err != nil {
			b.log.Error().Err(err).Msg("memory clear failed")
			b.sendMessage(msg.Chat.ID, "❌ Yaddaş təmizlənə bilmədi.")
			return
		}
		b.log.Warn().Int64("by", msg.From.ID).Msg("memory cleared")
		b.sendMessage(msg.Chat.ID, "✅ Memory təmizləndi!")
	default:
		b.sendMessage(msg.Chat.ID, "Naməlum əmr. /start yazın.")
	}
}

func (b *Bot) welcomeText(firstName string) string {
	stats := b.memory.Stats()
	return fmt.Sprintf(`👋 Salam %s!

🤖 SATIŞ KÖMƏKÇİSİ BOT
Məhsullar, qiymətlər, çatdırılma və digər satış məsələlərində kömək edirəm.

📊 Yaddaş statistikası:
• Yaddaşda: %d sual-cavab
• Exact: %d
• Partial: %d

🔄 İşləmə prinsipi:
1. Əvvəlcə yaddaşımda axtarıram
2. Tapmasam, AI-dan soruşuram
3. Yeni cavabı yaddaşıma əlavə edirəm
4. Gələn dəfə eyni sualı bilərəm!

📝 Nümunə suallar:
• Məhsulun qiyməti nədir?
• Çatdırılma nə qədər çəkir?
• Zəmanət nə qədərdir?`, firstName, stats.Total, stats.Exact, stats.Partial)
}

func (b *Bot) memoryText() string {
	stats := b.memory.Stats()
	var recent strings.Builder
	for i, e := range b.memory.Recent(5) {
		fmt.Fprintf(&recent, "%d. %s\n", i+1, excerpt(e.Question(), 40))
	}
	if recent.Len() == 0 {
		recent.WriteString("Heç bir sual yoxdur\n")
	}
	return fmt.Sprintf(`📊 MEMORY STATISTIKASI

• Ümumi sual: %d
• Exact matches: %d
• Partial matches: %d

📁 Yaddaş: %s (%s)

📈 Son 5 sual:
%s
ℹ️ Hər yeni sual avtomatik olaraq yaddaşa əlavə edilir.`,
		stats.Total, stats.Exact, stats.Partial, b.memory.Backend(), b.memory.Mode(), recent.String())
}
