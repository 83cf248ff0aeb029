package analytics

import (
	"fmt"
	"strings"
)

// ReportSummary renders Stats as the text of the daily admin report.
func ReportSummary(s Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Gündəlik hesabat (%s)\n\n", s.GeneratedAt.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Son 24 saat:\n")
	fmt.Fprintf(&b, "- Mesajlar: %d (son saat: %d)\n", s.MessagesToday, s.MessagesHour)
	fmt.Fprintf(&b, "- İstifadəçilər: %d\n", s.TotalUsers)
	fmt.Fprintf(&b, "- Yüksək risk: %d, orta risk: %d\n", s.DangerUsers, s.WarningUsers)
	fmt.Fprintf(&b, "- Aktiv müdaxilələr: %d\n", s.ActiveInterventions)
	fmt.Fprintf(&b, "- Botlar: %d aktiv, %d dayandırılıb\n", s.ActiveBots, s.StoppedBots)
	if s.DangerUsers > 0 {
		b.WriteString("\n⚠️ Yüksək riskli söhbətləri yoxlayın.\n")
	}
	return b.String()
}
