package api

import (
	"math/rand"
	"net/http"

	"sales-ai-brain/internal/ingest"
)

// IngestMessage accepts one chat event from the channel adapter.
func (h *Handler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	var req ingest.Request
	if !h.decode(w, r, &req) {
		return
	}
	stored, err := h.ingest.Ingest(r.Context(), req)
	if err != nil {
		h.ingestError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, envelope{
		"success":    true,
		"message":    "accepted",
		"risk_score": stored.RiskScore,
		"data":       stored,
	})
}

type demoSample struct {
	text    string
	minRisk int
	maxRisk int
	reasons []string
}

var (
	demoUsers   = []string{"aysel_m", "rauf.b", "leyla_shop", "kamran77", "nigar.h"}
	demoSamples = []demoSample{
		{"Məhsulun qiyməti nədir?", 0, 20, nil},
		{"Çatdırılma nə qədər çəkir?", 0, 15, nil},
		{"Zəmanət nə qədərdir?", 5, 25, nil},
		{"Sifarişim hələ gəlməyib, çox narazıyam!", 55, 75, []string{"complaint"}},
		{"Pulumu geri qaytarın, yoxsa şikayət edəcəm", 70, 90, []string{"refund_threat", "complaint"}},
		{"Kart məlumatlarımı buraya yazım?", 80, 100, []string{"payment_data"}},
	}
)

// DemoMessage pushes a random sample through the normal ingestion path.
func (h *Handler) DemoMessage(w http.ResponseWriter, r *http.Request) {
	idx := rand.Intn(len(demoUsers))
	sample := demoSamples[rand.Intn(len(demoSamples))]
	req := ingest.Request{
		UserID:      "demo-" + demoUsers[idx],
		Username:    demoUsers[idx],
		Body:        sample.text,
		RiskScore:   sample.minRisk + rand.Intn(sample.maxRisk-sample.minRisk+1),
		RiskReasons: sample.reasons,
	}
	stored, err := h.ingest.Ingest(r.Context(), req)
	if err != nil {
		h.ingestError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, envelope{"success": true, "message": "demo message sent", "data": stored})
}
