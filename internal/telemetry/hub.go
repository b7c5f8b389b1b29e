package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/junjunhencool/gnss-sdr/internal/tracking"
)

// Sample is the JSON view of one synchronization record.
type Sample struct {
	ChannelID   int     `json:"channelId"`
	PRN         int     `json:"prn"`
	TimestampS  float64 `json:"timestampS"`
	CN0DbHz     float64 `json:"cn0DbHz"`
	PromptI     float64 `json:"promptI"`
	PromptQ     float64 `json:"promptQ"`
	CarrierRads float64 `json:"carrierPhaseRads"`
}

// Hub keeps a bounded history of records per channel and serves it as JSON.
// It is safe for concurrent use; channel runners feed it while an HTTP
// handler reads.
type Hub struct {
	mu      sync.RWMutex
	limit   int
	history map[int][]Sample
}

// NewHub builds a hub keeping at most limit samples per channel.
func NewHub(limit int) *Hub {
	if limit <= 0 {
		limit = 500
	}
	return &Hub{limit: limit, history: make(map[int][]Sample)}
}

func (h *Hub) Report(rec tracking.TrackingRecord) {
	s := Sample{
		ChannelID:   rec.ChannelID,
		PRN:         rec.PRN,
		TimestampS:  rec.TrackingTimestampSecs,
		CN0DbHz:     rec.CN0DbHz,
		PromptI:     rec.PromptI,
		PromptQ:     rec.PromptQ,
		CarrierRads: rec.CarrierPhaseRads,
	}
	h.mu.Lock()
	hist := append(h.history[rec.ChannelID], s)
	if len(hist) > h.limit {
		hist = hist[len(hist)-h.limit:]
	}
	h.history[rec.ChannelID] = hist
	h.mu.Unlock()
}

// History returns a copy of the stored samples for one channel.
func (h *Hub) History(channelID int) []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sample, len(h.history[channelID]))
	copy(out, h.history[channelID])
	return out
}

// ServeHTTP renders the full history as JSON keyed by channel id.
func (h *Hub) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	snapshot := make(map[int][]Sample, len(h.history))
	for ch, hist := range h.history {
		cp := make([]Sample, len(hist))
		copy(cp, hist)
		snapshot[ch] = cp
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
