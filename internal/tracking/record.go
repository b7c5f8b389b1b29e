package tracking

import "github.com/junjunhencool/gnss-sdr/internal/gnss"

// TrackingRecord is the synchronization record emitted once per PRN period.
// The timestamp is aligned with the start sample of the PRN, so the code
// phase field is zero by definition; downstream consumers rely on this.
type TrackingRecord struct {
	PRN       int
	Signal    gnss.Signal
	System    gnss.System
	ChannelID int

	PromptI float64
	PromptQ float64

	TrackingTimestampSecs float64
	CodePhaseSecs         float64
	CarrierPhaseRads      float64
	CN0DbHz               float64
}

// EventType classifies control events emitted by a tracking channel.
type EventType int

const (
	// EventLossOfLock signals that the lock-fail counter exceeded its limit
	// and the channel disabled itself.
	EventLossOfLock EventType = iota
)

func (t EventType) String() string {
	if t == EventLossOfLock {
		return "loss_of_lock"
	}
	return "unknown"
}

// Event is a control message routed to the embedder.
type Event struct {
	ChannelID int
	Type      EventType
}

// EventSink receives control events. The engine produces structured events;
// the embedder routes them. A nil sink drops them.
type EventSink interface {
	Emit(Event)
}
