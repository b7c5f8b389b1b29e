// Package telemetry routes per-PRN synchronization records to consumers:
// log output, an in-memory history hub with an HTTP view, or any embedder
// supplied Reporter.
package telemetry

import (
	"github.com/junjunhencool/gnss-sdr/internal/logging"
	"github.com/junjunhencool/gnss-sdr/internal/tracking"
)

// Reporter consumes synchronization records.
type Reporter interface {
	Report(rec tracking.TrackingRecord)
}

// MultiReporter fans a record out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(rec tracking.TrackingRecord) {
	for _, r := range m {
		if r != nil {
			r.Report(rec)
		}
	}
}

// LogReporter writes records through the structured logger at debug level.
type LogReporter struct {
	logger logging.Logger
}

// NewLogReporter builds a log-backed reporter.
func NewLogReporter(logger logging.Logger) LogReporter {
	if logger == nil {
		logger = logging.Default()
	}
	return LogReporter{logger: logger}
}

func (r LogReporter) Report(rec tracking.TrackingRecord) {
	r.logger.Debug("synchronization record",
		logging.F("channel", rec.ChannelID),
		logging.F("prn", rec.PRN),
		logging.F("timestamp_s", rec.TrackingTimestampSecs),
		logging.F("cn0_dbhz", rec.CN0DbHz),
		logging.F("prompt_i", rec.PromptI),
		logging.F("prompt_q", rec.PromptQ))
}

// LogEventSink routes control events through the structured logger. It also
// satisfies tracking.EventSink for embedders that do not need a queue.
type LogEventSink struct {
	logger logging.Logger
}

// NewLogEventSink builds a log-backed event sink.
func NewLogEventSink(logger logging.Logger) LogEventSink {
	if logger == nil {
		logger = logging.Default()
	}
	return LogEventSink{logger: logger}
}

func (s LogEventSink) Emit(ev tracking.Event) {
	s.logger.Warn("channel event",
		logging.F("channel", ev.ChannelID),
		logging.F("event", ev.Type.String()))
}
