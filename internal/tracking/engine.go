// Package tracking implements the per-satellite Galileo E1 DLL+PLL tracking
// engine: a five-correlator (very-early/early/prompt/late/very-late) closed
// loop that refines the code delay and Doppler estimates handed over by
// acquisition and emits one synchronization record per spreading-code period.
package tracking

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/junjunhencool/gnss-sdr/internal/dsp"
	"github.com/junjunhencool/gnss-sdr/internal/gnss"
	"github.com/junjunhencool/gnss-sdr/internal/logging"
)

const (
	cn0WindowLen        = 10
	minimumValidCN0DbHz = 25
	maxLockFailures     = 200
)

// Config carries the immutable construction parameters of one engine.
type Config struct {
	ChannelID     int
	IFFreqHz      float64
	FsInHz        float64
	PRNLenNominal int

	PLLBwHz float64
	DLLBwHz float64
	// EarlyLateChips and VeryEarlyLateChips are the correlator tap offsets.
	EarlyLateChips     float64
	VeryEarlyLateChips float64
	// LockThreshold bounds the carrier-lock statistic before a window counts
	// as a lock failure.
	LockThreshold float64

	DumpEnabled    bool
	DumpPathPrefix string

	CodeGen gnss.CodeGenerator
	Events  EventSink
	Logger  logging.Logger
}

func (c *Config) applyDefaults() {
	if c.EarlyLateChips == 0 {
		c.EarlyLateChips = 0.1
	}
	if c.VeryEarlyLateChips == 0 {
		c.VeryEarlyLateChips = 0.15
	}
	if c.LockThreshold == 0 {
		c.LockThreshold = 20
	}
	if c.Logger == nil {
		c.Logger = logging.Default()
	}
}

// AcqResult is the coarse estimate handed over by acquisition before
// StartTracking.
type AcqResult struct {
	PRN          int
	Signal       gnss.Signal
	System       gnss.System
	DelaySamples float64
	DopplerHz    float64
	SampleStamp  uint64
}

// Engine tracks one satellite. It is not safe for concurrent use; the
// dataflow runtime drives each instance from a single goroutine.
type Engine struct {
	cfg Config
	log logging.Logger

	resampler *dsp.Resampler
	nco       *dsp.CarrierNCO
	pll       *dsp.LoopFilter
	dll       *dsp.LoopFilter
	cn0est    *dsp.CN0Estimator

	acq       AcqResult
	hasAcq    bool
	enabled   bool
	pullingIn bool

	sampleCounter uint64

	carrierDopplerHz float64
	acqDopplerHz     float64
	codeFreqHz       float64

	remCarrPhaseRad    float64
	accCarrierPhaseRad float64

	remCodePhaseSamples  float64
	nextRemCodePhaseSamp float64
	currBlockLen         int
	nextBlockLen         int

	promptWindow [cn0WindowLen]complex64
	windowPos    int
	windowFill   int
	cn0DbHz      float64
	lockStat     float64
	lockFails    int

	dump    *dumpWriter
	lastSeg int64
}

// NewEngine validates the configuration and allocates every buffer the
// engine will ever use; work calls never allocate.
func NewEngine(cfg Config) (*Engine, error) {
	cfg.applyDefaults()
	if cfg.FsInHz < 2*gnss.E1CodeChipRateHz {
		return nil, fmt.Errorf("tracking config: sample rate %.0f Hz below 2x chip rate", cfg.FsInHz)
	}
	if cfg.PRNLenNominal <= 0 {
		return nil, fmt.Errorf("tracking config: nominal PRN length %d", cfg.PRNLenNominal)
	}
	if cfg.CodeGen == nil {
		return nil, fmt.Errorf("tracking config: no code generator")
	}

	integration := gnss.E1PRNPeriodSecs
	pll, err := dsp.NewPLLFilter(cfg.PLLBwHz, integration)
	if err != nil {
		return nil, fmt.Errorf("tracking config: PLL: %w", err)
	}
	dll, err := dsp.NewDLLFilter(cfg.DLLBwHz, integration)
	if err != nil {
		return nil, fmt.Errorf("tracking config: DLL: %w", err)
	}
	maxBlock := 2 * cfg.PRNLenNominal
	resampler, err := dsp.NewResampler(cfg.FsInHz, cfg.EarlyLateChips, cfg.VeryEarlyLateChips, maxBlock)
	if err != nil {
		return nil, fmt.Errorf("tracking config: %w", err)
	}

	e := &Engine{
		cfg:          cfg,
		log:          cfg.Logger.With(logging.F("channel", cfg.ChannelID)),
		resampler:    resampler,
		nco:          dsp.NewCarrierNCO(cfg.FsInHz, maxBlock),
		pll:          pll,
		dll:          dll,
		cn0est:       dsp.NewCN0Estimator(cfg.FsInHz, cn0WindowLen),
		codeFreqHz:   gnss.E1CodeChipRateHz,
		currBlockLen: cfg.PRNLenNominal,
		nextBlockLen: cfg.PRNLenNominal,
	}
	if cfg.DumpEnabled {
		e.dump = openDump(cfg.DumpPathPrefix, cfg.ChannelID, e.log)
	}
	return e, nil
}

// SetAcquisition installs the acquisition hand-over for the next tracking
// session. It does not enable the engine; call StartTracking.
func (e *Engine) SetAcquisition(acq AcqResult) {
	e.acq = acq
	e.hasAcq = true
}

// StartTracking validates the session inputs, generates the local replica
// code, initializes both loop filters and arms the pull-in. Any failure
// leaves the engine disabled with no state consumed.
func (e *Engine) StartTracking() error {
	if !e.hasAcq {
		return fmt.Errorf("start tracking: no acquisition result")
	}
	if _, err := gnss.ParseSignal(string(e.acq.Signal)); err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}
	if _, err := gnss.ParseSystem(e.acq.System.String()); err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}
	if e.acq.PRN <= 0 {
		return fmt.Errorf("start tracking: PRN %d", e.acq.PRN)
	}
	if e.acq.DelaySamples < 0 || e.acq.DelaySamples >= float64(e.cfg.PRNLenNominal) {
		return fmt.Errorf("start tracking: code phase %.1f samples outside one PRN period", e.acq.DelaySamples)
	}

	chips, err := e.cfg.CodeGen(e.acq.Signal, e.acq.PRN)
	if err != nil {
		return fmt.Errorf("start tracking: generate code: %w", err)
	}
	code, err := gnss.SampledCode(chips)
	if err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}
	if err := e.resampler.SetCode(code); err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}

	e.pll.Initialize(e.acq.DopplerHz)
	e.dll.Initialize(e.acq.DelaySamples)

	e.acqDopplerHz = e.acq.DopplerHz
	e.carrierDopplerHz = e.acq.DopplerHz
	e.codeFreqHz = gnss.E1CodeChipRateHz
	e.remCodePhaseSamples = 0
	e.nextRemCodePhaseSamp = 0
	e.remCarrPhaseRad = 0
	e.accCarrierPhaseRad = 0
	e.nextBlockLen = e.cfg.PRNLenNominal
	e.lockFails = 0
	e.windowPos = 0
	e.windowFill = 0
	e.cn0DbHz = 0
	e.lockStat = 0

	e.pullingIn = true
	e.enabled = true

	e.log.Info("tracking start",
		logging.F("satellite", fmt.Sprintf("%s %d", e.acq.System.Name(), e.acq.PRN)),
		logging.F("signal", e.acq.Signal),
		logging.F("doppler_hz", e.acq.DopplerHz),
		logging.F("code_phase_samples", e.acq.DelaySamples))
	return nil
}

// Forecast reports the minimum number of input samples the runtime must have
// available before invoking Work.
func (e *Engine) Forecast() int { return 2 * e.cfg.PRNLenNominal }

// Work processes one block of input samples and returns the number consumed
// together with the synchronization record for this invocation. A record is
// produced on every call; while the engine is disabled or pulling in it
// carries only the channel id.
func (e *Engine) Work(in []complex64) (int, TrackingRecord) {
	if !e.enabled {
		consumed := e.currBlockLen
		if consumed > len(in) {
			consumed = len(in)
		}
		e.dump.write(&DumpRecord{
			SampleCounter:     e.sampleCounter,
			CodeFreqHz:        float32(e.codeFreqHz),
			PRNStartSampleEnd: float64(e.sampleCounter) + float64(consumed),
		})
		e.sampleCounter += uint64(consumed)
		return consumed, TrackingRecord{ChannelID: e.cfg.ChannelID}
	}

	if e.pullingIn {
		return e.pullIn(), TrackingRecord{ChannelID: e.cfg.ChannelID}
	}

	e.currBlockLen = e.nextBlockLen
	e.remCodePhaseSamples = e.nextRemCodePhaseSamp
	if len(in) < e.currBlockLen {
		e.log.Error("input underflow", logging.F("have", len(in)), logging.F("need", e.currBlockLen))
		return 0, TrackingRecord{ChannelID: e.cfg.ChannelID}
	}

	taps := e.resampler.Update(e.codeFreqHz, e.remCodePhaseSamples, e.currBlockLen)
	carr, rem := e.nco.Mix(e.carrierDopplerHz, e.remCarrPhaseRad, e.currBlockLen)
	e.remCarrPhaseRad = rem
	e.accCarrierPhaseRad += rem

	ve, ec, p, lc, vl := dsp.WipeoffAndVEPL(in[:e.currBlockLen], carr, taps)

	carrErr := dsp.PLLTwoQuadrantAtan(p)
	pllOut := e.pll.Update(carrErr)
	e.carrierDopplerHz = e.acqDopplerHz + pllOut

	codeErr := dsp.DLLNCVEMLNormalized(ve, ec, lc, vl)
	dllOut := e.dll.Update(codeErr)
	e.codeFreqHz = gnss.E1CodeChipRateHz - dllOut

	// Block-length schedule: the next block spans one PRN period at the new
	// chipping rate plus the residual carried into this block.
	tPrnSamples := float64(gnss.E1BCodeLengthChips) / e.codeFreqHz * e.cfg.FsInHz
	k := tPrnSamples + e.remCodePhaseSamples
	e.nextBlockLen = int(math.Round(k))
	e.nextRemCodePhaseSamp = k - float64(e.nextBlockLen)

	e.updateLockMonitor(p)

	rec := TrackingRecord{
		PRN:       e.acq.PRN,
		Signal:    e.acq.Signal,
		System:    e.acq.System,
		ChannelID: e.cfg.ChannelID,
		PromptI:   float64(imag(p)),
		PromptQ:   float64(real(p)),
		TrackingTimestampSecs: (float64(e.sampleCounter) +
			float64(e.nextBlockLen) + e.nextRemCodePhaseSamp) / e.cfg.FsInHz,
		CodePhaseSecs:    0,
		CarrierPhaseRads: e.accCarrierPhaseRad,
		CN0DbHz:          e.cn0DbHz,
	}

	e.logSegment()
	e.dump.write(&DumpRecord{
		AbsVE:               float32(cmplx.Abs(complex128(ve))),
		AbsE:                float32(cmplx.Abs(complex128(ec))),
		AbsP:                float32(cmplx.Abs(complex128(p))),
		AbsL:                float32(cmplx.Abs(complex128(lc))),
		AbsVL:               float32(cmplx.Abs(complex128(vl))),
		PromptI:             float32(imag(p)),
		PromptQ:             float32(real(p)),
		SampleCounter:       e.sampleCounter,
		AccCarrierPhaseRad:  float32(e.accCarrierPhaseRad),
		CarrierDopplerHz:    float32(e.carrierDopplerHz),
		CodeFreqHz:          float32(e.codeFreqHz),
		CarrErr:             float32(carrErr),
		PLLOut:              float32(pllOut),
		CodeErr:             float32(codeErr),
		DLLOut:              float32(dllOut),
		CN0DbHz:             float32(e.cn0DbHz),
		LockStat:            float32(e.lockStat),
		RemCodePhaseSamples: float32(e.remCodePhaseSamples),
		PRNStartSampleEnd:   float64(e.sampleCounter) + float64(e.currBlockLen),
	})

	e.sampleCounter += uint64(e.currBlockLen)
	return e.currBlockLen, rec
}

// pullIn consumes the samples between the acquisition stamp and the next PRN
// boundary so that steady-state blocks start on a code epoch.
func (e *Engine) pullIn() int {
	var gap float64
	if e.sampleCounter > e.acq.SampleStamp {
		gap = float64(e.sampleCounter - e.acq.SampleStamp)
	}
	correction := float64(e.nextBlockLen) - math.Mod(gap, float64(e.nextBlockLen))
	offset := int(math.Round(e.acq.DelaySamples + correction))
	e.sampleCounter += uint64(offset)
	e.pullingIn = false
	e.log.Debug("pull-in complete", logging.F("offset_samples", offset))
	return offset
}

// updateLockMonitor slides the prompt window and applies the CN0/lock rule.
// Crossing the failure limit emits exactly one loss-of-lock event and
// disables the engine.
func (e *Engine) updateLockMonitor(p complex64) {
	e.promptWindow[e.windowPos] = p
	e.windowPos = (e.windowPos + 1) % cn0WindowLen
	if e.windowFill < cn0WindowLen {
		e.windowFill++
		return
	}

	e.cn0DbHz = e.cn0est.Estimate(e.promptWindow[:])
	e.lockStat = dsp.CarrierLockRatio(e.promptWindow[:])

	if math.Abs(e.lockStat) > e.cfg.LockThreshold || e.cn0DbHz < minimumValidCN0DbHz {
		e.lockFails++
	} else if e.lockFails > 0 {
		e.lockFails--
	}
	if e.lockFails > maxLockFailures {
		e.log.Warn("loss of lock",
			logging.F("satellite", fmt.Sprintf("%s %d", e.acq.System.Name(), e.acq.PRN)),
			logging.F("cn0_dbhz", e.cn0DbHz))
		if e.cfg.Events != nil {
			e.cfg.Events.Emit(Event{ChannelID: e.cfg.ChannelID, Type: EventLossOfLock})
		}
		e.lockFails = 0
		e.enabled = false
	}
}

// logSegment reports tracking quality once per second of input signal.
func (e *Engine) logSegment() {
	seg := int64(float64(e.sampleCounter) / e.cfg.FsInHz)
	if seg == e.lastSeg {
		return
	}
	e.lastSeg = seg
	e.log.Info("tracking status",
		logging.F("signal_time_s", seg),
		logging.F("satellite", fmt.Sprintf("%s %d", e.acq.System.Name(), e.acq.PRN)),
		logging.F("cn0_dbhz", e.cn0DbHz),
		logging.F("doppler_hz", e.carrierDopplerHz))
}

// Close releases the dump stream, if any.
func (e *Engine) Close() { e.dump.close() }

// Enabled reports whether the engine is currently tracking.
func (e *Engine) Enabled() bool { return e.enabled }

// CarrierDopplerHz returns the current Doppler estimate.
func (e *Engine) CarrierDopplerHz() float64 { return e.carrierDopplerHz }

// CodeFreqHz returns the current chipping-rate estimate.
func (e *Engine) CodeFreqHz() float64 { return e.codeFreqHz }

// CN0DbHz returns the latest carrier-to-noise density estimate.
func (e *Engine) CN0DbHz() float64 { return e.cn0DbHz }

// LockFailCount returns the current consecutive lock-failure count.
func (e *Engine) LockFailCount() int { return e.lockFails }

// SampleCounter returns the number of input samples consumed so far.
func (e *Engine) SampleCounter() uint64 { return e.sampleCounter }

// AccCarrierPhaseRad returns the accumulated carrier phase since the session
// started.
func (e *Engine) AccCarrierPhaseRad() float64 { return e.accCarrierPhaseRad }

// NextBlockLen returns the sample count scheduled for the next block.
func (e *Engine) NextBlockLen() int { return e.nextBlockLen }

// RemCodePhaseSamples returns the fractional code-phase residual at the last
// block boundary.
func (e *Engine) RemCodePhaseSamples() float64 { return e.remCodePhaseSamples }
