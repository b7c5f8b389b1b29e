package receiver

import (
	"context"
	"testing"

	"github.com/junjunhencool/gnss-sdr/internal/gnss"
	"github.com/junjunhencool/gnss-sdr/internal/gnss/simcode"
	"github.com/junjunhencool/gnss-sdr/internal/source"
	"github.com/junjunhencool/gnss-sdr/internal/tracking"
)

type captureReporter struct {
	recs []tracking.TrackingRecord
}

func (c *captureReporter) Report(rec tracking.TrackingRecord) { c.recs = append(c.recs, rec) }

func newEngine(t *testing.T) *tracking.Engine {
	t.Helper()
	eng, err := tracking.NewEngine(tracking.Config{
		FsInHz:        4.092e6,
		PRNLenNominal: 16368,
		PLLBwHz:       50,
		DLLBwHz:       2,
		CodeGen:       simcode.Generator(),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(eng.Close)
	return eng
}

func e1Source(t *testing.T, samples uint64) source.Source {
	t.Helper()
	chips, err := simcode.Generator()(gnss.SignalE1B, 11)
	if err != nil {
		t.Fatal(err)
	}
	code, err := gnss.SampledCode(chips)
	if err != nil {
		t.Fatal(err)
	}
	gen := source.NewE1(code, source.E1Params{FsHz: 4.092e6})
	return source.NewLimit(source.NewSynth(gen), samples)
}

func TestChannelRunsToSourceEnd(t *testing.T) {
	eng := newEngine(t)
	eng.SetAcquisition(tracking.AcqResult{
		PRN:    11,
		Signal: gnss.SignalE1B,
		System: gnss.SystemGalileo,
	})
	if err := eng.StartTracking(); err != nil {
		t.Fatal(err)
	}

	// 30 PRN periods plus the pull-in block.
	src := e1Source(t, uint64(31*16368+2*16368))
	rep := &captureReporter{}
	ch := NewChannel(eng, src, rep, nil)

	if err := ch.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(rep.recs) < 30 {
		t.Fatalf("reported %d records, want at least 30", len(rep.recs))
	}
	// Steady-state records carry the satellite identity.
	last := rep.recs[len(rep.recs)-1]
	if last.PRN != 11 || last.System != gnss.SystemGalileo {
		t.Fatalf("last record %+v", last)
	}
}

func TestChannelStepHonorsForecast(t *testing.T) {
	eng := newEngine(t)
	// Disabled engine: records flow, prompt stays zero.
	src := e1Source(t, uint64(6*16368))
	rep := &captureReporter{}
	ch := NewChannel(eng, src, rep, nil)

	for i := 0; i < 2; i++ {
		if err := ch.Step(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(rep.recs) != 2 {
		t.Fatalf("reported %d records", len(rep.recs))
	}
	for i, rec := range rep.recs {
		if rec.PromptI != 0 || rec.PromptQ != 0 {
			t.Fatalf("record %d prompt nonzero: %+v", i, rec)
		}
	}
}

func TestChannelContextCancel(t *testing.T) {
	eng := newEngine(t)
	src := e1Source(t, uint64(100*16368))
	ch := NewChannel(eng, src, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ch.Run(ctx); err != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
