// Package receiver wires sample sources into tracking engines. It stands in
// for the dataflow runtime the engine is normally embedded in: it honors the
// engine's forecast, feeds it contiguous blocks and routes the emitted
// records.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/junjunhencool/gnss-sdr/internal/logging"
	"github.com/junjunhencool/gnss-sdr/internal/source"
	"github.com/junjunhencool/gnss-sdr/internal/telemetry"
	"github.com/junjunhencool/gnss-sdr/internal/tracking"
)

// Channel drives one tracking engine from a sample source.
type Channel struct {
	eng *tracking.Engine
	src source.Source
	rep telemetry.Reporter
	log logging.Logger

	buf  []complex64
	fill int
}

// NewChannel builds a runner for the given engine. The buffer is sized to
// hold two forecast windows so a pull-in never starves the engine.
func NewChannel(eng *tracking.Engine, src source.Source, rep telemetry.Reporter, log logging.Logger) *Channel {
	if log == nil {
		log = logging.Default()
	}
	return &Channel{
		eng: eng,
		src: src,
		rep: rep,
		log: log,
		buf: make([]complex64, 2*eng.Forecast()),
	}
}

// Step feeds the engine exactly one work call and reports the record.
// It returns io.EOF when the source is exhausted.
func (c *Channel) Step(ctx context.Context) error {
	need := c.eng.Forecast()
	for c.fill < need {
		n, err := c.src.Read(ctx, c.buf[c.fill:])
		c.fill += n
		if err != nil {
			if errors.Is(err, io.EOF) && c.fill >= need {
				break
			}
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			return fmt.Errorf("read samples: %w", err)
		}
	}

	consumed, rec := c.eng.Work(c.buf[:c.fill])
	if consumed > 0 {
		copy(c.buf, c.buf[consumed:c.fill])
		c.fill -= consumed
	}
	if c.rep != nil {
		c.rep.Report(rec)
	}
	return nil
}

// Run steps the channel until the context is canceled or the source ends.
func (c *Channel) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.Step(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				c.log.Info("sample source exhausted")
				return nil
			}
			return err
		}
	}
}
