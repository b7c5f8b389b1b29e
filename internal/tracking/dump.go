package tracking

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/junjunhencool/gnss-sdr/internal/logging"
)

// DumpRecord is the fixed-layout binary record written once per tracking or
// disabled work call when dumping is enabled; the pull-in call writes none. Field order and widths are part of the on-disk
// format; records are packed back to back in native byte order.
type DumpRecord struct {
	AbsVE, AbsE, AbsP, AbsL, AbsVL float32
	PromptI, PromptQ               float32
	SampleCounter                  uint64
	AccCarrierPhaseRad             float32
	CarrierDopplerHz               float32
	CodeFreqHz                     float32
	CarrErr, PLLOut                float32
	CodeErr, DLLOut                float32
	CN0DbHz, LockStat              float32
	RemCodePhaseSamples            float32
	PRNStartSampleEnd              float64
}

// DumpRecordSize is the packed size of one DumpRecord in bytes.
const DumpRecordSize = 17*4 + 8 + 8

func (r *DumpRecord) marshal(buf []byte) {
	bo := binary.NativeEndian
	off := 0
	put := func(v float32) {
		bo.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	put(r.AbsVE)
	put(r.AbsE)
	put(r.AbsP)
	put(r.AbsL)
	put(r.AbsVL)
	put(r.PromptI)
	put(r.PromptQ)
	bo.PutUint64(buf[off:], r.SampleCounter)
	off += 8
	put(r.AccCarrierPhaseRad)
	put(r.CarrierDopplerHz)
	put(r.CodeFreqHz)
	put(r.CarrErr)
	put(r.PLLOut)
	put(r.CodeErr)
	put(r.DLLOut)
	put(r.CN0DbHz)
	put(r.LockStat)
	put(r.RemCodePhaseSamples)
	bo.PutUint64(buf[off:], math.Float64bits(r.PRNStartSampleEnd))
}

func (r *DumpRecord) unmarshal(buf []byte) {
	bo := binary.NativeEndian
	off := 0
	get := func() float32 {
		v := math.Float32frombits(bo.Uint32(buf[off:]))
		off += 4
		return v
	}
	r.AbsVE = get()
	r.AbsE = get()
	r.AbsP = get()
	r.AbsL = get()
	r.AbsVL = get()
	r.PromptI = get()
	r.PromptQ = get()
	r.SampleCounter = bo.Uint64(buf[off:])
	off += 8
	r.AccCarrierPhaseRad = get()
	r.CarrierDopplerHz = get()
	r.CodeFreqHz = get()
	r.CarrErr = get()
	r.PLLOut = get()
	r.CodeErr = get()
	r.DLLOut = get()
	r.CN0DbHz = get()
	r.LockStat = get()
	r.RemCodePhaseSamples = get()
	r.PRNStartSampleEnd = math.Float64frombits(bo.Uint64(buf[off:]))
}

// ReadDump decodes a full dump stream. A trailing partial record is an error.
func ReadDump(r io.Reader) ([]DumpRecord, error) {
	var out []DumpRecord
	buf := make([]byte, DumpRecordSize)
	for {
		_, err := io.ReadFull(r, buf)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("read dump record %d: %w", len(out), err)
		}
		var rec DumpRecord
		rec.unmarshal(buf)
		out = append(out, rec)
	}
}

// dumpWriter appends DumpRecords to {prefix}{channel}.dat. Write failures are
// logged and suppressed; they never affect tracking.
type dumpWriter struct {
	f   *os.File
	buf [DumpRecordSize]byte
	log logging.Logger
}

func openDump(prefix string, channelID int, log logging.Logger) *dumpWriter {
	path := fmt.Sprintf("%s%d.dat", prefix, channelID)
	f, err := os.Create(path)
	if err != nil {
		log.Warn("open tracking dump failed", logging.F("path", path), logging.F("err", err))
		return nil
	}
	log.Info("tracking dump enabled", logging.F("path", path))
	return &dumpWriter{f: f, log: log}
}

func (d *dumpWriter) write(rec *DumpRecord) {
	if d == nil || d.f == nil {
		return
	}
	rec.marshal(d.buf[:])
	if _, err := d.f.Write(d.buf[:]); err != nil {
		d.log.Warn("write tracking dump failed", logging.F("err", err))
	}
}

func (d *dumpWriter) close() {
	if d == nil || d.f == nil {
		return
	}
	if err := d.f.Close(); err != nil {
		d.log.Warn("close tracking dump failed", logging.F("err", err))
	}
	d.f = nil
}
