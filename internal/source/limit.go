package source

import (
	"context"
	"io"
)

// Limit bounds a source to a fixed number of samples, after which it reports
// io.EOF. Useful for running a synthetic source for a set signal duration.
type Limit struct {
	src       Source
	remaining uint64
}

// NewLimit wraps src so at most n samples are delivered.
func NewLimit(src Source, n uint64) *Limit { return &Limit{src: src, remaining: n} }

func (l *Limit) Read(ctx context.Context, dst []complex64) (int, error) {
	if l.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(dst)) > l.remaining {
		dst = dst[:l.remaining]
	}
	n, err := l.src.Read(ctx, dst)
	l.remaining -= uint64(n)
	if err == nil && l.remaining == 0 {
		err = io.EOF
		if n > 0 {
			err = nil
		}
	}
	return n, err
}

func (l *Limit) Close() error { return l.src.Close() }
