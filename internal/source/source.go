// Package source provides complex baseband sample sources for tracking
// channels: recorded IQ files and deterministic synthetic signals.
package source

import "context"

// Source delivers complex baseband samples. Read fills dst with up to
// len(dst) samples and returns the number delivered; it returns io.EOF when
// the stream ends.
type Source interface {
	Read(ctx context.Context, dst []complex64) (int, error)
	Close() error
}
