package source

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// FileSource reads interleaved little-endian float32 I/Q pairs from a file,
// the layout produced by common SDR capture tools.
type FileSource struct {
	f  *os.File
	r  *bufio.Reader
	bu []byte
}

// NewFileSource opens an IQ capture file.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open IQ file: %w", err)
	}
	return &FileSource{
		f:  f,
		r:  bufio.NewReaderSize(f, 1<<20),
		bu: make([]byte, 1<<16),
	}, nil
}

func (s *FileSource) Read(ctx context.Context, dst []complex64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	filled := 0
	for filled < len(dst) {
		want := (len(dst) - filled) * 8
		if want > len(s.bu) {
			want = len(s.bu)
		}
		want -= want % 8
		n, err := io.ReadFull(s.r, s.bu[:want])
		n -= n % 8
		for i := 0; i < n; i += 8 {
			re := math.Float32frombits(binary.LittleEndian.Uint32(s.bu[i:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(s.bu[i+4:]))
			dst[filled] = complex(re, im)
			filled++
		}
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil {
			if filled > 0 && err == io.EOF {
				return filled, nil
			}
			return filled, err
		}
	}
	return filled, nil
}

func (s *FileSource) Close() error { return s.f.Close() }
