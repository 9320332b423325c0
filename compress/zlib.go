package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/kellerlab/klb/errs"
)

// Zlib wraps github.com/klauspost/compress/zlib, a drop-in, SIMD-accelerated
// replacement for the standard library's compress/zlib package.
type Zlib struct{}

var _ Codec = Zlib{}

func (Zlib) Compress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, errs.ErrCodecFailed
	}

	var buf bytes.Buffer
	buf.Grow(len(dst))

	w := zlib.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}

	if buf.Len() > len(dst) {
		return 0, fmt.Errorf("%w: compressed output exceeds worst-case bound", errs.ErrCodecFailed)
	}

	return copy(dst, buf.Bytes()), nil
}

func (Zlib) Decompress(dst, src []byte) error {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}
	defer r.Close()

	if _, err := io.ReadFull(r, dst); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}
	return nil
}

// WorstCaseSize approximates zlib's bound: deflate never expands stored
// data by more than a small fraction plus per-block overhead, plus the
// 6-byte zlib header/trailer.
func (Zlib) WorstCaseSize(rawLen int) int {
	return rawLen + rawLen>>12 + rawLen>>14 + rawLen>>25 + 13 + 6
}
