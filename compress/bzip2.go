package compress

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/dsnet/compress/bzip2"
	"github.com/kellerlab/klb/errs"
)

// Bzip2 wraps github.com/dsnet/compress/bzip2, the only actively
// maintained Go implementation that can both write and decode bzip2 (the
// standard library's compress/bzip2 is decode-only).
type Bzip2 struct{}

var _ Codec = Bzip2{}

// blockSize100k derives the bzip2 "100k block" tuning parameter from the
// raw block length, clamped to bzip2's valid [1,9] range.
func blockSize100k(rawLen int) int {
	n := int(math.Ceil(float64(rawLen) / 100_000))
	if n < bzip2.BestSpeed {
		n = bzip2.BestSpeed
	}
	if n > bzip2.BestCompression {
		n = bzip2.BestCompression
	}
	return n
}

func (Bzip2) Compress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, errs.ErrCodecFailed
	}

	var buf bytes.Buffer
	buf.Grow(len(dst))

	w, err := bzip2.NewWriterLevel(&buf, blockSize100k(len(src)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}
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

func (Bzip2) Decompress(dst, src []byte) error {
	r, err := bzip2.NewReader(bytes.NewReader(src), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}
	if _, err := io.ReadFull(r, dst); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}
	return nil
}

// WorstCaseSize computes ceil(raw_len * 1.05) + 50, bzip2's standard
// worst-case expansion bound.
func (Bzip2) WorstCaseSize(rawLen int) int {
	return int(math.Ceil(float64(rawLen)*1.05)) + 50
}
