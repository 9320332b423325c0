package compress

import (
	"fmt"

	"github.com/kellerlab/klb/errs"
	"github.com/pierrec/lz4/v4"
)

// LZ4 wraps github.com/pierrec/lz4/v4's block API. It implements the same
// Codec interface as the three wire-mandated codecs but is deliberately not
// registered in New's dispatch table: format.CompressionType is fixed to
// {none, BZIP2, ZLIB} and wire codes must never be renumbered
// or have their meaning changed. LZ4 is exposed here so callers
// benchmarking block-level throughput — the same role it plays for mebo's
// payload compression — can compare it against the mandated codecs without
// it ever reaching the on-disk format.
type LZ4 struct{}

var _ Codec = LZ4{}

func (LZ4) Compress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, errs.ErrCodecFailed
	}
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}
	return n, nil
}

func (LZ4) Decompress(dst, src []byte) error {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCodecFailed, err)
	}
	if n != len(dst) {
		return errs.ErrCodecFailed
	}
	return nil
}

func (LZ4) WorstCaseSize(rawLen int) int {
	return lz4.CompressBlockBound(rawLen)
}
