package compress

import "github.com/kellerlab/klb/errs"

// NoOp is the identity codec: block bytes pass through unchanged. It exists
// so "no compression" is a codec like any other rather than a special case
// threaded through the pipelines.
type NoOp struct{}

var _ Codec = NoOp{}

func (NoOp) Compress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, errs.ErrCodecFailed
	}
	n := copy(dst, src)
	return n, nil
}

func (NoOp) Decompress(dst, src []byte) error {
	if len(src) != len(dst) {
		return errs.ErrCodecFailed
	}
	copy(dst, src)
	return nil
}

func (NoOp) WorstCaseSize(rawLen int) int {
	return rawLen
}
