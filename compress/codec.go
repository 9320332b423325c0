package compress

import (
	"fmt"

	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/format"
)

// Codec compresses and decompresses whole blocks. Implementations must be
// safe for concurrent use by multiple worker goroutines holding independent
// scratch buffers; the codec value itself carries no per-call state.
type Codec interface {
	// Compress compresses src (exactly rawLen bytes) into dst, which must
	// have at least WorstCaseSize(rawLen) bytes of capacity. It returns the
	// number of compressed bytes written.
	Compress(dst, src []byte) (compLen int, err error)

	// Decompress decompresses exactly compLen bytes from src into dst,
	// which must have exactly rawLen bytes of capacity.
	Decompress(dst []byte, src []byte) error

	// WorstCaseSize returns the largest number of bytes Compress could ever
	// write for a raw block of rawLen bytes, used to size scratch buffers
	// once per pipeline.
	WorstCaseSize(rawLen int) int
}

// New returns the Codec for the given wire-level compression type.
func New(t format.CompressionType) (Codec, error) {
	switch t {
	case format.CompressionNone:
		return NoOp{}, nil
	case format.CompressionBzip2:
		return Bzip2{}, nil
	case format.CompressionZlib:
		return Zlib{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownCompressionType, t)
	}
}
