package pipeline

import (
	"runtime"

	"github.com/kellerlab/klb/format"
	"github.com/kellerlab/klb/section"
)

// WriteConfig carries every write-time tunable the functional options in
// klb.go assemble before a write begins.
type WriteConfig struct {
	BlockSize [section.Dims]uint32
	PixelSize [section.Dims]float32
	CompressionType format.CompressionType
	Metadata []byte
	Workers int
}

// DefaultWriteConfig derives a starting point: the default block shape for
// dataType, unit pixel size, BZIP2 compression, and one worker per logical
// CPU.
func DefaultWriteConfig(dataType format.DataType) WriteConfig {
	return WriteConfig{
		BlockSize: section.DefaultBlockSize(dataType),
		PixelSize: [section.Dims]float32{1, 1, 1, 1, 1},
		CompressionType: format.CompressionBzip2,
		Workers: runtime.GOMAXPROCS(0),
	}
}

// ReadConfig carries read-time tunables.
type ReadConfig struct {
	Workers int
}

// DefaultReadConfig returns one worker per logical CPU.
func DefaultReadConfig() ReadConfig {
	return ReadConfig{Workers: runtime.GOMAXPROCS(0)}
}

// resolveWorkers turns a caller-supplied worker count into the one a
// pipeline actually runs with: workers<=0 means "use hardware
// concurrency", the same contract Default*Config applies when a caller
// omits Workers entirely, not only when they construct a Write/ReadConfig
// by hand. The result is then clamped to totalBlocks, since spinning up
// more workers than there are blocks to claim can't do any work.
func resolveWorkers(workers int, totalBlocks uint64) int {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if uint64(workers) > totalBlocks {
		workers = int(totalBlocks)
	}
	return workers
}
