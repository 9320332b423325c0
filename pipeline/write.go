package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/kellerlab/klb/compress"
	"github.com/kellerlab/klb/container"
	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/format"
	"github.com/kellerlab/klb/geometry"
	"github.com/kellerlab/klb/internal/diag"
	"github.com/kellerlab/klb/internal/queue"
	"github.com/kellerlab/klb/section"
	"golang.org/x/sync/errgroup"
)

// Write runs the full write pipeline: it builds the header, opens path,
// fans the array out to W compressor workers, and lets a single writer
// goroutine serialize their output in ascending block order before
// rewriting the offset index.
func Write(path string, xyzct [section.Dims]uint32, dataType format.DataType, src SliceSource, cfg WriteConfig) (*WriteStats, error) {
	header, err := section.New(xyzct, dataType, cfg.BlockSize, cfg.CompressionType, cfg.PixelSize, cfg.Metadata)
	if err != nil {
		return nil, err
	}
	geom := geometry.New(header)
	codec, err := compress.New(cfg.CompressionType)
	if err != nil {
		return nil, err
	}

	w := resolveWorkers(cfg.Workers, header.TotalBlocks())

	f, err := container.CreateOutput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := container.WriteHeaderPlaceholder(f, header); err != nil {
		return nil, err
	}

	stats, err := runWritePipeline(f, header, geom, codec, src, w)
	if err != nil {
		return nil, err
	}

	if err := container.RewriteOffsetIndex(f, header); err != nil {
		return nil, err
	}
	diag.Debug().
		Uint64("raw_bytes", stats.TotalRawBytes).
		Uint64("compressed_bytes", stats.TotalCompressedBytes).
		Int("workers", w).
		Msg("klb write complete")
	return stats, nil
}

func runWritePipeline(f *os.File, header *section.Header, geom geometry.BlockGeometry, codec compress.Codec, src SliceSource, w int) (*WriteStats, error) {
	nb := header.TotalBlocks()
	capacity := queue.Capacity(w, nb)
	worstCase := codec.WorstCaseSize(int(geom.MaxRawBlockBytes()))

	queues := make([]*queue.BoundedQueue, w)
	for i := range queues {
		queues[i] = queue.New(capacity, worstCase)
	}

	g, ctx := errgroup.WithContext(context.Background())
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			for _, q := range queues {
				q.Close()
			}
		case <-done:
		}
	}()

	for workerID := 0; workerID < w; workerID++ {
		workerID := workerID
		g.Go(func() error {
			return compressWorker(workerID, w, geom, codec, src, queues[workerID])
		})
	}

	stats := newWriteStats(nb)
	g.Go(func() error {
		return writeBlocks(f, header, geom, queues, w, stats)
	})

	err := g.Wait()
	close(done)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// compressWorker handles every block k such that k%w == id, in ascending
// order, so the queue it feeds delivers blocks to the writer in exactly
// the order the writer needs them.
func compressWorker(id, w int, geom geometry.BlockGeometry, codec compress.Codec, src SliceSource, q *queue.BoundedQueue) error {
	raw := make([]byte, geom.MaxRawBlockBytes())
	for k := uint64(id); k < geom.TotalBlock; k += uint64(w) {
		origin, extent := geom.OriginExtent(k)
		rawLen := geom.RawBlockBytes(k)

		if err := src.ReadBlock(origin, extent, raw[:rawLen]); err != nil {
			return fmt.Errorf("block %d: %w", k, err)
		}

		idx, slot, ok := q.Reserve()
		if !ok {
			return nil // a sibling goroutine failed; queue was closed to unwind us
		}

		compLen, err := codec.Compress(slot, raw[:rawLen])
		if err != nil {
			q.Commit(idx, 0)
			return fmt.Errorf("%w: block %d: %v", errs.ErrCodecFailed, k, err)
		}
		q.Commit(idx, compLen)
	}
	return nil
}

// writeBlocks drains each worker's queue in round-robin block order,
// writes the compressed bytes to their final file position, and records
// the offset index entry and stats for that block.
func writeBlocks(f *os.File, header *section.Header, geom geometry.BlockGeometry, queues []*queue.BoundedQueue, w int, stats *WriteStats) error {
	nb := header.TotalBlocks()
	for k := uint64(0); k < nb; k++ {
		owner := queues[int(k)%w]
		idx, data, ok := owner.Take()
		if !ok {
			return nil // a sibling goroutine failed; queue was closed to unwind us
		}

		if err := container.WriteBlockAt(f, header, int(k), data); err != nil {
			owner.Release(idx)
			return err
		}

		var prev uint64
		if k > 0 {
			prev = header.BlockOffsets[k-1]
		}
		header.BlockOffsets[k] = prev + uint64(len(data))
		stats.BlockCompressedLengths[k] = uint64(len(data))
		stats.TotalCompressedBytes += uint64(len(data))
		stats.TotalRawBytes += geom.RawBlockBytes(k)

		owner.Release(idx)
	}
	return nil
}
