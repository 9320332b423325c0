package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/kellerlab/klb/compress"
	"github.com/kellerlab/klb/container"
	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/geometry"
	"github.com/kellerlab/klb/internal/diag"
	"github.com/kellerlab/klb/internal/pool"
	"github.com/kellerlab/klb/roi"
	"github.com/kellerlab/klb/section"
	"golang.org/x/sync/errgroup"
)

// blockSource fetches block k's compressed bytes into dst, which is
// already sized to header.BlockCompressedSize(k). workerID lets a
// file-backed source pick its own handle; a source backed by an in-memory payload ignores it.
type blockSource func(workerID int, k uint64, dst []byte) error

func payloadSource(payload []byte, header *section.Header) blockSource {
	return func(_ int, k uint64, dst []byte) error {
		var off uint64
		if k > 0 {
			off = header.BlockOffsets[k-1]
		}
		n := header.BlockCompressedSize(int(k))
		copy(dst, payload[off:off+n])
		return nil
	}
}

func fileBlockSource(files []*os.File, header *section.Header) blockSource {
	return func(workerID int, k uint64, dst []byte) error {
		return container.ReadBlockAt(files[workerID], header, int(k), dst)
	}
}

// ReadHeader opens path just far enough to parse and return its header.
func ReadHeader(path string) (*section.Header, error) {
	f, size, err := container.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return section.Parse(f, size)
}

// ReadFull reads the entire array in one pass: the whole compressed
// payload is read in a single syscall, then decompressed block-by-block across cfg.Workers goroutines
// and scattered into the returned buffer.
func ReadFull(path string, cfg ReadConfig) (*section.Header, []byte, error) {
	f, size, err := container.OpenInput(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	header, err := section.Parse(f, size)
	if err != nil {
		return nil, nil, err
	}
	geom := geometry.New(header)
	codec, err := compress.New(header.CompressionType)
	if err != nil {
		return nil, nil, err
	}

	payload, err := container.ReadFullPayload(f, header)
	if err != nil {
		return nil, nil, err
	}

	totalRaw := geom.ByteWidth
	for i := 0; i < section.Dims; i++ {
		totalRaw *= uint64(header.XYZCT[i])
	}
	dst := make([]byte, totalRaw)

	w := resolveWorkers(cfg.Workers, header.TotalBlocks())
	src := payloadSource(payload, header)
	scatter := func(k uint64, raw []byte) error {
		origin, extent := geom.OriginExtent(k)
		localStrides := tightStrides(extent, geom.ByteWidth)
		var zero [section.Dims]uint32
		copyBox(dst, geom.Strides, origin, raw, localStrides, zero, extent, geom.ByteWidth)
		return nil
	}

	if err := runDecompressPool(w, header, geom, codec, src, nil, scatter); err != nil {
		return nil, nil, err
	}
	diag.Debug().Uint64("raw_bytes", totalRaw).Int("workers", w).Msg("klb read_full complete")
	return header, dst, nil
}

// ReadROI reads only the blocks intersecting r, scattering each block's
// contribution into a buffer shaped like r itself. A ROI spanning the
// whole array is delegated to ReadFull's bulk-read fast path instead of
// the per-block seek path below.
func ReadROI(path string, r roi.ROI, cfg ReadConfig) (*section.Header, []byte, error) {
	header, err := ReadHeader(path)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Validate(header.XYZCT); err != nil {
		return nil, nil, err
	}
	if r.IsFull(header.XYZCT) {
		return ReadFull(path, cfg)
	}

	geom := geometry.New(header)
	codec, err := compress.New(header.CompressionType)
	if err != nil {
		return nil, nil, err
	}

	w := resolveWorkers(cfg.Workers, header.TotalBlocks())
	files, _, err := container.OpenInputHandles(path, w)
	if err != nil {
		return nil, nil, err
	}
	defer container.CloseAll(files)

	roiStrides := tightStrides(r.Extent(), geom.ByteWidth)
	dstBytes := roiStrides[section.Dims-1] * uint64(r.Extent()[section.Dims-1])
	dst := make([]byte, dstBytes)

	src := fileBlockSource(files, header)
	skip := func(k uint64) bool { return !geom.Intersects(k, r) }
	scatter := func(k uint64, raw []byte) error {
		origin, extent := geom.OriginExtent(k)
		blockStrides := tightStrides(extent, geom.ByteWidth)
		localLb, localUb, destLb, _, ok := geom.Box(k, r)
		if !ok {
			return nil
		}
		var boxExtent [section.Dims]uint32
		for i := 0; i < section.Dims; i++ {
			boxExtent[i] = localUb[i] - localLb[i] + 1
		}
		copyBox(dst, roiStrides, destLb, raw, blockStrides, localLb, boxExtent, geom.ByteWidth)
		return nil
	}

	if err := runDecompressPool(w, header, geom, codec, src, skip, scatter); err != nil {
		return nil, nil, err
	}
	diag.Debug().Uint64("raw_bytes", dstBytes).Int("workers", w).Msg("klb read_roi complete")
	return header, dst, nil
}

// runDecompressPool fans decompression of every non-skipped block out
// across w goroutines that claim blocks from a shared atomic counter,
// each scattering its own block's decoded bytes into the destination
// independently; disjoint blocks never touch the same destination
// bytes, so no lock guards the scatter step.
func runDecompressPool(w int, header *section.Header, geom geometry.BlockGeometry, codec compress.Codec, src blockSource, skip func(uint64) bool, scatter func(uint64, []byte) error) error {
	var claim int64
	nb := header.TotalBlocks()

	// The per-worker compressed-block scratch buffer varies in size block to
	// block (border blocks compress smaller), so each worker draws it from a
	// shared pool instead of allocating fresh on every claimed block.
	bufPool := pool.NewByteBufferPool(int(codec.WorstCaseSize(int(geom.MaxRawBlockBytes()))), 0)

	g, _ := errgroup.WithContext(context.Background())
	for workerID := 0; workerID < w; workerID++ {
		workerID := workerID
		g.Go(func() error {
			raw := make([]byte, geom.MaxRawBlockBytes())
			bb := bufPool.Get()
			defer bufPool.Put(bb)

			for {
				k := atomic.AddInt64(&claim, 1) - 1
				if uint64(k) >= nb {
					return nil
				}
				if skip != nil && skip(uint64(k)) {
					continue
				}

				rawLen := geom.RawBlockBytes(uint64(k))
				compLen := int(header.BlockCompressedSize(int(k)))
				bb.Reset()
				bb.ExtendOrGrow(compLen)
				blockBytes := bb.Bytes()
				if err := src(workerID, uint64(k), blockBytes); err != nil {
					return fmt.Errorf("block %d: %w", k, err)
				}
				if len(blockBytes) == 0 {
					if rawLen != 0 {
						return fmt.Errorf("%w: block %d has zero compressed bytes but expects %d raw", errs.ErrShortRead, k, rawLen)
					}
					continue
				}
				if err := codec.Decompress(raw[:rawLen], blockBytes); err != nil {
					return fmt.Errorf("%w: block %d: %v", errs.ErrCodecFailed, k, err)
				}
				if err := scatter(uint64(k), raw[:rawLen]); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
