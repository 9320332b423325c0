// Package klb provides convenient top-level wrappers around the
// lower-level section/geometry/compress/pipeline packages, mirroring the
// minimal programmatic surface a language binding needs: read a header, read a full array or a region of interest, write
// an array from one contiguous buffer or from one buffer per z-plane.
//
// For fine-grained control (custom worker pools, access to the parsed
// header and its derived geometry, or the write pipeline's per-block
// statistics) use the section/geometry/pipeline packages directly; this
// package only assembles them behind a small set of WriteOption/ReadOption
// functions, the same convenience-wrapper role github.com/arloliu/mebo's
// top-level package plays over its blob package.
package klb

import (
	"fmt"

	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/format"
	"github.com/kellerlab/klb/pipeline"
	"github.com/kellerlab/klb/roi"
	"github.com/kellerlab/klb/section"
)

// Dims is the number of axes every KLB array carries: x, y, z, channel,
// time.
const Dims = section.Dims

// Re-exported element and compression type codes, so callers of this
// package never need to import format directly for common cases.
const (
	UInt8 = format.UInt8
	UInt16 = format.UInt16
	UInt32 = format.UInt32
	UInt64 = format.UInt64
	Int8 = format.Int8
	Int16 = format.Int16
	Int32 = format.Int32
	Int64 = format.Int64
	Float32 = format.Float32
	Float64 = format.Float64

	CompressionNone = format.CompressionNone
	CompressionBzip2 = format.CompressionBzip2
	CompressionZlib = format.CompressionZlib
)

// Status codes, re-exported from errs for bindings that want the legacy
// integer ABI instead of an idiomatic Go error.
const (
	StatusOK = errs.StatusOK
	StatusCodecError = errs.StatusCodecError
	StatusInputOpenFailed = errs.StatusInputOpenFailed
	StatusMalformedInput = errs.StatusMalformedInput
	StatusOutputOpenFailed = errs.StatusOutputOpenFailed
	StatusResourceError = errs.StatusResourceError
)

// Status maps err to its external status code. A nil error maps to
// StatusOK.
func Status(err error) int { return errs.Status(err) }

// WriteOption configures a Write or WriteSlices call. It is applied to a
// pipeline.WriteConfig seeded by pipeline.DefaultWriteConfig, in the order
// passed, and may reject the value it's given.
type WriteOption func(*pipeline.WriteConfig) error

// WithBlockSize overrides the default block shape. Every axis must be at least 1 and at most the
// corresponding xyzct axis; that bound is checked when the write begins,
// not here, since it depends on the array shape passed to Write.
func WithBlockSize(blockSize [Dims]uint32) WriteOption {
	return func(c *pipeline.WriteConfig) error {
		c.BlockSize = blockSize
		return nil
	}
}

// WithPixelSize overrides the informational physical spacing per axis.
// Defaults to (1,1,1,1,1).
func WithPixelSize(pixelSize [Dims]float32) WriteOption {
	return func(c *pipeline.WriteConfig) error {
		c.PixelSize = pixelSize
		return nil
	}
}

// WithCompression selects the per-block compressor. Defaults to BZIP2
// when omitted.
func WithCompression(t format.CompressionType) WriteOption {
	return func(c *pipeline.WriteConfig) error {
		if !t.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrUnknownCompressionType, t)
		}
		c.CompressionType = t
		return nil
	}
}

// WithMetadata sets the opaque 256-byte metadata field. Defaults to 256
// zero bytes; metadata longer than 256 bytes is rejected once Write runs.
func WithMetadata(metadata []byte) WriteOption {
	return func(c *pipeline.WriteConfig) error {
		c.Metadata = metadata
		return nil
	}
}

// WithWorkers overrides the worker count. w<=0 means "use hardware
// concurrency", then clamped to the total block count.
func WithWorkers(w int) WriteOption {
	return func(c *pipeline.WriteConfig) error {
		c.Workers = w
		return nil
	}
}

// ReadOption configures a ReadFull or ReadROI call.
type ReadOption func(*pipeline.ReadConfig) error

// WithReadWorkers overrides the read-side worker count. w<=0 means "use
// hardware concurrency", then clamped to the total block count.
func WithReadWorkers(w int) ReadOption {
	return func(c *pipeline.ReadConfig) error {
		c.Workers = w
		return nil
	}
}

func buildWriteConfig(xyzct [Dims]uint32, dataType format.DataType, opts []WriteOption) (pipeline.WriteConfig, error) {
	cfg := pipeline.DefaultWriteConfig(dataType)
	// The default block shape is clamped to the array on every axis; a shape
	// set through WithBlockSize is applied afterwards and used as given.
	for i := 0; i < Dims; i++ {
		if cfg.BlockSize[i] > xyzct[i] {
			cfg.BlockSize[i] = xyzct[i]
		}
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func buildReadConfig(opts []ReadOption) (pipeline.ReadConfig, error) {
	cfg := pipeline.DefaultReadConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// ReadHeader parses and returns path's header without reading any block
// payload.
func ReadHeader(path string) (*section.Header, error) {
	return pipeline.ReadHeader(path)
}

// ReadFull reads the entire array at path into dst, which must be exactly
// xyzct-product * bytes-per-element bytes long (the header's own shape
// decides this; dst is sized after the header is parsed, so callers that
// don't already know the shape should call ReadHeader first to size their
// buffer, or just let ReadFull allocate by passing a nil dst and using the
// returned slice).
//
// If dst is non-nil its length must match exactly; the array is decoded
// into a new buffer, copied into dst, and dst is returned. If dst is nil,
// ReadFull returns the newly decoded slice.
func ReadFull(path string, dst []byte, opts ...ReadOption) ([]byte, error) {
	cfg, err := buildReadConfig(opts)
	if err != nil {
		return nil, err
	}
	_, data, err := pipeline.ReadFull(path, cfg)
	if err != nil {
		return nil, err
	}
	return placeInto(dst, data)
}

// ReadROI reads the axis-aligned inclusive region [lb,ub] at path into
// dst, following the same sizing convention as ReadFull but against the
// ROI's element count rather than the full array's.
func ReadROI(path string, lb, ub [Dims]uint32, dst []byte, opts ...ReadOption) ([]byte, error) {
	r := roi.ROI{Lb: lb, Ub: ub}
	cfg, err := buildReadConfig(opts)
	if err != nil {
		return nil, err
	}
	_, data, err := pipeline.ReadROI(path, r, cfg)
	if err != nil {
		return nil, err
	}
	return placeInto(dst, data)
}

func placeInto(dst, data []byte) ([]byte, error) {
	if dst == nil {
		return data, nil
	}
	if len(dst) != len(data) {
		return nil, fmt.Errorf("%w: destination is %d bytes, region needs %d", errs.ErrDestSizeMismatch, len(dst), len(data))
	}
	copy(dst, data)
	return dst, nil
}

// Write partitions src into blocks and writes a complete KLB file to path.
// src must be laid out with axis 0 (x) fastest-varying across the whole
// array, exactly xyzct-product * bytes-per-element bytes long.
func Write(src []byte, path string, xyzct [Dims]uint32, dataType format.DataType, opts ...WriteOption) (*pipeline.WriteStats, error) {
	cfg, err := buildWriteConfig(xyzct, dataType, opts)
	if err != nil {
		return nil, err
	}
	source, err := pipeline.NewContiguousSource(src, xyzct, uint64(dataType.ByteWidth()))
	if err != nil {
		return nil, err
	}
	return pipeline.Write(path, xyzct, dataType, source, cfg)
}

// WriteSlices is the write_slices entry point: it behaves
// exactly like Write but takes one buffer per z-plane instead of one
// contiguous array, for bindings that hold per-slice data. xyzct[2] (z)
// must equal z extent implied by len(planes), and xyzct[3]/xyzct[4]
// (channel, time) must both be 1, matching the constraint the original
// binding imposes on this entry point.
func WriteSlices(planes [][]byte, path string, xyzct [Dims]uint32, dataType format.DataType, opts ...WriteOption) (*pipeline.WriteStats, error) {
	if xyzct[3] != 1 || xyzct[4] != 1 {
		return nil, fmt.Errorf("%w: write_slices requires channel and time extent of 1, got %d and %d", errs.ErrSliceCountWrong, xyzct[3], xyzct[4])
	}
	cfg, err := buildWriteConfig(xyzct, dataType, opts)
	if err != nil {
		return nil, err
	}
	source, err := pipeline.NewPlaneSource(planes, xyzct, uint64(dataType.ByteWidth()))
	if err != nil {
		return nil, err
	}
	return pipeline.Write(path, xyzct, dataType, source, cfg)
}

// FullROI returns the ROI spanning the entire array described by xyzct, a
// convenience for callers that want to call ReadROI with explicit bounds
// equal to ReadFull's.
func FullROI(xyzct [Dims]uint32) (lb, ub [Dims]uint32) {
	full := roi.Full(xyzct)
	return full.Lb, full.Ub
}

// PlaneROI returns the bounds selecting a single index along axis,
// spanning the full extent of every other axis.
func PlaneROI(xyzct [Dims]uint32, axis int, index uint32) (lb, ub [Dims]uint32) {
	p := roi.Plane(xyzct, axis, index)
	return p.Lb, p.Ub
}
