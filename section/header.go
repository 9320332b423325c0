// Package section implements the on-disk header: the fixed-size descriptor
// of array shape, element type, block shape and compression choice,
// followed by the variable-length per-block offset index. Layout, field
// order, and byte width are exactly as specified by the format; this package
// only ever reads/writes little-endian, matching the format's "no
// endianness negotiation" rule.
package section

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/format"
)

// Dims is the number of axes every array carries.
const Dims = 5

// CurrentVersion is the header version this package writes. Readers accept
// both the current version and the one version before it.
const CurrentVersion = 2

// PreviousVersion lacked the metadata field; readers fill it with zeros.
const PreviousVersion = 1

// MetadataSize is the size in bytes of the opaque, fixed-size metadata
// field embedded in every header.
const MetadataSize = 256

// FixedSize is the size in bytes of the header's fixed portion, i.e.
// everything before the per-block offset index:
//
//	1 (version) + 5*4 (xyzct) + 5*4 (pixel_size) + 1 (data_type) +
//	1 (compression_type) + 256 (metadata) + 5*4 (block_size) = 319
const FixedSize = 1 + Dims*4 + Dims*4 + 1 + 1 + MetadataSize + Dims*4

// defaultBlockTargetBytes is the per-axis byte budget used to derive a
// default block shape; dividing it by the element byte width yields a block
// that compresses well with BZIP2. Because each of the three leading axes
// shrinks with the byte width, the raw block is 576KiB for 1-byte elements,
// 144KiB for 2-byte, 36KiB for 4-byte and 9KiB for 8-byte elements.
var defaultBlockTargetBytes = [Dims]uint32{192, 192, 16, 1, 1}

// Header is the complete, parsed descriptor of a KLB file: the fixed
// portion plus the per-block offset index.
type Header struct {
	Version byte
	XYZCT [Dims]uint32
	PixelSize [Dims]float32
	DataType format.DataType
	CompressionType format.CompressionType
	Metadata [MetadataSize]byte
	BlockSize [Dims]uint32
	// BlockOffsets holds Nb entries: BlockOffsets[k] is the cumulative
	// end-of-block byte offset into the payload region for block k.
	// BlockOffsets[-1] is implicitly 0.
	BlockOffsets []uint64
}

// New builds a header ready for the write pipeline: shape and tuning are
// validated, and BlockOffsets is allocated to the right length but left
// zeroed; the writer fills it in as blocks complete.
func New(xyzct [Dims]uint32, dataType format.DataType, blockSize [Dims]uint32, compressionType format.CompressionType, pixelSize [Dims]float32, metadata []byte) (*Header, error) {
	h := &Header{
		Version: CurrentVersion,
		XYZCT: xyzct,
		PixelSize: pixelSize,
		DataType: dataType,
		CompressionType: compressionType,
		BlockSize: blockSize,
	}
	if len(metadata) > MetadataSize {
		return nil, errs.ErrMetadataTooLarge
	}
	copy(h.Metadata[:], metadata)

	if err := h.validateShape(); err != nil {
		return nil, err
	}

	nb := h.TotalBlocks()
	if nb == 0 {
		return nil, errs.ErrZeroBlocks
	}
	h.BlockOffsets = make([]uint64, nb)

	return h, nil
}

// DefaultBlockSize divides the target-bytes table elementwise by the
// element byte width, flooring each axis at 1.
func DefaultBlockSize(dt format.DataType) [Dims]uint32 {
	w := uint32(dt.ByteWidth())
	if w == 0 {
		w = 1
	}
	var bs [Dims]uint32
	for i := 0; i < Dims; i++ {
		bs[i] = defaultBlockTargetBytes[i] / w
		if bs[i] < 1 {
			bs[i] = 1
		}
	}
	return bs
}

// NumBlocksPerAxis returns nb[i] = ceil(xyzct[i] / block_size[i]) for every
// axis.
func (h *Header) NumBlocksPerAxis() [Dims]uint32 {
	var nb [Dims]uint32
	for i := 0; i < Dims; i++ {
		nb[i] = (h.XYZCT[i] + h.BlockSize[i] - 1) / h.BlockSize[i]
	}
	return nb
}

// TotalBlocks returns Nb, the product of NumBlocksPerAxis.
func (h *Header) TotalBlocks() uint64 {
	nb := h.NumBlocksPerAxis()
	total := uint64(1)
	for i := 0; i < Dims; i++ {
		total *= uint64(nb[i])
	}
	return total
}

// Size returns the total on-disk header size: the fixed portion for this
// header's version, plus 8 bytes per block offset entry.
func (h *Header) Size() int64 {
	size, err := fixedSizeForVersion(h.Version)
	if err != nil {
		// h.Version was already validated by New or Parse; this only hits
		// for a zero-value Header, where the current-version size is the
		// only sensible default.
		size = FixedSize
	}
	return int64(size) + 8*int64(len(h.BlockOffsets))
}

// BlockCompressedSize returns block_offsets[k] - block_offsets[k-1], with
// block_offsets[-1] treated as 0.
func (h *Header) BlockCompressedSize(k int) uint64 {
	if k == 0 {
		return h.BlockOffsets[0]
	}
	return h.BlockOffsets[k] - h.BlockOffsets[k-1]
}

// BlockFileOffset returns the absolute file offset of block k's compressed
// bytes: header_size + offset_of(k-1).
func (h *Header) BlockFileOffset(k int) int64 {
	prev := uint64(0)
	if k > 0 {
		prev = h.BlockOffsets[k-1]
	}
	return h.Size() + int64(prev)
}

// PayloadSize returns the total byte size of the compressed payload region,
// i.e. block_offsets[Nb-1].
func (h *Header) PayloadSize() uint64 {
	if len(h.BlockOffsets) == 0 {
		return 0
	}
	return h.BlockOffsets[len(h.BlockOffsets)-1]
}

// MetadataString returns the metadata field with trailing NUL bytes
// trimmed, for callers that treat it as a C string. The raw Metadata field
// itself is never trimmed.
func (h *Header) MetadataString() string {
	end := len(h.Metadata)
	for end > 0 && h.Metadata[end-1] == 0 {
		end--
	}
	return string(h.Metadata[:end])
}

// SetMetadataString stores s into the fixed metadata field, zero-padding
// the remainder.
func (h *Header) SetMetadataString(s string) error {
	if len(s) > MetadataSize {
		return errs.ErrMetadataTooLarge
	}
	var m [MetadataSize]byte
	copy(m[:], s)
	h.Metadata = m
	return nil
}

// MetadataChecksum returns an xxHash64 of the raw metadata field. It is
// purely informational: a convenience for callers that want to detect
// metadata corruption or changes without comparing all 256 bytes, mirroring
// mebo's use of xxHash64 for cheap identity checks.
func (h *Header) MetadataChecksum() uint64 {
	return xxhash.Sum64(h.Metadata[:])
}

// fixedSizeForVersion returns the byte length of the fixed header portion
// for a given on-disk version. PreviousVersion predates the metadata field,
// so its fixed portion is MetadataSize bytes shorter.
func fixedSizeForVersion(version byte) (int, error) {
	switch version {
	case CurrentVersion:
		return FixedSize, nil
	case PreviousVersion:
		return FixedSize - MetadataSize, nil
	default:
		return 0, errs.ErrUnknownHeaderVersion
	}
}

func (h *Header) validateShape() error {
	if !h.DataType.Valid() {
		return errs.ErrUnknownDataType
	}
	if !h.CompressionType.Valid() {
		return errs.ErrUnknownCompressionType
	}
	for i := 0; i < Dims; i++ {
		if h.XYZCT[i] == 0 {
			return errs.ErrZeroExtent
		}
		if h.BlockSize[i] == 0 {
			return errs.ErrBlockSizeInvalid
		}
		if h.BlockSize[i] > h.XYZCT[i] {
			return errs.ErrBlockSizeTooLarge
		}
	}
	return nil
}

// Bytes serializes the fixed portion and the offset index into a single
// little-endian byte slice of length Size().
func (h *Header) Bytes() []byte {
	buf := make([]byte, h.Size())
	h.encodeFixed(buf[:FixedSize])
	off := FixedSize
	for _, v := range h.BlockOffsets {
		binary.LittleEndian.PutUint64(buf[off:off+8], v)
		off += 8
	}
	return buf
}

func (h *Header) encodeFixed(buf []byte) {
	buf[0] = h.Version
	p := 1
	for i := 0; i < Dims; i++ {
		binary.LittleEndian.PutUint32(buf[p:p+4], h.XYZCT[i])
		p += 4
	}
	for i := 0; i < Dims; i++ {
		binary.LittleEndian.PutUint32(buf[p:p+4], math.Float32bits(h.PixelSize[i]))
		p += 4
	}
	buf[p] = byte(h.DataType)
	p++
	buf[p] = byte(h.CompressionType)
	p++
	copy(buf[p:p+MetadataSize], h.Metadata[:])
	p += MetadataSize
	for i := 0; i < Dims; i++ {
		binary.LittleEndian.PutUint32(buf[p:p+4], h.BlockSize[i])
		p += 4
	}
}

// decodeFixed parses buf into h. buf must have exactly the length
// fixedSizeForVersion(buf[0]) returns for its first byte; PreviousVersion
// buffers omit the metadata field entirely, and h.Metadata is left zeroed
// for them.
func (h *Header) decodeFixed(buf []byte) error {
	if len(buf) == 0 {
		return errs.ErrInvalidHeaderSize
	}
	version := buf[0]
	size, err := fixedSizeForVersion(version)
	if err != nil {
		return err
	}
	if len(buf) != size {
		return errs.ErrInvalidHeaderSize
	}

	h.Version = version
	p := 1
	for i := 0; i < Dims; i++ {
		h.XYZCT[i] = binary.LittleEndian.Uint32(buf[p: p+4])
		p += 4
	}
	for i := 0; i < Dims; i++ {
		h.PixelSize[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[p: p+4]))
		p += 4
	}
	h.DataType = format.DataType(buf[p])
	p++
	h.CompressionType = format.CompressionType(buf[p])
	p++

	var m [MetadataSize]byte
	if version == CurrentVersion {
		copy(m[:], buf[p:p+MetadataSize])
		p += MetadataSize
	}
	h.Metadata = m

	for i := 0; i < Dims; i++ {
		h.BlockSize[i] = binary.LittleEndian.Uint32(buf[p: p+4])
		p += 4
	}
	return nil
}

// Parse reads and validates a complete header (fixed portion plus offset
// index) from r. fileSize is the total size of the file r reads from and is
// used to reject a header whose declared Nb would run past EOF. The fixed
// portion's length depends on the version byte, so Parse reads that byte
// first to know how much more to read.
func Parse(r io.Reader, fileSize int64) (*Header, error) {
	versionByte := make([]byte, 1)
	if _, err := io.ReadFull(r, versionByte); err != nil {
		return nil, errs.ErrTruncatedFile
	}
	size, err := fixedSizeForVersion(versionByte[0])
	if err != nil {
		return nil, err
	}

	fixed := make([]byte, size)
	fixed[0] = versionByte[0]
	if _, err := io.ReadFull(r, fixed[1:]); err != nil {
		return nil, errs.ErrTruncatedFile
	}

	h := &Header{}
	if err := h.decodeFixed(fixed); err != nil {
		return nil, err
	}
	if err := h.validateShape(); err != nil {
		return nil, err
	}

	nb := h.TotalBlocks()
	if nb == 0 {
		return nil, errs.ErrZeroBlocks
	}
	if int64(size)+8*int64(nb) > fileSize {
		return nil, errs.ErrTruncatedFile
	}

	offsetBytes := make([]byte, 8*nb)
	if _, err := io.ReadFull(r, offsetBytes); err != nil {
		return nil, errs.ErrTruncatedFile
	}
	h.BlockOffsets = make([]uint64, nb)
	var prev uint64
	for i := range h.BlockOffsets {
		v := binary.LittleEndian.Uint64(offsetBytes[i*8: i*8+8])
		if v < prev {
			return nil, errs.ErrNonMonotonicOffsets
		}
		h.BlockOffsets[i] = v
		prev = v
	}

	return h, nil
}
