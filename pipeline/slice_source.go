package pipeline

import (
	"fmt"

	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/section"
)

// SliceSource is the write pipeline's gather interface: given a block's
// pixel-space origin and extent, it copies that box's raw bytes into dst,
// packed with dst's own tight strides (axis 0 fastest). It exists so the
// compressor workers have a single code path regardless of whether the
// caller handed over one contiguous array (write) or one pointer per
// z-plane (write_slices).
type SliceSource interface {
	ReadBlock(origin, extent [section.Dims]uint32, dst []byte) error
}

// contiguousSource adapts a single flat array, laid out with axis 0
// fastest-varying across the whole array, into a SliceSource.
type contiguousSource struct {
	data      []byte
	strides   [section.Dims]uint64
	byteWidth uint64
}

// NewContiguousSource wraps a single contiguous raw array for the plain
// write entry point.
func NewContiguousSource(data []byte, xyzct [section.Dims]uint32, byteWidth uint64) (SliceSource, error) {
	strides := tightStrides(xyzct, byteWidth)
	want := strides[section.Dims-1] * uint64(xyzct[section.Dims-1])
	if uint64(len(data)) != want {
		return nil, fmt.Errorf("%w: source is %d bytes, array needs %d", errs.ErrDestSizeMismatch, len(data), want)
	}
	return &contiguousSource{data: data, strides: strides, byteWidth: byteWidth}, nil
}

func (s *contiguousSource) ReadBlock(origin, extent [section.Dims]uint32, dst []byte) error {
	dstStrides := tightStrides(extent, s.byteWidth)
	var zero [section.Dims]uint32
	copyBox(dst, dstStrides, zero, s.data, s.strides, origin, extent, s.byteWidth)
	return nil
}

// planeSource adapts one buffer per index along axis 2 (z) into a
// SliceSource, for write_slices. Each plane buffer holds the full x, y, c,
// t extent for its single z index, in the same axis-0-fastest order as a
// contiguous array whose z extent is 1.
type planeSource struct {
	planes       [][]byte
	planeStrides [section.Dims]uint64
	byteWidth    uint64
}

// NewPlaneSource wraps one pointer per z-plane. len(planes) must equal
// xyzct[2], and each plane must hold exactly xyzct[0]*xyzct[1]*xyzct[3]*
// xyzct[4] elements.
func NewPlaneSource(planes [][]byte, xyzct [section.Dims]uint32, byteWidth uint64) (SliceSource, error) {
	if uint32(len(planes)) != xyzct[2] {
		return nil, fmt.Errorf("%w: got %d planes, z extent is %d", errs.ErrSliceCountWrong, len(planes), xyzct[2])
	}

	singlePlaneShape := xyzct
	singlePlaneShape[2] = 1
	planeStrides := tightStrides(singlePlaneShape, byteWidth)
	wantPlaneBytes := planeStrides[section.Dims-1] * uint64(singlePlaneShape[section.Dims-1])

	for i, p := range planes {
		if uint64(len(p)) != wantPlaneBytes {
			return nil, fmt.Errorf("%w: plane %d is %d bytes, want %d", errs.ErrDestSizeMismatch, i, len(p), wantPlaneBytes)
		}
	}

	return &planeSource{planes: planes, planeStrides: planeStrides, byteWidth: byteWidth}, nil
}

func (s *planeSource) ReadBlock(origin, extent [section.Dims]uint32, dst []byte) error {
	dstStrides := tightStrides(extent, s.byteWidth)

	planeExtent := extent
	planeExtent[2] = 1
	planeOrigin := origin
	planeOrigin[2] = 0

	for lz := uint32(0); lz < extent[2]; lz++ {
		z := origin[2] + lz
		if int(z) >= len(s.planes) {
			return fmt.Errorf("%w: z index %d out of range", errs.ErrROIOutOfBounds, z)
		}
		dstOrigin := [section.Dims]uint32{0, 0, lz, 0, 0}
		copyBox(dst, dstStrides, dstOrigin, s.planes[z], s.planeStrides, planeOrigin, planeExtent, s.byteWidth)
	}
	return nil
}
