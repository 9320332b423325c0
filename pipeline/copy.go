// Package pipeline implements the concurrent write and read paths: a pool
// of compressor/decompressor workers feeding (or draining) per-worker
// bounded queues, joined by a single goroutine that owns file ordering.
package pipeline

import "github.com/kellerlab/klb/section"

// tightStrides returns the byte strides of a buffer tightly packed to hold
// exactly extent elements per axis, axis 0 fastest-varying — the layout of
// a single block's raw scratch buffer or a ROI-shaped destination buffer.
func tightStrides(extent [section.Dims]uint32, byteWidth uint64) [section.Dims]uint64 {
	var s [section.Dims]uint64
	s[0] = byteWidth
	for i := 1; i < section.Dims; i++ {
		s[i] = s[i-1] * uint64(extent[i-1])
	}
	return s
}

// rowFunc receives the coordinate, relative to the box passed to
// forEachRow, of one contiguous run of elements along axis 0.
type rowFunc func(coord [section.Dims]uint32)

// forEachRow walks every row inside a box of the given extent, fastest axis
// (0) innermost, invoking fn once per row with that row's starting
// coordinate within the box (axis 0 always 0, since a whole row is handled
// per call).
func forEachRow(extent [section.Dims]uint32, fn rowFunc) {
	var coord [section.Dims]uint32
	var rec func(axis int)
	rec = func(axis int) {
		if axis == 0 {
			fn(coord)
			return
		}
		for i := uint32(0); i < extent[axis]; i++ {
			coord[axis] = i
			rec(axis - 1)
		}
	}
	rec(section.Dims - 1)
}

// copyBox copies a box of the given extent from src to dst. dstOrigin and
// srcOrigin locate the box's corner in each buffer's own coordinate space;
// dstStrides/srcStrides are each buffer's own byte strides. Both buffers
// must already be sized to hold their respective box.
func copyBox(dst []byte, dstStrides [section.Dims]uint64, dstOrigin [section.Dims]uint32, src []byte, srcStrides [section.Dims]uint64, srcOrigin [section.Dims]uint32, extent [section.Dims]uint32, byteWidth uint64) {
	rowBytes := uint64(extent[0]) * byteWidth
	forEachRow(extent, func(c [section.Dims]uint32) {
		var dstOff, srcOff uint64
		for i := 1; i < section.Dims; i++ {
			dstOff += uint64(dstOrigin[i]+c[i]) * dstStrides[i]
			srcOff += uint64(srcOrigin[i]+c[i]) * srcStrides[i]
		}
		dstOff += uint64(dstOrigin[0]) * dstStrides[0]
		srcOff += uint64(srcOrigin[0]) * srcStrides[0]
		copy(dst[dstOff:dstOff+rowBytes], src[srcOff:srcOff+rowBytes])
	})
}
