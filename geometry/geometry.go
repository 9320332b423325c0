// Package geometry implements the mapping between a linear block index, its
// coordinates in the block grid, and its pixel-space origin and extent
// inside the array — including border-block clipping, caller-array
// strides, and the block/ROI intersection arithmetic the read pipeline
// uses to decide which blocks to decode and where their contents land.
package geometry

import (
	"github.com/kellerlab/klb/roi"
	"github.com/kellerlab/klb/section"
)

// BlockGeometry precomputes the block counts, strides and byte width
// derivable from a header's shape so that per-block bookkeeping during
// read/write is pure arithmetic on these values; Coords still divides by
// the per-axis block counts on every call.
type BlockGeometry struct {
	XYZCT      [section.Dims]uint32
	BlockSize  [section.Dims]uint32
	NumBlocks  [section.Dims]uint32 // nb[i]
	Strides    [section.Dims]uint64 // byte strides in the caller's array
	ByteWidth  uint64
	TotalBlock uint64 // Nb
}

// New derives a BlockGeometry from a header's shape fields.
func New(h *section.Header) BlockGeometry {
	g := BlockGeometry{
		XYZCT:     h.XYZCT,
		BlockSize: h.BlockSize,
		ByteWidth: uint64(h.DataType.ByteWidth()),
	}
	g.NumBlocks = h.NumBlocksPerAxis()
	g.TotalBlock = h.TotalBlocks()

	g.Strides[0] = g.ByteWidth
	for i := 1; i < section.Dims; i++ {
		g.Strides[i] = g.Strides[i-1] * uint64(g.XYZCT[i-1])
	}
	return g
}

// Coords converts a linear block index k into its coordinates in the block
// grid. Axis 0 is fastest-varying.
func (g BlockGeometry) Coords(k uint64) [section.Dims]uint32 {
	var c [section.Dims]uint32
	for i := 0; i < section.Dims; i++ {
		n := uint64(g.NumBlocks[i])
		c[i] = uint32(k % n)
		k /= n
	}
	return c
}

// Index converts block-grid coordinates back into a linear block index, the
// inverse of Coords.
func (g BlockGeometry) Index(c [section.Dims]uint32) uint64 {
	var k uint64
	mult := uint64(1)
	for i := 0; i < section.Dims; i++ {
		k += uint64(c[i]) * mult
		mult *= uint64(g.NumBlocks[i])
	}
	return k
}

// Origin returns the pixel-space origin of block coordinates c:
// origin[i] = c[i] * block_size[i].
func (g BlockGeometry) Origin(c [section.Dims]uint32) [section.Dims]uint32 {
	var o [section.Dims]uint32
	for i := 0; i < section.Dims; i++ {
		o[i] = c[i] * g.BlockSize[i]
	}
	return o
}

// Extent returns the effective extent of the block at coordinates c: the
// full BlockSize on interior axes, clipped to what remains of XYZCT on a
// border axis.
func (g BlockGeometry) Extent(c [section.Dims]uint32) [section.Dims]uint32 {
	var e [section.Dims]uint32
	o := g.Origin(c)
	for i := 0; i < section.Dims; i++ {
		remaining := g.XYZCT[i] - o[i]
		if g.BlockSize[i] < remaining {
			e[i] = g.BlockSize[i]
		} else {
			e[i] = remaining
		}
	}
	return e
}

// OriginExtent is a convenience that returns both Origin(c) and Extent(c)
// for block index k in one call, the shape most callers actually want.
func (g BlockGeometry) OriginExtent(k uint64) (origin, extent [section.Dims]uint32) {
	c := g.Coords(k)
	return g.Origin(c), g.Extent(c)
}

// RawBlockBytes returns the number of raw (uncompressed) bytes in block k,
// i.e. the product of its effective extent times the element byte width.
func (g BlockGeometry) RawBlockBytes(k uint64) uint64 {
	_, extent := g.OriginExtent(k)
	n := g.ByteWidth
	for i := 0; i < section.Dims; i++ {
		n *= uint64(extent[i])
	}
	return n
}

// MaxRawBlockBytes returns the raw byte size of the largest possible block
// (i.e. an interior, unclipped block), used to size worker scratch buffers
// once for the whole pipeline.
func (g BlockGeometry) MaxRawBlockBytes() uint64 {
	n := g.ByteWidth
	for i := 0; i < section.Dims; i++ {
		n *= uint64(g.BlockSize[i])
	}
	return n
}

// Intersects reports whether block k overlaps r.
func (g BlockGeometry) Intersects(k uint64, r roi.ROI) bool {
	origin, extent := g.OriginExtent(k)
	return r.Intersects(origin, extent)
}

// Box intersects block k with r. See roi.ROI.Box for the meaning of the
// returned corners.
func (g BlockGeometry) Box(k uint64, r roi.ROI) (localLb, localUb, destLb, destUb [section.Dims]uint32, ok bool) {
	origin, extent := g.OriginExtent(k)
	return r.Box(origin, extent)
}

// BlockROI returns the ROI exactly covering block k's pixel-space footprint,
// border-clipped like any other block. It is a natural companion of
// OriginExtent for callers that want block k's
// footprint expressed as a roi.ROI rather than an origin/extent pair; it
// lives here rather than in package roi because roi cannot import section
// or geometry without a cycle.
func (g BlockGeometry) BlockROI(k uint64) roi.ROI {
	origin, extent := g.OriginExtent(k)
	var r roi.ROI
	for i := 0; i < section.Dims; i++ {
		r.Lb[i] = origin[i]
		r.Ub[i] = origin[i] + extent[i] - 1
	}
	return r
}
