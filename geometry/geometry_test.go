package geometry

import (
	"testing"

	"github.com/kellerlab/klb/format"
	"github.com/kellerlab/klb/roi"
	"github.com/kellerlab/klb/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHeader(t *testing.T, xyzct, blockSize [section.Dims]uint32, dt format.DataType) *section.Header {
	t.Helper()
	h, err := section.New(xyzct, dt, blockSize, format.CompressionNone, [section.Dims]float32{1, 1, 1, 1, 1}, nil)
	require.NoError(t, err)
	return h
}

func TestCoordsIndexRoundTrip(t *testing.T) {
	h := newTestHeader(t, [section.Dims]uint32{20, 17, 10, 1, 1}, [section.Dims]uint32{8, 4, 2, 1, 1}, format.UInt16)
	g := New(h)

	for k := uint64(0); k < g.TotalBlock; k++ {
		c := g.Coords(k)
		got := g.Index(c)
		assert.Equalf(t, k, got, "Index(Coords(%d)) should round-trip", k)
	}
}

func TestAxis0FastestVarying(t *testing.T) {
	h := newTestHeader(t, [section.Dims]uint32{8, 8, 1, 1, 1}, [section.Dims]uint32{4, 4, 1, 1, 1}, format.UInt8)
	g := New(h)

	c0 := g.Coords(0)
	c1 := g.Coords(1)
	assert.Equal(t, uint32(0), c0[0])
	assert.Equal(t, uint32(1), c1[0], "block index 1 should advance axis 0 first")
}

func TestBorderBlockClipping(t *testing.T) {
	h := newTestHeader(t, [section.Dims]uint32{20, 17, 10, 1, 1}, [section.Dims]uint32{8, 4, 2, 1, 1}, format.UInt16)
	g := New(h)

	// Last block along axis 0 (coords {2, *, *, 0, 0}) should be clipped:
	// nb[0] = ceil(20/8) = 3, last block covers [16,20) -> extent 4.
	lastAxis0 := g.Coords(g.Index([section.Dims]uint32{2, 0, 0, 0, 0}))
	extent := g.Extent(lastAxis0)
	assert.Equal(t, uint32(4), extent[0])

	interior := g.Coords(g.Index([section.Dims]uint32{0, 0, 0, 0, 0}))
	interiorExtent := g.Extent(interior)
	assert.Equal(t, uint32(8), interiorExtent[0])
}

func TestOriginExtentAndRawBytes(t *testing.T) {
	h := newTestHeader(t, [section.Dims]uint32{4, 4, 4, 1, 1}, [section.Dims]uint32{4, 4, 4, 1, 1}, format.Float32)
	g := New(h)

	origin, extent := g.OriginExtent(0)
	assert.Equal(t, [section.Dims]uint32{0, 0, 0, 0, 0}, origin)
	assert.Equal(t, [section.Dims]uint32{4, 4, 4, 1, 1}, extent)

	assert.Equal(t, uint64(4*4*4*4), g.RawBlockBytes(0))
	assert.Equal(t, g.RawBlockBytes(0), g.MaxRawBlockBytes())
}

func TestIntersectsAndBox(t *testing.T) {
	h := newTestHeader(t, [section.Dims]uint32{20, 17, 10, 1, 1}, [section.Dims]uint32{8, 4, 2, 1, 1}, format.UInt16)
	g := New(h)

	full := roi.Full(h.XYZCT)
	for k := uint64(0); k < g.TotalBlock; k++ {
		assert.True(t, g.Intersects(k, full), "every block should intersect the full-image ROI")
	}

	plane := roi.Plane(h.XYZCT, 2, 5)
	found := false
	for k := uint64(0); k < g.TotalBlock; k++ {
		if g.Intersects(k, plane) {
			found = true
			_, _, _, _, ok := g.Box(k, plane)
			assert.True(t, ok)
		}
	}
	assert.True(t, found, "at least one block should intersect the z=5 plane")
}

func TestStridesFastestAxisIsByteWidth(t *testing.T) {
	h := newTestHeader(t, [section.Dims]uint32{4, 4, 4, 1, 1}, [section.Dims]uint32{4, 4, 4, 1, 1}, format.Float64)
	g := New(h)
	assert.Equal(t, uint64(8), g.Strides[0])
	assert.Equal(t, uint64(8*4), g.Strides[1])
	assert.Equal(t, uint64(8*4*4), g.Strides[2])
}
