package klb

import (
	"path/filepath"
	"testing"

	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFull_RoundTrip(t *testing.T) {
	xyzct := [Dims]uint32{8, 6, 3, 1, 1}
	src := make([]byte, 8*6*3*2) // uint16
	for i := range src {
		src[i] = byte(i * 5)
	}
	path := filepath.Join(t.TempDir(), "out.klb")

	stats, err := Write(src, path, xyzct, UInt16,
		WithCompression(CompressionZlib),
		WithBlockSize([Dims]uint32{4, 3, 2, 1, 1}),
		WithWorkers(2),
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(src)), stats.TotalRawBytes)

	got, err := ReadFull(path, nil)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestReadFull_CallerProvidedDestination(t *testing.T) {
	xyzct := [Dims]uint32{2, 2, 2, 1, 1}
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	path := filepath.Join(t.TempDir(), "out.klb")

	_, err := Write(src, path, xyzct, UInt8, WithCompression(CompressionNone))
	require.NoError(t, err)

	dst := make([]byte, len(src))
	got, err := ReadFull(path, dst)
	require.NoError(t, err)
	assert.Same(t, &dst[0], &got[0])
	assert.Equal(t, src, dst)
}

func TestReadFull_DestSizeMismatch(t *testing.T) {
	xyzct := [Dims]uint32{2, 2, 2, 1, 1}
	src := make([]byte, 8)
	path := filepath.Join(t.TempDir(), "out.klb")
	_, err := Write(src, path, xyzct, UInt8)
	require.NoError(t, err)

	_, err = ReadFull(path, make([]byte, 4))
	assert.ErrorIs(t, err, errs.ErrDestSizeMismatch)
}

func TestReadROI_PlaneHelper(t *testing.T) {
	xyzct := [Dims]uint32{4, 4, 4, 1, 1}
	src := make([]byte, 4*4*4)
	for i := range src {
		src[i] = byte(i)
	}
	path := filepath.Join(t.TempDir(), "out.klb")
	_, err := Write(src, path, xyzct, UInt8, WithCompression(CompressionNone), WithBlockSize([Dims]uint32{2, 2, 2, 1, 1}))
	require.NoError(t, err)

	lb, ub := PlaneROI(xyzct, 2, 1)
	got, err := ReadROI(path, lb, ub, nil)
	require.NoError(t, err)
	assert.Len(t, got, 4*4)

	wantOff := 1 * 16
	assert.Equal(t, src[wantOff:wantOff+16], got)
}

func TestWriteSlices_MatchesWrite(t *testing.T) {
	xyzct := [Dims]uint32{6, 5, 4, 1, 1}
	byteWidth := 2
	src := make([]byte, 6*5*4*byteWidth)
	for i := range src {
		src[i] = byte(i * 11)
	}
	path1 := filepath.Join(t.TempDir(), "a.klb")
	_, err := Write(src, path1, xyzct, UInt16, WithCompression(CompressionBzip2))
	require.NoError(t, err)

	planeBytes := 6 * 5 * byteWidth
	planes := make([][]byte, xyzct[2])
	for z := range planes {
		off := z * planeBytes
		planes[z] = src[off : off+planeBytes]
	}
	path2 := filepath.Join(t.TempDir(), "b.klb")
	_, err = WriteSlices(planes, path2, xyzct, UInt16, WithCompression(CompressionBzip2))
	require.NoError(t, err)

	got1, err := ReadFull(path1, nil)
	require.NoError(t, err)
	got2, err := ReadFull(path2, nil)
	require.NoError(t, err)
	assert.Equal(t, got1, got2)
}

func TestWriteSlices_RejectsNonUnitChannelTime(t *testing.T) {
	xyzct := [Dims]uint32{2, 2, 2, 2, 1}
	_, err := WriteSlices(nil, filepath.Join(t.TempDir(), "x.klb"), xyzct, UInt8)
	assert.ErrorIs(t, err, errs.ErrSliceCountWrong)
}

func TestReadHeader_MetadataAndDefaults(t *testing.T) {
	xyzct := [Dims]uint32{2, 2, 2, 1, 1}
	src := make([]byte, 8)
	path := filepath.Join(t.TempDir(), "out.klb")

	_, err := Write(src, path, xyzct, UInt8, WithMetadata([]byte("hello")))
	require.NoError(t, err)

	header, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", header.MetadataString())
	assert.Equal(t, format.CompressionBzip2, header.CompressionType)
}

func TestWithCompression_RejectsUnknown(t *testing.T) {
	xyzct := [Dims]uint32{1, 1, 1, 1, 1}
	_, err := Write([]byte{1}, filepath.Join(t.TempDir(), "out.klb"), xyzct, UInt8, WithCompression(99))
	assert.ErrorIs(t, err, errs.ErrUnknownCompressionType)
}

func TestStatus_MapsErrorsToExternalCodes(t *testing.T) {
	assert.Equal(t, StatusOK, Status(nil))
	assert.Equal(t, StatusCodecError, Status(errs.ErrCodecFailed))
	assert.Equal(t, StatusInputOpenFailed, Status(errs.ErrOpenInputFailed))
	assert.Equal(t, StatusOutputOpenFailed, Status(errs.ErrOpenOutputFailed))
}

func TestFullROI_MatchesArrayBounds(t *testing.T) {
	xyzct := [Dims]uint32{10, 20, 1, 1, 1}
	lb, ub := FullROI(xyzct)
	assert.Equal(t, [Dims]uint32{0, 0, 0, 0, 0}, lb)
	assert.Equal(t, [Dims]uint32{9, 19, 0, 0, 0}, ub)
}
