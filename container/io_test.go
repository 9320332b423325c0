package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/format"
	"github.com/kellerlab/klb/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHeader(t *testing.T) *section.Header {
	t.Helper()
	xyzct := [section.Dims]uint32{4, 4, 4, 1, 1}
	bs := [section.Dims]uint32{2, 2, 2, 1, 1}
	h, err := section.New(xyzct, format.UInt8, bs, format.CompressionNone, [section.Dims]float32{1, 1, 1, 1, 1}, nil)
	require.NoError(t, err)
	return h
}

func TestOpenInput_MissingFile(t *testing.T) {
	_, _, err := OpenInput(filepath.Join(t.TempDir(), "does-not-exist.klb"))
	assert.ErrorIs(t, err, errs.ErrOpenInputFailed)
}

func TestCreateOutput_BadDirectory(t *testing.T) {
	_, err := CreateOutput(filepath.Join(t.TempDir(), "nope", "out.klb"))
	assert.ErrorIs(t, err, errs.ErrOpenOutputFailed)
}

func TestWriteHeaderThenRewriteOffsetIndex(t *testing.T) {
	h := newTestHeader(t)
	path := filepath.Join(t.TempDir(), "out.klb")

	f, err := CreateOutput(path)
	require.NoError(t, err)
	defer f.Close()

	payloadStart, err := WriteHeaderPlaceholder(f, h)
	require.NoError(t, err)
	assert.Equal(t, h.Size(), payloadStart)

	data := make([]byte, 8) // one block of 2*2*2*1 bytes, uncompressed
	for k := range h.BlockOffsets {
		require.NoError(t, WriteBlockAt(f, h, k, data))
		var prev uint64
		if k > 0 {
			prev = h.BlockOffsets[k-1]
		}
		h.BlockOffsets[k] = prev + uint64(len(data))
	}

	require.NoError(t, RewriteOffsetIndex(f, h))

	require.NoError(t, f.Close())
	roundTripped, size, err := OpenInput(path)
	require.NoError(t, err)
	defer roundTripped.Close()

	parsed, err := section.Parse(roundTripped, size)
	require.NoError(t, err)
	assert.Equal(t, h.BlockOffsets, parsed.BlockOffsets)
}

func TestReadWriteBlockAt_RoundTrip(t *testing.T) {
	h := newTestHeader(t)
	h.BlockOffsets[0] = 5
	for k := 1; k < len(h.BlockOffsets); k++ {
		h.BlockOffsets[k] = h.BlockOffsets[k-1] + 5
	}

	path := filepath.Join(t.TempDir(), "blocks.klb")
	f, err := CreateOutput(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Truncate(h.Size()+int64(h.PayloadSize())))

	payload := []byte{1, 2, 3, 4, 5}
	require.NoError(t, WriteBlockAt(f, h, 0, payload))

	dst := make([]byte, 5)
	require.NoError(t, ReadBlockAt(f, h, 0, dst))
	assert.Equal(t, payload, dst)
}

func TestReadBlockAt_RejectsWrongBufferSize(t *testing.T) {
	h := newTestHeader(t)
	h.BlockOffsets[0] = 5

	f, err := os.CreateTemp(t.TempDir(), "blocks")
	require.NoError(t, err)
	defer f.Close()

	err = ReadBlockAt(f, h, 0, make([]byte, 4))
	assert.ErrorIs(t, err, errs.ErrShortRead)
}

func TestOpenInputHandles_OnePerWorker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.klb")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	files, size, err := OpenInputHandles(path, 3)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.Equal(t, int64(5), size)
	require.NoError(t, CloseAll(files))
}
