// Package container opens and positions KLB files for the read and write
// pipelines. It owns the parts of the concurrency and resource model that
// are about file handles rather than goroutines: who opens what, with
// which flags, and how a block's byte range is located on disk.
package container

import (
	"fmt"
	"os"

	"github.com/kellerlab/klb/errs"
	"github.com/kellerlab/klb/section"
)

// OpenInput opens path for reading and reports its size, wrapping any
// failure in ErrOpenInputFailed so callers can map it to the input-open
// status code (status 3) without inspecting the underlying os error.
func OpenInput(path string) (f *os.File, size int64, err error) {
	f, err = os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", errs.ErrOpenInputFailed, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("%w: %v", errs.ErrOpenInputFailed, err)
	}
	return f, info.Size(), nil
}

// OpenInputHandles opens path n times, once per decompressor worker
//, so concurrent
// pread-style access never contends on a single *os.File's cursor.
func OpenInputHandles(path string, n int) (files []*os.File, size int64, err error) {
	files = make([]*os.File, 0, n)
	defer func() {
		if err != nil {
			for _, f := range files {
				f.Close()
			}
		}
	}()

	for i := 0; i < n; i++ {
		var fileSize int64
		f, fileSize, openErr := OpenInput(path)
		if openErr != nil {
			return nil, 0, openErr
		}
		size = fileSize
		files = append(files, f)
	}
	return files, size, nil
}

// CloseAll closes every handle in files, returning the first error
// encountered (if any) after attempting to close them all.
func CloseAll(files []*os.File) error {
	var first error
	for _, f := range files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CreateOutput creates (or truncates) path for writing, wrapping any
// failure in ErrOpenOutputFailed (status 5).
func CreateOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrOpenOutputFailed, err)
	}
	return f, nil
}

// WriteHeaderPlaceholder writes h's current bytes (offsets still zeroed) so
// the payload region starts at the right file offset, then returns that
// offset. The write pipeline seeks back and overwrites the offset index
// once every block has completed.
func WriteHeaderPlaceholder(f *os.File, h *section.Header) (payloadStart int64, err error) {
	if _, err := f.Write(h.Bytes()); err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrShortWrite, err)
	}
	return h.Size(), nil
}

// RewriteOffsetIndex seeks to the start of the offset index (immediately
// after the fixed header portion) and overwrites it with h.BlockOffsets'
// final values. This happens exactly once, after every block has been
// written, regardless of which file-open strategy was used to write the
// blocks themselves.
func RewriteOffsetIndex(f *os.File, h *section.Header) error {
	fixedSize := h.Size() - 8*int64(len(h.BlockOffsets))
	if _, err := f.Seek(fixedSize, 0); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrShortWrite, err)
	}
	buf := h.Bytes()
	if _, err := f.Write(buf[fixedSize:]); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrShortWrite, err)
	}
	return nil
}

// ReadFullPayload reads the entire compressed payload region in a single
// syscall: one read instead of Nb small reads, feeding a decompress-then-
// scatter pattern per block.
func ReadFullPayload(f *os.File, h *section.Header) ([]byte, error) {
	buf := make([]byte, h.PayloadSize())
	if _, err := f.ReadAt(buf, h.Size()); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrShortRead, err)
	}
	return buf, nil
}

// ReadBlockAt reads block k's compressed bytes from f into dst, which must
// be exactly h.BlockCompressedSize(k) bytes long.
func ReadBlockAt(f *os.File, h *section.Header, k int, dst []byte) error {
	want := int(h.BlockCompressedSize(k))
	if len(dst) != want {
		return fmt.Errorf("%w: block %d wants %d bytes, got buffer of %d", errs.ErrShortRead, k, want, len(dst))
	}
	if want == 0 {
		return nil
	}
	if _, err := f.ReadAt(dst, h.BlockFileOffset(k)); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrShortRead, err)
	}
	return nil
}

// WriteBlockAt writes block k's compressed bytes to their final file
// position. The write pipeline calls this strictly in ascending block
// order; WriteBlockAt itself is order-agnostic because it
// addresses by absolute offset.
func WriteBlockAt(f *os.File, h *section.Header, k int, data []byte) error {
	if _, err := f.WriteAt(data, h.BlockFileOffset(k)); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrShortWrite, err)
	}
	return nil
}
