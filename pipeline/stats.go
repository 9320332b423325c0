package pipeline

// WriteStats summarizes a completed write: how much the array compressed
// down to, and by how much per block. Supplements the status code alone
// with the compression-ratio diagnostics the original bindings exposed.
type WriteStats struct {
	TotalRawBytes          uint64
	TotalCompressedBytes   uint64
	BlockCompressedLengths []uint64
}

func newWriteStats(numBlocks uint64) *WriteStats {
	return &WriteStats{BlockCompressedLengths: make([]uint64, numBlocks)}
}
