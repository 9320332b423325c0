// Package compress provides the uniform codec facade each block goes
// through on its way to and from disk.
//
// # Overview
//
// Every block is compressed independently, so the facade operates on
// whole buffers rather than streams: Compress writes a raw block's
// compressed bytes into a caller-supplied buffer and returns their length,
// Decompress fills a caller-supplied buffer whose length is the known raw
// length and returns only an error. The dispatch
// is a tagged enumeration over format.CompressionType — adding a codec
// means adding an enum case, a dispatch arm, and a new wire code; existing
// wire codes must never change meaning.
//
// # Supported codecs
//
// - None (format.CompressionNone): passthrough, for data that is already
// compressed or for correctness testing without codec overhead.
// - BZIP2 (format.CompressionBzip2): github.com/dsnet/compress/bzip2,
// tuned per block via the blockSize100k parameter, bzip2's block-size
// knob.
// - ZLIB (format.CompressionZlib): github.com/klauspost/compress/zlib, a
// drop-in, faster replacement for the standard library package of the
// same name.
package compress
