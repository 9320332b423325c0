// Package errs collects the sentinel errors this module returns, plus the
// mapping from an error to the small set of integer status codes that are
// part of the external ABI.
package errs

import "errors"

// Malformed input.
var (
	ErrUnknownDataType = errors.New("klb: unknown data type")
	ErrUnknownCompressionType = errors.New("klb: unknown compression type")
	ErrZeroExtent = errors.New("klb: array extent is zero on some axis")
	ErrBlockSizeTooLarge = errors.New("klb: block size exceeds array extent on some axis")
	ErrBlockSizeInvalid = errors.New("klb: block size must be at least 1 on every axis")
	ErrNonMonotonicOffsets = errors.New("klb: block offsets are not monotonically non-decreasing")
	ErrTruncatedFile = errors.New("klb: file is too short for the declared block offset index")
	ErrInvalidHeaderSize = errors.New("klb: header fixed portion has the wrong size")
	ErrZeroBlocks = errors.New("klb: array partitions into zero blocks")
	ErrUnknownHeaderVersion = errors.New("klb: header version is neither current nor the one version before it")
)

// I/O failure.
var (
	ErrOpenInputFailed = errors.New("klb: failed to open input file")
	ErrOpenOutputFailed = errors.New("klb: failed to open output file")
	ErrShortRead = errors.New("klb: short read from file")
	ErrShortWrite = errors.New("klb: short write to file")
)

// Codec failure.
var ErrCodecFailed = errors.New("klb: block codec operation failed")

// Resource / caller-input errors.
var (
	ErrMetadataTooLarge = errors.New("klb: metadata exceeds the fixed 256-byte field")
	ErrROIOutOfBounds = errors.New("klb: region of interest falls outside the array")
	ErrROIInvalid = errors.New("klb: region of interest bounds are inverted or malformed")
	ErrDestSizeMismatch = errors.New("klb: destination buffer size does not match the requested region")
	ErrSliceCountWrong = errors.New("klb: number of slice pointers does not match the z extent")
)

// Status codes. These are part of the external ABI and must
// never be renumbered.
const (
	StatusOK = 0
	StatusCodecError = 2
	StatusInputOpenFailed = 3
	StatusMalformedInput = 4
	StatusOutputOpenFailed = 5
	StatusResourceError = 6
)

// Status maps an error returned by this module to its external status code.
// A nil error maps to StatusOK. Unrecognized errors map to
// StatusMalformedInput, the most conservative non-zero code, rather than
// panicking or fabricating a new one.
func Status(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrCodecFailed):
		return StatusCodecError
	case errors.Is(err, ErrOpenInputFailed):
		return StatusInputOpenFailed
	case errors.Is(err, ErrOpenOutputFailed):
		return StatusOutputOpenFailed
	case errors.Is(err, ErrMetadataTooLarge),
		errors.Is(err, ErrROIOutOfBounds),
		errors.Is(err, ErrROIInvalid),
		errors.Is(err, ErrDestSizeMismatch),
		errors.Is(err, ErrSliceCountWrong):
		return StatusResourceError
	case errors.Is(err, ErrUnknownDataType),
		errors.Is(err, ErrUnknownCompressionType),
		errors.Is(err, ErrZeroExtent),
		errors.Is(err, ErrBlockSizeTooLarge),
		errors.Is(err, ErrBlockSizeInvalid),
		errors.Is(err, ErrNonMonotonicOffsets),
		errors.Is(err, ErrTruncatedFile),
		errors.Is(err, ErrInvalidHeaderSize),
		errors.Is(err, ErrZeroBlocks),
		errors.Is(err, ErrUnknownHeaderVersion),
		errors.Is(err, ErrShortRead),
		errors.Is(err, ErrShortWrite):
		return StatusMalformedInput
	default:
		return StatusMalformedInput
	}
}
