// Package format defines the wire-level enumerations shared by every other
// package in this module: the element type of a stored array and the
// compression algorithm applied to its blocks. Both are single bytes on
// disk; keeping them in their own leaf package lets section, compress, and
// pipeline depend on the enumeration without depending on each other.
package format

// DataType identifies the scalar element type of a stored array.
//
// The wire codes are part of the on-disk contract and must never be
// renumbered; new element types, if ever needed, are appended after
// code 9.
type DataType uint8

const (
	UInt8 DataType = 0
	UInt16 DataType = 1
	UInt32 DataType = 2
	UInt64 DataType = 3
	Int8 DataType = 4
	Int16 DataType = 5
	Int32 DataType = 6
	Int64 DataType = 7
	Float32 DataType = 8
	Float64 DataType = 9
)

// ByteWidth returns the size in bytes of a single element of this type, or
// 0 if the type code is not recognized.
func (d DataType) ByteWidth() int {
	switch d {
	case UInt8, Int8:
		return 1
	case UInt16, Int16:
		return 2
	case UInt32, Int32, Float32:
		return 4
	case UInt64, Int64, Float64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether d is one of the ten recognized element types.
func (d DataType) Valid() bool {
	return d.ByteWidth() != 0
}

func (d DataType) String() string {
	switch d {
	case UInt8:
		return "uint8"
	case UInt16:
		return "uint16"
	case UInt32:
		return "uint32"
	case UInt64:
		return "uint64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// CompressionType identifies the per-block compression algorithm.
//
// The format is designed to be extended by appending new wire codes after
// Zlib; existing codes must never be renumbered or reused for a different
// algorithm.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionBzip2 CompressionType = 1
	CompressionZlib CompressionType = 2
)

// Valid reports whether c is one of the three compression codes this
// implementation dispatches on by default.
func (c CompressionType) Valid() bool {
	switch c {
	case CompressionNone, CompressionBzip2, CompressionZlib:
		return true
	default:
		return false
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionBzip2:
		return "bzip2"
	case CompressionZlib:
		return "zlib"
	default:
		return "unknown"
	}
}
