// Package roi implements the region-of-interest arithmetic used by the read
// pipeline to decide which blocks intersect a requested sub-region and
// where, inside the destination buffer, each block's contribution lands.
package roi

import "github.com/kellerlab/klb/errs"

// Dims is the number of axes every KLB array carries, conventionally
// (x, y, z, channel, time).
const Dims = 5

// ROI is an inclusive axis-aligned box in element coordinates: every axis
// satisfies Lb[i] <= Ub[i].
type ROI struct {
	Lb [Dims]uint32
	Ub [Dims]uint32
}

// Full returns the ROI spanning the entire array described by xyzct.
func Full(xyzct [Dims]uint32) ROI {
	var r ROI
	for i := 0; i < Dims; i++ {
		r.Lb[i] = 0
		r.Ub[i] = xyzct[i] - 1
	}
	return r
}

// Plane returns the ROI selecting a single index along axis, spanning the
// full extent of every other axis. It is the building block for "read one
// z-slice" or "read one timepoint" style requests.
func Plane(xyzct [Dims]uint32, axis int, index uint32) ROI {
	r := Full(xyzct)
	r.Lb[axis] = index
	r.Ub[axis] = index
	return r
}

// Validate checks that r is well-formed and fits inside xyzct.
func (r ROI) Validate(xyzct [Dims]uint32) error {
	for i := 0; i < Dims; i++ {
		if r.Lb[i] > r.Ub[i] {
			return errs.ErrROIInvalid
		}
		if r.Ub[i] >= xyzct[i] {
			return errs.ErrROIOutOfBounds
		}
	}
	return nil
}

// Extent returns Ub[i]-Lb[i]+1 for every axis, i.e. the element count of
// the ROI along that axis.
func (r ROI) Extent() [Dims]uint32 {
	var e [Dims]uint32
	for i := 0; i < Dims; i++ {
		e[i] = r.Ub[i] - r.Lb[i] + 1
	}
	return e
}

// NumElements returns the total element count enclosed by the ROI.
func (r ROI) NumElements() uint64 {
	n := uint64(1)
	e := r.Extent()
	for i := 0; i < Dims; i++ {
		n *= uint64(e[i])
	}
	return n
}

// Equal reports whether r and o cover exactly the same box.
func (r ROI) Equal(o ROI) bool {
	return r.Lb == o.Lb && r.Ub == o.Ub
}

// IsFull reports whether r spans the entire array described by xyzct.
func (r ROI) IsFull(xyzct [Dims]uint32) bool {
	return r.Equal(Full(xyzct))
}

// Intersects reports whether r overlaps the axis-aligned box defined by the
// given origin (inclusive) and extent, i.e. whether a block occupying that
// box is relevant to this ROI.
func (r ROI) Intersects(origin [Dims]uint32, extent [Dims]uint32) bool {
	for i := 0; i < Dims; i++ {
		if origin[i] > r.Ub[i] {
			return false
		}
		if origin[i]+extent[i]-1 < r.Lb[i] {
			return false
		}
	}
	return true
}

// Box intersects r with the axis-aligned box defined by origin/extent and
// returns the overlap expressed two ways:
//   - local: inclusive lower/upper corners in block-local coordinates
//   - dest: the same corners translated into the ROI's own coordinate space
//     (i.e. where they land in a destination buffer shaped like the ROI)
//
// ok is false if the box and the ROI are disjoint.
func (r ROI) Box(origin [Dims]uint32, extent [Dims]uint32) (localLb, localUb, destLb, destUb [Dims]uint32, ok bool) {
	if !r.Intersects(origin, extent) {
		return localLb, localUb, destLb, destUb, false
	}
	for i := 0; i < Dims; i++ {
		lo := uint32(0)
		if r.Lb[i] > origin[i] {
			lo = r.Lb[i] - origin[i]
		}
		hi := extent[i] - 1
		if origin[i]+hi > r.Ub[i] {
			hi = r.Ub[i] - origin[i]
		}
		localLb[i] = lo
		localUb[i] = hi
		destLb[i] = origin[i] + lo - r.Lb[i]
		destUb[i] = origin[i] + hi - r.Lb[i]
	}
	return localLb, localUb, destLb, destUb, true
}
