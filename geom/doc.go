/*
Package geom provides the value types for area geometry: rectangles in
millipoints and coordinate transformation matrices (CTMs).

A CTM maps writing-mode relative coordinates of a reference area to
absolute page coordinates. Positions and extents of areas are measured
in millipoints (1/1000 pt), as integers. Transformation matrices use
float64 components, as rotations and scaling may produce fractions.

All types in this package are values without shared state and may be
copied freely.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package geom

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tyse/core/dimen"
)

// tracer traces with key 'areatree.geom'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.geom")
}

// MPT is the number of millipoints per point.
const MPT = 1000

// ToDU converts a length in millipoints to typesetter design units.
// Millipoints are thousandths of a big point (1/72 inch).
func ToDU(mpt int) dimen.DU {
	return dimen.DU(int64(mpt) * int64(dimen.BP) / MPT)
}

// FromDU converts a length in design units to millipoints, rounding to the
// nearest millipoint.
func FromDU(d dimen.DU) int {
	n, q := int64(d)*MPT, int64(dimen.BP)
	if n < 0 {
		return -int((-n + q/2) / q)
	}
	return int((n + q/2) / q)
}
