package stats

import (
	"errors"
	"math"
)

// Parameter selects which component(s) of the Gamma parameter vector a
// Mahalanobis distance is computed over (§4.7's "shape, scale, or both"
// scoring mode), matching original_source's GammaParameters::type enum.
type Parameter int

const (
	ShapeOnly Parameter = iota
	ScaleOnly
	Both
)

// ErrTooFewValidAggregations is returned when fewer than two of the
// per-aggregation estimates are valid Gamma parameters — original_source
// treats this as fatal input-quality failure (it calls exit(1)); here the
// Engine decides how to handle the error instead of the library aborting
// the process.
var ErrTooFewValidAggregations = errors.New("stats: fewer than two valid aggregation levels")

// ErrDegenerateReference is returned when a per-aggregation reference
// statistic can't support a distance computation: zero variance with a
// non-zero numerator in shape-only/scale-only mode, or a singular (zero
// determinant) 2x2 covariance matrix in Both mode. §7 kind 2
// (input-data-insufficient): the caller aborts the run rather than
// silently producing +Inf/NaN.
var ErrDegenerateReference = errors.New("stats: degenerate reference statistic (zero variance or singular covariance)")

// MahalanobisDistance computes the average per-aggregation Mahalanobis
// distance of parameters from referenceMean, using referenceVariance (and
// referenceCovariance when which is Both) as the per-aggregation
// covariance, then returns its square root.
//
// Only a contiguous prefix of aggregation levels where every one of
// parameters[i] is valid is used (mirroring the original's "first i where
// parameters[i] is invalid" truncation) — at least two are required.
func MahalanobisDistance(
	referenceMean, referenceVariance []Params,
	referenceCovariance []float64,
	parameters []Params,
	which Parameter,
) (float64, error) {
	size := len(parameters)
	i := 0
	for i < size && parameters[i].IsValid() {
		i++
	}
	size = i
	if size < 2 {
		return 0, ErrTooFewValidAggregations
	}

	var sum float64
	for i := 0; i < size; i++ {
		var dist float64
		switch which {
		case ShapeOnly:
			diff := parameters[i].shape - referenceMean[i].shape
			dist = diff * diff
			if dist > 0 {
				if referenceVariance[i].shape == 0 {
					return 0, ErrDegenerateReference
				}
				dist /= referenceVariance[i].shape
			}
		case ScaleOnly:
			diff := parameters[i].scale - referenceMean[i].scale
			dist = diff * diff
			if dist > 0 {
				if referenceVariance[i].scale == 0 {
					return 0, ErrDegenerateReference
				}
				dist /= referenceVariance[i].scale
			}
		default:
			c00 := referenceVariance[i].shape
			c01 := referenceCovariance[i]
			c10 := referenceCovariance[i]
			c11 := referenceVariance[i].scale
			det := c00*c11 - c01*c10
			if det == 0 {
				return 0, ErrDegenerateReference
			}
			aux := c00
			inv00, inv01 := c11/det, -c01/det
			inv10, inv11 := -c10/det, aux/det

			diffShape := parameters[i].shape - referenceMean[i].shape
			diffScale := parameters[i].scale - referenceMean[i].scale
			dist = (diffShape*inv00+diffScale*inv10)*diffShape +
				(diffShape*inv01+diffScale*inv11)*diffScale
		}
		sum += dist
	}
	sum /= float64(size)
	return math.Sqrt(sum), nil
}
