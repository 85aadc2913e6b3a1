package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMahalanobisZeroAtMean(t *testing.T) {
	mean := []Params{NewParams(2, 2), NewParams(2, 2), NewParams(2, 2)}
	variance := []Params{NewParams(1, 1), NewParams(1, 1), NewParams(1, 1)}
	cov := []float64{0, 0, 0}
	params := []Params{NewParams(2, 2), NewParams(2, 2), NewParams(2, 2)}

	d, err := MahalanobisDistance(mean, variance, cov, params, Both)
	require.NoError(t, err)
	require.InDelta(t, 0.0, d, 1e-9)
}

func TestMahalanobisNonZeroWhenOffMean(t *testing.T) {
	mean := []Params{NewParams(2, 2), NewParams(2, 2)}
	variance := []Params{NewParams(1, 1), NewParams(1, 1)}
	cov := []float64{0, 0}
	params := []Params{NewParams(10, 10), NewParams(10, 10)}

	d, err := MahalanobisDistance(mean, variance, cov, params, Both)
	require.NoError(t, err)
	require.Greater(t, d, 0.0)
}

func TestMahalanobisShapeOnlyMode(t *testing.T) {
	mean := []Params{NewParams(2, 2), NewParams(2, 2)}
	variance := []Params{NewParams(1, 1), NewParams(1, 1)}
	params := []Params{NewParams(5, 2), NewParams(5, 2)}

	d, err := MahalanobisDistance(mean, variance, nil, params, ShapeOnly)
	require.NoError(t, err)
	require.Greater(t, d, 0.0)
}

func TestMahalanobisTooFewValidAggregations(t *testing.T) {
	mean := []Params{NewParams(2, 2), NewParams(2, 2)}
	variance := []Params{NewParams(1, 1), NewParams(1, 1)}
	params := []Params{NewParams(5, 2), Invalid}

	_, err := MahalanobisDistance(mean, variance, nil, params, ShapeOnly)
	require.ErrorIs(t, err, ErrTooFewValidAggregations)
}

func TestMahalanobisDegenerateShapeVariance(t *testing.T) {
	mean := []Params{NewParams(2, 2), NewParams(2, 2)}
	variance := []Params{NewParams(0, 1), NewParams(0, 1)}
	params := []Params{NewParams(5, 2), NewParams(5, 2)}

	_, err := MahalanobisDistance(mean, variance, nil, params, ShapeOnly)
	require.ErrorIs(t, err, ErrDegenerateReference)
}

func TestMahalanobisSingularCovariance(t *testing.T) {
	mean := []Params{NewParams(2, 2), NewParams(2, 2)}
	variance := []Params{NewParams(1, 4), NewParams(1, 4)}
	cov := []float64{2, 2}
	params := []Params{NewParams(5, 2), NewParams(5, 2)}

	_, err := MahalanobisDistance(mean, variance, cov, params, Both)
	require.ErrorIs(t, err, ErrDegenerateReference)
}

func TestMahalanobisUsesOnlyValidPrefix(t *testing.T) {
	mean := []Params{NewParams(2, 2), NewParams(2, 2), NewParams(2, 2)}
	variance := []Params{NewParams(1, 1), NewParams(1, 1), NewParams(1, 1)}
	params := []Params{NewParams(2, 2), NewParams(2, 2), Invalid}

	d, err := MahalanobisDistance(mean, variance, []float64{0, 0, 0}, params, Both)
	require.NoError(t, err)
	require.InDelta(t, 0.0, d, 1e-9)
}
