package trigo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/trigo"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

func TestAngleOfVersor(t *testing.T) {
	for _, theta := range []float64{0, 0.5, math.Pi / 2, 3, -3, -math.Pi / 2} {
		assert.InDelta(t, theta, trigo.AngleOfVersor(vector.MakeVersor2(theta)), 1e-12)
	}
}

func TestVersorGradientIsOrthogonal(t *testing.T) {
	for _, theta := range []float64{0, 1, 2.5, -2} {
		ver := vector.MakeVersor2(theta)
		grad := trigo.VersorGradient(ver)

		assert.InDelta(t, 0.0, ver.Dot(grad), 1e-12)
		assert.InDelta(t, -math.Sin(theta), grad.GetX(), 1e-12)
		assert.InDelta(t, math.Cos(theta), grad.GetY(), 1e-12)
	}
}

func TestProjection(t *testing.T) {
	a := vector.MakeVector2(2, 3)

	proj := trigo.Projection(a, vector.MakeVector2(1, 0))
	assert.True(t, proj.Equals(vector.MakeVector2(2, 0)))

	// null axis yields null projection
	assert.True(t, trigo.Projection(a, vector.MakeNullVector2()).IsNull())
}

func TestRejection(t *testing.T) {
	a := vector.MakeVector2(2, 3)
	b := vector.MakeVector2(1, 0)

	rej := trigo.Rejection(a, b)
	assert.True(t, rej.Equals(vector.MakeVector2(0, 3)))

	// rejection is orthogonal to the axis
	assert.InDelta(t, 0.0, rej.Dot(b), 1e-12)
}

func TestFullCircleAngleToSignedHalfCircleAngle(t *testing.T) {
	cases := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
	}

	for _, c := range cases {
		assert.InDelta(t, c.expected, trigo.FullCircleAngleToSignedHalfCircleAngle(c.in), 1e-12)
	}
}
