package vector_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

func TestAddSub(t *testing.T) {
	a := vector.MakeVector2(1, 2)
	b := vector.MakeVector2(3, -1)

	assert.True(t, a.Add(b).Equals(vector.MakeVector2(4, 1)))
	assert.True(t, a.Sub(b).Equals(vector.MakeVector2(-2, 3)))

	// value semantics; a untouched
	assert.True(t, a.Equals(vector.MakeVector2(1, 2)))
}

func TestMag(t *testing.T) {
	assert.InDelta(t, 5.0, vector.MakeVector2(3, 4).Mag(), 1e-12)
	assert.InDelta(t, 25.0, vector.MakeVector2(3, 4).MagSq(), 1e-12)
	assert.Equal(t, 0.0, vector.MakeNullVector2().Mag())
}

func TestVersor(t *testing.T) {
	v := vector.MakeVersor2(math.Pi / 2)

	assert.InDelta(t, 0.0, v.GetX(), 1e-12)
	assert.InDelta(t, 1.0, v.GetY(), 1e-12)
	assert.InDelta(t, 1.0, v.Mag(), 1e-12)
}

func TestAngle(t *testing.T) {
	cases := []struct {
		v        vector.Vector2
		expected float64
	}{
		{vector.MakeVector2(1, 0), 0},
		{vector.MakeVector2(0, 1), math.Pi / 2},
		{vector.MakeVector2(-1, 0), math.Pi},
		{vector.MakeVector2(0, -1), -math.Pi / 2},
		{vector.MakeNullVector2(), 0},
	}

	for _, c := range cases {
		assert.InDelta(t, c.expected, c.v.Angle(), 1e-12)
	}
}

func TestDotCross(t *testing.T) {
	a := vector.MakeVector2(1, 2)
	b := vector.MakeVector2(3, 4)

	assert.InDelta(t, 11.0, a.Dot(b), 1e-12)
	assert.InDelta(t, -2.0, a.Cross(b), 1e-12)
}

func TestOrthogonal(t *testing.T) {
	a := vector.MakeVector2(1, 0)

	assert.True(t, a.OrthogonalCounterClockwise().Equals(vector.MakeVector2(0, 1)))
	assert.True(t, a.OrthogonalClockwise().Equals(vector.MakeVector2(0, -1)))
	assert.InDelta(t, 0.0, a.Dot(a.OrthogonalCounterClockwise()), 1e-12)
}

func TestNormalize(t *testing.T) {
	assert.InDelta(t, 1.0, vector.MakeVector2(3, 4).Normalize().Mag(), 1e-12)
	assert.True(t, vector.MakeNullVector2().Normalize().IsNull())
}

func TestJSONRoundTrip(t *testing.T) {
	a := vector.MakeVector2(1.5, -2.25)

	data, err := json.Marshal(a)
	assert.NoError(t, err)
	assert.Equal(t, "[1.5000,-2.2500]", string(data))

	var b vector.Vector2
	assert.NoError(t, json.Unmarshal(data, &b))
	assert.True(t, a.Equals(b))
}
