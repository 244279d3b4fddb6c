package trigo

import (
	"math"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

// AngleOfVersor is the inverse of vector.MakeVersor2
func AngleOfVersor(ver vector.Vector2) float64 {
	x, y := ver.Get()
	return math.Atan2(y, x)
}

// VersorGradient is the derivative of the heading versor with respect to the
// heading angle: d/dtheta (cos theta, sin theta) = (-sin theta, cos theta),
// i.e. the versor rotated by a quarter turn counterclockwise.
func VersorGradient(ver vector.Vector2) vector.Vector2 {
	return ver.OrthogonalCounterClockwise()
}

// Projection of a onto b; null when b is null.
func Projection(a vector.Vector2, b vector.Vector2) vector.Vector2 {
	magsq := b.MagSq()
	if magsq == 0 {
		return vector.MakeNullVector2()
	}

	return b.MultScalar(a.Dot(b) / magsq)
}

// Rejection removes from a its component parallel to b
func Rejection(a vector.Vector2, b vector.Vector2) vector.Vector2 {
	return a.Sub(Projection(a, b))
}

func FullCircleAngleToSignedHalfCircleAngle(rad float64) float64 {
	if rad > math.Pi { // 180° en radians
		rad -= math.Pi * 2 // 360° en radian
	} else if rad < -math.Pi {
		rad += math.Pi * 2 // 360° en radian
	}

	return rad
}
