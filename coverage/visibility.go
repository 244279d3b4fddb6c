package coverage

import (
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/trigo"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

// Sensor models the directional acuity of an agent observing a landmark.
// OptimalDistance is the range at which the distance attenuation peaks;
// it must be strictly positive.
type Sensor struct {
	OptimalDistance float64
}

func MakeSensor(optimalDistance float64) Sensor {
	return Sensor{
		OptimalDistance: optimalDistance,
	}
}

// DistanceFactor is a smooth, strictly positive bump kernel, maximal at
// distance 0 (value 1/OptimalDistance) and decaying toward 0 with range.
func (sensor Sensor) DistanceFactor(distance float64) float64 {
	d := sensor.OptimalDistance
	return (1.0 / d) / (1.0 + (distance/d)*(distance/d))
}

// DistanceFactorDerivativeOverDistance is the radial derivative of
// DistanceFactor pre-divided by the distance. The gradient of any radially
// symmetric f(|p-q|) is (f'(d)/d)*(p-q), and this ratio stays finite and
// smooth at d=0, where f'(d) alone followed by a division would be 0/0.
// Obtained by differentiating DistanceFactor with respect to d².
func (sensor Sensor) DistanceFactorDerivativeOverDistance(distance float64) float64 {
	d := sensor.OptimalDistance
	den := 1.0 + (distance/d)*(distance/d)
	return -(2.0 / (d * d * d)) / (den * den)
}

// Visibility scores how well an observer at position p with heading theta
// sees a landmark at position q. Positive when the landmark lies ahead of
// the heading and close; negative when it lies behind (no clamping).
func (sensor Sensor) Visibility(p vector.Vector2, theta float64, q vector.Vector2) float64 {
	v := vector.MakeVersor2(theta)
	pq := p.Sub(q)
	return -sensor.DistanceFactor(pq.Mag()) * pq.Dot(v)
}

// PositionVisibilityGradient is the gradient of Visibility with respect to
// the observer position:
//
//	[-g(d)*(p-q)⊗(p-q) - f(d)*I] · v
//
// with f = DistanceFactor and g = DistanceFactorDerivativeOverDistance,
// well defined at d=0 by construction.
func (sensor Sensor) PositionVisibilityGradient(p vector.Vector2, theta float64, q vector.Vector2) vector.Vector2 {
	v := vector.MakeVersor2(theta)
	pq := p.Sub(q)
	d := pq.Mag()

	outer := pq.MultScalar(-sensor.DistanceFactorDerivativeOverDistance(d) * pq.Dot(v))
	return outer.Sub(v.MultScalar(sensor.DistanceFactor(d)))
}

// OrientationVisibilityGradient is the derivative of Visibility with respect
// to the observer heading.
func (sensor Sensor) OrientationVisibilityGradient(p vector.Vector2, theta float64, q vector.Vector2) float64 {
	v := vector.MakeVersor2(theta)
	pq := p.Sub(q)
	return -sensor.DistanceFactor(pq.Mag()) * trigo.VersorGradient(v).Dot(pq)
}
