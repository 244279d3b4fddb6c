package coverage

import (
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

// Boundary is the axis-aligned rectangular region assigned to an agent.
// It is configuration, not owned by the agent.
type Boundary struct {
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

func MakeBoundary(xmin float64, xmax float64, ymin float64, ymax float64) Boundary {
	return Boundary{
		XMin: xmin,
		XMax: xmax,
		YMin: ymin,
		YMax: ymax,
	}
}

func (boundary Boundary) edgeDistances(position vector.Vector2) [4]float64 {
	x, y := position.Get()
	return [4]float64{
		boundary.XMax - x,
		x - boundary.XMin,
		boundary.YMax - y,
		y - boundary.YMin,
	}
}

// Value is the signed distance to the nearest edge; negative outside.
func (boundary Boundary) Value(position vector.Vector2) float64 {
	distances := boundary.edgeDistances(position)

	min := distances[0]
	for _, distance := range distances[1:] {
		if distance < min {
			min = distance
		}
	}

	return min
}

var inwardNormals = [4]vector.Vector2{
	vector.MakeVector2(-1, 0), // right edge nearest, push left
	vector.MakeVector2(1, 0),  // left edge, push right
	vector.MakeVector2(0, -1), // top edge
	vector.MakeVector2(0, 1),  // bottom edge
}

// Gradient is the unit vector pointing into the rectangle away from the
// nearest edge. Ties resolve to the first of the tied edges, so the result
// is deterministic.
func (boundary Boundary) Gradient(position vector.Vector2) vector.Vector2 {
	distances := boundary.edgeDistances(position)

	index := 0
	min := distances[0]
	for i := 1; i < len(distances); i++ {
		if distances[i] < min {
			min = distances[i]
			index = i
		}
	}

	return inwardNormals[index]
}

func (boundary Boundary) Contains(position vector.Vector2) bool {
	return boundary.Value(position) >= 0
}
