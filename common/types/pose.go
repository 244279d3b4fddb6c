package types

// Point2D is the generic wire representation of a planar point, used at the
// boundary with the messaging layer.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pose2D is the generic wire representation of a planar pose.
// Theta is the heading in radians, in (-Pi, Pi].
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

type Point2DArray struct {
	Data []Point2D `json:"data"`
}
