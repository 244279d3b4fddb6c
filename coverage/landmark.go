package coverage

import (
	uuid "github.com/satori/go.uuid"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/types"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/number"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

// Landmark is a fixed point of interest. It is immutable after construction;
// only its owning agent changes over time. The uuid is the stable identity
// used by the trade bookkeeping, so two landmarks at the same coordinates
// remain distinguishable.
type Landmark struct {
	id       uuid.UUID
	position vector.Vector2
}

func MakeLandmark(x float64, y float64) Landmark {
	return Landmark{
		id:       uuid.NewV4(), // random uuid
		position: vector.MakeVector2(x, y),
	}
}

// MakeLandmarkWithId rebuilds a landmark whose identity was minted elsewhere
// (the receiving half of an ownership patch).
func MakeLandmarkWithId(id uuid.UUID, x float64, y float64) Landmark {
	return Landmark{
		id:       id,
		position: vector.MakeVector2(x, y),
	}
}

func MakeLandmarkFromPoint(point types.Point2D) Landmark {
	return MakeLandmark(point.X, point.Y)
}

func (lmk Landmark) GetId() uuid.UUID {
	return lmk.id
}

func (lmk Landmark) Position() vector.Vector2 {
	return lmk.position
}

func (lmk Landmark) ToPoint2D() types.Point2D {
	x, y := lmk.position.Get()
	return types.Point2D{X: x, Y: y}
}

// Clone keeps both coordinates and identity; a landmark is never duplicated
// into two distinct points of interest.
func (lmk Landmark) Clone() Landmark {
	return Landmark{
		id:       lmk.id,
		position: lmk.position.Clone(),
	}
}

func (lmk Landmark) String() string {
	x, y := lmk.position.Get()
	return "<Landmark(" + number.FloatToStr(x, 5) + ", " + number.FloatToStr(y, 5) + ")>"
}

func LandmarksToPointArray(landmarks []Landmark) types.Point2DArray {
	array := types.Point2DArray{
		Data: make([]types.Point2D, 0, len(landmarks)),
	}

	for _, lmk := range landmarks {
		array.Data = append(array.Data, lmk.ToPoint2D())
	}

	return array
}

func LandmarksFromPointArray(array types.Point2DArray) []Landmark {
	landmarks := make([]Landmark, 0, len(array.Data))

	for _, point := range array.Data {
		landmarks = append(landmarks, MakeLandmarkFromPoint(point))
	}

	return landmarks
}
