package coverage

import (
	"strconv"

	uuid "github.com/satori/go.uuid"
	bettererrors "github.com/xtuc/better-errors"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/types"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/number"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/trigo"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

// Agent owns a pose and a subset of the team's landmarks. Pose is mutated
// only through SetPose (by the control loop); landmark membership is mutated
// only by Trade (self side) or ApplyOwnershipPatch (on behalf of a partner).
type Agent struct {
	id          uuid.UUID
	name        string
	position    vector.Vector2
	orientation float64
	landmarks   []Landmark

	sensor    Sensor
	tolerance float64
}

func MakeAgent(name string, x float64, y float64, theta float64, landmarks []Landmark, sensor Sensor, tolerance float64) *Agent {
	utils.Assert(sensor.OptimalDistance > 0, "agent: sensor optimal distance must be strictly positive")
	utils.Assert(tolerance >= 0, "agent: trade tolerance must be non-negative")

	owned := make([]Landmark, len(landmarks))
	copy(owned, landmarks)

	return &Agent{
		id:          uuid.NewV4(), // random uuid
		name:        name,
		position:    vector.MakeVector2(x, y),
		orientation: trigo.FullCircleAngleToSignedHalfCircleAngle(theta),
		landmarks:   owned,
		sensor:      sensor,
		tolerance:   tolerance,
	}
}

// MakeAgentFromPose is the construction boundary with the messaging layer.
func MakeAgentFromPose(name string, pose types.Pose2D, array types.Point2DArray, sensor Sensor, tolerance float64) *Agent {
	return MakeAgent(name, pose.X, pose.Y, pose.Theta, LandmarksFromPointArray(array), sensor, tolerance)
}

func (agent *Agent) GetId() uuid.UUID {
	return agent.id
}

func (agent *Agent) Name() string {
	return agent.name
}

func (agent *Agent) Position() vector.Vector2 {
	return agent.position
}

func (agent *Agent) Orientation() float64 {
	return agent.orientation
}

func (agent *Agent) GetPose2D() types.Pose2D {
	x, y := agent.position.Get()
	return types.Pose2D{X: x, Y: y, Theta: agent.orientation}
}

func (agent *Agent) Sensor() Sensor {
	return agent.sensor
}

// Landmarks returns a snapshot copy; callers cannot mutate the collection.
func (agent *Agent) Landmarks() []Landmark {
	snapshot := make([]Landmark, len(agent.landmarks))
	copy(snapshot, agent.landmarks)
	return snapshot
}

func (agent *Agent) NumLandmarks() int {
	return len(agent.landmarks)
}

func (agent *Agent) GetLandmarkArray() types.Point2DArray {
	return LandmarksToPointArray(agent.landmarks)
}

func (agent *Agent) SetPose(x float64, y float64, theta float64) {
	agent.position = vector.MakeVector2(x, y)
	agent.orientation = trigo.FullCircleAngleToSignedHalfCircleAngle(theta)
}

func (agent *Agent) String() string {
	return "<Agent(" + agent.name + " " + agent.position.String() +
		" theta=" + number.FloatToStr(agent.orientation, 5) +
		" landmarks=" + strconv.Itoa(len(agent.landmarks)) + ")>"
}

///////////////////////////////////////////////////////////////////////////
// Aggregate coverage
///////////////////////////////////////////////////////////////////////////

// Coverage is the sum of visibility over all owned landmarks at the
// current pose.
func (agent *Agent) Coverage() float64 {
	cov := 0.0
	for _, lmk := range agent.landmarks {
		cov += agent.sensor.Visibility(agent.position, agent.orientation, lmk.Position())
	}
	return cov
}

func (agent *Agent) PositionCoverageGradient() vector.Vector2 {
	grad := vector.MakeNullVector2()
	for _, lmk := range agent.landmarks {
		grad = grad.Add(agent.sensor.PositionVisibilityGradient(agent.position, agent.orientation, lmk.Position()))
	}
	return grad
}

func (agent *Agent) OrientationCoverageGradient() float64 {
	grad := 0.0
	for _, lmk := range agent.landmarks {
		grad += agent.sensor.OrientationVisibilityGradient(agent.position, agent.orientation, lmk.Position())
	}
	return grad
}

///////////////////////////////////////////////////////////////////////////
// Trading protocol
///////////////////////////////////////////////////////////////////////////

// Trade decides a pairwise reassignment of landmarks against a snapshot of
// another agent (pose + landmark collection, passed by value; the partner is
// never mutated here). A landmark changes hands when the other side sees it
// better than its current owner by more than the tolerance.
//
// The self side of the exchange is applied before returning. The other side
// is returned as instructions: indices to remove from the partner's original
// collection, and the landmarks the partner must append. The caller
// completes the exchange by invoking ApplyOwnershipPatch on the partner with
// exactly those two values.
func (agent *Agent) Trade(otherPosition vector.Vector2, otherOrientation float64, otherLandmarks []Landmark) (success bool, removalIndexes []int, landmarksForOther []Landmark) {

	indexesIRemove := make([]int, 0)
	indexesYouRemove := make([]int, 0)
	landmarksIAdd := make([]Landmark, 0)
	landmarksYouAdd := make([]Landmark, 0)

	for index, lmk := range agent.landmarks {
		if agent.sensor.Visibility(otherPosition, otherOrientation, lmk.Position()) >
			agent.sensor.Visibility(agent.position, agent.orientation, lmk.Position())+agent.tolerance {
			indexesIRemove = append(indexesIRemove, index)
			landmarksYouAdd = append(landmarksYouAdd, lmk)
			success = true
		}
	}

	for index, lmk := range otherLandmarks {
		if agent.sensor.Visibility(agent.position, agent.orientation, lmk.Position()) >
			agent.sensor.Visibility(otherPosition, otherOrientation, lmk.Position())+agent.tolerance {
			indexesYouRemove = append(indexesYouRemove, index)
			landmarksIAdd = append(landmarksIAdd, lmk)
			success = true
		}
	}

	// The trade is a pure permutation of ownership; a mismatch here is a
	// logic defect, not a runtime condition.
	utils.Assert(len(indexesIRemove) == len(landmarksYouAdd), "trade: removal count does not match landmarks handed over")
	utils.Assert(len(indexesYouRemove) == len(landmarksIAdd), "trade: claim count does not match removal instructions")

	agent.updateLandmarks(indexesIRemove, landmarksIAdd)

	return success, indexesYouRemove, landmarksYouAdd
}

// updateLandmarks removes by original index (indices computed before any
// removal), then appends.
func (agent *Agent) updateLandmarks(indexesToRemove []int, landmarksToAdd []Landmark) {
	removed := make(map[int]struct{}, len(indexesToRemove))
	for _, index := range indexesToRemove {
		removed[index] = struct{}{}
	}

	filtered := make([]Landmark, 0, len(agent.landmarks)-len(removed)+len(landmarksToAdd))
	for index, lmk := range agent.landmarks {
		if _, gone := removed[index]; !gone {
			filtered = append(filtered, lmk)
		}
	}

	agent.landmarks = append(filtered, landmarksToAdd...)
}

// ApplyOwnershipPatch completes the second half of a trade initiated by a
// partner. Indices outside the current collection mean the patch is stale
// (duplicate or out-of-order delivery); the collection is left untouched and
// the condition is reported, never swallowed.
func (agent *Agent) ApplyOwnershipPatch(indexesToRemove []int, landmarksToAdd []Landmark) error {
	seen := make(map[int]struct{}, len(indexesToRemove))

	for _, index := range indexesToRemove {
		if index < 0 || index >= len(agent.landmarks) {
			return bettererrors.
				New("stale ownership patch: index out of bounds").
				SetContext("index", strconv.Itoa(index)).
				SetContext("collection size", strconv.Itoa(len(agent.landmarks)))
		}

		if _, duplicate := seen[index]; duplicate {
			return bettererrors.
				New("stale ownership patch: duplicated index").
				SetContext("index", strconv.Itoa(index))
		}

		seen[index] = struct{}{}
	}

	agent.updateLandmarks(indexesToRemove, landmarksToAdd)

	return nil
}
