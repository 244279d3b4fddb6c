package coverageserver

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/types"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
	"github.com/phenixreturn/multi-agent-coverage-planner/coverage"
)

// AgentSpec describes one agent of the scene before construction: its name,
// its starting pose and the region it is confined to.
type AgentSpec struct {
	Name     string
	Pose     types.Pose2D
	Boundary coverage.Boundary
}

// Scene is a built initial situation: the landmark field and the initial
// ownership split between the agents.
type Scene struct {
	Specs       []AgentSpec
	Landmarks   []coverage.Landmark
	assignments map[string][]coverage.Landmark
}

func (scene Scene) AssignedLandmarks(name string) []coverage.Landmark {
	return scene.assignments[name]
}

type landmarkSpatial struct {
	lmk coverage.Landmark
}

func (spatial landmarkSpatial) Bounds() *rtreego.Rect {
	x, y := spatial.lmk.Position().Get()
	rect, err := rtreego.NewRect(rtreego.Point{x, y}, []float64{1e-9, 1e-9})
	utils.Check(err, "Could not build bounding box for landmark")

	return rect
}

func regionToRect(boundary coverage.Boundary) (*rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{boundary.XMin, boundary.YMin},
		[]float64{boundary.XMax - boundary.XMin, boundary.YMax - boundary.YMin},
	)
}

// MakeGridScene lays numLandmarks out on a square grid shrunk towards the
// center of the domain, then hands each landmark to the first agent whose
// region contains it. Landmarks outside every region are spread round robin
// so the whole field is owned from the start.
func MakeGridScene(domainSize float64, numLandmarks int, specs []AgentSpec) Scene {
	utils.Assert(domainSize > 0, "scene: domain size must be strictly positive")
	utils.Assert(numLandmarks > 0, "scene: scene needs at least one landmark")
	utils.Assert(len(specs) > 0, "scene: scene needs at least one agent")

	sq := math.Sqrt(float64(numLandmarks))

	landmarks := make([]coverage.Landmark, 0, numLandmarks)
	for index := 0; index < numLandmarks; index++ {
		// float floor division; the column index must not truncate against
		// the integer part of sq when the count is not a perfect square
		x := 0.4 * (math.Floor(float64(index)/sq)/sq*2.0*domainSize - domainSize + domainSize/sq)
		y := 0.4 * (math.Mod(float64(index), sq)/sq*2.0*domainSize - domainSize + domainSize/sq)
		landmarks = append(landmarks, coverage.MakeLandmark(x, y))
	}

	tree := rtreego.NewTree(2, 25, 50)
	for _, lmk := range landmarks {
		tree.Insert(landmarkSpatial{lmk})
	}

	assignments := make(map[string][]coverage.Landmark)
	assigned := make(map[string]struct{}) // keyed by landmark uuid

	for _, spec := range specs {
		rect, err := regionToRect(spec.Boundary)
		utils.Check(err, "Could not build spatial query for region of "+spec.Name)

		for _, spatial := range tree.SearchIntersect(rect) {
			lmk := spatial.(landmarkSpatial).lmk
			key := lmk.GetId().String()

			if _, taken := assigned[key]; taken {
				continue
			}

			assigned[key] = struct{}{}
			assignments[spec.Name] = append(assignments[spec.Name], lmk)
		}
	}

	cursor := 0
	for _, lmk := range landmarks {
		key := lmk.GetId().String()
		if _, taken := assigned[key]; taken {
			continue
		}

		spec := specs[cursor%len(specs)]
		assigned[key] = struct{}{}
		assignments[spec.Name] = append(assignments[spec.Name], lmk)
		cursor++
	}

	return Scene{
		Specs:       specs,
		Landmarks:   landmarks,
		assignments: assignments,
	}
}

// DefaultAgentSpecs returns up to five agents with the canonical starting
// poses: two patrolling the top and bottom strips of the domain, three
// sharing the whole of it.
func DefaultAgentSpecs(domainSize float64, count int) []AgentSpec {
	utils.Assert(count >= 1 && count <= 5, "scene: between 1 and 5 default agents")

	fullDomain := coverage.MakeBoundary(-domainSize, domainSize, -domainSize, domainSize)

	specs := []AgentSpec{
		{
			Name:     "Axel",
			Pose:     types.Pose2D{X: 0, Y: 0.8 * domainSize, Theta: 0},
			Boundary: coverage.MakeBoundary(-domainSize, domainSize, 0.4*domainSize, domainSize),
		},
		{
			Name:     "Bo",
			Pose:     types.Pose2D{X: 0, Y: -0.8 * domainSize, Theta: 0},
			Boundary: coverage.MakeBoundary(-domainSize, domainSize, -domainSize, -0.4*domainSize),
		},
		{
			Name:     "Calle",
			Pose:     types.Pose2D{X: 0, Y: 0, Theta: 0},
			Boundary: fullDomain,
		},
		{
			Name:     "David",
			Pose:     types.Pose2D{X: 0, Y: 0, Theta: 2.0 * math.Pi / 3.0},
			Boundary: fullDomain,
		},
		{
			Name:     "Emil",
			Pose:     types.Pose2D{X: 0, Y: 0, Theta: -2.0 * math.Pi / 3.0},
			Boundary: fullDomain,
		},
	}

	return specs[:count]
}

// BootstrapScene registers every agent of the scene on the server with its
// assigned landmarks.
func BootstrapScene(server *Server, scene Scene) {
	for _, spec := range scene.Specs {
		agent := coverage.MakeAgent(
			spec.Name,
			spec.Pose.X, spec.Pose.Y, spec.Pose.Theta,
			scene.AssignedLandmarks(spec.Name),
			coverage.MakeSensor(server.config.OptimalDistance),
			server.config.TradeTolerance,
		)

		server.RegisterAgent(agent, spec.Boundary)
	}
}
