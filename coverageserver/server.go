package coverageserver

import (
	"sync"

	uuid "github.com/satori/go.uuid"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/influxdb"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/mq"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/types"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
	"github.com/phenixreturn/multi-agent-coverage-planner/coverage"
)

// Config carries every tunable of the control loop in one place. Values are
// explicit; nothing falls back to a hidden constant inside the loop.
type Config struct {
	SwarmID string

	Tps              int // ticks per second
	TradePeriodTicks int // a trade round runs every that many ticks; 0 disables trading

	PositionGain    float64 // gradient ascent step gain on position
	OrientationGain float64 // gradient ascent step gain on orientation

	BoundaryMargin float64 // distance to the region edge below which motion is constrained

	OptimalDistance float64 // sensor tuning, see coverage.Sensor
	TradeTolerance  float64 // trade hysteresis, see coverage.Agent
}

func DefaultConfig(swarmID string) Config {
	return Config{
		SwarmID:          swarmID,
		Tps:              20,
		TradePeriodTicks: 10,
		PositionGain:     0.01,
		OrientationGain:  0.01,
		BoundaryMargin:   0.05,
		OptimalDistance:  0.5,
		TradeTolerance:   0.005,
	}
}

// agentHolder binds an agent to the region it is confined to and to its
// trade ledger.
type agentHolder struct {
	agent    *coverage.Agent
	boundary coverage.Boundary
	ledger   *coverage.TradeLedger
}

type Server struct {
	config     Config
	serverUUID string

	brokerclient mq.ClientInterface

	agents      []*agentHolder
	agentsById  map[uuid.UUID]*agentHolder
	agentsmutex *sync.Mutex

	ticknum     int
	tradeCursor int
	stopticking chan bool

	stateobservers      []chan types.VizMessage
	stateobserversmutex *sync.Mutex

	tearDownCallbacks      []types.TearDownCallback
	tearDownCallbacksMutex *sync.Mutex

	tradesOpened    *influxdb.Counter
	tradesCompleted *influxdb.Counter
	patchesRejected *influxdb.Counter
}

func NewServer(config Config, serverUUID string, brokerclient mq.ClientInterface) *Server {
	utils.Assert(config.Tps > 0, "coverage-server: tps must be strictly positive")
	utils.Assert(config.TradePeriodTicks >= 0, "coverage-server: trade period cannot be negative")

	return &Server{
		config:     config,
		serverUUID: serverUUID,

		brokerclient: brokerclient,

		agents:      make([]*agentHolder, 0),
		agentsById:  make(map[uuid.UUID]*agentHolder),
		agentsmutex: &sync.Mutex{},

		stopticking: make(chan bool),

		stateobservers:      make([]chan types.VizMessage, 0),
		stateobserversmutex: &sync.Mutex{},

		tearDownCallbacks:      make([]types.TearDownCallback, 0),
		tearDownCallbacksMutex: &sync.Mutex{},

		tradesOpened:    influxdb.NewCounter(),
		tradesCompleted: influxdb.NewCounter(),
		patchesRejected: influxdb.NewCounter(),
	}
}

// RegisterAgent adds an agent to the swarm, confined to the given region.
// The starting pose must already be inside it.
func (server *Server) RegisterAgent(agent *coverage.Agent, boundary coverage.Boundary) {
	utils.Assert(
		boundary.Contains(agent.Position()),
		"coverage-server: agent "+agent.Name()+" starts outside its region",
	)

	server.agentsmutex.Lock()
	defer server.agentsmutex.Unlock()

	holder := &agentHolder{
		agent:    agent,
		boundary: boundary,
		ledger:   coverage.NewTradeLedger(),
	}

	server.agents = append(server.agents, holder)
	server.agentsById[agent.GetId()] = holder
}

func (server *Server) GetSwarmID() string {
	return server.config.SwarmID
}

func (server *Server) GetServerUUID() string {
	return server.serverUUID
}

func (server *Server) GetTicksPerSecond() int {
	return server.config.Tps
}

func (server *Server) GetTicknum() int {
	return server.ticknum
}

func (server *Server) GetNbAgents() int {
	server.agentsmutex.Lock()
	defer server.agentsmutex.Unlock()

	return len(server.agents)
}

// TeamCoverage is the instantaneous sum of every agent's coverage.
func (server *Server) TeamCoverage() float64 {
	server.agentsmutex.Lock()
	defer server.agentsmutex.Unlock()

	total := 0.0
	for _, holder := range server.agents {
		total += holder.agent.Coverage()
	}

	return total
}

// TeamLandmarkCount counts every owned landmark across the swarm; trades
// permute ownership, so this number never changes once the scene is set.
func (server *Server) TeamLandmarkCount() int {
	server.agentsmutex.Lock()
	defer server.agentsmutex.Unlock()

	total := 0
	for _, holder := range server.agents {
		total += holder.agent.NumLandmarks()
	}

	return total
}

func (server *Server) SubscribeStateObservation() chan types.VizMessage {
	// 5 seconds of buffered frames, mirroring the viz stream bucket
	ch := make(chan types.VizMessage, server.config.Tps*5)

	server.stateobserversmutex.Lock()
	server.stateobservers = append(server.stateobservers, ch)
	server.stateobserversmutex.Unlock()

	return ch
}

// FlushMetrics drains the per-period counters into an influx field map.
func (server *Server) FlushMetrics() map[string]interface{} {
	return map[string]interface{}{
		"ticknum":          server.ticknum,
		"agents":           server.GetNbAgents(),
		"team-coverage":    server.TeamCoverage(),
		"landmarks":        server.TeamLandmarkCount(),
		"trades-opened":    server.tradesOpened.GetAndReset(),
		"trades-completed": server.tradesCompleted.GetAndReset(),
		"patches-rejected": server.patchesRejected.GetAndReset(),
	}
}

func (server *Server) buildVizMessage() types.VizMessage {
	server.agentsmutex.Lock()
	defer server.agentsmutex.Unlock()

	msg := types.VizMessage{
		SwarmID:   server.config.SwarmID,
		Tick:      server.ticknum,
		Agents:    make([]types.VizAgentMessage, 0, len(server.agents)),
		Landmarks: make([]types.VizLandmarkMessage, 0),
	}

	for _, holder := range server.agents {
		agent := holder.agent

		msg.TeamCoverage += agent.Coverage()
		msg.Agents = append(msg.Agents, types.VizAgentMessage{
			Id:           agent.GetId().String(),
			Name:         agent.Name(),
			Kind:         "agent",
			Position:     agent.Position(),
			Orientation:  agent.Orientation(),
			Coverage:     agent.Coverage(),
			NumLandmarks: agent.NumLandmarks(),
		})

		for _, lmk := range agent.Landmarks() {
			msg.Landmarks = append(msg.Landmarks, types.VizLandmarkMessage{
				Id:       lmk.GetId().String(),
				Kind:     "landmark",
				Position: lmk.Position(),
				Owner:    agent.Name(),
			})
		}
	}

	return msg
}
