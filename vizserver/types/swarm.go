package types

import (
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
)

// VizSwarm is one watched swarm: its description and the pool of websocket
// watchers currently following it.
type VizSwarm struct {
	swarmID      string
	tps          int
	numAgents    int
	numLandmarks int
	domainSize   float64

	pool *WatcherMap
}

func NewVizSwarm(swarmID string, tps int, numAgents int, numLandmarks int, domainSize float64) *VizSwarm {
	return &VizSwarm{
		swarmID:      swarmID,
		tps:          tps,
		numAgents:    numAgents,
		numLandmarks: numLandmarks,
		domainSize:   domainSize,

		pool: NewWatcherMap(),
	}
}

func (swarm *VizSwarm) GetId() string {
	return swarm.swarmID
}

func (swarm *VizSwarm) GetTps() int {
	return swarm.tps
}

type VizInitMessageData struct {
	SwarmID      string  `json:"swarmid"`
	Tps          int     `json:"tps"`
	NumAgents    int     `json:"numagents"`
	NumLandmarks int     `json:"numlandmarks"`
	DomainSize   float64 `json:"domainsize"`
}

type VizInitMessage struct {
	Type string             `json:"type"`
	Data VizInitMessageData `json:"data"`
}

func (swarm *VizSwarm) SetWatcher(watcher *Watcher) {
	swarm.pool.Set(watcher.GetId(), watcher)

	initMsg := VizInitMessage{
		Type: "init",
		Data: VizInitMessageData{
			SwarmID:      swarm.swarmID,
			Tps:          swarm.tps,
			NumAgents:    swarm.numAgents,
			NumLandmarks: swarm.numLandmarks,
			DomainSize:   swarm.domainSize,
		},
	}

	err := watcher.conn.WriteJSON(initMsg)
	if err != nil {
		utils.Debug("viz-server", "Could not send VizInitMessage JSON;"+err.Error())
	}
}

func (swarm *VizSwarm) RemoveWatcher(watcherid string) {
	swarm.pool.Remove(watcherid)
}

func (swarm *VizSwarm) GetNumberWatchers() int {
	return swarm.pool.Size()
}
