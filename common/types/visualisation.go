package types

import (
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

type VizAgentMessage struct {
	Id           string         `json:"id"`
	Name         string         `json:"name"`
	Kind         string         `json:"kind"`
	Position     vector.Vector2 `json:"position"`
	Orientation  float64        `json:"orientation"`
	Coverage     float64        `json:"coverage"`
	NumLandmarks int            `json:"numlandmarks"`
}

type VizLandmarkMessage struct {
	Id       string         `json:"id"`
	Kind     string         `json:"kind"`
	Position vector.Vector2 `json:"position"`
	Owner    string         `json:"owner"`
}

type VizMessage struct {
	SwarmID        string               `json:"swarmid"`
	CoverageServer string               `json:"coverageserver"`
	Tick           int                  `json:"tick"`
	TeamCoverage   float64              `json:"teamcoverage"`
	Agents         []VizAgentMessage    `json:"agents"`
	Landmarks      []VizLandmarkMessage `json:"landmarks"`
}
