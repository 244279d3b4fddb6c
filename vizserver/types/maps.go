package types

import (
	commontypes "github.com/phenixreturn/multi-agent-coverage-planner/common/types"
)

type WatcherMap struct {
	*commontypes.SyncMap
}

func NewWatcherMap() *WatcherMap {
	return &WatcherMap{
		commontypes.NewSyncMap(),
	}
}

func (wmap *WatcherMap) Get(id string) *Watcher {
	if res, ok := (wmap.GetGeneric(id)).(*Watcher); ok {
		return res
	}

	return nil
}

type VizSwarmMap struct {
	*commontypes.SyncMap
}

func NewVizSwarmMap() *VizSwarmMap {
	return &VizSwarmMap{
		commontypes.NewSyncMap(),
	}
}

func (smap *VizSwarmMap) Get(id string) *VizSwarm {
	if res, ok := (smap.GetGeneric(id)).(*VizSwarm); ok {
		return res
	}

	return nil
}

func (smap *VizSwarmMap) ToArray() []*VizSwarm {
	swarms := make([]*VizSwarm, 0)
	for _, key := range smap.GetKeys() {
		if swarm := smap.Get(key); swarm != nil {
			swarms = append(swarms, swarm)
		}
	}

	return swarms
}
