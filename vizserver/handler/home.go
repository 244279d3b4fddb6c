package handler

import (
	"net/http"
	"strconv"

	"github.com/phenixreturn/multi-agent-coverage-planner/vizserver/types"
)

func Home(swarms *types.VizSwarmMap) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<h2>Welcome on COVERAGE VIZ SERVER !</h2>"))

		for _, swarm := range swarms.ToArray() {
			w.Write([]byte("<a href='/swarm/" + swarm.GetId() + "/ws'>" + swarm.GetId() + " (" + strconv.Itoa(swarm.GetNumberWatchers()) + " watchers right now)</a><br />"))
		}
	}
}
