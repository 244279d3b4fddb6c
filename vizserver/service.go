package vizserver

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
	apphandler "github.com/phenixreturn/multi-agent-coverage-planner/vizserver/handler"
	"github.com/phenixreturn/multi-agent-coverage-planner/vizserver/types"
)

type FetchSwarmsCbk func() ([]*types.VizSwarm, error)

type VizService struct {
	addr        string
	fetchSwarms FetchSwarmsCbk
}

func NewVizService(addr string, fetchSwarms FetchSwarmsCbk) *VizService {
	return &VizService{
		addr:        addr,
		fetchSwarms: fetchSwarms,
	}
}

func (viz *VizService) ListenAndServe() error {

	swarms, err := viz.fetchSwarms()
	utils.Check(err, "VizService: Could not fetch swarms")

	vizswarms := types.NewVizSwarmMap()
	for _, swarm := range swarms {
		vizswarms.Set(
			swarm.GetId(),
			swarm,
		)
	}

	logger := os.Stdout
	router := mux.NewRouter()
	router.Handle("/", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(apphandler.Home(vizswarms)),
	)).Methods("GET")

	router.Handle("/swarm/{id:[a-zA-Z0-9\\-]+}/ws", handlers.CombinedLoggingHandler(logger,
		http.HandlerFunc(apphandler.Websocket(vizswarms)),
	)).Methods("GET")

	log.Println("VIZ Listening on " + viz.addr)

	return http.ListenAndServe(viz.addr, router)
}
