package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	notify "github.com/bitly/go-notify"

	"github.com/phenixreturn/multi-agent-coverage-planner/common"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/mq"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
	"github.com/phenixreturn/multi-agent-coverage-planner/vizserver"
	apphandler "github.com/phenixreturn/multi-agent-coverage-planner/vizserver/handler"
	viztypes "github.com/phenixreturn/multi-agent-coverage-planner/vizserver/types"
)

func main() {

	// => Serveur HTTP
	// 		=> Ecoute des messages du messagebroker sur le canal viz
	// 		=> Redistribution des messages via websocket
	// 			=> gestion d'un pool de connexions websocket

	port := flag.Int("port", 8081, "Port of the viz server")
	mqhost := flag.String("mqhost", "mq:5678", "Message queue host:port")
	swarmID := flag.String("swarm", "", "Swarm identifier; required")
	tps := flag.Int("tps", 20, "Tick rate of the watched coverage server")
	nbagents := flag.Int("agents", 5, "Number of agents in the watched swarm")
	nblandmarks := flag.Int("landmarks", 400, "Number of landmarks in the watched swarm")
	domainSize := flag.Float64("domain-size", 2.5, "Half extent of the square domain")

	flag.Parse()

	utils.Assert((*swarmID) != "", "swarm must be set")

	log.Println("Coverage Viz Server v" + utils.GetVersion())

	// Connect to Message broker
	mqclient, err := mq.NewClient(*mqhost)
	utils.Check(err, "ERROR: could not connect to messagebroker")

	serverAddr := ":" + strconv.Itoa(*port)

	vizswarm := viztypes.NewVizSwarm(*swarmID, *tps, *nbagents, *nblandmarks, *domainSize)

	vizservice := vizserver.NewVizService(serverAddr, func() ([]*viztypes.VizSwarm, error) {
		return []*viztypes.VizSwarm{vizswarm}, nil
	})

	mqclient.Subscribe("viz", "message", func(msg mq.BrokerMessage) {
		var vizMessage []apphandler.SwarmIdVizMessage
		err := json.Unmarshal(msg.Data, &vizMessage)

		utils.CheckWithFunc(err, func() string {
			return "Failed to decode vizmessage: " + err.Error()
		})

		if len(vizMessage) == 0 {
			return
		}

		utils.Debug("viz:message", "received batch of "+strconv.Itoa(len(vizMessage))+" message(s) for swarm "+vizMessage[0].SwarmID)
		notify.PostTimeout("viz:message", string(msg.Data), time.Millisecond)
	})

	// handling signals
	go func() {
		<-common.SignalHandler()
		utils.Debug("sighandler", "RECEIVED SHUTDOWN SIGNAL; closing.")
		mqclient.Stop()
		os.Exit(0)
	}()

	err = vizservice.ListenAndServe()
	utils.Check(err, "Could not serve viz service on "+serverAddr)
}
