package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/phenixreturn/multi-agent-coverage-planner/common"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/influxdb"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/mq"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/protocol"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/types"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
	"github.com/phenixreturn/multi-agent-coverage-planner/coverageserver"
)

func main() {
	env := os.Getenv("ENV")

	rand.Seed(time.Now().UnixNano())

	swarmID := flag.String("swarm", "", "Swarm identifier; required")
	mqhost := flag.String("mqhost", "mq:5678", "Message queue host:port")
	tps := flag.Int("tps", 20, "Control loop ticks per second")
	tradePeriod := flag.Int("trade-period", 10, "Trade round every n ticks; 0 disables trading")
	nbagents := flag.Int("agents", 5, "Number of agents in the swarm (1 to 5)")
	nblandmarks := flag.Int("landmarks", 400, "Number of landmarks on the grid")
	domainSize := flag.Float64("domain-size", 2.5, "Half extent of the square domain")
	optimalDistance := flag.Float64("optimal-distance", 0.5, "Sensor optimal distance")
	tolerance := flag.Float64("tolerance", 0.005, "Landmark trade hysteresis")
	positionGain := flag.Float64("position-gain", 0.01, "Gradient ascent gain on position")
	orientationGain := flag.Float64("orientation-gain", 0.01, "Gradient ascent gain on orientation")
	boundaryMargin := flag.Float64("boundary-margin", 0.05, "Distance to the region edge constraining motion")
	healthport := flag.String("health-port", "8099", "Port of the healthcheck server")

	flag.Parse()

	utils.Assert((*swarmID) != "", "swarm must be set")

	coverageServerUUID := uuid.NewV4().String() // random uuid

	log.Println("Coverage Server v" + utils.GetVersion() + " ID#" + coverageServerUUID)

	// Make message broker client
	brokerclient, err := mq.NewClient(*mqhost)
	utils.Check(err, "ERROR: Could not connect to messagebroker on "+*mqhost)

	brokerclient.Publish("swarm", "handshake", types.NewMQMessage(
		"coverage-server",
		"Coverage Server "+coverageServerUUID+" reporting for duty.",
	).SetPayload(types.MQPayload{
		"id":    coverageServerUUID,
		"swarm": *swarmID,
	}))

	config := coverageserver.Config{
		SwarmID:          *swarmID,
		Tps:              *tps,
		TradePeriodTicks: *tradePeriod,
		PositionGain:     *positionGain,
		OrientationGain:  *orientationGain,
		BoundaryMargin:   *boundaryMargin,
		OptimalDistance:  *optimalDistance,
		TradeTolerance:   *tolerance,
	}

	server := coverageserver.NewServer(config, coverageServerUUID, brokerclient)

	scene := coverageserver.MakeGridScene(
		*domainSize,
		*nblandmarks,
		coverageserver.DefaultAgentSpecs(*domainSize, *nbagents),
	)
	coverageserver.BootstrapScene(server, scene)

	metrics, err := influxdb.NewClient("coverage-server")
	utils.Check(err, "Unable to initialize influxdb client")

	metrics.Loop(func() {
		metrics.WriteAppMetric("coverage-server", server.FlushMetrics())
	})

	server.AddTearDownCall(func() error {
		metrics.TearDown()
		return nil
	})

	// handling signals
	go func() {
		<-common.SignalHandler()
		utils.Debug("sighandler", "RECEIVED SHUTDOWN SIGNAL; closing.")
		server.Stop()
	}()

	go protocol.StreamState(server, brokerclient, coverageServerUUID)

	if env == "prod" {
		hc := NewHealthCheck(brokerclient, server, *healthport)
		go hc.Listen()
	}

	<-server.Start()
}
