package coverageserver

import (
	"encoding/json"
	"strconv"
	"time"

	notify "github.com/bitly/go-notify"
	uuid "github.com/satori/go.uuid"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/mq"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/protocol"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/types"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/trigo"
)

// Start subscribes to the trade lanes, launches the tick loop and returns a
// channel closed when the server has torn down.
func (server *Server) Start() chan interface{} {
	utils.Debug("coverage-server", "Starting for swarm "+server.config.SwarmID)

	block := server.listen()

	server.startTicking()

	server.AddTearDownCall(func() error {
		server.brokerclient.Publish("swarm", "stopped", types.NewMQMessage(
			"coverage-server",
			"swarm "+server.config.SwarmID+" stopped",
		))
		return nil
	})

	return block
}

func (server *Server) listen() chan interface{} {
	block := make(chan interface{})

	err := server.brokerclient.Subscribe("trade", "patch", func(msg mq.BrokerMessage) {
		server.onTradePatch(msg)
	})
	utils.Check(err, "Error: cannot subscribe to trade:patch")

	err = server.brokerclient.Subscribe("trade", "ack", func(msg mq.BrokerMessage) {
		server.onTradeAck(msg)
	})
	utils.Check(err, "Error: cannot subscribe to trade:ack")

	server.AddTearDownCall(func() error {
		close(block)
		return nil
	})

	return block
}

// onTradePatch applies an incoming ownership patch on behalf of the target
// agent and acknowledges it. Every patch hosted here loops back through the
// broker, so the handler also sees the patches this very server published.
func (server *Server) onTradePatch(msg mq.BrokerMessage) {
	var message protocol.TradePatchMessage
	if err := json.Unmarshal(msg.Data, &message); err != nil {
		utils.RecoverableError("coverage-server", "invalid trade patch payload: "+err.Error())
		return
	}

	patch, err := message.ToPatch()
	if err != nil {
		utils.RecoverableError("coverage-server", "invalid trade patch: "+err.Error())
		return
	}

	server.agentsmutex.Lock()
	holder, found := server.agentsById[patch.Target]

	if !found {
		server.agentsmutex.Unlock()
		// Not one of ours; another coverage server hosts the target.
		return
	}

	// Patches arrive on the mq listener goroutine while the tick goroutine
	// reads and writes the same agent; the mutation must happen under the
	// agents mutex. The ack is published after release, as the broker loops
	// it straight back into onTradeAck.
	applyErr := holder.ledger.ApplyPatch(holder.agent, patch)
	server.agentsmutex.Unlock()

	if applyErr != nil {
		server.patchesRejected.Add(1)
		utils.RecoverableError("coverage-server", "ownership patch rejected: "+applyErr.Error())
		return
	}

	server.brokerclient.Publish("trade", "ack", protocol.TradeAckMessage{
		TradeID:   message.TradeID,
		Initiator: message.Initiator,
		Target:    message.Target,
	})

	notify.PostTimeout("coverage:trade", message.TradeID, time.Millisecond)
}

func (server *Server) onTradeAck(msg mq.BrokerMessage) {
	var message protocol.TradeAckMessage
	if err := json.Unmarshal(msg.Data, &message); err != nil {
		utils.RecoverableError("coverage-server", "invalid trade ack payload: "+err.Error())
		return
	}

	initiatorID, err := uuid.FromString(message.Initiator)
	if err != nil {
		utils.RecoverableError("coverage-server", "invalid trade ack: malformed initiator id")
		return
	}

	tradeID, err := uuid.FromString(message.TradeID)
	if err != nil {
		utils.RecoverableError("coverage-server", "invalid trade ack: malformed trade id")
		return
	}

	server.agentsmutex.Lock()
	holder, found := server.agentsById[initiatorID]
	server.agentsmutex.Unlock()

	if !found {
		return
	}

	if holder.ledger.UpdateStateCompleted(tradeID) {
		server.tradesCompleted.Add(1)
		notify.PostTimeout("coverage:trade:completed", message.TradeID, time.Millisecond)
	}
}

func (server *Server) startTicking() {
	go func() {

		tickduration := time.Duration((1000000 / time.Duration(server.config.Tps)) * time.Microsecond)
		ticker := time.Tick(tickduration)

		for {
			select {
			case <-server.stopticking:
				{
					utils.Debug("coverage-server", "Received stop ticking signal")
					notify.Post("coverage:stopped", nil)
					return
				}
			case <-ticker:
				{
					server.doTick()
				}
			}
		}
	}()
}

func (server *Server) doTick() {

	server.ticknum++

	server.agentsmutex.Lock()
	for _, holder := range server.agents {
		server.stepAgent(holder)
	}
	server.agentsmutex.Unlock()

	if server.config.TradePeriodTicks > 0 && server.ticknum%server.config.TradePeriodTicks == 0 {
		server.resendPendingPatches()
		server.runTradeRound()
	}

	if server.ticknum%server.config.Tps == 0 {
		utils.Debug("tick", strconv.Itoa(server.ticknum)+
			" team coverage "+strconv.FormatFloat(server.TeamCoverage(), 'f', 4, 64))
	}

	msg := server.buildVizMessage()

	// Single sender, buffered subscribers: frames reach every observer in
	// tick order. A full buffer drops the frame rather than stalling the
	// loop on a slow observer.
	server.stateobserversmutex.Lock()
	for _, subscriber := range server.stateobservers {
		select {
		case subscriber <- msg:
		default:
		}
	}
	server.stateobserversmutex.Unlock()
}

// stepAgent moves the agent one gradient ascent step on its own coverage,
// constrained to its region. Near the edge, any outward component of the step
// is rejected; an agent somehow outside is pushed straight back in.
func (server *Server) stepAgent(holder *agentHolder) {
	agent := holder.agent

	step := agent.PositionCoverageGradient().MultScalar(server.config.PositionGain)

	bvalue := holder.boundary.Value(agent.Position())
	bgrad := holder.boundary.Gradient(agent.Position())

	if bvalue <= server.config.BoundaryMargin && step.Dot(bgrad) < 0 {
		step = trigo.Rejection(step, bgrad)
	}

	if bvalue < 0 {
		step = step.Add(bgrad.MultScalar(-bvalue))
	}

	newposition := agent.Position().Add(step)
	newtheta := agent.Orientation() + server.config.OrientationGain*agent.OrientationCoverageGradient()

	x, y := newposition.Get()
	agent.SetPose(x, y, newtheta)
}

// runTradeRound pairs the next agent (round robin) with its neighbour in the
// registration order. The initiator side applies immediately; the partner
// side goes out as an ownership patch and completes on acknowledgement.
func (server *Server) runTradeRound() {
	server.agentsmutex.Lock()

	if len(server.agents) < 2 {
		server.agentsmutex.Unlock()
		return
	}

	initiator := server.agents[server.tradeCursor%len(server.agents)]
	target := server.agents[(server.tradeCursor+1)%len(server.agents)]
	server.tradeCursor++

	// Open mutates the initiator's collection; the mq listener goroutine may
	// be applying an incoming patch to the same agent, so the whole decision
	// runs under the agents mutex.
	trade := initiator.ledger.Open(
		initiator.agent,
		target.agent.GetId(),
		target.agent.Position(),
		target.agent.Orientation(),
		target.agent.Landmarks(),
	)

	server.agentsmutex.Unlock()

	if !trade.Success {
		return
	}

	server.tradesOpened.Add(1)

	// Marked sent before the write: the broker loops the patch back, so the
	// acknowledgement can race the return of Publish.
	initiator.ledger.UpdateStatePatchSent(trade.ID)

	message := protocol.TradePatchMessageFromPatch(trade.Patch)
	if err := server.brokerclient.Publish("trade", "patch", message); err != nil {
		// The patch stays pending in the ledger and will be retransmitted.
		utils.RecoverableError("coverage-server", "could not publish trade patch: "+err.Error())
	}
}

// resendPendingPatches republishes every unacknowledged patch. The partner
// ledger absorbs duplicates, so retransmission is always safe.
func (server *Server) resendPendingPatches() {
	server.agentsmutex.Lock()
	holders := make([]*agentHolder, len(server.agents))
	copy(holders, server.agents)
	server.agentsmutex.Unlock()

	for _, holder := range holders {
		for _, patch := range holder.ledger.PendingPatches() {
			message := protocol.TradePatchMessageFromPatch(patch)
			if err := server.brokerclient.Publish("trade", "patch", message); err != nil {
				utils.RecoverableError("coverage-server", "could not republish trade patch: "+err.Error())
			}
		}
	}
}

func (server *Server) Stop() {
	utils.Debug("coverage-server", "Stopping")

	server.stopticking <- true

	server.TearDown()
}

func (server *Server) AddTearDownCall(fn types.TearDownCallback) {
	server.tearDownCallbacksMutex.Lock()
	defer server.tearDownCallbacksMutex.Unlock()

	server.tearDownCallbacks = append(server.tearDownCallbacks, fn)
}

func (server *Server) TearDown() {
	utils.Debug("coverage-server", "teardown")

	server.tearDownCallbacksMutex.Lock()

	for i := len(server.tearDownCallbacks) - 1; i >= 0; i-- {
		utils.Debug("coverage-server", "teardown callback #"+strconv.Itoa(i))
		server.tearDownCallbacks[i]()
	}

	server.tearDownCallbacks = make([]types.TearDownCallback, 0)

	server.tearDownCallbacksMutex.Unlock()
}
