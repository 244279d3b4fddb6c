package coverageserver

import (
	"encoding/json"
	"errors"
	"testing"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/mq"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/protocol"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
	"github.com/phenixreturn/multi-agent-coverage-planner/coverage"
)

func positionOf(x float64, y float64) vector.Vector2 {
	return vector.MakeVector2(x, y)
}

// stubBroker delivers every published message straight back to the local
// subscriptions, standing in for the real broker loopback.
type stubBroker struct {
	subscriptions map[string]mq.SubscriptionCallback
	published     []string // "channel:topic" in publication order
	failing       bool
}

func newStubBroker() *stubBroker {
	return &stubBroker{
		subscriptions: make(map[string]mq.SubscriptionCallback),
		published:     make([]string, 0),
	}
}

func (broker *stubBroker) Subscribe(channel string, topic string, onmessage mq.SubscriptionCallback) error {
	broker.subscriptions[channel+":"+topic] = onmessage
	return nil
}

func (broker *stubBroker) Publish(channel string, topic string, payload interface{}) error {
	if broker.failing {
		return errors.New("stub broker is down")
	}

	broker.published = append(broker.published, channel+":"+topic)

	cbk, found := broker.subscriptions[channel+":"+topic]
	if !found {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	cbk(mq.BrokerMessage{
		Channel: channel,
		Topic:   topic,
		Data:    json.RawMessage(data),
	})

	return nil
}

func (broker *stubBroker) Ping() error {
	return nil
}

func (broker *stubBroker) countPublished(lane string) int {
	count := 0
	for _, published := range broker.published {
		if published == lane {
			count++
		}
	}
	return count
}

func makeTestServer(broker *stubBroker, tradePeriod int) *Server {
	config := DefaultConfig("test-swarm")
	config.TradePeriodTicks = tradePeriod

	return NewServer(config, "server-uuid", broker)
}

func ownershipKeys(agents ...*coverage.Agent) map[string]int {
	keys := make(map[string]int)
	for _, agent := range agents {
		for _, lmk := range agent.Landmarks() {
			keys[lmk.GetId().String()]++
		}
	}
	return keys
}

func TestTickImprovesCoverage(t *testing.T) {
	server := makeTestServer(newStubBroker(), 0)

	sensor := coverage.MakeSensor(server.config.OptimalDistance)
	landmarks := []coverage.Landmark{
		coverage.MakeLandmark(1.0, 0.5),
		coverage.MakeLandmark(1.2, -0.3),
		coverage.MakeLandmark(0.8, 0.1),
	}

	agent := coverage.MakeAgent("Axel", 0, 0, 0, landmarks, sensor, server.config.TradeTolerance)
	server.RegisterAgent(agent, coverage.MakeBoundary(-2.5, 2.5, -2.5, 2.5))

	before := agent.Coverage()

	for i := 0; i < 50; i++ {
		server.doTick()
	}

	assert.Greater(t, agent.Coverage(), before)
	assert.Equal(t, 50, server.GetTicknum())
}

func TestTickKeepsAgentInsideItsRegion(t *testing.T) {
	server := makeTestServer(newStubBroker(), 0)

	sensor := coverage.MakeSensor(server.config.OptimalDistance)
	boundary := coverage.MakeBoundary(-1.0, 1.0, -1.0, 1.0)

	// All the mass is outside the region; the gradient pulls outward.
	landmarks := []coverage.Landmark{
		coverage.MakeLandmark(3.0, 0.0),
		coverage.MakeLandmark(3.0, 0.5),
		coverage.MakeLandmark(3.0, -0.5),
	}

	agent := coverage.MakeAgent("Bo", 0.9, 0, 0, landmarks, sensor, server.config.TradeTolerance)
	server.RegisterAgent(agent, boundary)

	for i := 0; i < 500; i++ {
		server.doTick()
	}

	assert.True(t, boundary.Contains(agent.Position()), "agent escaped its region: "+agent.Position().String())
}

func TestTradeRoundOverBrokerLoopback(t *testing.T) {
	broker := newStubBroker()
	server := makeTestServer(broker, 1)
	server.listen()

	sensor := coverage.MakeSensor(server.config.OptimalDistance)

	// Axel owns a landmark sitting right in front of Bo.
	axel := coverage.MakeAgent("Axel", 0, 0, 0,
		[]coverage.Landmark{coverage.MakeLandmark(5, 0)}, sensor, server.config.TradeTolerance)
	bo := coverage.MakeAgent("Bo", 4.5, 0, 0,
		[]coverage.Landmark{}, sensor, server.config.TradeTolerance)

	fullDomain := coverage.MakeBoundary(-10, 10, -10, 10)
	server.RegisterAgent(axel, fullDomain)
	server.RegisterAgent(bo, fullDomain)

	before := ownershipKeys(axel, bo)

	server.resendPendingPatches()
	server.runTradeRound()

	// The stub broker is synchronous: the patch looped back to Bo's side,
	// the ack looped back to Axel's ledger, the trade is closed.
	assert.Equal(t, 0, axel.NumLandmarks())
	assert.Equal(t, 1, bo.NumLandmarks())

	axelHolder := server.agentsById[axel.GetId()]
	assert.Equal(t, 0, axelHolder.ledger.NumPending())

	assert.Equal(t, 1, broker.countPublished("trade:patch"))
	assert.Equal(t, 1, broker.countPublished("trade:ack"))

	after := ownershipKeys(axel, bo)
	assert.Equal(t, before, after)

	metrics := server.FlushMetrics()
	assert.Equal(t, 1, metrics["trades-opened"])
	assert.Equal(t, 1, metrics["trades-completed"])
	assert.Equal(t, 0, metrics["patches-rejected"])
}

func TestTradePatchRetransmission(t *testing.T) {
	broker := newStubBroker()
	server := makeTestServer(broker, 1)
	server.listen()

	sensor := coverage.MakeSensor(server.config.OptimalDistance)

	axel := coverage.MakeAgent("Axel", 0, 0, 0,
		[]coverage.Landmark{coverage.MakeLandmark(5, 0)}, sensor, server.config.TradeTolerance)
	bo := coverage.MakeAgent("Bo", 4.5, 0, 0,
		[]coverage.Landmark{}, sensor, server.config.TradeTolerance)

	fullDomain := coverage.MakeBoundary(-10, 10, -10, 10)
	server.RegisterAgent(axel, fullDomain)
	server.RegisterAgent(bo, fullDomain)

	// First publication fails: the initiator side is applied but the patch
	// never reaches Bo.
	broker.failing = true
	server.runTradeRound()

	axelHolder := server.agentsById[axel.GetId()]
	assert.Equal(t, 0, axel.NumLandmarks())
	assert.Equal(t, 0, bo.NumLandmarks())
	assert.Equal(t, 1, axelHolder.ledger.NumPending())
	assert.Equal(t, 1, len(axelHolder.ledger.PendingPatches()))

	// Broker comes back; the retransmission loop closes the trade.
	broker.failing = false
	server.resendPendingPatches()

	assert.Equal(t, 1, bo.NumLandmarks())
	assert.Equal(t, 0, axelHolder.ledger.NumPending())
}

func TestDuplicatePatchDeliveryIsAbsorbed(t *testing.T) {
	broker := newStubBroker()
	server := makeTestServer(broker, 1)
	server.listen()

	sensor := coverage.MakeSensor(server.config.OptimalDistance)

	axel := coverage.MakeAgent("Axel", 0, 0, 0,
		[]coverage.Landmark{coverage.MakeLandmark(5, 0)}, sensor, server.config.TradeTolerance)
	bo := coverage.MakeAgent("Bo", 4.5, 0, 0,
		[]coverage.Landmark{}, sensor, server.config.TradeTolerance)

	fullDomain := coverage.MakeBoundary(-10, 10, -10, 10)
	server.RegisterAgent(axel, fullDomain)
	server.RegisterAgent(bo, fullDomain)

	server.runTradeRound()
	assert.Equal(t, 1, bo.NumLandmarks())

	// Simulate duplicate delivery of the same patch lane traffic by
	// resending after completion: nothing is pending, nothing moves.
	server.resendPendingPatches()

	assert.Equal(t, 1, bo.NumLandmarks())
	assert.Equal(t, 0, axel.NumLandmarks())
}

// Incoming patches arrive on the mq listener goroutine while the tick loop
// mutates the same agent; both paths must hold the agents mutex, so the
// collection never tears under concurrent delivery.
func TestIncomingPatchesSerializeWithTickLoop(t *testing.T) {
	broker := newStubBroker()
	server := makeTestServer(broker, 0)
	server.listen()

	sensor := coverage.MakeSensor(server.config.OptimalDistance)

	axel := coverage.MakeAgent("Axel", 0, 0, 0,
		[]coverage.Landmark{coverage.MakeLandmark(1, 0)}, sensor, server.config.TradeTolerance)
	server.RegisterAgent(axel, coverage.MakeBoundary(-10, 10, -10, 10))

	// A remote coverage server hands landmarks over, one patch per trade.
	initiator := uuid.NewV4()

	const deliveries = 100

	done := make(chan bool)
	go func() {
		for i := 0; i < deliveries; i++ {
			patch := coverage.OwnershipPatch{
				TradeID:   uuid.NewV4(),
				Sequence:  uint64(i + 1),
				Initiator: initiator,
				Target:    axel.GetId(),
				Add: []coverage.Landmark{
					coverage.MakeLandmark(float64(i)*0.01, 0.5),
				},
			}

			broker.Publish("trade", "patch", protocol.TradePatchMessageFromPatch(patch))
		}
		done <- true
	}()

	for i := 0; i < deliveries; i++ {
		server.doTick()
	}
	<-done

	assert.Equal(t, 1+deliveries, axel.NumLandmarks())
	assert.Equal(t, deliveries, broker.countPublished("trade:ack"))
}

func TestStateObservationPreservesTickOrder(t *testing.T) {
	server := makeTestServer(newStubBroker(), 0)

	sensor := coverage.MakeSensor(server.config.OptimalDistance)
	agent := coverage.MakeAgent("Calle", 0, 0, 0,
		[]coverage.Landmark{coverage.MakeLandmark(1, 0)}, sensor, server.config.TradeTolerance)
	server.RegisterAgent(agent, coverage.MakeBoundary(-10, 10, -10, 10))

	observer := server.SubscribeStateObservation()

	const ticks = 10
	for i := 0; i < ticks; i++ {
		server.doTick()
	}

	for expected := 1; expected <= ticks; expected++ {
		msg := <-observer
		assert.Equal(t, expected, msg.Tick)
	}
}
