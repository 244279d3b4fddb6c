package protocol

import (
	"encoding/json"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/leakybucket"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/mq"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/types"
	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils"
)

type VizStateServer interface {
	GetTicksPerSecond() int
	SubscribeStateObservation() chan types.VizMessage
}

// StreamState relays the server's per-tick state to the viz channel of the
// message broker, one batch per second of simulation.
func StreamState(srv VizStateServer, brokerclient mq.ClientInterface, coverageServerUUID string) {

	buk := leakybucket.NewBucket(
		srv.GetTicksPerSecond(),
		5, // keep 5 seconds of stream in buffer
		func(batch leakybucket.Batch, bucket *leakybucket.Bucket) {
			frames := batch.GetFrames()
			jsonbatch := make([]json.RawMessage, len(frames))
			for i, frame := range frames {
				jsonbatch[i] = json.RawMessage(frame.GetPayload())
			}

			brokerclient.Publish("viz", "message", jsonbatch)
		},
	)

	stateobserver := srv.SubscribeStateObservation()
	for vizmsg := range stateobserver {
		vizmsg.CoverageServer = coverageServerUUID

		data, err := json.Marshal(vizmsg)
		if err != nil {
			utils.RecoverableError("viz-stream", "could not marshal viz frame: "+err.Error())
			continue
		}

		buk.AddFrame(string(data))
	}
}
