package protocol_test

import (
	"encoding/json"
	"testing"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/protocol"
	"github.com/phenixreturn/multi-agent-coverage-planner/coverage"
)

func makePatch() coverage.OwnershipPatch {
	return coverage.OwnershipPatch{
		TradeID:       uuid.NewV4(),
		Sequence:      7,
		Initiator:     uuid.NewV4(),
		Target:        uuid.NewV4(),
		RemoveIndexes: []int{0, 2},
		Add: []coverage.Landmark{
			coverage.MakeLandmark(1.5, -0.25),
			coverage.MakeLandmark(0, 0),
		},
	}
}

func TestPatchSurvivesTheWire(t *testing.T) {
	patch := makePatch()

	message := protocol.TradePatchMessageFromPatch(patch)

	data, err := json.Marshal(message)
	assert.NoError(t, err)

	var received protocol.TradePatchMessage
	assert.NoError(t, json.Unmarshal(data, &received))

	decoded, err := received.ToPatch()
	assert.NoError(t, err)

	assert.Equal(t, patch.TradeID, decoded.TradeID)
	assert.Equal(t, patch.Sequence, decoded.Sequence)
	assert.Equal(t, patch.Initiator, decoded.Initiator)
	assert.Equal(t, patch.Target, decoded.Target)
	assert.Equal(t, patch.RemoveIndexes, decoded.RemoveIndexes)

	// landmark identity crosses the wire, not just coordinates
	assert.Equal(t, len(patch.Add), len(decoded.Add))
	for i := range patch.Add {
		assert.Equal(t, patch.Add[i].GetId(), decoded.Add[i].GetId())
		assert.True(t, patch.Add[i].Position().Equals(decoded.Add[i].Position()))
	}
}

func TestMalformedIdsAreRejected(t *testing.T) {
	message := protocol.TradePatchMessageFromPatch(makePatch())
	message.TradeID = "not-a-uuid"

	_, err := message.ToPatch()
	assert.Error(t, err)

	message = protocol.TradePatchMessageFromPatch(makePatch())
	message.Add[0].Id = "garbage"

	_, err = message.ToPatch()
	assert.Error(t, err)
}
