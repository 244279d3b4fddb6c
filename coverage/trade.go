package coverage

import (
	"strconv"
	"sync"

	uuid "github.com/satori/go.uuid"
	bettererrors "github.com/xtuc/better-errors"

	"github.com/phenixreturn/multi-agent-coverage-planner/common/utils/vector"
)

// A trade is not atomic across the two agents: the initiator applies its own
// side immediately, and the partner's side travels as an ownership patch
// over an at-least-once transport. The ledger tracks each pending trade
// through an explicit state machine and shields the partner from replays.
const (
	TRADE_PROPOSED byte = 1 << iota
	TRADE_SELF_APPLIED
	TRADE_PATCH_SENT
	TRADE_COMPLETED
)

// OwnershipPatch is the instruction set completing the partner half of a
// trade: removal by original index, then appends. Sequence is monotonic per
// initiator and is the replay/idempotency key.
type OwnershipPatch struct {
	TradeID       uuid.UUID
	Sequence      uint64
	Initiator     uuid.UUID
	Target        uuid.UUID
	RemoveIndexes []int
	Add           []Landmark
}

func (patch OwnershipPatch) IsNoop() bool {
	return len(patch.RemoveIndexes) == 0 && len(patch.Add) == 0
}

type PendingTrade struct {
	ID        uuid.UUID
	Sequence  uint64
	Initiator uuid.UUID
	Target    uuid.UUID
	Success   bool
	Patch     OwnershipPatch

	state byte
}

func (trade *PendingTrade) State() byte {
	return trade.state
}

// TradeLedger is the per-agent bookkeeping of the two-phase exchange: the
// trades this agent initiated and has not yet seen acknowledged, and the
// patches this agent already applied on behalf of others.
type TradeLedger struct {
	mutex sync.Mutex

	nextSequence uint64
	pending      map[uuid.UUID]*PendingTrade

	appliedTrades   map[uuid.UUID]struct{}
	highestSequence map[uuid.UUID]uint64 // per initiator
}

func NewTradeLedger() *TradeLedger {
	return &TradeLedger{
		nextSequence:    1,
		pending:         make(map[uuid.UUID]*PendingTrade),
		appliedTrades:   make(map[uuid.UUID]struct{}),
		highestSequence: make(map[uuid.UUID]uint64),
	}
}

// Open runs the trade decision for the initiator against a snapshot of the
// target, applies the initiator side (TRADE_SELF_APPLIED), and returns the
// pending trade carrying the patch the target still has to apply.
// A trade that moved nothing is completed on the spot.
func (ledger *TradeLedger) Open(initiator *Agent, targetID uuid.UUID, targetPosition vector.Vector2, targetOrientation float64, targetLandmarks []Landmark) *PendingTrade {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	trade := &PendingTrade{
		ID:        uuid.NewV4(), // random uuid
		Sequence:  ledger.nextSequence,
		Initiator: initiator.GetId(),
		Target:    targetID,
		state:     TRADE_PROPOSED,
	}
	ledger.nextSequence++

	success, removalIndexes, landmarksForTarget := initiator.Trade(targetPosition, targetOrientation, targetLandmarks)

	trade.Success = success
	trade.state = TRADE_SELF_APPLIED
	trade.Patch = OwnershipPatch{
		TradeID:       trade.ID,
		Sequence:      trade.Sequence,
		Initiator:     initiator.GetId(),
		Target:        targetID,
		RemoveIndexes: removalIndexes,
		Add:           landmarksForTarget,
	}

	if !success {
		trade.state = TRADE_COMPLETED
		return trade
	}

	ledger.pending[trade.ID] = trade

	return trade
}

func (ledger *TradeLedger) UpdateStatePatchSent(id uuid.UUID) bool {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	trade, found := ledger.pending[id]
	if !found || trade.state != TRADE_SELF_APPLIED {
		return false
	}

	trade.state = TRADE_PATCH_SENT
	return true
}

func (ledger *TradeLedger) UpdateStateCompleted(id uuid.UUID) bool {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	trade, found := ledger.pending[id]
	if !found || trade.state != TRADE_PATCH_SENT {
		return false
	}

	trade.state = TRADE_COMPLETED
	delete(ledger.pending, id)
	return true
}

func (ledger *TradeLedger) QueryPending(id uuid.UUID) *PendingTrade {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	trade, found := ledger.pending[id]
	if !found {
		return nil
	}

	return trade
}

// PendingPatches returns the patches whose acknowledgement is still missing,
// for retransmission. Duplicate delivery is absorbed by the partner's ledger.
func (ledger *TradeLedger) PendingPatches() []OwnershipPatch {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	patches := make([]OwnershipPatch, 0, len(ledger.pending))
	for _, trade := range ledger.pending {
		if trade.state == TRADE_PATCH_SENT {
			patches = append(patches, trade.Patch)
		}
	}

	return patches
}

func (ledger *TradeLedger) NumPending() int {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	return len(ledger.pending)
}

// ApplyPatch applies an incoming ownership patch to the target agent.
// A patch already applied (same trade uuid) is acknowledged without touching
// the collection, so duplicate delivery is harmless. An unknown patch whose
// sequence is not beyond the highest applied for that initiator is stale and
// is rejected before any index is interpreted.
func (ledger *TradeLedger) ApplyPatch(target *Agent, patch OwnershipPatch) error {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	if _, alreadyApplied := ledger.appliedTrades[patch.TradeID]; alreadyApplied {
		return nil
	}

	if highest, found := ledger.highestSequence[patch.Initiator]; found && patch.Sequence <= highest {
		return bettererrors.
			New("ownership patch out of sequence").
			SetContext("sequence", strconv.FormatUint(patch.Sequence, 10)).
			SetContext("highest applied", strconv.FormatUint(highest, 10)).
			SetContext("initiator", patch.Initiator.String())
	}

	if err := target.ApplyOwnershipPatch(patch.RemoveIndexes, patch.Add); err != nil {
		return err
	}

	ledger.appliedTrades[patch.TradeID] = struct{}{}
	ledger.highestSequence[patch.Initiator] = patch.Sequence

	return nil
}

func TradeStateToString(state byte) string {
	switch state {
	case TRADE_PROPOSED:
		return "proposed"
	case TRADE_SELF_APPLIED:
		return "self-applied"
	case TRADE_PATCH_SENT:
		return "patch-sent"
	case TRADE_COMPLETED:
		return "completed"
	}

	return "unknown (" + strconv.Itoa(int(state)) + ")"
}
