package protocol

import (
	uuid "github.com/satori/go.uuid"
	bettererrors "github.com/xtuc/better-errors"

	"github.com/phenixreturn/multi-agent-coverage-planner/coverage"
)

// Wire form of an ownership patch, the second half of a landmark trade.
// Landmarks travel with their minted identity so the receiving side rebuilds
// the very same landmark, not a twin at the same coordinates.
type LandmarkMessage struct {
	Id string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type TradePatchMessage struct {
	TradeID       string            `json:"tradeid"`
	Sequence      uint64            `json:"sequence"`
	Initiator     string            `json:"initiator"`
	Target        string            `json:"target"`
	RemoveIndexes []int             `json:"removeindexes"`
	Add           []LandmarkMessage `json:"add"`
}

type TradeAckMessage struct {
	TradeID   string `json:"tradeid"`
	Initiator string `json:"initiator"`
	Target    string `json:"target"`
}

func TradePatchMessageFromPatch(patch coverage.OwnershipPatch) TradePatchMessage {
	add := make([]LandmarkMessage, 0, len(patch.Add))
	for _, lmk := range patch.Add {
		x, y := lmk.Position().Get()
		add = append(add, LandmarkMessage{
			Id: lmk.GetId().String(),
			X:  x,
			Y:  y,
		})
	}

	return TradePatchMessage{
		TradeID:       patch.TradeID.String(),
		Sequence:      patch.Sequence,
		Initiator:     patch.Initiator.String(),
		Target:        patch.Target.String(),
		RemoveIndexes: patch.RemoveIndexes,
		Add:           add,
	}
}

func (message TradePatchMessage) ToPatch() (coverage.OwnershipPatch, error) {
	tradeID, err := uuid.FromString(message.TradeID)
	if err != nil {
		return coverage.OwnershipPatch{}, bettererrors.
			New("invalid trade patch: malformed trade id").
			SetContext("tradeid", message.TradeID)
	}

	initiator, err := uuid.FromString(message.Initiator)
	if err != nil {
		return coverage.OwnershipPatch{}, bettererrors.
			New("invalid trade patch: malformed initiator id").
			SetContext("initiator", message.Initiator)
	}

	target, err := uuid.FromString(message.Target)
	if err != nil {
		return coverage.OwnershipPatch{}, bettererrors.
			New("invalid trade patch: malformed target id").
			SetContext("target", message.Target)
	}

	add := make([]coverage.Landmark, 0, len(message.Add))
	for _, lmkmsg := range message.Add {
		lmkID, err := uuid.FromString(lmkmsg.Id)
		if err != nil {
			return coverage.OwnershipPatch{}, bettererrors.
				New("invalid trade patch: malformed landmark id").
				SetContext("landmark", lmkmsg.Id)
		}

		add = append(add, coverage.MakeLandmarkWithId(lmkID, lmkmsg.X, lmkmsg.Y))
	}

	return coverage.OwnershipPatch{
		TradeID:       tradeID,
		Sequence:      message.Sequence,
		Initiator:     initiator,
		Target:        target,
		RemoveIndexes: message.RemoveIndexes,
		Add:           add,
	}, nil
}
