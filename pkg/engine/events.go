package engine

import "github.com/dlobex/dlobex/pkg/orderbook"

// Event is a notification produced by the engine after a call commits. The
// engine never talks to a transport itself; subscribers (kafka publisher,
// market data cache, test hooks) receive events synchronously in commit
// order via Subscribe.
type Event interface {
	Kind() string
}

// OrderPlaced is emitted for every accepted limit order, matched or resting,
// carrying the engine-assigned sequence id and the original quantity. Market
// orders never emit it.
type OrderPlaced struct {
	SequenceID    uint64         `json:"sequence_id"`
	ClientOrderID int64          `json:"client_order_id"`
	Owner         string         `json:"owner"`
	Side          orderbook.Side `json:"side"`
	Quantity      int64          `json:"quantity"`
	Price         int64          `json:"price"`
}

func (OrderPlaced) Kind() string { return "order_placed" }

// SettlementDone is emitted once per fill, after the ledger accepted the
// transfer legs. Index is the instruction's position in the settlement log.
type SettlementDone struct {
	Index int `json:"index"`
	SettlementInstruction
}

func (SettlementDone) Kind() string { return "settlement" }

// TradingStateChanged is emitted by StartTrading / StopTrading.
type TradingStateChanged struct {
	Active bool `json:"active"`
}

func (TradingStateChanged) Kind() string { return "trading_state" }

// ParticipantChanged is emitted by AddParticipant / RemoveParticipant.
type ParticipantChanged struct {
	Owner   string `json:"owner"`
	Allowed bool   `json:"allowed"`
}

func (ParticipantChanged) Kind() string { return "participant" }
