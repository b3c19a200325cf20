package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dlobex/dlobex/pkg/orderbook"
)

// Config carries the engine's pair definition. BaseAsset is the asset traded
// in lots, TermAsset the asset prices are quoted in.
type Config struct {
	BaseAsset string
	TermAsset string
	Logger    *zap.Logger
}

// Engine is the matching core for one trading pair: it owns the order book,
// the settlement log, the participant allow-list and the trading gate, and it
// instructs the external ledger collaborator which transfers to execute. It
// never moves value itself.
//
// Every call runs to completion under one mutex, so calls are totally ordered
// and sequence ids follow submission order. A call either commits all of its
// effects or none: preconditions, self-trade detection and the ledger batch
// are all resolved before the first book mutation.
type Engine struct {
	mu sync.Mutex

	baseAsset string
	termAsset string
	log       *zap.Logger

	ledger       Ledger
	book         *orderbook.Book
	settlements  settlementLog
	participants map[string]struct{}
	trading      bool
	nextSeq      uint64

	subs []func(Event)
}

func New(ledger Ledger, cfg *Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		baseAsset:    cfg.BaseAsset,
		termAsset:    cfg.TermAsset,
		log:          logger,
		ledger:       ledger,
		book:         orderbook.NewBook(),
		participants: make(map[string]struct{}),
	}
}

// Subscribe registers a callback receiving every event the engine emits.
// Callbacks run synchronously in commit order while the engine lock is held:
// keep them fast and never call back into the engine from one.
func (e *Engine) Subscribe(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

func (e *Engine) emit(ev Event) {
	for _, fn := range e.subs {
		fn(ev)
	}
}

// PlaceLimitOrder validates, matches and, when quantity remains, rests a
// limit order. Emits one OrderPlaced event and one SettlementDone per fill.
func (e *Engine) PlaceLimitOrder(ctx context.Context, owner string, clientOrderID int64, isBuy bool, quantity, price int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	side := sideOf(isBuy)
	if err := e.gate(owner); err != nil {
		return err
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	// Crossing rule: a limit priced through the best opposite level is
	// rejected outright; pricing exactly at the best level matches.
	if side == orderbook.BUY {
		if best, ok := e.book.BestPrice(orderbook.SELL); ok && price > best {
			return fmt.Errorf("%w (%d > %d)", ErrCrossedBuyPrice, price, best)
		}
	} else {
		if best, ok := e.book.BestPrice(orderbook.BUY); ok && price < best {
			return fmt.Errorf("%w (%d < %d)", ErrCrossedSellPrice, price, best)
		}
	}

	taker := &orderbook.Order{
		ClientOrderID: clientOrderID,
		Owner:         owner,
		Side:          side,
		Quantity:      quantity,
		Price:         price,
	}

	fills, err := e.planFills(taker, false)
	if err != nil {
		return err
	}
	if err := e.settle(ctx, taker, fills); err != nil {
		return err
	}

	e.nextSeq++
	taker.SequenceID = e.nextSeq
	e.emit(OrderPlaced{
		SequenceID:    taker.SequenceID,
		ClientOrderID: clientOrderID,
		Owner:         owner,
		Side:          side,
		Quantity:      quantity,
		Price:         price,
	})
	e.commit(taker, fills)

	if taker.Quantity > 0 {
		if err := e.book.Rest(taker); err != nil {
			return err
		}
	}
	e.log.Debug("limit order placed",
		zap.Uint64("seq", taker.SequenceID),
		zap.String("owner", owner),
		zap.String("side", string(side)),
		zap.Int64("quantity", quantity),
		zap.Int64("price", price),
		zap.Int("fills", len(fills)))
	return nil
}

// PlaceMarketOrder matches against whatever the book offers; any remainder
// once the opposite side is exhausted is discarded, market orders never rest.
func (e *Engine) PlaceMarketOrder(ctx context.Context, owner string, isBuy bool, quantity int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.gate(owner); err != nil {
		return err
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	taker := &orderbook.Order{
		Owner:    owner,
		Side:     sideOf(isBuy),
		Quantity: quantity,
	}

	fills, err := e.planFills(taker, true)
	if err != nil {
		return err
	}
	if err := e.settle(ctx, taker, fills); err != nil {
		return err
	}

	e.nextSeq++
	taker.SequenceID = e.nextSeq
	e.commit(taker, fills)

	e.log.Debug("market order executed",
		zap.Uint64("seq", taker.SequenceID),
		zap.String("owner", owner),
		zap.String("side", string(taker.Side)),
		zap.Int64("quantity", quantity),
		zap.Int("fills", len(fills)),
		zap.Int64("unfilled", taker.Quantity))
	return nil
}

// gate runs the session preconditions shared by both entry points.
func (e *Engine) gate(owner string) error {
	if !e.trading {
		return ErrTradingNotActive
	}
	if _, ok := e.participants[owner]; !ok {
		return fmt.Errorf("%w: %s", ErrParticipantNotAllowed, owner)
	}
	return nil
}

// settle hands the planned fills to the ledger. Nothing in the engine has
// been mutated yet, so a ledger refusal aborts the call cleanly.
func (e *Engine) settle(ctx context.Context, taker *orderbook.Order, fills []fill) error {
	if len(fills) == 0 {
		return nil
	}
	if err := e.ledger.Settle(ctx, e.legsFor(taker, fills)); err != nil {
		return fmt.Errorf("%w: %v", ErrSettlementFunds, err)
	}
	return nil
}

// commit applies planned fills to the book and appends their instructions to
// the settlement log. The plan was built from current state and no other call
// can interleave, so ReduceOrRemove cannot fail here.
func (e *Engine) commit(taker *orderbook.Order, fills []fill) {
	for _, f := range fills {
		if err := e.book.ReduceOrRemove(f.maker, f.qty); err != nil {
			panic(fmt.Sprintf("book out of sync with fill plan: %v", err))
		}
		taker.Quantity -= f.qty
		in := e.settlementFor(taker, f)
		idx := e.settlements.append(in)
		e.emit(SettlementDone{Index: idx, SettlementInstruction: in})
	}
}

// NumSettlements returns the settlement log length.
func (e *Engine) NumSettlements() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settlements.count()
}

// Settlement returns the instruction at index i.
func (e *Engine) Settlement(i int) (SettlementInstruction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settlements.get(i)
}

// BuyPrices returns all buy levels, strictly descending.
func (e *Engine) BuyPrices() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Prices(orderbook.BUY)
}

// SellPrices returns all sell levels, strictly ascending.
func (e *Engine) SellPrices() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Prices(orderbook.SELL)
}

// PriceLevel is one aggregated book level for inspection surfaces.
type PriceLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int   `json:"orders"`
}

// Depth aggregates one side of the book level by level, best first.
func (e *Engine) Depth(isBuy bool) []PriceLevel {
	e.mu.Lock()
	defer e.mu.Unlock()

	side := sideOf(isBuy)
	prices := e.book.Prices(side)
	out := make([]PriceLevel, 0, len(prices))
	for _, price := range prices {
		level := PriceLevel{Price: price}
		for _, o := range e.book.Orders(side, price) {
			level.Quantity += o.Quantity
			level.Orders++
		}
		out = append(out, level)
	}
	return out
}

// Dump renders the book for debugging.
func (e *Engine) Dump() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.String()
}

// Reset clears the book and the settlement log between trading sessions. The
// allow-list, the trading gate and the sequence counter survive a reset.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.book.Reset()
	e.settlements.reset()
	e.log.Info("session reset")
}

// StartTrading opens the gate for order placement.
func (e *Engine) StartTrading() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trading = true
	e.emit(TradingStateChanged{Active: true})
	e.log.Info("trading started")
}

// StopTrading closes the gate; placement calls fail until restarted.
func (e *Engine) StopTrading() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trading = false
	e.emit(TradingStateChanged{Active: false})
	e.log.Info("trading stopped")
}

// TradingActive reports the gate state.
func (e *Engine) TradingActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trading
}

// AddParticipant admits owner to the exchange.
func (e *Engine) AddParticipant(owner string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.participants[owner] = struct{}{}
	e.emit(ParticipantChanged{Owner: owner, Allowed: true})
}

// RemoveParticipant revokes owner's admission. Resting orders of a removed
// participant stay in the book; only new placements are gated.
func (e *Engine) RemoveParticipant(owner string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.participants, owner)
	e.emit(ParticipantChanged{Owner: owner, Allowed: false})
}

// IsParticipantAllowed reports whether owner is on the allow-list.
func (e *Engine) IsParticipantAllowed(owner string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.participants[owner]
	return ok
}

func sideOf(isBuy bool) orderbook.Side {
	if isBuy {
		return orderbook.BUY
	}
	return orderbook.SELL
}
