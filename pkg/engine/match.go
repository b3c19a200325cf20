package engine

import "github.com/dlobex/dlobex/pkg/orderbook"

// fill is one planned trade against a resting maker order. Plans are built by
// a read-only walk and applied to the book only after the ledger accepted the
// whole batch, which is what makes a placement call all-or-nothing.
type fill struct {
	maker *orderbook.Order
	price int64 // maker's resting price, the price the trade settles at
	qty   int64
}

// crossable reports whether a limit taker is willing to trade at a resting
// level on the opposite side.
func crossable(takerSide orderbook.Side, limit, level int64) bool {
	if takerSide == orderbook.BUY {
		return level <= limit
	}
	return level >= limit
}

// planFills walks the opposite side's levels in price-time priority and
// plans fills until the taker quantity is exhausted or no crossable level
// remains. Market takers accept any level. A maker owned by the taker aborts
// the whole plan: self trades fail the call before anything is mutated.
func (e *Engine) planFills(taker *orderbook.Order, market bool) ([]fill, error) {
	opp := taker.Side.Opposite()
	remaining := taker.Quantity

	var fills []fill
	for _, price := range e.book.Prices(opp) {
		if remaining == 0 || (!market && !crossable(taker.Side, taker.Price, price)) {
			break
		}
		for _, maker := range e.book.Orders(opp, price) {
			if maker.Owner == taker.Owner {
				return nil, ErrSelfTrade
			}
			qty := min(remaining, maker.Quantity)
			fills = append(fills, fill{maker: maker, price: price, qty: qty})
			remaining -= qty
			if remaining == 0 {
				break
			}
		}
	}
	return fills, nil
}

// settlementFor builds the instruction for one fill. Counterparty1 is the
// maker with the leg the maker sends. The buyer always sends qty*price of the
// term asset and the seller qty of the base asset, at the maker's price.
func (e *Engine) settlementFor(taker *orderbook.Order, f fill) SettlementInstruction {
	base, term := f.qty, f.qty*f.price
	if taker.Side == orderbook.SELL {
		// Maker is the buyer.
		return SettlementInstruction{
			Counterparty1: f.maker.Owner, Amount1: term, Asset1: e.termAsset,
			Counterparty2: taker.Owner, Amount2: base, Asset2: e.baseAsset,
			Price: f.price,
		}
	}
	return SettlementInstruction{
		Counterparty1: f.maker.Owner, Amount1: base, Asset1: e.baseAsset,
		Counterparty2: taker.Owner, Amount2: term, Asset2: e.termAsset,
		Price: f.price,
	}
}

// legsFor flattens planned fills into ledger transfer legs, two per fill.
func (e *Engine) legsFor(taker *orderbook.Order, fills []fill) []TransferLeg {
	legs := make([]TransferLeg, 0, 2*len(fills))
	for _, f := range fills {
		buyer, seller := taker.Owner, f.maker.Owner
		if taker.Side == orderbook.SELL {
			buyer, seller = f.maker.Owner, taker.Owner
		}
		legs = append(legs,
			TransferLeg{Asset: e.termAsset, From: buyer, To: seller, Amount: f.qty * f.price},
			TransferLeg{Asset: e.baseAsset, From: seller, To: buyer, Amount: f.qty},
		)
	}
	return legs
}
