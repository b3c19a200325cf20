package orderbook

import (
	"fmt"
	"strings"

	"github.com/gammazero/deque"
)

// Book is the two-sided limit order book for one trading pair. Each side maps
// price -> FIFO queue of resting orders; the per-side price index tracks the
// sorted set of non-empty levels. The book exclusively owns the orders it
// holds: callers hand orders over in Rest and mutate them only through
// ReduceOrRemove.
//
// Book does no locking. The engine serializes every call that touches it.
type Book struct {
	buys  map[int64]*deque.Deque[*Order]
	sells map[int64]*deque.Deque[*Order]

	buyIndex  *priceIndex
	sellIndex *priceIndex
}

func NewBook() *Book {
	return &Book{
		buys:      make(map[int64]*deque.Deque[*Order]),
		sells:     make(map[int64]*deque.Deque[*Order]),
		buyIndex:  newPriceIndex(func(a, b int64) bool { return a > b }),
		sellIndex: newPriceIndex(func(a, b int64) bool { return a < b }),
	}
}

func (b *Book) side(s Side) (map[int64]*deque.Deque[*Order], *priceIndex) {
	if s == BUY {
		return b.buys, b.buyIndex
	}
	return b.sells, b.sellIndex
}

// Rest appends order to the tail of its price level, creating the level and
// registering it with the price index when it is the first order there.
func (b *Book) Rest(o *Order) error {
	if o.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if o.Price <= 0 {
		return ErrInvalidPrice
	}

	levels, index := b.side(o.Side)
	q := levels[o.Price]
	if q == nil {
		q = &deque.Deque[*Order]{}
		levels[o.Price] = q
		index.insert(o.Price)
	}
	q.PushBack(o)
	return nil
}

// BestPrice returns the most aggressive price level on side.
func (b *Book) BestPrice(s Side) (int64, bool) {
	_, index := b.side(s)
	return index.best()
}

// PeekBest returns the oldest order at the best price level on side.
func (b *Book) PeekBest(s Side) (*Order, bool) {
	levels, index := b.side(s)
	price, ok := index.best()
	if !ok {
		return nil, false
	}
	return levels[price].Front(), true
}

// Prices returns the full sorted level list for side, best first.
func (b *Book) Prices(s Side) []int64 {
	_, index := b.side(s)
	return index.snapshot()
}

// Orders returns the FIFO queue at (side, price) oldest first. The returned
// slice is a snapshot; the orders it points at still belong to the book and
// must not be mutated by the caller.
func (b *Book) Orders(s Side, price int64) []*Order {
	levels, _ := b.side(s)
	q := levels[price]
	if q == nil {
		return nil
	}
	out := make([]*Order, q.Len())
	for i := 0; i < q.Len(); i++ {
		out[i] = q.At(i)
	}
	return out
}

// ReduceOrRemove decrements a resting order's quantity by filled lots. An
// order filled down to zero leaves its queue, and a level drained empty
// leaves the price index, so a level exists iff its queue is non-empty.
func (b *Book) ReduceOrRemove(o *Order, filled int64) error {
	if filled <= 0 {
		return ErrInvalidQuantity
	}
	if filled > o.Quantity {
		return ErrFillTooLarge
	}

	levels, index := b.side(o.Side)
	q := levels[o.Price]
	if q == nil {
		return ErrOrderNotFound
	}

	o.Quantity -= filled
	if o.Quantity > 0 {
		return nil
	}

	// Fills consume a level head first, so the common case pops the front.
	if q.Front() == o {
		q.PopFront()
	} else {
		removed := false
		for i := 0; i < q.Len(); i++ {
			if q.At(i) == o {
				q.Remove(i)
				removed = true
				break
			}
		}
		if !removed {
			return ErrOrderNotFound
		}
	}

	if q.Len() == 0 {
		delete(levels, o.Price)
		index.remove(o.Price)
	}
	return nil
}

// Size returns the number of resting orders on side.
func (b *Book) Size(s Side) int {
	levels, _ := b.side(s)
	n := 0
	for _, q := range levels {
		n += q.Len()
	}
	return n
}

// Reset clears both sides.
func (b *Book) Reset() {
	b.buys = make(map[int64]*deque.Deque[*Order])
	b.sells = make(map[int64]*deque.Deque[*Order])
	b.buyIndex = newPriceIndex(func(a, b int64) bool { return a > b })
	b.sellIndex = newPriceIndex(func(a, b int64) bool { return a < b })
}

// String renders the book level by level for debugging.
func (b *Book) String() string {
	var sb strings.Builder
	render := func(label string, s Side) {
		fmt.Fprintf(&sb, "%s:\n", label)
		_, index := b.side(s)
		for _, price := range index.snapshot() {
			fmt.Fprintf(&sb, "  %d:", price)
			for _, o := range b.Orders(s, price) {
				fmt.Fprintf(&sb, " [#%d %s qty=%d]", o.SequenceID, o.Owner, o.Quantity)
			}
			sb.WriteByte('\n')
		}
	}
	render("SELL", SELL)
	render("BUY", BUY)
	return sb.String()
}
