package orderbook

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Opposite returns the side a taker order matches against.
func (s Side) Opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

// Order is a single order resting in the book. SequenceID is assigned by the
// engine in submission order and is the time-priority key; ClientOrderID is
// caller-supplied and only used for event correlation, the book never assumes
// it is unique. Prices and quantities are integer tick / lot units.
type Order struct {
	ClientOrderID int64
	SequenceID    uint64
	Owner         string
	Side          Side
	Quantity      int64 // remaining unfilled lots, > 0 while in the book
	Price         int64 // limit price in ticks, 0 for market takers
}
