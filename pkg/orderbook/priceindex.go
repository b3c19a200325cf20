package orderbook

import "sort"

// priceIndex keeps the distinct price levels of one side in sorted order:
// best price first. The comparator decides direction, so the same type backs
// the descending buy list and the ascending sell list. Insertion and removal
// are O(levels), which is fine at the book depths this engine serves.
type priceIndex struct {
	prices []int64
	better func(a, b int64) bool
}

func newPriceIndex(better func(a, b int64) bool) *priceIndex {
	return &priceIndex{better: better}
}

// rank returns the position of price in the sorted list and whether it is
// already present. Absent prices rank at their insertion point.
func (ix *priceIndex) rank(price int64) (int, bool) {
	i := sort.Search(len(ix.prices), func(i int) bool {
		return !ix.better(ix.prices[i], price)
	})
	return i, i < len(ix.prices) && ix.prices[i] == price
}

// insert adds price keeping sort order. No-op when already present.
func (ix *priceIndex) insert(price int64) {
	i, ok := ix.rank(price)
	if ok {
		return
	}
	ix.prices = append(ix.prices, 0)
	copy(ix.prices[i+1:], ix.prices[i:])
	ix.prices[i] = price
}

// remove deletes price. No-op when absent.
func (ix *priceIndex) remove(price int64) {
	i, ok := ix.rank(price)
	if !ok {
		return
	}
	ix.prices = append(ix.prices[:i], ix.prices[i+1:]...)
}

// best returns the first (most aggressive) price level.
func (ix *priceIndex) best() (int64, bool) {
	if len(ix.prices) == 0 {
		return 0, false
	}
	return ix.prices[0], true
}

// snapshot copies the whole sorted list, best first.
func (ix *priceIndex) snapshot() []int64 {
	out := make([]int64, len(ix.prices))
	copy(out, ix.prices)
	return out
}

func (ix *priceIndex) len() int {
	return len(ix.prices)
}
