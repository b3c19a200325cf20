package orderbook

import "errors"

var (
	ErrInvalidQuantity = errors.New("amount must be > 0")
	ErrInvalidPrice    = errors.New("price must be > 0")
	ErrOrderNotFound   = errors.New("order not found in book")
	ErrFillTooLarge    = errors.New("fill exceeds resting quantity")
)
