package engine

import (
	"errors"

	"github.com/dlobex/dlobex/pkg/orderbook"
)

var (
	// Validation reuses the book's sentinels so errors.Is works across layers.
	ErrInvalidQuantity = orderbook.ErrInvalidQuantity
	ErrInvalidPrice    = orderbook.ErrInvalidPrice

	ErrTradingNotActive      = errors.New("trading is not active")
	ErrParticipantNotAllowed = errors.New("participant is not allowed")
	ErrCrossedBuyPrice       = errors.New("crossed buy price > best sell price")
	ErrCrossedSellPrice      = errors.New("crossed sell price < best buy price")
	ErrSelfTrade             = errors.New("cannot match own order")
	ErrSettlementFunds       = errors.New("not enough funds for settlement")
	ErrSettlementIndex       = errors.New("settlement index out of range")
)
