package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// TransferLeg is one asset movement requested from the ledger collaborator.
type TransferLeg struct {
	Asset  string `json:"asset"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Ledger executes the transfers behind a batch of settlement instructions.
// Settle is all-or-nothing: either every leg is applied or none are, since
// the engine commits its book mutations only after Settle returns nil.
type Ledger interface {
	Settle(ctx context.Context, legs []TransferLeg) error
}

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrUnknownAsset          = errors.New("unknown asset")
)

// TokenLedger is an in-memory two-asset ledger with approve-style spending
// allowances: a participant grants the exchange an allowance per asset, and
// every settled leg draws it down. It stands in for the external token
// ledgers in tests and single-process deployments.
type TokenLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]int64 // asset -> owner -> balance
	approved map[string]map[string]int64 // asset -> owner -> remaining allowance
}

func NewTokenLedger(assets ...string) *TokenLedger {
	l := &TokenLedger{
		balances: make(map[string]map[string]int64),
		approved: make(map[string]map[string]int64),
	}
	for _, a := range assets {
		l.balances[a] = make(map[string]int64)
		l.approved[a] = make(map[string]int64)
	}
	return l
}

// Mint credits owner with amount of asset.
func (l *TokenLedger) Mint(asset, owner string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[asset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	bal[owner] += amount
	return nil
}

// Approve sets the exchange's remaining spending allowance for owner's asset.
func (l *TokenLedger) Approve(asset, owner string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	app, ok := l.approved[asset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	app[owner] = amount
	return nil
}

func (l *TokenLedger) BalanceOf(asset, owner string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[asset][owner]
}

func (l *TokenLedger) Allowance(asset, owner string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.approved[asset][owner]
}

// Settle applies legs in order and unwinds the applied prefix when any leg
// fails, so a batch never half-commits.
func (l *TokenLedger) Settle(ctx context.Context, legs []TransferLeg) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, leg := range legs {
		if err := l.apply(leg); err != nil {
			for j := i - 1; j >= 0; j-- {
				l.unwind(legs[j])
			}
			return fmt.Errorf("leg %d (%s %d %s -> %s): %w",
				i, leg.Asset, leg.Amount, leg.From, leg.To, err)
		}
	}
	return nil
}

func (l *TokenLedger) apply(leg TransferLeg) error {
	bal, ok := l.balances[leg.Asset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, leg.Asset)
	}
	app := l.approved[leg.Asset]
	if bal[leg.From] < leg.Amount {
		return ErrInsufficientBalance
	}
	if app[leg.From] < leg.Amount {
		return ErrInsufficientAllowance
	}
	bal[leg.From] -= leg.Amount
	app[leg.From] -= leg.Amount
	bal[leg.To] += leg.Amount
	return nil
}

func (l *TokenLedger) unwind(leg TransferLeg) {
	bal := l.balances[leg.Asset]
	app := l.approved[leg.Asset]
	bal[leg.To] -= leg.Amount
	bal[leg.From] += leg.Amount
	app[leg.From] += leg.Amount
}
