package engine

import (
	"context"
	"errors"
	"testing"
)

func TestTokenLedgerMintApprove(t *testing.T) {
	l := NewTokenLedger("HBAR", "HUSD")

	if err := l.Mint("HBAR", "alice", 100); err != nil {
		t.Fatal(err)
	}
	if err := l.Mint("HBAR", "alice", 50); err != nil {
		t.Fatal(err)
	}
	if got := l.BalanceOf("HBAR", "alice"); got != 150 {
		t.Errorf("expected balance 150, got %d", got)
	}

	if err := l.Approve("HBAR", "alice", 40); err != nil {
		t.Fatal(err)
	}
	if got := l.Allowance("HBAR", "alice"); got != 40 {
		t.Errorf("expected allowance 40, got %d", got)
	}

	if err := l.Mint("DOGE", "alice", 1); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}
	if err := l.Approve("DOGE", "alice", 1); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}
}

func TestTokenLedgerSettle(t *testing.T) {
	l := NewTokenLedger("HBAR", "HUSD")
	l.Mint("HBAR", "bob", 100)
	l.Approve("HBAR", "bob", 100)
	l.Mint("HUSD", "alice", 5000)
	l.Approve("HUSD", "alice", 5000)

	legs := []TransferLeg{
		{Asset: "HUSD", From: "alice", To: "bob", Amount: 1100},
		{Asset: "HBAR", From: "bob", To: "alice", Amount: 50},
	}
	if err := l.Settle(context.Background(), legs); err != nil {
		t.Fatal(err)
	}

	if got := l.BalanceOf("HUSD", "alice"); got != 3900 {
		t.Errorf("alice HUSD: expected 3900, got %d", got)
	}
	if got := l.BalanceOf("HUSD", "bob"); got != 1100 {
		t.Errorf("bob HUSD: expected 1100, got %d", got)
	}
	if got := l.BalanceOf("HBAR", "alice"); got != 50 {
		t.Errorf("alice HBAR: expected 50, got %d", got)
	}
	if got := l.Allowance("HUSD", "alice"); got != 3900 {
		t.Errorf("settled legs must draw the allowance down, got %d", got)
	}
	if got := l.Allowance("HBAR", "bob"); got != 50 {
		t.Errorf("settled legs must draw the allowance down, got %d", got)
	}
}

func TestTokenLedgerSettleUnwindsOnFailure(t *testing.T) {
	l := NewTokenLedger("HBAR", "HUSD")
	l.Mint("HUSD", "alice", 5000)
	l.Approve("HUSD", "alice", 5000)
	l.Mint("HBAR", "bob", 100)
	l.Approve("HBAR", "bob", 10) // second leg will fail here

	legs := []TransferLeg{
		{Asset: "HUSD", From: "alice", To: "bob", Amount: 1100},
		{Asset: "HBAR", From: "bob", To: "alice", Amount: 50},
	}
	err := l.Settle(context.Background(), legs)
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}

	// First leg was applied then unwound; everything is back where it was.
	if got := l.BalanceOf("HUSD", "alice"); got != 5000 {
		t.Errorf("alice HUSD: expected 5000 after unwind, got %d", got)
	}
	if got := l.BalanceOf("HUSD", "bob"); got != 0 {
		t.Errorf("bob HUSD: expected 0 after unwind, got %d", got)
	}
	if got := l.Allowance("HUSD", "alice"); got != 5000 {
		t.Errorf("alice HUSD allowance: expected 5000 after unwind, got %d", got)
	}
}

func TestTokenLedgerSettleBalanceShortfall(t *testing.T) {
	l := NewTokenLedger("HBAR", "HUSD")
	l.Mint("HUSD", "alice", 100)
	l.Approve("HUSD", "alice", 5000)

	err := l.Settle(context.Background(), []TransferLeg{
		{Asset: "HUSD", From: "alice", To: "bob", Amount: 1100},
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := l.BalanceOf("HUSD", "alice"); got != 100 {
		t.Errorf("failed settle must not move funds, got %d", got)
	}
}
