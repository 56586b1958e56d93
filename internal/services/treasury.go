package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/satonic/payperview-api/internal/models"
)

// Treasury moves the value of a settlement to its recipients.
//
// Settle must apply every payout and record the grant, or none of them. The context
// it receives marks the settlement, and a mutating call back into the service made with
// that context or one derived from it fails with ErrReentrantCall. Settle runs while the
// service holds its writer lock, so such a call made with an unrelated context, such as
// context.Background(), blocks forever. Read-only service methods are safe from Settle.
type Treasury interface {
	Settle(ctx context.Context, settlement models.Settlement) error
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
}

// MemoryTreasury credits recipients in an in-process balance book
type MemoryTreasury struct {
	mu          sync.Mutex
	balances    map[string]decimal.Decimal
	frozen      map[string]bool
	settlements []models.Settlement
}

var _ Treasury = (*MemoryTreasury)(nil)

// NewMemoryTreasury creates an empty MemoryTreasury
func NewMemoryTreasury() *MemoryTreasury {
	return &MemoryTreasury{
		balances: make(map[string]decimal.Decimal),
		frozen:   make(map[string]bool),
	}
}

// Freeze makes every transfer to address fail
func (t *MemoryTreasury) Freeze(address string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen[address] = true
}

// Unfreeze lifts a Freeze
func (t *MemoryTreasury) Unfreeze(address string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.frozen, address)
}

// Settle checks every payout before crediting any of them
func (t *MemoryTreasury) Settle(ctx context.Context, settlement models.Settlement) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !settlement.Total().Equal(settlement.Value) {
		return fmt.Errorf("%w: payouts total %s but %s was transmitted", models.ErrTransferFailure, settlement.Total(), settlement.Value)
	}
	for _, p := range settlement.Payouts {
		if p.Amount.IsNegative() {
			return fmt.Errorf("%w: negative payout to %s", models.ErrTransferFailure, p.Recipient)
		}
		if t.frozen[p.Recipient] {
			return fmt.Errorf("%w: recipient %s cannot receive funds", models.ErrTransferFailure, p.Recipient)
		}
	}

	for _, p := range settlement.Payouts {
		t.balances[p.Recipient] = t.balances[p.Recipient].Add(p.Amount)
	}
	t.settlements = append(t.settlements, settlement)
	return nil
}

// Balance returns the total credited to address
func (t *MemoryTreasury) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[address], nil
}

// Settlements returns every settlement applied so far
func (t *MemoryTreasury) Settlements() []models.Settlement {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Settlement(nil), t.settlements...)
}
