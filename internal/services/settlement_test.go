package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonic/payperview-api/internal/models"
)

func TestSplitPayment(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		shares []uint32
		want   []string
	}{
		{"single recipient", "898299991", []uint32{10000}, []string{"898299991"}},
		{"even split with odd value", "898299991", []uint32{5000, 5000}, []string{"449149995", "449149996"}},
		{"thirds", "999", []uint32{3333, 3333, 3334}, []string{"332", "332", "335"}},
		{"zero value", "0", []uint32{5000, 5000}, []string{"0", "0"}},
		{"dust", "1", []uint32{5000, 5000}, []string{"0", "1"}},
		{"large value", "6049158189633726017", []uint32{2500, 7500}, []string{"1512289547408431504", "4536868642225294513"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipients := make([]string, len(tt.shares))
			for i := range recipients {
				recipients[i] = string(rune('a' + i))
			}
			value := decimal.RequireFromString(tt.value)

			payouts, err := SplitPayment(value, models.RoyaltyTable{Recipients: recipients, Shares: tt.shares})
			require.NoError(t, err)
			require.Len(t, payouts, len(tt.want))

			total := decimal.Zero
			for i, p := range payouts {
				assert.Equal(t, tt.want[i], p.Amount.String(), "payout %d", i)
				assert.Equal(t, recipients[i], p.Recipient)
				assert.Equal(t, tt.shares[i], p.Share)
				total = total.Add(p.Amount)
			}
			assert.True(t, total.Equal(value))
		})
	}
}

func TestSplitPayment_Rejects(t *testing.T) {
	valid := models.RoyaltyTable{Recipients: []string{"a"}, Shares: []uint32{10000}}

	_, err := SplitPayment(decimal.NewFromInt(-1), valid)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = SplitPayment(decimal.RequireFromString("1.5"), valid)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = SplitPayment(decimal.NewFromInt(10), models.RoyaltyTable{Recipients: []string{"a"}, Shares: []uint32{9000}})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSettlementIDFromContext(t *testing.T) {
	_, ok := SettlementIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := SettlementIDFromContext(withSettlement(context.Background(), "s-1"))
	assert.True(t, ok)
	assert.Equal(t, "s-1", id)
}

func TestMemoryTreasury_Settle(t *testing.T) {
	treasury := NewMemoryTreasury()
	ctx := context.Background()

	settlement := models.Settlement{
		ID:    "s-1",
		Value: decimal.NewFromInt(10),
		Payouts: []models.Payout{
			{Recipient: "a", Amount: decimal.NewFromInt(4)},
			{Recipient: "b", Amount: decimal.NewFromInt(6)},
		},
	}
	require.NoError(t, treasury.Settle(ctx, settlement))
	require.NoError(t, treasury.Settle(ctx, settlement))

	a, err := treasury.Balance(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "8", a.String())

	b, err := treasury.Balance(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "12", b.String())
	assert.Len(t, treasury.Settlements(), 2)
}

func TestMemoryTreasury_AllOrNothing(t *testing.T) {
	treasury := NewMemoryTreasury()
	ctx := context.Background()

	mismatched := models.Settlement{
		Value:   decimal.NewFromInt(10),
		Payouts: []models.Payout{{Recipient: "a", Amount: decimal.NewFromInt(9)}},
	}
	assert.ErrorIs(t, treasury.Settle(ctx, mismatched), models.ErrTransferFailure)

	treasury.Freeze("b")
	frozen := models.Settlement{
		Value: decimal.NewFromInt(10),
		Payouts: []models.Payout{
			{Recipient: "a", Amount: decimal.NewFromInt(5)},
			{Recipient: "b", Amount: decimal.NewFromInt(5)},
		},
	}
	assert.ErrorIs(t, treasury.Settle(ctx, frozen), models.ErrTransferFailure)

	a, err := treasury.Balance(ctx, "a")
	require.NoError(t, err)
	assert.True(t, a.IsZero())
	assert.Empty(t, treasury.Settlements())

	treasury.Unfreeze("b")
	require.NoError(t, treasury.Settle(ctx, frozen))
	b, err := treasury.Balance(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "5", b.String())
}
