package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/satonic/payperview-api/internal/models"
	"github.com/satonic/payperview-api/internal/registry"
)

// SplitPayment divides value among the table's recipients by basis points.
// Each amount is floor(value * share / 10000); the truncation remainder goes to the
// last recipient so the payouts always sum to value.
func SplitPayment(value decimal.Decimal, table models.RoyaltyTable) ([]models.Payout, error) {
	if err := registry.ValidateRoyalty(table.Recipients, table.Shares); err != nil {
		return nil, err
	}
	if value.IsNegative() || !value.IsInteger() {
		return nil, fmt.Errorf("%w: value %s is not a whole native amount", models.ErrValidation, value)
	}

	total := decimal.NewFromInt(models.BasisPointsTotal)
	payouts := make([]models.Payout, len(table.Recipients))
	paid := decimal.Zero
	for i, recipient := range table.Recipients {
		amount, _ := value.Mul(decimal.NewFromInt(int64(table.Shares[i]))).QuoRem(total, 0)
		payouts[i] = models.Payout{
			Recipient: recipient,
			Share:     table.Shares[i],
			Amount:    amount,
		}
		paid = paid.Add(amount)
	}

	last := len(payouts) - 1
	payouts[last].Amount = payouts[last].Amount.Add(value.Sub(paid))

	return payouts, nil
}

type settlementKey struct{}

// withSettlement marks ctx as belonging to an in-flight settlement
func withSettlement(ctx context.Context, settlementID string) context.Context {
	return context.WithValue(ctx, settlementKey{}, settlementID)
}

// SettlementIDFromContext returns the id of the settlement ctx was derived from
func SettlementIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(settlementKey{}).(string)
	return id, ok
}
