// Package oracle converts fiat-denominated prices into native currency using a
// round-based exchange-rate feed.
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satonic/payperview-api/internal/models"
)

// Round is one exchange-rate report from a feed.
// Answer is a fixed-point price of one native coin in fiat, scaled by the feed's decimals.
type Round struct {
	RoundID   uint64    `json:"round_id"`
	Answer    int64     `json:"answer"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feed reads the latest round of an exchange-rate feed
type Feed interface {
	LatestRound(ctx context.Context) (Round, error)
}

// Precision describes the decimal places of each unit involved in a conversion
type Precision struct {
	Oracle int32 // decimals of Round.Answer
	Native int32 // native subunits per coin, as a power of ten
	Fiat   int32 // fiat minor units per unit, as a power of ten
}

// DefaultPrecision matches an AVAX/USD feed with 8 decimals, nano-AVAX and prices in cents
var DefaultPrecision = Precision{Oracle: 8, Native: 9, Fiat: 2}

// Scale returns 10^(Oracle+Native-Fiat)
func (p Precision) Scale() decimal.Decimal {
	return decimal.New(1, p.Oracle+p.Native-p.Fiat)
}

// Adapter reads quotes from a Feed and converts prices. It keeps no quote between calls.
type Adapter struct {
	feed   Feed
	scale  decimal.Decimal
	maxAge time.Duration
	now    func() time.Time
}

// Option configures an Adapter
type Option func(*Adapter)

// WithMaxAge rejects rounds older than maxAge. Zero disables the check.
func WithMaxAge(maxAge time.Duration) Option {
	return func(a *Adapter) {
		a.maxAge = maxAge
	}
}

// WithClock sets the clock used for the staleness check
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

// NewAdapter creates an Adapter over feed
func NewAdapter(feed Feed, precision Precision, opts ...Option) *Adapter {
	a := &Adapter{
		feed:  feed,
		scale: precision.Scale(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LatestPrice returns the raw answer of the latest round
func (a *Adapter) LatestPrice(ctx context.Context) (int64, error) {
	round, err := a.feed.LatestRound(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrOracleUnavailable, err)
	}
	if round.Answer <= 0 {
		return 0, fmt.Errorf("%w: round %d reported non-positive answer %d", models.ErrOracleUnavailable, round.RoundID, round.Answer)
	}
	if a.maxAge > 0 && a.now().Sub(round.UpdatedAt) > a.maxAge {
		return 0, fmt.Errorf("%w: round %d is stale (updated %s)", models.ErrOracleUnavailable, round.RoundID, round.UpdatedAt.Format(time.RFC3339))
	}
	return round.Answer, nil
}

// ToNative converts a fiat amount to native subunits, truncating toward zero:
// floor(fiat * scale / price).
func (a *Adapter) ToNative(ctx context.Context, fiat int64) (decimal.Decimal, error) {
	if fiat < 0 {
		return decimal.Zero, fmt.Errorf("%w: fiat amount must not be negative", models.ErrValidation)
	}
	price, err := a.LatestPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Convert(fiat, price, a.scale), nil
}

// Convert computes floor(fiat * scale / price) for a positive price
func Convert(fiat, price int64, scale decimal.Decimal) decimal.Decimal {
	q, _ := decimal.NewFromInt(fiat).Mul(scale).QuoRem(decimal.NewFromInt(price), 0)
	return q
}
