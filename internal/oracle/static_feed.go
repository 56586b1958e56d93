package oracle

import (
	"context"
	"sync"
	"time"
)

// StaticFeed reports a fixed round. It backs offline runs and tests.
type StaticFeed struct {
	mu    sync.Mutex
	round Round
	err   error
}

// NewStaticFeed creates a StaticFeed answering price
func NewStaticFeed(price int64) *StaticFeed {
	return &StaticFeed{round: Round{RoundID: 1, Answer: price}}
}

// Set replaces the reported round; the round id advances
func (f *StaticFeed) Set(price int64, updatedAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.round = Round{RoundID: f.round.RoundID + 1, Answer: price, UpdatedAt: updatedAt}
	f.err = nil
}

// Fail makes every read return err until the next Set
func (f *StaticFeed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// LatestRound implements Feed. A zero UpdatedAt is reported as the current time.
func (f *StaticFeed) LatestRound(ctx context.Context) (Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Round{}, f.err
	}
	round := f.round
	if round.UpdatedAt.IsZero() {
		round.UpdatedAt = time.Now()
	}
	return round, nil
}
