package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/satonic/payperview-api/internal/models"
	"github.com/satonic/payperview-api/internal/oracle"
)

const testPrice = 1669820789

var (
	addr2 = "0x" + strings.Repeat("22", 20)
	addr3 = "0x" + strings.Repeat("33", 20)
	addr4 = "0x" + strings.Repeat("44", 20)
	addr9 = "0x" + strings.Repeat("99", 20)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *eventRecorder) Publish(event models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) Types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]models.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

// hookTreasury runs onSettle before delegating to a MemoryTreasury
type hookTreasury struct {
	*MemoryTreasury
	onSettle func(ctx context.Context, settlement models.Settlement)
}

func (h *hookTreasury) Settle(ctx context.Context, settlement models.Settlement) error {
	if h.onSettle != nil {
		h.onSettle(ctx, settlement)
	}
	return h.MemoryTreasury.Settle(ctx, settlement)
}

type testEnv struct {
	svc      *PayPerViewService
	treasury *hookTreasury
	feed     *oracle.StaticFeed
	clock    *fakeClock
	events   *eventRecorder
}

func newTestEnv(t *testing.T, opts ...ServiceOption) *testEnv {
	t.Helper()
	env := &testEnv{
		treasury: &hookTreasury{MemoryTreasury: NewMemoryTreasury()},
		feed:     oracle.NewStaticFeed(testPrice),
		clock:    newFakeClock(),
		events:   &eventRecorder{},
	}
	adapter := oracle.NewAdapter(env.feed, oracle.DefaultPrecision)
	opts = append([]ServiceOption{
		WithServiceClock(env.clock.Now),
		WithEvents(env.events),
	}, opts...)
	env.svc = NewPayPerViewService(adapter, env.treasury, zerolog.New(io.Discard), opts...)
	return env
}

// mintListed mints an asset priced at 1500 cents for one hour, paying addr2 and addr3 equally
func (e *testEnv) mintListed(t *testing.T) uint64 {
	t.Helper()
	id, err := e.svc.MintWithCustomParams(context.Background(), "minter", "ipfs://asset",
		3600, 1500, []string{addr2, addr3}, []uint32{5000, 5000})
	require.NoError(t, err)
	return id
}

func (e *testEnv) balance(t *testing.T, address string) string {
	t.Helper()
	amount, err := e.treasury.Balance(context.Background(), address)
	require.NoError(t, err)
	return amount.String()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
