package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/satonic/payperview-api/internal/models"
)

func TestAccessLedger_ExpiryBoundary(t *testing.T) {
	l := NewAccessLedger()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expiresAt := start.Add(time.Hour)
	l.Grant(models.AccessGrant{AssetID: 1, Viewer: "v", ExpiresAt: expiresAt})

	assert.True(t, l.CanView(1, "v", start))
	assert.True(t, l.CanView(1, "v", expiresAt.Add(-time.Nanosecond)))
	assert.False(t, l.CanView(1, "v", expiresAt))
	assert.False(t, l.CanView(1, "v", expiresAt.Add(time.Second)))

	assert.False(t, l.CanView(1, "other", start))
	assert.False(t, l.CanView(2, "v", start))
}

func TestAccessLedger_GrantReplaces(t *testing.T) {
	l := NewAccessLedger()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	l.Grant(models.AccessGrant{AssetID: 1, Viewer: "v", ExpiresAt: now.Add(-time.Minute), SettlementID: "s1"})
	assert.False(t, l.CanView(1, "v", now))

	l.Grant(models.AccessGrant{AssetID: 1, Viewer: "v", ExpiresAt: now.Add(time.Minute), SettlementID: "s2"})
	assert.True(t, l.CanView(1, "v", now))

	grant, ok := l.Lookup(1, "v")
	assert.True(t, ok)
	assert.Equal(t, "s2", grant.SettlementID)
}
