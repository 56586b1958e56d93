package registry

import (
	"time"

	"github.com/satonic/payperview-api/internal/models"
)

type grantKey struct {
	assetID uint64
	viewer  string
}

// AccessLedger records when each viewer's access to an asset expires.
// Grants are never deleted; expiry is evaluated at read time.
type AccessLedger struct {
	grants map[grantKey]models.AccessGrant
}

// NewAccessLedger creates an empty AccessLedger
func NewAccessLedger() *AccessLedger {
	return &AccessLedger{grants: make(map[grantKey]models.AccessGrant)}
}

// Grant stores a grant, replacing any earlier one for the same asset and viewer
func (l *AccessLedger) Grant(grant models.AccessGrant) {
	l.grants[grantKey{grant.AssetID, grant.Viewer}] = grant
}

// Lookup returns the grant for a viewer, live or expired
func (l *AccessLedger) Lookup(assetID uint64, viewer string) (models.AccessGrant, bool) {
	grant, ok := l.grants[grantKey{assetID, viewer}]
	return grant, ok
}

// CanView reports whether the viewer holds a grant that has not expired at now
func (l *AccessLedger) CanView(assetID uint64, viewer string, now time.Time) bool {
	grant, ok := l.Lookup(assetID, viewer)
	return ok && now.Before(grant.ExpiresAt)
}
