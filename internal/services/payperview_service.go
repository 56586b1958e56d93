package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/satonic/payperview-api/internal/metrics"
	"github.com/satonic/payperview-api/internal/models"
	"github.com/satonic/payperview-api/internal/oracle"
	"github.com/satonic/payperview-api/internal/registry"
)

// Journal persists committed mints and royalty updates
type Journal interface {
	SaveMint(ctx context.Context, record models.MintRecord) error
	SaveRoyalty(ctx context.Context, table models.RoyaltyTable) error
}

// EventPublisher receives an event after each committed change
type EventPublisher interface {
	Publish(event models.Event)
}

type nopJournal struct{}

func (nopJournal) SaveMint(context.Context, models.MintRecord) error     { return nil }
func (nopJournal) SaveRoyalty(context.Context, models.RoyaltyTable) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(models.Event) {}

// DefaultTerms are the terms applied by MintWithDefaultParams
type DefaultTerms struct {
	Duration int64 // in seconds
	Price    int64 // in fiat minor units
}

// StandardTerms is one week for one dollar
var StandardTerms = DefaultTerms{Duration: 7 * 24 * 60 * 60, Price: 100}

// ServiceOption configures a PayPerViewService
type ServiceOption func(*PayPerViewService)

// WithJournal persists every commit through journal
func WithJournal(journal Journal) ServiceOption {
	return func(s *PayPerViewService) {
		s.journal = journal
	}
}

// WithEvents publishes commits to publisher
func WithEvents(publisher EventPublisher) ServiceOption {
	return func(s *PayPerViewService) {
		s.events = publisher
	}
}

// WithDefaultTerms overrides StandardTerms
func WithDefaultTerms(terms DefaultTerms) ServiceOption {
	return func(s *PayPerViewService) {
		s.defaults = terms
	}
}

// WithServiceClock sets the clock used for grant expiry
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *PayPerViewService) {
		s.now = now
	}
}

// PayPerViewService mints assets, maintains royalty tables and sells time-limited access.
//
// Mutating operations run one at a time under writeMu. Committed state lives in the
// registry arenas behind mu, which is held only to read and to apply a finished
// transaction, so readers never observe a partial change.
type PayPerViewService struct {
	writeMu sync.Mutex
	mu      sync.RWMutex

	tokens    *registry.TokenRegistry
	terms     *registry.TermsStore
	royalties *registry.RoyaltyTable
	access    *registry.AccessLedger

	oracle   *oracle.Adapter
	treasury Treasury
	journal  Journal
	events   EventPublisher
	defaults DefaultTerms
	now      func() time.Time
	log      zerolog.Logger
}

// NewPayPerViewService creates a new PayPerViewService
func NewPayPerViewService(adapter *oracle.Adapter, treasury Treasury, log zerolog.Logger, opts ...ServiceOption) *PayPerViewService {
	s := &PayPerViewService{
		tokens:    registry.NewTokenRegistry(),
		terms:     registry.NewTermsStore(),
		royalties: registry.NewRoyaltyTable(),
		access:    registry.NewAccessLedger(),
		oracle:    adapter,
		treasury:  treasury,
		journal:   nopJournal{},
		events:    nopPublisher{},
		defaults:  StandardTerms,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin opens a write transaction. Calls made on behalf of an in-flight settlement are refused.
func (s *PayPerViewService) begin(ctx context.Context) (func(), error) {
	if id, ok := SettlementIDFromContext(ctx); ok {
		return nil, fmt.Errorf("%w: settlement %s is in progress", models.ErrReentrantCall, id)
	}
	s.writeMu.Lock()
	return s.writeMu.Unlock, nil
}

// Mint creates an asset without viewing terms or royalties
func (s *PayPerViewService) Mint(ctx context.Context, minter, contentURI string) (uint64, error) {
	return s.mint(ctx, "plain", minter, contentURI, nil, nil)
}

// MintWithDefaultParams creates an asset with the default viewing terms and the given royalty table
func (s *PayPerViewService) MintWithDefaultParams(ctx context.Context, minter, contentURI string, recipients []string, shares []uint32) (uint64, error) {
	terms := &models.ViewingTerms{Duration: s.defaults.Duration, Price: s.defaults.Price}
	royalty := &models.RoyaltyTable{Recipients: recipients, Shares: shares}
	return s.mint(ctx, "default", minter, contentURI, terms, royalty)
}

// MintWithCustomParams creates an asset with caller-supplied viewing terms and royalty table
func (s *PayPerViewService) MintWithCustomParams(ctx context.Context, minter, contentURI string, duration, price int64, recipients []string, shares []uint32) (uint64, error) {
	terms := &models.ViewingTerms{Duration: duration, Price: price}
	royalty := &models.RoyaltyTable{Recipients: recipients, Shares: shares}
	return s.mint(ctx, "custom", minter, contentURI, terms, royalty)
}

func (s *PayPerViewService) mint(ctx context.Context, kind, minter, contentURI string, terms *models.ViewingTerms, royalty *models.RoyaltyTable) (uint64, error) {
	minter = CanonicalAddress(minter)
	if minter == "" {
		return 0, fmt.Errorf("%w: minter address is required", models.ErrValidation)
	}
	if err := registry.ValidateContentURI(contentURI); err != nil {
		return 0, err
	}
	if terms != nil {
		if err := registry.ValidateTerms(terms.Duration, terms.Price); err != nil {
			return 0, err
		}
	}
	if royalty != nil {
		recipients, err := canonicalRecipients(royalty.Recipients)
		if err != nil {
			return 0, err
		}
		if err := registry.ValidateRoyalty(recipients, royalty.Shares); err != nil {
			return 0, err
		}
		royalty.Recipients = recipients
	}

	unlock, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	s.mu.RLock()
	id := s.tokens.NextID()
	s.mu.RUnlock()

	record := models.MintRecord{
		Asset: models.Asset{
			ID:         id,
			ContentURI: contentURI,
			Minter:     minter,
			MintedAt:   s.now(),
		},
	}
	if terms != nil {
		t := *terms
		t.AssetID = id
		record.Terms = &t
	}
	if royalty != nil {
		r := royalty.Clone()
		r.AssetID = id
		record.Royalty = &r
	}

	if err := s.journal.SaveMint(ctx, record); err != nil {
		return 0, fmt.Errorf("failed to persist mint: %w", err)
	}

	s.mu.Lock()
	err = applyMint(s.tokens, s.terms, s.royalties, record)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	metrics.MintsTotal.WithLabelValues(kind).Inc()
	s.log.Info().Uint64("asset_id", id).Str("minter", minter).Str("kind", kind).Msg("asset minted")
	s.publish(models.EventMinted, id, minter, record)

	return id, nil
}

// canonicalRecipients parses every recipient into its canonical address
func canonicalRecipients(recipients []string) ([]string, error) {
	canonical := make([]string, len(recipients))
	for i, recipient := range recipients {
		address, err := ParseAddress(recipient)
		if err != nil {
			return nil, fmt.Errorf("recipient %d: %w", i, err)
		}
		canonical[i] = address
	}
	return canonical, nil
}

func applyMint(tokens *registry.TokenRegistry, terms *registry.TermsStore, royalties *registry.RoyaltyTable, record models.MintRecord) error {
	if err := tokens.Add(record.Asset); err != nil {
		return err
	}
	if record.Terms != nil {
		if err := terms.Set(*record.Terms); err != nil {
			return err
		}
	}
	if record.Royalty != nil {
		if err := royalties.Set(*record.Royalty); err != nil {
			return err
		}
	}
	return nil
}

// SetRoyaltyRecipients replaces an asset's royalty table. Only the asset's minter may call it.
func (s *PayPerViewService) SetRoyaltyRecipients(ctx context.Context, caller string, assetID uint64, recipients []string, shares []uint32) error {
	caller = CanonicalAddress(caller)
	unlock, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.RLock()
	asset, ok := s.tokens.Get(assetID)
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: asset %d", models.ErrNotFound, assetID)
	}
	if asset.Minter != caller {
		return fmt.Errorf("%w: only the minter of asset %d may set its royalty recipients", models.ErrUnauthorized, assetID)
	}
	recipients, err = canonicalRecipients(recipients)
	if err != nil {
		return err
	}
	if err := registry.ValidateRoyalty(recipients, shares); err != nil {
		return err
	}

	table := models.RoyaltyTable{AssetID: assetID, Recipients: recipients, Shares: shares}.Clone()
	if err := s.journal.SaveRoyalty(ctx, table); err != nil {
		return fmt.Errorf("failed to persist royalty recipients: %w", err)
	}

	s.mu.Lock()
	err = s.royalties.Set(table)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.log.Info().Uint64("asset_id", assetID).Int("recipients", len(recipients)).Msg("royalty recipients replaced")
	s.publish(models.EventRoyaltiesUpdated, assetID, caller, table)

	return nil
}

// AddViewer sells viewing access on assetID to viewer for the transmitted native value.
//
// The whole value is split among the royalty recipients and handed to the treasury
// together with the grant; the grant becomes visible only once the treasury has applied
// every payout.
func (s *PayPerViewService) AddViewer(ctx context.Context, viewer string, assetID uint64, value decimal.Decimal) (*models.Settlement, error) {
	viewer = CanonicalAddress(viewer)
	settlement, err := s.addViewer(ctx, viewer, assetID, value)
	metrics.SettlementsTotal.WithLabelValues(settlementResult(err)).Inc()
	if err != nil {
		s.log.Warn().Err(err).Uint64("asset_id", assetID).Str("viewer", viewer).Msg("viewer not added")
		return nil, err
	}
	return settlement, nil
}

func (s *PayPerViewService) addViewer(ctx context.Context, viewer string, assetID uint64, value decimal.Decimal) (*models.Settlement, error) {
	if viewer == "" {
		return nil, fmt.Errorf("%w: viewer address is required", models.ErrValidation)
	}
	if value.IsNegative() || !value.IsInteger() {
		return nil, fmt.Errorf("%w: value %s is not a whole native amount", models.ErrValidation, value)
	}

	unlock, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s.mu.RLock()
	_, exists := s.tokens.Get(assetID)
	terms, termsErr := s.terms.Get(assetID)
	table, tableErr := s.royalties.Get(assetID)
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: asset %d", models.ErrNotFound, assetID)
	}
	if termsErr != nil {
		return nil, termsErr
	}
	if tableErr != nil {
		return nil, tableErr
	}

	required, err := s.oracle.ToNative(ctx, terms.Price)
	if err != nil {
		metrics.OracleFailuresTotal.Inc()
		return nil, err
	}
	if value.LessThan(required) {
		return nil, fmt.Errorf("%w: sent %s, required %s", models.ErrInsufficientPayment, value, required)
	}

	payouts, err := SplitPayment(value, table)
	if err != nil {
		return nil, err
	}

	now := s.now()
	id := uuid.New().String()
	settlement := &models.Settlement{
		ID:       id,
		AssetID:  assetID,
		Viewer:   viewer,
		Value:    value,
		Required: required,
		Payouts:  payouts,
		Grant: models.AccessGrant{
			AssetID:      assetID,
			Viewer:       viewer,
			ExpiresAt:    now.Add(terms.Period()),
			SettlementID: id,
		},
		CreatedAt: now,
	}

	if err := s.treasury.Settle(withSettlement(ctx, id), *settlement); err != nil {
		return nil, fmt.Errorf("%w: settlement %s: %w", models.ErrTransferFailure, id, err)
	}

	s.mu.Lock()
	s.access.Grant(settlement.Grant)
	s.mu.Unlock()

	// counters are float64, so amounts beyond 2^53 lose their low digits here
	metrics.DisbursedTotal.Add(value.InexactFloat64())
	s.log.Info().
		Uint64("asset_id", assetID).
		Str("viewer", viewer).
		Str("value", value.String()).
		Str("required", required.String()).
		Time("expires_at", settlement.Grant.ExpiresAt).
		Str("settlement_id", id).
		Msg("viewer added")
	s.publish(models.EventViewerAdded, assetID, viewer, settlement.Grant)

	return settlement, nil
}

func settlementResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, models.ErrOracleUnavailable):
		return "oracle_unavailable"
	case errors.Is(err, models.ErrTransferFailure):
		return "transfer_failure"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrReentrantCall):
		return "reentrant"
	default:
		return "invalid"
	}
}

func (s *PayPerViewService) publish(eventType models.EventType, assetID uint64, address string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(eventType)).Msg("failed to encode event payload")
		return
	}
	s.events.Publish(models.Event{
		Type:    eventType,
		AssetID: assetID,
		Address: address,
		At:      s.now(),
		Payload: raw,
	})
}

// Restore replaces all committed state with snapshot
func (s *PayPerViewService) Restore(snapshot *models.Snapshot) error {
	unlock, err := s.begin(context.Background())
	if err != nil {
		return err
	}
	defer unlock()

	tokens := registry.NewTokenRegistry()
	terms := registry.NewTermsStore()
	royalties := registry.NewRoyaltyTable()
	access := registry.NewAccessLedger()

	assets := append([]models.Asset(nil), snapshot.Assets...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	for _, asset := range assets {
		if err := tokens.Add(asset); err != nil {
			return fmt.Errorf("failed to restore asset %d: %w", asset.ID, err)
		}
	}
	for _, t := range snapshot.Terms {
		if _, ok := tokens.Get(t.AssetID); !ok {
			return fmt.Errorf("failed to restore terms: %w: asset %d", models.ErrNotFound, t.AssetID)
		}
		if err := terms.Set(t); err != nil {
			return fmt.Errorf("failed to restore terms of asset %d: %w", t.AssetID, err)
		}
	}
	for _, r := range snapshot.Royalties {
		if _, ok := tokens.Get(r.AssetID); !ok {
			return fmt.Errorf("failed to restore royalties: %w: asset %d", models.ErrNotFound, r.AssetID)
		}
		if err := royalties.Set(r); err != nil {
			return fmt.Errorf("failed to restore royalties of asset %d: %w", r.AssetID, err)
		}
	}
	for _, g := range snapshot.Grants {
		access.Grant(g)
	}

	s.mu.Lock()
	s.tokens, s.terms, s.royalties, s.access = tokens, terms, royalties, access
	s.mu.Unlock()

	s.log.Info().Uint64("assets", tokens.Count()).Int("grants", len(snapshot.Grants)).Msg("state restored")
	return nil
}

// TokenCount returns the number of minted assets
func (s *PayPerViewService) TokenCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Count()
}

// TokenURI returns the content URI of an asset
func (s *PayPerViewService) TokenURI(assetID uint64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.URI(assetID)
}

// ViewingDetailsFor returns the duration and price of an asset
func (s *PayPerViewService) ViewingDetailsFor(assetID uint64) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	terms, err := s.terms.Get(assetID)
	if err != nil {
		return 0, 0, err
	}
	return terms.Duration, terms.Price, nil
}

// CanView reports whether viewer holds a live grant on the asset
func (s *PayPerViewService) CanView(viewer string, assetID uint64) bool {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access.CanView(assetID, CanonicalAddress(viewer), now)
}

// AccessGrant returns the viewer's grant on an asset, live or expired
func (s *PayPerViewService) AccessGrant(viewer string, assetID uint64) (models.AccessGrant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access.Lookup(assetID, CanonicalAddress(viewer))
}

// RoyaltyRecipients returns a copy of an asset's royalty table
func (s *PayPerViewService) RoyaltyRecipients(assetID uint64) (models.RoyaltyTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.royalties.Get(assetID)
}

// TokenIDsAddressCanRedeemFrom returns the ascending ids of assets paying address royalties
func (s *PayPerViewService) TokenIDsAddressCanRedeemFrom(address string) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.royalties.AssetsFor(CanonicalAddress(address))
}

// Listing returns an asset with its terms and royalty table
func (s *PayPerViewService) Listing(assetID uint64) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.tokens.Get(assetID)
	if !ok {
		return nil, fmt.Errorf("%w: asset %d", models.ErrNotFound, assetID)
	}
	return s.listingLocked(asset), nil
}

// Listings returns a page of listings in id order and the total asset count
func (s *PayPerViewService) Listings(offset, limit int) ([]models.Listing, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assets := s.tokens.Page(offset, limit)
	listings := make([]models.Listing, 0, len(assets))
	for _, asset := range assets {
		listings = append(listings, *s.listingLocked(asset))
	}
	return listings, int(s.tokens.Count())
}

func (s *PayPerViewService) listingLocked(asset models.Asset) *models.Listing {
	listing := &models.Listing{Asset: asset}
	if terms, err := s.terms.Get(asset.ID); err == nil {
		listing.Terms = &terms
	}
	if table, err := s.royalties.Get(asset.ID); err == nil {
		listing.Royalty = &table
	}
	return listing
}

// RequiredPayment converts an asset's price to the native amount currently required
func (s *PayPerViewService) RequiredPayment(ctx context.Context, assetID uint64) (*models.Quote, error) {
	_, price, err := s.ViewingDetailsFor(assetID)
	if err != nil {
		return nil, err
	}
	required, err := s.oracle.ToNative(ctx, price)
	if err != nil {
		metrics.OracleFailuresTotal.Inc()
		return nil, err
	}
	return &models.Quote{AssetID: assetID, Price: price, Required: required}, nil
}

// LatestPrice returns the oracle's current raw quote
func (s *PayPerViewService) LatestPrice(ctx context.Context) (int64, error) {
	price, err := s.oracle.LatestPrice(ctx)
	if err != nil {
		metrics.OracleFailuresTotal.Inc()
	}
	return price, err
}
