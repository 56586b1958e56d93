package registry

import (
	"fmt"

	"github.com/satonic/payperview-api/internal/models"
)

// TermsStore keeps the viewing terms of each asset
type TermsStore struct {
	terms map[uint64]models.ViewingTerms
}

// NewTermsStore creates an empty TermsStore
func NewTermsStore() *TermsStore {
	return &TermsStore{terms: make(map[uint64]models.ViewingTerms)}
}

// Set stores the terms for an asset
func (s *TermsStore) Set(terms models.ViewingTerms) error {
	if err := ValidateTerms(terms.Duration, terms.Price); err != nil {
		return err
	}
	s.terms[terms.AssetID] = terms
	return nil
}

// Get retrieves the terms for an asset
func (s *TermsStore) Get(assetID uint64) (models.ViewingTerms, error) {
	terms, ok := s.terms[assetID]
	if !ok {
		return models.ViewingTerms{}, fmt.Errorf("%w: viewing terms for asset %d", models.ErrNotFound, assetID)
	}
	return terms, nil
}

// ValidateTerms requires a positive price and a duration in (0, MaxViewDuration]
func ValidateTerms(duration, price int64) error {
	if duration <= 0 {
		return fmt.Errorf("%w: view duration must be positive", models.ErrValidation)
	}
	if duration > models.MaxViewDuration {
		return fmt.Errorf("%w: view duration %d exceeds %d seconds", models.ErrValidation, duration, models.MaxViewDuration)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", models.ErrValidation)
	}
	return nil
}
