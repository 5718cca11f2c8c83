package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quality-service/internal/clients/frankfurter"
)

// FXService caches USD exchange rates for finance reporting. Rates refresh
// via the background updater; reads never block on the upstream API.
type FXService struct {
	client *frankfurter.Client

	mu        sync.RWMutex
	rates     map[string]float64 // currency -> units per 1 USD
	updatedAt time.Time
}

// NewFXService creates a new FX rate service
func NewFXService(client *frankfurter.Client) *FXService {
	return &FXService{
		client: client,
		rates:  map[string]float64{"USD": 1},
	}
}

// UpdateRates fetches the latest USD-based rates
func (s *FXService) UpdateRates(ctx context.Context) error {
	latest, err := s.client.LatestRates(ctx, "USD")
	if err != nil {
		return fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	rates := map[string]float64{"USD": 1}
	for code, rate := range latest.Rates {
		rates[code] = rate
	}

	s.mu.Lock()
	s.rates = rates
	s.updatedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// ToUSD converts an amount to USD using the cached rate. Unknown currencies
// pass through unconverted with ok=false.
func (s *FXService) ToUSD(amount float64, currency string) (float64, bool) {
	s.mu.RLock()
	rate, ok := s.rates[currency]
	s.mu.RUnlock()
	if !ok || rate == 0 {
		return amount, false
	}
	return amount / rate, true
}

// LastUpdated reports when rates were last refreshed
func (s *FXService) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
