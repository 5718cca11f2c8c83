package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"quality-service/internal/models"
	"quality-service/internal/repository"
)

// MinSearchTermLength is the shortest accepted fuzzy-search term
const MinSearchTermLength = 2

// ClientService handles client management and origin pricing
type ClientService struct {
	clients repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clients repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

// Search runs the fuzzy client search. Terms shorter than two characters
// are rejected before touching the database.
func (s *ClientService) Search(ctx context.Context, term string, limit int) ([]models.ClientSearchResult, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinSearchTermLength {
		return nil, ValidationError("search term must be at least %d characters", MinSearchTermLength)
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	results, err := s.clients.Search(ctx, term, limit)
	if err != nil {
		return nil, UpstreamError("client search failed", err)
	}
	return results, nil
}

// List returns active clients with pagination
func (s *ClientService) List(ctx context.Context, limit, offset int) ([]models.Client, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	clients, total, err := s.clients.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, UpstreamError("failed to list clients", err)
	}
	return clients, total, nil
}

// Get returns a client with its origin pricing overrides
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, UpstreamError("failed to load client", err)
	}
	if client == nil {
		return nil, NotFoundError("client")
	}
	return client, nil
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, auth models.AuthContext, client *models.Client) error {
	if !auth.HasRole(models.RoleAdmin) {
		return ForbiddenError("Insufficient permissions")
	}
	if strings.TrimSpace(client.CompanyName) == "" {
		return ValidationError("company_name is required")
	}
	if client.Currency == "" {
		client.Currency = "USD"
	}
	client.Active = true
	return s.clients.Create(ctx, client)
}

// Update updates an existing client. The tracking number format may change,
// but numbers already issued keep the format they were rendered with.
func (s *ClientService) Update(ctx context.Context, auth models.AuthContext, client *models.Client) error {
	if !auth.HasRole(models.RoleAdmin) {
		return ForbiddenError("Insufficient permissions")
	}
	existing, err := s.clients.GetByID(ctx, client.ID)
	if err != nil {
		return UpstreamError("failed to load client", err)
	}
	if existing == nil {
		return NotFoundError("client")
	}
	return s.clients.Update(ctx, client)
}

// Delete soft-deletes a client
func (s *ClientService) Delete(ctx context.Context, auth models.AuthContext, id uuid.UUID) error {
	if !auth.HasRole(models.RoleAdmin) {
		return ForbiddenError("Insufficient permissions")
	}
	return s.clients.Delete(ctx, id)
}

// GetOriginPricing lists a client's per-origin price overrides
func (s *ClientService) GetOriginPricing(ctx context.Context, clientID uuid.UUID) ([]models.ClientOriginPricing, error) {
	return s.clients.GetOriginPricing(ctx, clientID)
}

// SetOriginPricing creates or updates one (client, origin) price override
func (s *ClientService) SetOriginPricing(ctx context.Context, auth models.AuthContext, pricing *models.ClientOriginPricing) error {
	if !auth.HasRole(models.RoleAdmin) {
		return ForbiddenError("Insufficient permissions")
	}
	if strings.TrimSpace(pricing.Origin) == "" {
		return ValidationError("origin is required")
	}
	if pricing.PricePerSample < 0 {
		return ValidationError("price_per_sample must not be negative")
	}
	if pricing.Currency == "" {
		pricing.Currency = "USD"
	}
	return s.clients.UpsertOriginPricing(ctx, pricing)
}

// DeleteOriginPricing removes one (client, origin) price override
func (s *ClientService) DeleteOriginPricing(ctx context.Context, auth models.AuthContext, clientID uuid.UUID, origin string) error {
	if !auth.HasRole(models.RoleAdmin) {
		return ForbiddenError("Insufficient permissions")
	}
	return s.clients.DeleteOriginPricing(ctx, clientID, origin)
}
