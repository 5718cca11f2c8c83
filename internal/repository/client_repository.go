package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quality-service/internal/models"
)

// ClientRepository interface for client and origin-pricing operations
type ClientRepository interface {
	// Search runs the fuzzy client search over company and display names,
	// ordered by trigram similarity.
	Search(ctx context.Context, term string, limit int) ([]models.ClientSearchResult, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.Client, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetOriginPricing(ctx context.Context, clientID uuid.UUID) ([]models.ClientOriginPricing, error)
	UpsertOriginPricing(ctx context.Context, pricing *models.ClientOriginPricing) error
	DeleteOriginPricing(ctx context.Context, clientID uuid.UUID, origin string) error
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Search(ctx context.Context, term string, limit int) ([]models.ClientSearchResult, error) {
	var results []models.ClientSearchResult
	// Requires the pg_trgm extension (installed by migration 001).
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, company_name, display_name, country,
		       GREATEST(similarity(company_name, ?), similarity(display_name, ?)) AS rank
		FROM clients
		WHERE deleted_at IS NULL AND active = TRUE
		  AND (company_name ILIKE '%' || ? || '%'
		       OR display_name ILIKE '%' || ? || '%'
		       OR similarity(company_name, ?) > 0.25)
		ORDER BY rank DESC, company_name ASC
		LIMIT ?`,
		term, term, term, term, term, limit,
	).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *clientRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Client{}).Where("active = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("company_name ASC").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Preload("OriginPricing").Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id).Error
}

func (r *clientRepository) GetOriginPricing(ctx context.Context, clientID uuid.UUID) ([]models.ClientOriginPricing, error) {
	var pricing []models.ClientOriginPricing
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("origin ASC").Find(&pricing).Error
	if err != nil {
		return nil, err
	}
	return pricing, nil
}

func (r *clientRepository) UpsertOriginPricing(ctx context.Context, pricing *models.ClientOriginPricing) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO client_origin_pricings (id, client_id, origin, price_per_sample, currency, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (client_id, origin)
		DO UPDATE SET price_per_sample = EXCLUDED.price_per_sample,
		              currency = EXCLUDED.currency,
		              updated_at = NOW()`,
		pricing.ClientID, pricing.Origin, pricing.PricePerSample, pricing.Currency,
	).Error
}

func (r *clientRepository) DeleteOriginPricing(ctx context.Context, clientID uuid.UUID, origin string) error {
	return r.db.WithContext(ctx).
		Where("client_id = ? AND origin = ?", clientID, origin).
		Delete(&models.ClientOriginPricing{}).Error
}
