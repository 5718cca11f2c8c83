package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quality-service/internal/models"
)

// TemplateRepository interface for quality template operations
type TemplateRepository interface {
	// List returns global templates plus, when clientID is set, that
	// client's own templates.
	List(ctx context.Context, clientID *uuid.UUID) ([]models.QualityTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.QualityTemplate, error)
	Create(ctx context.Context, template *models.QualityTemplate) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) List(ctx context.Context, clientID *uuid.UUID) ([]models.QualityTemplate, error) {
	var templates []models.QualityTemplate
	query := r.db.WithContext(ctx)
	if clientID != nil {
		query = query.Where("client_id IS NULL OR client_id = ?", *clientID)
	} else {
		query = query.Where("client_id IS NULL")
	}
	if err := query.Order("is_default DESC, name ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.QualityTemplate, error) {
	var template models.QualityTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) Create(ctx context.Context, template *models.QualityTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}
