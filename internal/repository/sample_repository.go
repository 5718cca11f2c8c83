package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quality-service/internal/models"
)

// SampleRepository interface for sample and tracking-number operations
type SampleRepository interface {
	// AllocateSequence atomically claims the next sequence value for the
	// (client, laboratory, year) key. Safe under concurrent callers: the
	// upsert is a single statement, so two allocations can never observe
	// the same value.
	AllocateSequence(ctx context.Context, clientID, laboratoryID uuid.UUID, year int) (int, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Sample, error)
	Create(ctx context.Context, sample *models.Sample) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sample, error)
	List(ctx context.Context, clientID, laboratoryID *uuid.UUID, status string, limit, offset int) ([]models.Sample, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type sampleRepository struct {
	db *gorm.DB
}

// NewSampleRepository creates a new sample repository
func NewSampleRepository(db *gorm.DB) SampleRepository {
	return &sampleRepository{db: db}
}

func (r *sampleRepository) AllocateSequence(ctx context.Context, clientID, laboratoryID uuid.UUID, year int) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO tracking_counters (client_id, laboratory_id, year, last_value, updated_at)
		VALUES (?, ?, ?, 1, NOW())
		ON CONFLICT (client_id, laboratory_id, year)
		DO UPDATE SET last_value = tracking_counters.last_value + 1, updated_at = NOW()
		RETURNING last_value`,
		clientID, laboratoryID, year,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *sampleRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Sample, error) {
	var sample models.Sample
	err := r.db.WithContext(ctx).Where("tracking_number = ?", trackingNumber).First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sample, nil
}

func (r *sampleRepository) Create(ctx context.Context, sample *models.Sample) error {
	if sample.ReceivedAt.IsZero() {
		sample.ReceivedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(sample).Error
}

func (r *sampleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Sample, error) {
	var sample models.Sample
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Laboratory").
		Preload("Position").
		Where("id = ?", id).
		First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sample, nil
}

func (r *sampleRepository) List(ctx context.Context, clientID, laboratoryID *uuid.UUID, status string, limit, offset int) ([]models.Sample, int64, error) {
	var samples []models.Sample
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Sample{})
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	if laboratoryID != nil {
		query = query.Where("laboratory_id = ?", *laboratoryID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Client").Order("received_at DESC").Limit(limit).Offset(offset).Find(&samples).Error; err != nil {
		return nil, 0, err
	}

	return samples, total, nil
}

func (r *sampleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Sample{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
