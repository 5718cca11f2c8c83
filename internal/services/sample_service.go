package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quality-service/internal/models"
	"quality-service/internal/repository"
)

var validStatuses = map[string]bool{
	models.SampleStatusReceived:   true,
	models.SampleStatusInProgress: true,
	models.SampleStatusCompleted:  true,
}

// SampleIntakeRequest is the input for registering a new physical sample
type SampleIntakeRequest struct {
	ClientID     uuid.UUID `json:"client_id"`
	LaboratoryID uuid.UUID `json:"laboratory_id"`
	Origin       string    `json:"origin"`
	Supplier     string    `json:"supplier"`
	SampleType   string    `json:"sample_type"`
	Quantity     int       `json:"quantity"`
}

// SampleService handles sample intake and lifecycle
type SampleService struct {
	samples  repository.SampleRepository
	tracking *TrackingService
}

// NewSampleService creates a new sample service
func NewSampleService(samples repository.SampleRepository, tracking *TrackingService) *SampleService {
	return &SampleService{samples: samples, tracking: tracking}
}

// Intake registers a sample, allocating its tracking number in the same
// flow. The tracking number is assigned exactly once and never changes.
func (s *SampleService) Intake(ctx context.Context, req SampleIntakeRequest) (*models.Sample, error) {
	allocation, err := s.tracking.Allocate(ctx, req.ClientID, req.LaboratoryID, req.Origin)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	sample := &models.Sample{
		ClientID:       req.ClientID,
		LaboratoryID:   req.LaboratoryID,
		TrackingNumber: allocation.TrackingNumber,
		Origin:         req.Origin,
		Supplier:       req.Supplier,
		SampleType:     req.SampleType,
		Status:         models.SampleStatusReceived,
		Quantity:       quantity,
	}
	if err := s.samples.Create(ctx, sample); err != nil {
		return nil, UpstreamError("failed to create sample", err)
	}
	return sample, nil
}

// Get returns a sample by id
func (s *SampleService) Get(ctx context.Context, id uuid.UUID) (*models.Sample, error) {
	sample, err := s.samples.GetByID(ctx, id)
	if err != nil {
		return nil, UpstreamError("failed to load sample", err)
	}
	if sample == nil {
		return nil, NotFoundError("sample")
	}
	return sample, nil
}

// List returns samples with optional client/laboratory/status filters
func (s *SampleService) List(ctx context.Context, clientID, laboratoryID *uuid.UUID, status string, limit, offset int) ([]models.Sample, int64, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, ValidationError("unknown status %q", status)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	samples, total, err := s.samples.List(ctx, clientID, laboratoryID, status, limit, offset)
	if err != nil {
		return nil, 0, UpstreamError("failed to list samples", err)
	}
	return samples, total, nil
}

// UpdateStatus moves a sample through received -> in_progress -> completed
func (s *SampleService) UpdateStatus(ctx context.Context, auth models.AuthContext, id uuid.UUID, status string) error {
	if !auth.HasRole(models.RoleAdmin, models.RoleLabDirector, models.RoleLabManager, models.RoleStaff) {
		return ForbiddenError("Insufficient permissions")
	}
	if !validStatuses[status] {
		return ValidationError("unknown status %q", status)
	}
	if err := s.samples.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("sample")
		}
		return UpstreamError("failed to update sample status", err)
	}
	return nil
}
