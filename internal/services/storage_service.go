package services

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"quality-service/internal/models"
	"quality-service/internal/repository"
)

// StorageService maintains the laboratory -> shelf -> position hierarchy
type StorageService struct {
	storage repository.StorageRepository
	cache   repository.UtilizationCache
}

// NewStorageService creates a new storage layout service. The cache is
// optional; with a nil cache every layout read recomputes utilization.
func NewStorageService(storage repository.StorageRepository, cache repository.UtilizationCache) *StorageService {
	return &StorageService{storage: storage, cache: cache}
}

// ListLaboratories returns all active laboratories
func (s *StorageService) ListLaboratories(ctx context.Context) ([]models.Laboratory, error) {
	labs, err := s.storage.ListLaboratories(ctx)
	if err != nil {
		return nil, UpstreamError("failed to load laboratories", err)
	}
	return labs, nil
}

// GetLayout composes the full floor plan for a laboratory: each shelf with
// its assigned client and utilization, plus lab-level totals.
func (s *StorageService) GetLayout(ctx context.Context, laboratoryID uuid.UUID) (*models.LaboratoryLayout, error) {
	lab, err := s.storage.GetLaboratory(ctx, laboratoryID)
	if err != nil {
		return nil, UpstreamError("failed to load laboratory", err)
	}
	if lab == nil {
		return nil, NotFoundError("laboratory")
	}

	shelves, err := s.storage.GetShelvesByLaboratory(ctx, laboratoryID)
	if err != nil {
		return nil, UpstreamError("failed to load shelves", err)
	}

	layout := &models.LaboratoryLayout{
		Laboratory: *lab,
		Shelves:    make([]models.ShelfLayout, 0, len(shelves)),
	}

	for _, shelf := range shelves {
		util, err := s.shelfUtilization(ctx, shelf.ID)
		if err != nil {
			return nil, err
		}

		entry := models.ShelfLayout{
			Shelf:           shelf,
			AssignedClient:  shelf.Client,
			DerivedCapacity: shelf.Rows * shelf.Columns * shelf.SamplesPerPosition,
			Utilization:     *util,
		}
		layout.Shelves = append(layout.Shelves, entry)
		layout.TotalCapacity += util.TotalCapacity
		layout.CurrentCount += util.CurrentCount
	}

	if layout.TotalCapacity > 0 {
		pct := float64(layout.CurrentCount) / float64(layout.TotalCapacity) * 100
		layout.UtilizationPercentage = math.Round(pct*100) / 100
	}

	return layout, nil
}

// shelfUtilization reads occupancy through the short-TTL cache. Cache
// failures count as misses; the database stays the source of truth.
func (s *StorageService) shelfUtilization(ctx context.Context, shelfID uuid.UUID) (*models.ShelfUtilization, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, shelfID); err == nil && cached != nil {
			return cached, nil
		}
	}

	util, err := s.storage.GetShelfUtilization(ctx, shelfID)
	if err != nil {
		return nil, UpstreamError("failed to compute shelf utilization", err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, shelfID, util)
	}
	return util, nil
}

// AssignPosition updates one position's client assignment and view flag.
// An empty client id clears the assignment and forces allow_client_view off.
func (s *StorageService) AssignPosition(ctx context.Context, auth models.AuthContext, laboratoryID, positionID uuid.UUID, clientID *uuid.UUID, allowClientView bool) (*models.StoragePosition, error) {
	if !auth.HasRole(models.RoleAdmin, models.RoleLabDirector) {
		return nil, ForbiddenError("Insufficient permissions")
	}

	position, err := s.storage.GetPosition(ctx, laboratoryID, positionID)
	if err != nil {
		return nil, UpstreamError("failed to load position", err)
	}
	if position == nil {
		return nil, NotFoundError("storage position")
	}

	if clientID == nil || *clientID == uuid.Nil {
		clientID = nil
		allowClientView = false
	}

	if err := s.storage.UpdatePositionAssignment(ctx, positionID, clientID, allowClientView); err != nil {
		return nil, UpstreamError("failed to update position assignment", err)
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, position.ShelfID)
	}

	position.ClientID = clientID
	position.AllowClientView = allowClientView
	return position, nil
}

// RegeneratePositions destroys and recreates the position grid for a shelf.
// Blocked with a Conflict while any position holds samples; the check and
// the rebuild run inside one transaction with the shelf row locked.
func (s *StorageService) RegeneratePositions(ctx context.Context, auth models.AuthContext, laboratoryID, shelfID uuid.UUID) (*models.RegenerateResult, error) {
	if !s.canRegenerate(auth, laboratoryID) {
		return nil, ForbiddenError("Insufficient permissions")
	}

	shelf, err := s.storage.GetShelf(ctx, laboratoryID, shelfID)
	if err != nil {
		return nil, UpstreamError("failed to load shelf", err)
	}
	if shelf == nil {
		return nil, NotFoundError("shelf")
	}

	generated, stored, err := s.storage.RegeneratePositions(ctx, laboratoryID, shelfID)
	if err != nil {
		if errors.Is(err, repository.ErrShelfOccupied) {
			return nil, ConflictError("Cannot regenerate positions for shelf with stored samples (%d stored)", stored)
		}
		return nil, UpstreamError("failed to regenerate positions", err)
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, shelfID)
	}

	return &models.RegenerateResult{
		PositionsGenerated: generated,
		Shelf:              *shelf,
	}, nil
}

// canRegenerate allows global admins, and lab-scoped managers/directors
// whose laboratory matches the target.
func (s *StorageService) canRegenerate(auth models.AuthContext, laboratoryID uuid.UUID) bool {
	if auth.Role == models.RoleAdmin {
		return true
	}
	if auth.Role == models.RoleLabManager || auth.Role == models.RoleLabDirector {
		return auth.LaboratoryID != nil && *auth.LaboratoryID == laboratoryID
	}
	return false
}
