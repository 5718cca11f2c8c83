package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quality-service/internal/models"
)

// ErrShelfOccupied is returned when a destructive shelf operation is blocked
// because at least one position still holds samples.
var ErrShelfOccupied = errors.New("shelf has stored samples")

// StorageRepository interface for laboratory / shelf / position operations
type StorageRepository interface {
	GetLaboratory(ctx context.Context, id uuid.UUID) (*models.Laboratory, error)
	ListLaboratories(ctx context.Context) ([]models.Laboratory, error)
	GetShelvesByLaboratory(ctx context.Context, laboratoryID uuid.UUID) ([]models.Shelf, error)
	GetShelf(ctx context.Context, laboratoryID, shelfID uuid.UUID) (*models.Shelf, error)
	// GetShelfUtilization aggregates occupancy over a shelf's positions.
	GetShelfUtilization(ctx context.Context, shelfID uuid.UUID) (*models.ShelfUtilization, error)
	GetPosition(ctx context.Context, laboratoryID, positionID uuid.UUID) (*models.StoragePosition, error)
	UpdatePositionAssignment(ctx context.Context, positionID uuid.UUID, clientID *uuid.UUID, allowClientView bool) error
	// RegeneratePositions drops and recreates the full position grid for a
	// shelf inside one transaction. The shelf row is locked and the
	// occupancy check re-runs under that lock, so a concurrent intake
	// cannot slip between the check and the delete. Returns
	// ErrShelfOccupied (with the stored count) when any position holds
	// samples.
	RegeneratePositions(ctx context.Context, laboratoryID, shelfID uuid.UUID) (int, int, error)
}

type storageRepository struct {
	db *gorm.DB
}

// NewStorageRepository creates a new storage repository
func NewStorageRepository(db *gorm.DB) StorageRepository {
	return &storageRepository{db: db}
}

func (r *storageRepository) GetLaboratory(ctx context.Context, id uuid.UUID) (*models.Laboratory, error) {
	var lab models.Laboratory
	err := r.db.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&lab).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lab, nil
}

func (r *storageRepository) ListLaboratories(ctx context.Context) ([]models.Laboratory, error) {
	var labs []models.Laboratory
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&labs).Error; err != nil {
		return nil, err
	}
	return labs, nil
}

func (r *storageRepository) GetShelvesByLaboratory(ctx context.Context, laboratoryID uuid.UUID) ([]models.Shelf, error) {
	var shelves []models.Shelf
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("laboratory_id = ?", laboratoryID).
		Order("name ASC").
		Find(&shelves).Error
	if err != nil {
		return nil, err
	}
	return shelves, nil
}

func (r *storageRepository) GetShelf(ctx context.Context, laboratoryID, shelfID uuid.UUID) (*models.Shelf, error) {
	var shelf models.Shelf
	err := r.db.WithContext(ctx).
		Where("id = ? AND laboratory_id = ?", shelfID, laboratoryID).
		First(&shelf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shelf, nil
}

func (r *storageRepository) GetShelfUtilization(ctx context.Context, shelfID uuid.UUID) (*models.ShelfUtilization, error) {
	var row struct {
		TotalPositions    int
		OccupiedPositions int
		TotalCapacity     int
		CurrentCount      int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(p.id)                                              AS total_positions,
			COUNT(p.id) FILTER (WHERE p.current_count > 0)           AS occupied_positions,
			COALESCE(SUM(sh.samples_per_position), 0)                AS total_capacity,
			COALESCE(SUM(p.current_count), 0)                        AS current_count
		FROM storage_positions p
		JOIN shelves sh ON sh.id = p.shelf_id
		WHERE p.shelf_id = ?`,
		shelfID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	util := &models.ShelfUtilization{
		TotalPositions:    row.TotalPositions,
		OccupiedPositions: row.OccupiedPositions,
		TotalCapacity:     row.TotalCapacity,
		CurrentCount:      row.CurrentCount,
	}
	if util.TotalCapacity > 0 {
		util.UtilizationPercentage = roundPct(float64(util.CurrentCount) / float64(util.TotalCapacity) * 100)
	}
	return util, nil
}

func (r *storageRepository) GetPosition(ctx context.Context, laboratoryID, positionID uuid.UUID) (*models.StoragePosition, error) {
	var position models.StoragePosition
	err := r.db.WithContext(ctx).
		Joins("JOIN shelves ON shelves.id = storage_positions.shelf_id").
		Where("storage_positions.id = ? AND shelves.laboratory_id = ?", positionID, laboratoryID).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &position, nil
}

func (r *storageRepository) UpdatePositionAssignment(ctx context.Context, positionID uuid.UUID, clientID *uuid.UUID, allowClientView bool) error {
	return r.db.WithContext(ctx).
		Model(&models.StoragePosition{}).
		Where("id = ?", positionID).
		Updates(map[string]interface{}{
			"client_id":         clientID,
			"allow_client_view": allowClientView,
		}).Error
}

func (r *storageRepository) RegeneratePositions(ctx context.Context, laboratoryID, shelfID uuid.UUID) (int, int, error) {
	generated := 0
	stored := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shelf models.Shelf
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND laboratory_id = ?", shelfID, laboratoryID).
			First(&shelf).Error
		if err != nil {
			return err
		}

		// Occupancy gate, re-checked under the shelf lock.
		err = tx.Model(&models.StoragePosition{}).
			Where("shelf_id = ?", shelfID).
			Select("COALESCE(SUM(current_count), 0)").
			Scan(&stored).Error
		if err != nil {
			return err
		}
		if stored > 0 {
			return ErrShelfOccupied
		}

		if err := tx.Where("shelf_id = ?", shelfID).Delete(&models.StoragePosition{}).Error; err != nil {
			return err
		}

		positions := buildPositionGrid(shelf)
		if len(positions) > 0 {
			if err := tx.CreateInBatches(positions, 200).Error; err != nil {
				return err
			}
		}
		generated = len(positions)
		return nil
	})

	if err != nil {
		return 0, stored, err
	}
	return generated, 0, nil
}

// buildPositionGrid materializes a shelf's full row-by-column grid, every
// position empty.
func buildPositionGrid(shelf models.Shelf) []models.StoragePosition {
	positions := make([]models.StoragePosition, 0, shelf.Rows*shelf.Columns)
	for row := 1; row <= shelf.Rows; row++ {
		for col := 1; col <= shelf.Columns; col++ {
			positions = append(positions, models.StoragePosition{
				ShelfID:      shelf.ID,
				RowNumber:    row,
				ColumnNumber: col,
				PositionCode: fmt.Sprintf("%s-R%d-C%d", shelf.Name, row, col),
				CurrentCount: 0,
			})
		}
	}
	return positions
}

// roundPct rounds to two decimal places
func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
