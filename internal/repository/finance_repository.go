package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"quality-service/internal/models"
)

// FinanceRepository interface for read-only finance reporting queries.
// All three reports are aggregations over pre-joined rows; totals beyond
// simple sums belong to the service layer.
type FinanceRepository interface {
	BillingSummary(ctx context.Context, from, to time.Time) ([]models.ClientBillingSummary, error)
	LabBreakdown(ctx context.Context, from, to time.Time) ([]models.LabBreakdown, error)
	LabPayments(ctx context.Context, from, to time.Time) ([]models.LabPaymentSummary, error)
}

type financeRepository struct {
	db *gorm.DB
}

// NewFinanceRepository creates a new finance repository
func NewFinanceRepository(db *gorm.DB) FinanceRepository {
	return &financeRepository{db: db}
}

func (r *financeRepository) BillingSummary(ctx context.Context, from, to time.Time) ([]models.ClientBillingSummary, error) {
	var rows []models.ClientBillingSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS client_id,
		       c.company_name,
		       c.currency,
		       COUNT(s.id) AS sample_count,
		       SUM(COALESCE(op.price_per_sample, c.price_per_sample)) AS billed_amount,
		       MIN(s.received_at) AS first_sample_at,
		       MAX(s.received_at) AS last_sample_at
		FROM samples s
		JOIN clients c ON c.id = s.client_id
		LEFT JOIN client_origin_pricings op
		       ON op.client_id = s.client_id AND op.origin = s.origin
		WHERE s.deleted_at IS NULL
		  AND s.received_at >= ? AND s.received_at < ?
		GROUP BY c.id, c.company_name, c.currency
		ORDER BY billed_amount DESC`,
		from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *financeRepository) LabBreakdown(ctx context.Context, from, to time.Time) ([]models.LabBreakdown, error) {
	var rows []models.LabBreakdown
	err := r.db.WithContext(ctx).Raw(`
		SELECT l.id AS laboratory_id,
		       l.name AS laboratory_name,
		       COUNT(s.id) AS sample_count,
		       COUNT(DISTINCT s.client_id) AS client_count,
		       SUM(COALESCE(op.price_per_sample, c.price_per_sample)) AS billed_amount
		FROM samples s
		JOIN laboratories l ON l.id = s.laboratory_id
		JOIN clients c ON c.id = s.client_id
		LEFT JOIN client_origin_pricings op
		       ON op.client_id = s.client_id AND op.origin = s.origin
		WHERE s.deleted_at IS NULL
		  AND s.received_at >= ? AND s.received_at < ?
		GROUP BY l.id, l.name
		ORDER BY sample_count DESC`,
		from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *financeRepository) LabPayments(ctx context.Context, from, to time.Time) ([]models.LabPaymentSummary, error) {
	var rows []models.LabPaymentSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT l.id AS laboratory_id,
		       l.name AS laboratory_name,
		       COALESCE(SUM(i.amount), 0) AS invoiced_amount,
		       COALESCE(SUM(i.amount) FILTER (WHERE i.status = 'paid'), 0) AS paid_amount,
		       COALESCE(SUM(i.amount) FILTER (WHERE i.status = 'open'), 0) AS outstanding_amount
		FROM laboratories l
		LEFT JOIN invoices i
		       ON i.laboratory_id = l.id
		      AND i.issued_at >= ? AND i.issued_at < ?
		GROUP BY l.id, l.name
		ORDER BY l.name ASC`,
		from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
