package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"quality-service/internal/models"
	"quality-service/internal/repository"
)

// FinanceService composes the read-only finance reports
type FinanceService struct {
	finance repository.FinanceRepository
	fx      *FXService
}

// NewFinanceService creates a new finance reporting service
func NewFinanceService(finance repository.FinanceRepository, fx *FXService) *FinanceService {
	return &FinanceService{finance: finance, fx: fx}
}

// BillingSummary returns per-client billing totals with USD normalization
func (s *FinanceService) BillingSummary(ctx context.Context, from, to time.Time) ([]models.ClientBillingSummary, error) {
	rows, err := s.finance.BillingSummary(ctx, from, to)
	if err != nil {
		return nil, UpstreamError("billing summary query failed", err)
	}
	for i := range rows {
		usd, _ := s.fx.ToUSD(rows[i].BilledAmount, rows[i].Currency)
		rows[i].BilledUSD = usd
	}
	return rows, nil
}

// LabBreakdown returns per-laboratory sample volume and billing
func (s *FinanceService) LabBreakdown(ctx context.Context, from, to time.Time) ([]models.LabBreakdown, error) {
	rows, err := s.finance.LabBreakdown(ctx, from, to)
	if err != nil {
		return nil, UpstreamError("lab breakdown query failed", err)
	}
	return rows, nil
}

// LabPayments returns per-laboratory invoiced/paid/outstanding totals
func (s *FinanceService) LabPayments(ctx context.Context, from, to time.Time) ([]models.LabPaymentSummary, error) {
	rows, err := s.finance.LabPayments(ctx, from, to)
	if err != nil {
		return nil, UpstreamError("lab payments query failed", err)
	}
	return rows, nil
}

// ExportXLSX renders the three reports into one workbook, one sheet each
func (s *FinanceService) ExportXLSX(ctx context.Context, from, to time.Time) ([]byte, error) {
	billing, err := s.BillingSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.LabBreakdown(ctx, from, to)
	if err != nil {
		return nil, err
	}
	payments, err := s.LabPayments(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const billingSheet = "Billing Summary"
	f.SetSheetName("Sheet1", billingSheet)
	writeRow(f, billingSheet, 1, []interface{}{"Client", "Currency", "Samples", "Billed", "Billed (USD)", "First Sample", "Last Sample"})
	for i, row := range billing {
		writeRow(f, billingSheet, i+2, []interface{}{
			row.CompanyName, row.Currency, row.SampleCount, row.BilledAmount, row.BilledUSD,
			row.FirstSampleAt.Format("2006-01-02"), row.LastSampleAt.Format("2006-01-02"),
		})
	}

	const breakdownSheet = "Lab Breakdown"
	f.NewSheet(breakdownSheet)
	writeRow(f, breakdownSheet, 1, []interface{}{"Laboratory", "Samples", "Clients", "Billed"})
	for i, row := range breakdown {
		writeRow(f, breakdownSheet, i+2, []interface{}{
			row.LaboratoryName, row.SampleCount, row.ClientCount, row.BilledAmount,
		})
	}

	const paymentsSheet = "Lab Payments"
	f.NewSheet(paymentsSheet)
	writeRow(f, paymentsSheet, 1, []interface{}{"Laboratory", "Invoiced", "Paid", "Outstanding"})
	for i, row := range payments {
		writeRow(f, paymentsSheet, i+2, []interface{}{
			row.LaboratoryName, row.InvoicedAmount, row.PaidAmount, row.OutstandingAmount,
		})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) {
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	_ = f.SetSheetRow(sheet, cell, &values)
}
