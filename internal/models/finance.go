package models

import (
	"time"

	"github.com/google/uuid"
)

// ClientBillingSummary is one row of the per-client billing report
type ClientBillingSummary struct {
	ClientID      uuid.UUID `json:"client_id"`
	CompanyName   string    `json:"company_name"`
	Currency      string    `json:"currency"`
	SampleCount   int       `json:"sample_count"`
	BilledAmount  float64   `json:"billed_amount"`
	BilledUSD     float64   `json:"billed_usd"` // converted with the latest FX rate
	FirstSampleAt time.Time `json:"first_sample_at"`
	LastSampleAt  time.Time `json:"last_sample_at"`
}

// LabBreakdown is one row of the per-laboratory volume report
type LabBreakdown struct {
	LaboratoryID   uuid.UUID `json:"laboratory_id"`
	LaboratoryName string    `json:"laboratory_name"`
	SampleCount    int       `json:"sample_count"`
	ClientCount    int       `json:"client_count"`
	BilledAmount   float64   `json:"billed_amount"`
}

// LabPaymentSummary is one row of the per-laboratory payment report
type LabPaymentSummary struct {
	LaboratoryID      uuid.UUID `json:"laboratory_id"`
	LaboratoryName    string    `json:"laboratory_name"`
	InvoicedAmount    float64   `json:"invoiced_amount"`
	PaidAmount        float64   `json:"paid_amount"`
	OutstandingAmount float64   `json:"outstanding_amount"`
}

// Invoice records a billing document issued to a client for samples processed
type Invoice struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClientID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	LaboratoryID uuid.UUID  `gorm:"type:uuid;not null;index" json:"laboratory_id"`
	Amount       float64    `gorm:"not null" json:"amount"`
	Currency     string     `gorm:"size:3;default:'USD'" json:"currency"`
	Status       string     `gorm:"size:20;default:'open'" json:"status"` // open, paid, void
	IssuedAt     time.Time  `json:"issued_at"`
	PaidAt       *time.Time `json:"paid_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
