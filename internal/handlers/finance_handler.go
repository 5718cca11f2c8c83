package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quality-service/internal/services"
)

// FinanceHandler handles finance reporting endpoints
type FinanceHandler struct {
	finance *services.FinanceService
	logger  *logrus.Logger
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(finance *services.FinanceService, logger *logrus.Logger) *FinanceHandler {
	return &FinanceHandler{finance: finance, logger: logger}
}

// BillingSummary returns per-client billing totals for the period
func (h *FinanceHandler) BillingSummary(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.finance.BillingSummary(c.Request.Context(), from, to)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"billing_summary": rows, "from": from, "to": to})
}

// LabBreakdown returns per-laboratory volume for the period
func (h *FinanceHandler) LabBreakdown(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.finance.LabBreakdown(c.Request.Context(), from, to)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lab_breakdown": rows, "from": from, "to": to})
}

// LabPayments returns per-laboratory payment totals for the period
func (h *FinanceHandler) LabPayments(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := h.finance.LabPayments(c.Request.Context(), from, to)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lab_payments": rows, "from": from, "to": to})
}

// Export streams the three reports as one XLSX workbook
func (h *FinanceHandler) Export(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workbook, err := h.finance.ExportXLSX(c.Request.Context(), from, to)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("finance-report-%s.xlsx", from.Format("2006-01"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// parsePeriod reads from/to query dates (YYYY-MM-DD); defaults to the
// current month.
func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %s", raw)
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %s", raw)
		}
		to = parsed
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must be after from")
	}
	return from, to, nil
}
