package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quality-service/internal/events"
	"quality-service/internal/middleware"
	"quality-service/internal/services"
)

// SampleHandler handles sample intake and tracking-number endpoints
type SampleHandler struct {
	samples  *services.SampleService
	tracking *services.TrackingService
	logger   *logrus.Logger
}

// NewSampleHandler creates a new sample handler
func NewSampleHandler(samples *services.SampleService, tracking *services.TrackingService, logger *logrus.Logger) *SampleHandler {
	return &SampleHandler{samples: samples, tracking: tracking, logger: logger}
}

type allocateRequest struct {
	ClientID     uuid.UUID `json:"client_id"`
	LaboratoryID uuid.UUID `json:"laboratory_id"`
	Origin       string    `json:"origin"`
}

// AllocateTrackingNumber allocates the next tracking number for a client/lab
func (h *SampleHandler) AllocateTrackingNumber(c *gin.Context) {
	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	allocation, err := h.tracking.Allocate(c.Request.Context(), req.ClientID, req.LaboratoryID, req.Origin)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, allocation)
}

// LookupTrackingNumber validates an existing tracking number
func (h *SampleHandler) LookupTrackingNumber(c *gin.Context) {
	trackingNumber := c.Query("tracking_number")
	lookup, err := h.tracking.Lookup(c.Request.Context(), trackingNumber)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lookup)
}

// Intake registers a sample and assigns its tracking number
func (h *SampleHandler) Intake(c *gin.Context) {
	var req services.SampleIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sample, err := h.samples.Intake(c.Request.Context(), req)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	if pub := events.GetPublisher(); pub != nil {
		pub.PublishSampleIntake(events.SampleIntakeEvent{
			SampleID:       sample.ID,
			ClientID:       sample.ClientID,
			LaboratoryID:   sample.LaboratoryID,
			TrackingNumber: sample.TrackingNumber,
			Origin:         sample.Origin,
		})
	}

	c.JSON(http.StatusCreated, sample)
}

// List returns samples filtered by client, laboratory and status
func (h *SampleHandler) List(c *gin.Context) {
	var clientID, laboratoryID *uuid.UUID
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		clientID = &id
	}
	if raw := c.Query("laboratory_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid laboratory_id"})
			return
		}
		laboratoryID = &id
	}

	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	samples, total, err := h.samples.List(c.Request.Context(), clientID, laboratoryID, c.Query("status"), limit, offset)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples, "total": total})
}

// Get returns one sample by id
func (h *SampleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("sampleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sample id"})
		return
	}
	sample, err := h.samples.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sample)
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves a sample through its lifecycle
func (h *SampleHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("sampleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sample id"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	auth, _ := middleware.GetAuthContext(c)
	if err := h.samples.UpdateStatus(c.Request.Context(), auth, id, req.Status); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}
