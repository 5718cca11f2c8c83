package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quality-service/internal/events"
	"quality-service/internal/middleware"
	"quality-service/internal/services"
)

// StorageHandler handles laboratory storage layout endpoints
type StorageHandler struct {
	storage *services.StorageService
	logger  *logrus.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(storage *services.StorageService, logger *logrus.Logger) *StorageHandler {
	return &StorageHandler{storage: storage, logger: logger}
}

// ListLaboratories returns all active laboratories
func (h *StorageHandler) ListLaboratories(c *gin.Context) {
	labs, err := h.storage.ListLaboratories(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"laboratories": labs})
}

// GetStorageLayout returns the full floor plan with utilization
func (h *StorageHandler) GetStorageLayout(c *gin.Context) {
	labID, err := uuid.Parse(c.Param("labId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid laboratory id"})
		return
	}

	layout, err := h.storage.GetLayout(c.Request.Context(), labID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

type assignPositionRequest struct {
	ClientID        *string `json:"client_id"`
	AllowClientView bool    `json:"allow_client_view"`
}

// AssignPosition updates one position's client assignment and view flag.
// An empty or missing client_id clears the assignment.
func (h *StorageHandler) AssignPosition(c *gin.Context) {
	labID, err := uuid.Parse(c.Param("labId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid laboratory id"})
		return
	}
	positionID, err := uuid.Parse(c.Param("positionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position id"})
		return
	}

	var req assignPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var clientID *uuid.UUID
	if req.ClientID != nil && *req.ClientID != "" {
		id, err := uuid.Parse(*req.ClientID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		clientID = &id
	}

	auth, _ := middleware.GetAuthContext(c)
	position, err := h.storage.AssignPosition(c.Request.Context(), auth, labID, positionID, clientID, req.AllowClientView)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

// RegeneratePositions rebuilds a shelf's position grid
func (h *StorageHandler) RegeneratePositions(c *gin.Context) {
	labID, err := uuid.Parse(c.Param("labId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid laboratory id"})
		return
	}
	shelfID, err := uuid.Parse(c.Param("shelfId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shelf id"})
		return
	}

	auth, _ := middleware.GetAuthContext(c)
	result, err := h.storage.RegeneratePositions(c.Request.Context(), auth, labID, shelfID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	if pub := events.GetPublisher(); pub != nil {
		pub.PublishPositionsRegenerated(events.PositionsRegeneratedEvent{
			LaboratoryID:       labID,
			ShelfID:            shelfID,
			PositionsGenerated: result.PositionsGenerated,
		})
	}

	c.JSON(http.StatusOK, result)
}

// intQuery parses an integer query parameter with a default
func intQuery(c *gin.Context, name string, defaultValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}
