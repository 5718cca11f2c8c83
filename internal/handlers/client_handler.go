package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quality-service/internal/middleware"
	"quality-service/internal/models"
	"quality-service/internal/services"
)

// ClientHandler handles client management endpoints
type ClientHandler struct {
	clients *services.ClientService
	logger  *logrus.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clients *services.ClientService, logger *logrus.Logger) *ClientHandler {
	return &ClientHandler{clients: clients, logger: logger}
}

// Search runs the fuzzy client search
func (h *ClientHandler) Search(c *gin.Context) {
	results, err := h.clients.Search(c.Request.Context(), c.Query("q"), intQuery(c, "limit", 20))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// List returns clients with pagination
func (h *ClientHandler) List(c *gin.Context) {
	clients, total, err := h.clients.List(c.Request.Context(), intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "total": total})
}

// Get returns one client with its origin pricing
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}
	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// Create creates a new client
func (h *ClientHandler) Create(c *gin.Context) {
	var client models.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	auth, _ := middleware.GetAuthContext(c)
	if err := h.clients.Create(c.Request.Context(), auth, &client); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// Update updates an existing client
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var client models.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	client.ID = id

	auth, _ := middleware.GetAuthContext(c)
	if err := h.clients.Update(c.Request.Context(), auth, &client); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// Delete soft-deletes a client
func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}
	auth, _ := middleware.GetAuthContext(c)
	if err := h.clients.Delete(c.Request.Context(), auth, id); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client deleted"})
}

// GetOriginPricing lists a client's per-origin price overrides
func (h *ClientHandler) GetOriginPricing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}
	pricing, err := h.clients.GetOriginPricing(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"origin_pricing": pricing})
}

type originPricingRequest struct {
	Origin         string  `json:"origin" binding:"required"`
	PricePerSample float64 `json:"price_per_sample"`
	Currency       string  `json:"currency"`
}

// SetOriginPricing creates or updates one (client, origin) price override
func (h *ClientHandler) SetOriginPricing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req originPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin is required"})
		return
	}

	pricing := &models.ClientOriginPricing{
		ClientID:       id,
		Origin:         req.Origin,
		PricePerSample: req.PricePerSample,
		Currency:       req.Currency,
	}

	auth, _ := middleware.GetAuthContext(c)
	if err := h.clients.SetOriginPricing(c.Request.Context(), auth, pricing); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pricing)
}

// DeleteOriginPricing removes one (client, origin) price override
func (h *ClientHandler) DeleteOriginPricing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}
	origin := c.Query("origin")
	if origin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin is required"})
		return
	}
	auth, _ := middleware.GetAuthContext(c)
	if err := h.clients.DeleteOriginPricing(c.Request.Context(), auth, id, origin); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "origin pricing removed"})
}
