package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quality-service/internal/middleware"
	"quality-service/internal/services"
)

// TemplateHandler handles quality template endpoints
type TemplateHandler struct {
	templates *services.TemplateService
	logger    *logrus.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templates *services.TemplateService, logger *logrus.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// List returns templates visible to the caller
func (h *TemplateHandler) List(c *gin.Context) {
	auth, _ := middleware.GetAuthContext(c)
	templates, err := h.templates.List(c.Request.Context(), auth)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// Get returns one template
func (h *TemplateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("templateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}
	template, err := h.templates.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

type cloneRequest struct {
	Name     string     `json:"name"`
	ClientID *uuid.UUID `json:"client_id"`
}

// Clone copies a template into a new client-owned row
func (h *TemplateHandler) Clone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("templateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var req cloneRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	auth, _ := middleware.GetAuthContext(c)
	clone, err := h.templates.Clone(c.Request.Context(), auth, id, req.Name, req.ClientID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, clone)
}
