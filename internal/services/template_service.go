package services

import (
	"context"

	"github.com/google/uuid"

	"quality-service/internal/models"
	"quality-service/internal/repository"
)

// TemplateService handles quality template listing and cloning
type TemplateService struct {
	templates repository.TemplateRepository
}

// NewTemplateService creates a new template service
func NewTemplateService(templates repository.TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates}
}

// List returns the templates visible to the caller: global ones plus the
// caller's client-owned ones when the session is client-scoped.
func (s *TemplateService) List(ctx context.Context, auth models.AuthContext) ([]models.QualityTemplate, error) {
	scope := auth.ClientID
	if auth.HasRole(models.RoleAdmin, models.RoleLabDirector, models.RoleLabManager, models.RoleStaff, models.RoleFinance) {
		scope = nil
	}
	templates, err := s.templates.List(ctx, scope)
	if err != nil {
		return nil, UpstreamError("failed to list templates", err)
	}
	return templates, nil
}

// Get returns one template by id
func (s *TemplateService) Get(ctx context.Context, id uuid.UUID) (*models.QualityTemplate, error) {
	template, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, UpstreamError("failed to load template", err)
	}
	if template == nil {
		return nil, NotFoundError("template")
	}
	return template, nil
}

// Clone copies a template's parameters into a new row owned by the given
// client. The source template is never mutated.
func (s *TemplateService) Clone(ctx context.Context, auth models.AuthContext, sourceID uuid.UUID, name string, ownerClientID *uuid.UUID) (*models.QualityTemplate, error) {
	source, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if ownerClientID == nil {
		ownerClientID = auth.ClientID
	}
	if name == "" {
		name = source.Name + " (copy)"
	}

	clone := &models.QualityTemplate{
		Name:        name,
		Description: source.Description,
		ClientID:    ownerClientID,
		Parameters:  append(models.JSONB(nil), source.Parameters...),
		Version:     source.Version + 1,
		IsDefault:   false,
	}
	if err := s.templates.Create(ctx, clone); err != nil {
		return nil, UpstreamError("failed to clone template", err)
	}
	return clone, nil
}
