package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quality-service/internal/models"
)

// In-memory repository fakes shared by the service tests.

type fakeSampleRepo struct {
	seq        map[string]int
	byTracking map[string]*models.Sample
	byID       map[uuid.UUID]*models.Sample
	created    []*models.Sample
	allocErr   error
}

func newFakeSampleRepo() *fakeSampleRepo {
	return &fakeSampleRepo{
		seq:        map[string]int{},
		byTracking: map[string]*models.Sample{},
		byID:       map[uuid.UUID]*models.Sample{},
	}
}

func (f *fakeSampleRepo) AllocateSequence(_ context.Context, clientID, laboratoryID uuid.UUID, year int) (int, error) {
	if f.allocErr != nil {
		return 0, f.allocErr
	}
	key := fmt.Sprintf("%s/%s/%d", clientID, laboratoryID, year)
	f.seq[key]++
	return f.seq[key], nil
}

func (f *fakeSampleRepo) GetByTrackingNumber(_ context.Context, trackingNumber string) (*models.Sample, error) {
	return f.byTracking[trackingNumber], nil
}

func (f *fakeSampleRepo) Create(_ context.Context, sample *models.Sample) error {
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	sample.CreatedAt = time.Now()
	f.created = append(f.created, sample)
	f.byTracking[sample.TrackingNumber] = sample
	f.byID[sample.ID] = sample
	return nil
}

func (f *fakeSampleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Sample, error) {
	return f.byID[id], nil
}

func (f *fakeSampleRepo) List(_ context.Context, clientID, laboratoryID *uuid.UUID, status string, limit, offset int) ([]models.Sample, int64, error) {
	var out []models.Sample
	for _, s := range f.created {
		if clientID != nil && s.ClientID != *clientID {
			continue
		}
		if laboratoryID != nil && s.LaboratoryID != *laboratoryID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSampleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	sample, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sample.Status = status
	return nil
}

type fakeClientRepo struct {
	clients       map[uuid.UUID]*models.Client
	searchResults []models.ClientSearchResult
	lastTerm      string
	lastLimit     int
	pricing       map[string]*models.ClientOriginPricing
	deleted       []uuid.UUID
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{
		clients: map[uuid.UUID]*models.Client{},
		pricing: map[string]*models.ClientOriginPricing{},
	}
}

func (f *fakeClientRepo) Search(_ context.Context, term string, limit int) ([]models.ClientSearchResult, error) {
	f.lastTerm = term
	f.lastLimit = limit
	return f.searchResults, nil
}

func (f *fakeClientRepo) GetAll(_ context.Context, limit, offset int) ([]models.Client, int64, error) {
	var out []models.Client
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeClientRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Client, error) {
	return f.clients[id], nil
}

func (f *fakeClientRepo) Create(_ context.Context, client *models.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Update(_ context.Context, client *models.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.clients, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClientRepo) GetOriginPricing(_ context.Context, clientID uuid.UUID) ([]models.ClientOriginPricing, error) {
	var out []models.ClientOriginPricing
	for _, p := range f.pricing {
		if p.ClientID == clientID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeClientRepo) UpsertOriginPricing(_ context.Context, pricing *models.ClientOriginPricing) error {
	f.pricing[pricing.ClientID.String()+"|"+pricing.Origin] = pricing
	return nil
}

func (f *fakeClientRepo) DeleteOriginPricing(_ context.Context, clientID uuid.UUID, origin string) error {
	delete(f.pricing, clientID.String()+"|"+origin)
	return nil
}

type fakeStorageRepo struct {
	labs        map[uuid.UUID]*models.Laboratory
	shelves     map[uuid.UUID][]models.Shelf
	utilization map[uuid.UUID]models.ShelfUtilization
	positions   map[uuid.UUID]*models.StoragePosition
	labErr      error

	regenGenerated int
	regenStored    int
	regenErr       error

	assignedClientID *uuid.UUID
	assignedView     bool
}

func newFakeStorageRepo() *fakeStorageRepo {
	return &fakeStorageRepo{
		labs:        map[uuid.UUID]*models.Laboratory{},
		shelves:     map[uuid.UUID][]models.Shelf{},
		utilization: map[uuid.UUID]models.ShelfUtilization{},
		positions:   map[uuid.UUID]*models.StoragePosition{},
	}
}

func (f *fakeStorageRepo) GetLaboratory(_ context.Context, id uuid.UUID) (*models.Laboratory, error) {
	if f.labErr != nil {
		return nil, f.labErr
	}
	return f.labs[id], nil
}

func (f *fakeStorageRepo) ListLaboratories(_ context.Context) ([]models.Laboratory, error) {
	var out []models.Laboratory
	for _, lab := range f.labs {
		out = append(out, *lab)
	}
	return out, nil
}

func (f *fakeStorageRepo) GetShelvesByLaboratory(_ context.Context, laboratoryID uuid.UUID) ([]models.Shelf, error) {
	return f.shelves[laboratoryID], nil
}

func (f *fakeStorageRepo) GetShelf(_ context.Context, laboratoryID, shelfID uuid.UUID) (*models.Shelf, error) {
	for _, shelf := range f.shelves[laboratoryID] {
		if shelf.ID == shelfID {
			s := shelf
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStorageRepo) GetShelfUtilization(_ context.Context, shelfID uuid.UUID) (*models.ShelfUtilization, error) {
	util := f.utilization[shelfID]
	return &util, nil
}

func (f *fakeStorageRepo) GetPosition(_ context.Context, laboratoryID, positionID uuid.UUID) (*models.StoragePosition, error) {
	return f.positions[positionID], nil
}

func (f *fakeStorageRepo) UpdatePositionAssignment(_ context.Context, positionID uuid.UUID, clientID *uuid.UUID, allowClientView bool) error {
	f.assignedClientID = clientID
	f.assignedView = allowClientView
	return nil
}

func (f *fakeStorageRepo) RegeneratePositions(_ context.Context, laboratoryID, shelfID uuid.UUID) (int, int, error) {
	if f.regenErr != nil {
		return 0, f.regenStored, f.regenErr
	}
	return f.regenGenerated, 0, nil
}

type fakeTemplateRepo struct {
	templates    map[uuid.UUID]*models.QualityTemplate
	created      []*models.QualityTemplate
	lastClientID *uuid.UUID
	listFiltered bool
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[uuid.UUID]*models.QualityTemplate{}}
}

func (f *fakeTemplateRepo) List(_ context.Context, clientID *uuid.UUID) ([]models.QualityTemplate, error) {
	f.lastClientID = clientID
	f.listFiltered = true
	var out []models.QualityTemplate
	for _, t := range f.templates {
		if t.ClientID == nil || (clientID != nil && *t.ClientID == *clientID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (*models.QualityTemplate, error) {
	return f.templates[id], nil
}

func (f *fakeTemplateRepo) Create(_ context.Context, template *models.QualityTemplate) error {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	f.templates[template.ID] = template
	f.created = append(f.created, template)
	return nil
}

type fakeUserRepo struct {
	byEmail map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	return nil
}

type fakeSessionStore struct {
	sessions map[uuid.UUID]*models.AuthContext
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uuid.UUID]*models.AuthContext{}}
}

func (f *fakeSessionStore) Save(_ context.Context, auth *models.AuthContext, _ time.Duration) error {
	copied := *auth
	f.sessions[auth.SessionID] = &copied
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, sessionID uuid.UUID) (*models.AuthContext, error) {
	return f.sessions[sessionID], nil
}

func (f *fakeSessionStore) Delete(_ context.Context, sessionID uuid.UUID) error {
	delete(f.sessions, sessionID)
	return nil
}
