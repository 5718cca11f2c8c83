package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-service/internal/models"
	"quality-service/internal/repository"
	"quality-service/internal/services"
)

type stubSampleRepo struct {
	seq        map[string]int
	byTracking map[string]*models.Sample
}

func newStubSampleRepo() *stubSampleRepo {
	return &stubSampleRepo{seq: map[string]int{}, byTracking: map[string]*models.Sample{}}
}

func (s *stubSampleRepo) AllocateSequence(_ context.Context, clientID, laboratoryID uuid.UUID, year int) (int, error) {
	key := fmt.Sprintf("%s/%s/%d", clientID, laboratoryID, year)
	s.seq[key]++
	return s.seq[key], nil
}

func (s *stubSampleRepo) GetByTrackingNumber(_ context.Context, trackingNumber string) (*models.Sample, error) {
	return s.byTracking[trackingNumber], nil
}

func (s *stubSampleRepo) Create(_ context.Context, sample *models.Sample) error {
	sample.ID = uuid.New()
	sample.CreatedAt = time.Now()
	s.byTracking[sample.TrackingNumber] = sample
	return nil
}

func (s *stubSampleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Sample, error) {
	for _, sample := range s.byTracking {
		if sample.ID == id {
			return sample, nil
		}
	}
	return nil, nil
}

func (s *stubSampleRepo) List(_ context.Context, clientID, laboratoryID *uuid.UUID, status string, limit, offset int) ([]models.Sample, int64, error) {
	return nil, 0, nil
}

func (s *stubSampleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	return nil
}

var _ repository.SampleRepository = (*stubSampleRepo)(nil)

func newSampleTestRouter(auth models.AuthContext) (*gin.Engine, *stubSampleRepo, *stubClientRepo, *stubStorageRepo) {
	samples := newStubSampleRepo()
	clients := newStubClientRepo()
	storage := newStubStorageRepo()

	tracking := services.NewTrackingService(samples, clients, storage)
	handler := NewSampleHandler(services.NewSampleService(samples, tracking), tracking, testLogger())

	router := gin.New()
	group := router.Group("/api/v1/samples", withAuth(auth))
	group.POST("/tracking-numbers", handler.AllocateTrackingNumber)
	group.GET("/tracking-numbers", handler.LookupTrackingNumber)
	group.POST("", handler.Intake)
	group.PATCH("/:sampleId/status", handler.UpdateStatus)
	return router, samples, clients, storage
}

func TestAllocateTrackingNumberEndpoint(t *testing.T) {
	router, _, clients, storage := newSampleTestRouter(models.AuthContext{Role: models.RoleStaff})

	client := &models.Client{ID: uuid.New(), CompanyName: "Acme Coffee", TrackingNumberFormat: "B-{seq:05d}-25"}
	clients.clients[client.ID] = client
	lab := &models.Laboratory{ID: uuid.New(), Code: "SAN"}
	storage.labs[lab.ID] = lab

	payload := fmt.Sprintf(`{"client_id":"%s","laboratory_id":"%s"}`, client.ID, lab.ID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/samples/tracking-numbers", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var allocation models.TrackingAllocation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &allocation))
	assert.Equal(t, "B-00001-25", allocation.TrackingNumber)
	assert.Equal(t, "Acme Coffee", allocation.ClientName)
	assert.Equal(t, 1, allocation.Sequence)
}

func TestAllocateTrackingNumberMissingClient(t *testing.T) {
	router, _, _, _ := newSampleTestRouter(models.AuthContext{Role: models.RoleStaff})

	payload := fmt.Sprintf(`{"laboratory_id":"%s"}`, uuid.New())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/samples/tracking-numbers", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "client_id is required")
}

func TestLookupTrackingNumberEndpoint(t *testing.T) {
	router, samples, _, _ := newSampleTestRouter(models.AuthContext{Role: models.RoleStaff})

	sample := &models.Sample{ClientID: uuid.New(), LaboratoryID: uuid.New(), TrackingNumber: "WAQC-SAN-2026-00042"}
	require.NoError(t, samples.Create(context.Background(), sample))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/samples/tracking-numbers?tracking_number=WAQC-SAN-2026-00042", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var lookup models.TrackingLookup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lookup))
	assert.True(t, lookup.Exists)
	require.NotNil(t, lookup.SampleID)
	assert.Equal(t, sample.ID, *lookup.SampleID)

	// Unknown numbers are a negative result, not an error.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/samples/tracking-numbers?tracking_number=WAQC-SAN-2026-99999", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lookup))
	assert.False(t, lookup.Exists)
}

func TestIntakeEndpoint(t *testing.T) {
	router, _, clients, storage := newSampleTestRouter(models.AuthContext{Role: models.RoleStaff})

	client := &models.Client{ID: uuid.New(), CompanyName: "Acme Coffee"}
	clients.clients[client.ID] = client
	lab := &models.Laboratory{ID: uuid.New(), Code: "SAN"}
	storage.labs[lab.ID] = lab

	payload := fmt.Sprintf(`{"client_id":"%s","laboratory_id":"%s","origin":"Huila","sample_type":"arrival"}`, client.ID, lab.ID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/samples", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var sample models.Sample
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sample))
	assert.NotEmpty(t, sample.TrackingNumber)
	assert.Equal(t, models.SampleStatusReceived, sample.Status)
	assert.Equal(t, "Huila", sample.Origin)
	assert.Equal(t, 1, sample.Quantity)
}

func TestUpdateStatusRequiresBody(t *testing.T) {
	router, _, _, _ := newSampleTestRouter(models.AuthContext{Role: models.RoleStaff})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/samples/"+uuid.NewString()+"/status", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
