package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-service/internal/models"
	"quality-service/internal/repository"
	"quality-service/internal/services"
)

func newStorageTestRouter(repo *stubStorageRepo, auth models.AuthContext) *gin.Engine {
	handler := NewStorageHandler(services.NewStorageService(repo, nil), testLogger())
	router := gin.New()
	group := router.Group("/api/v1/laboratories", withAuth(auth))
	group.GET("", handler.ListLaboratories)
	group.GET("/:labId/storage-layout", handler.GetStorageLayout)
	group.PATCH("/:labId/positions/:positionId", handler.AssignPosition)
	group.POST("/:labId/shelves/:shelfId/generate-positions", handler.RegeneratePositions)
	return router
}

func TestGetStorageLayout(t *testing.T) {
	repo := newStubStorageRepo()
	lab := &models.Laboratory{ID: uuid.New(), Name: "Santos", Code: "SAN"}
	repo.labs[lab.ID] = lab
	repo.shelves[lab.ID] = []models.Shelf{
		{ID: uuid.New(), LaboratoryID: lab.ID, Name: "A", Rows: 2, Columns: 2, SamplesPerPosition: 3},
	}

	router := newStorageTestRouter(repo, models.AuthContext{Role: models.RoleStaff})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/laboratories/"+lab.ID.String()+"/storage-layout", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var layout models.LaboratoryLayout
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &layout))
	assert.Equal(t, "Santos", layout.Laboratory.Name)
	require.Len(t, layout.Shelves, 1)
	assert.Equal(t, 12, layout.Shelves[0].DerivedCapacity)
}

func TestGetStorageLayoutUnknownLab(t *testing.T) {
	router := newStorageTestRouter(newStubStorageRepo(), models.AuthContext{Role: models.RoleStaff})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/laboratories/"+uuid.NewString()+"/storage-layout", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStorageLayoutUpstreamErrorPassthrough(t *testing.T) {
	repo := newStubStorageRepo()
	repo.labErr = errors.New(`pq: relation "laboratories" does not exist`)

	router := newStorageTestRouter(repo, models.AuthContext{Role: models.RoleStaff})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/laboratories/"+uuid.NewString()+"/storage-layout", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `relation \"laboratories\" does not exist`)
}

func TestAssignPositionEmptyClientUnassigns(t *testing.T) {
	repo := newStubStorageRepo()
	labID := uuid.New()
	existing := uuid.New()
	position := &models.StoragePosition{ID: uuid.New(), ClientID: &existing, AllowClientView: true}
	repo.positions[position.ID] = position

	router := newStorageTestRouter(repo, models.AuthContext{Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch,
		"/api/v1/laboratories/"+labID.String()+"/positions/"+position.ID.String(),
		strings.NewReader(`{"client_id":"","allow_client_view":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var updated models.StoragePosition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Nil(t, updated.ClientID)
	assert.False(t, updated.AllowClientView)
}

func TestAssignPositionInvalidClientID(t *testing.T) {
	repo := newStubStorageRepo()
	labID := uuid.New()
	position := &models.StoragePosition{ID: uuid.New()}
	repo.positions[position.ID] = position

	router := newStorageTestRouter(repo, models.AuthContext{Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch,
		"/api/v1/laboratories/"+labID.String()+"/positions/"+position.ID.String(),
		strings.NewReader(`{"client_id":"not-a-uuid"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignPositionForbiddenForStaff(t *testing.T) {
	repo := newStubStorageRepo()
	labID := uuid.New()
	position := &models.StoragePosition{ID: uuid.New()}
	repo.positions[position.ID] = position

	router := newStorageTestRouter(repo, models.AuthContext{Role: models.RoleStaff})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch,
		"/api/v1/laboratories/"+labID.String()+"/positions/"+position.ID.String(),
		strings.NewReader(`{"client_id":"`+uuid.NewString()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegeneratePositions(t *testing.T) {
	repo := newStubStorageRepo()
	labID := uuid.New()
	shelf := models.Shelf{ID: uuid.New(), LaboratoryID: labID, Name: "A", Rows: 3, Columns: 4}
	repo.shelves[labID] = []models.Shelf{shelf}
	repo.regenN = 12

	router := newStorageTestRouter(repo, models.AuthContext{Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/laboratories/"+labID.String()+"/shelves/"+shelf.ID.String()+"/generate-positions", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.RegenerateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 12, result.PositionsGenerated)
}

func TestRegeneratePositionsOccupiedShelfConflict(t *testing.T) {
	repo := newStubStorageRepo()
	labID := uuid.New()
	shelf := models.Shelf{ID: uuid.New(), LaboratoryID: labID, Name: "A", Rows: 2, Columns: 2}
	repo.shelves[labID] = []models.Shelf{shelf}
	repo.regenErr = repository.ErrShelfOccupied
	repo.stored = 5

	router := newStorageTestRouter(repo, models.AuthContext{Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/laboratories/"+labID.String()+"/shelves/"+shelf.ID.String()+"/generate-positions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "5 stored")
}
