package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-service/internal/models"
)

func TestSearchTermTooShort(t *testing.T) {
	svc := NewClientService(newFakeClientRepo())

	for _, term := range []string{"", "a", " x ", "  "} {
		_, err := svc.Search(context.Background(), term, 20)
		assert.ErrorIs(t, err, ErrValidation, "term %q", term)
	}
}

func TestSearchTermCountsRunesNotBytes(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo)

	// A single two-byte rune is still one character.
	_, err := svc.Search(context.Background(), "é", 20)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Search(context.Background(), "éa", 20)
	require.NoError(t, err)
	assert.Equal(t, "éa", repo.lastTerm)
}

func TestSearchTrimsAndNormalizesLimit(t *testing.T) {
	repo := newFakeClientRepo()
	repo.searchResults = []models.ClientSearchResult{{ID: uuid.New(), CompanyName: "Acme Coffee", Rank: 0.8}}
	svc := NewClientService(repo)

	results, err := svc.Search(context.Background(), "  acme  ", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "acme", repo.lastTerm)
	assert.Equal(t, 20, repo.lastLimit)

	_, err = svc.Search(context.Background(), "acme", 500)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastLimit)

	_, err = svc.Search(context.Background(), "acme", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)
}

func TestCreateClient(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo)

	staff := models.AuthContext{UserID: uuid.New(), Role: models.RoleStaff}
	err := svc.Create(context.Background(), staff, &models.Client{CompanyName: "Acme"})
	assert.ErrorIs(t, err, ErrForbidden)

	admin := adminAuth()
	err = svc.Create(context.Background(), admin, &models.Client{CompanyName: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	client := &models.Client{CompanyName: "Acme Coffee"}
	require.NoError(t, svc.Create(context.Background(), admin, client))
	assert.Equal(t, "USD", client.Currency)
	assert.True(t, client.Active)
	assert.NotEqual(t, uuid.Nil, client.ID)
}

func TestUpdateClientUnknown(t *testing.T) {
	svc := NewClientService(newFakeClientRepo())

	err := svc.Update(context.Background(), adminAuth(), &models.Client{ID: uuid.New(), CompanyName: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetClientUnknown(t *testing.T) {
	svc := NewClientService(newFakeClientRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetOriginPricing(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo)
	clientID := uuid.New()

	staff := models.AuthContext{UserID: uuid.New(), Role: models.RoleStaff}
	err := svc.SetOriginPricing(context.Background(), staff, &models.ClientOriginPricing{ClientID: clientID, Origin: "Huila", PricePerSample: 12})
	assert.ErrorIs(t, err, ErrForbidden)

	admin := adminAuth()
	err = svc.SetOriginPricing(context.Background(), admin, &models.ClientOriginPricing{ClientID: clientID, Origin: " ", PricePerSample: 12})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.SetOriginPricing(context.Background(), admin, &models.ClientOriginPricing{ClientID: clientID, Origin: "Huila", PricePerSample: -1})
	assert.ErrorIs(t, err, ErrValidation)

	pricing := &models.ClientOriginPricing{ClientID: clientID, Origin: "Huila", PricePerSample: 12.5}
	require.NoError(t, svc.SetOriginPricing(context.Background(), admin, pricing))
	assert.Equal(t, "USD", pricing.Currency)

	// Setting the same origin again overwrites rather than duplicating.
	updated := &models.ClientOriginPricing{ClientID: clientID, Origin: "Huila", PricePerSample: 15, Currency: "EUR"}
	require.NoError(t, svc.SetOriginPricing(context.Background(), admin, updated))

	all, err := svc.GetOriginPricing(context.Background(), clientID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 15.0, all[0].PricePerSample)
	assert.Equal(t, "EUR", all[0].Currency)
}

func TestDeleteOriginPricing(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo)
	clientID := uuid.New()
	admin := adminAuth()

	require.NoError(t, svc.SetOriginPricing(context.Background(), admin, &models.ClientOriginPricing{ClientID: clientID, Origin: "Huila", PricePerSample: 10}))
	require.NoError(t, svc.DeleteOriginPricing(context.Background(), admin, clientID, "Huila"))

	all, err := svc.GetOriginPricing(context.Background(), clientID)
	require.NoError(t, err)
	assert.Empty(t, all)
}
