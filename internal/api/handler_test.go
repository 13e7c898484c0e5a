package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"florist-service/internal/models"
	"florist-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend implements the gateway interfaces and the store directory
// in memory so the full HTTP surface can be exercised without Postgres.
type fakeBackend struct {
	mu     sync.Mutex
	orders map[string]models.Order
	labels []models.ProductLabel
}

func (f *fakeBackend) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (f *fakeBackend) FetchOrders(_ context.Context, date string, storeIDs []string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.DeliveryDate == date {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeBackend) CompareAndSwapOrder(_ context.Context, order *models.Order, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.orders[order.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return models.ErrConflict
	}
	cp := *order
	cp.Version = expectedVersion + 1
	f.orders[order.ID] = cp
	order.Version = cp.Version
	return nil
}

func (f *fakeBackend) FetchCompletedOrders(_ context.Context, start, end time.Time, _ []string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.Status == models.OrderStatusCompleted && o.CompletedAt != nil &&
			!o.CompletedAt.Before(start) && o.CompletedAt.Before(end) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeBackend) FetchFlorists(_ context.Context) ([]models.User, error) {
	return []models.User{
		{ID: "flo-1", Name: "Sam", Role: models.RoleFlorist},
		{ID: "flo-2", Name: "Alex", Role: models.RoleFlorist},
	}, nil
}

func (f *fakeBackend) FetchLabels(_ context.Context) ([]models.ProductLabel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ProductLabel(nil), f.labels...), nil
}

func (f *fakeBackend) FetchLabelsByCategory(_ context.Context, category string) ([]models.ProductLabel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProductLabel
	for _, l := range f.labels {
		if l.Category == category {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeBackend) UpsertLabel(_ context.Context, label *models.ProductLabel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if label.ID == 0 {
		label.ID = int64(len(f.labels) + 1)
	}
	for i, l := range f.labels {
		if l.ID == label.ID {
			f.labels[i] = *label
			return nil
		}
	}
	f.labels = append(f.labels, *label)
	return nil
}

func (f *fakeBackend) FetchStores(_ context.Context) ([]models.RetailStore, error) {
	return []models.RetailStore{{ID: "store-1", Name: "Orchard"}}, nil
}

func (f *fakeBackend) FetchProducts(_ context.Context, _ []string) ([]models.Product, error) {
	return []models.Product{{ID: 1, StoreID: "store-1", Name: "Rose Bouquet"}}, nil
}

func testOrder(id, product, timeslot string, mutate func(*models.Order)) models.Order {
	o := models.Order{
		ID:           id,
		StoreID:      "store-1",
		ProductName:  product,
		Timeslot:     timeslot,
		DeliveryDate: "2025-06-02",
		Status:       models.OrderStatusPending,
		Version:      1,
	}
	if mutate != nil {
		mutate(&o)
	}
	return o
}

func newTestRouter(backend *fakeBackend) *gin.Engine {
	gin.SetMode(gin.TestMode)

	workflow := service.NewWorkflow(backend, nil, nil)
	worklist := service.NewWorklistService(backend, backend)
	labelSvc := service.NewLabelService(backend)
	analyticsSvc := service.NewAnalyticsService(backend, time.UTC)

	router := gin.New()
	handler := NewHandler(workflow, worklist, labelSvc, analyticsSvc, backend, time.UTC)
	handler.SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, body string, user *models.User) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("X-User-ID", user.ID)
		req.Header.Set("X-User-Name", user.Name)
		req.Header.Set("X-User-Role", user.Role)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var (
	testAdmin   = models.User{ID: "adm-1", Name: "Mel", Role: models.RoleAdmin}
	testFlorist = models.User{ID: "flo-1", Name: "Sam", Role: models.RoleFlorist}
)

func TestIdentityRequired(t *testing.T) {
	router := newTestRouter(&fakeBackend{orders: map[string]models.Order{}})

	rec := doRequest(router, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	bogus := models.User{ID: "x", Role: "DRIVER"}
	rec = doRequest(router, http.MethodGet, "/api/v1/orders", "", &bogus)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWorklistRankedForUser(t *testing.T) {
	backend := &fakeBackend{orders: map[string]models.Order{}}
	flo1 := "flo-1"
	flo2 := "flo-2"
	for _, o := range []models.Order{
		testOrder("A", "Rose Bouquet", "9:00 AM", nil),
		testOrder("B", "Lily Vase", "9:00 AM", func(o *models.Order) {
			o.Status = models.OrderStatusAssigned
			o.AssignedFloristID = &flo1
		}),
		testOrder("C", "Tulip Box", "8:30 AM", func(o *models.Order) {
			o.Status = models.OrderStatusAssigned
			o.AssignedFloristID = &flo2
		}),
	} {
		backend.orders[o.ID] = o
	}
	router := newTestRouter(backend)

	rec := doRequest(router, http.MethodGet, "/api/v1/orders?date=2025-06-02", "", &testFlorist)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 3)
	assert.Equal(t, "B", resp.Orders[0].ID)
	assert.Equal(t, "A", resp.Orders[1].ID)
	assert.Equal(t, "C", resp.Orders[2].ID)
}

func TestFloristSelfAssignAndComplete(t *testing.T) {
	backend := &fakeBackend{orders: map[string]models.Order{
		"ord-1": testOrder("ord-1", "Rose Bouquet", "9:00 AM", nil),
	}}
	router := newTestRouter(backend)

	rec := doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1/assign", "{}", &testFlorist)
	require.Equal(t, http.StatusOK, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.NotNil(t, order.AssignedFloristID)
	assert.Equal(t, "flo-1", *order.AssignedFloristID)

	// Second claim by another florist loses.
	other := models.User{ID: "flo-2", Name: "Alex", Role: models.RoleFlorist}
	rec = doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1/assign", "{}", &other)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1/complete", "", &testFlorist)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFloristCannotAssignOthers(t *testing.T) {
	backend := &fakeBackend{orders: map[string]models.Order{
		"ord-1": testOrder("ord-1", "Rose Bouquet", "9:00 AM", nil),
	}}
	router := newTestRouter(backend)

	rec := doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1/assign",
		`{"florist_id":"flo-2"}`, &testFlorist)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAssignAndUnassign(t *testing.T) {
	backend := &fakeBackend{orders: map[string]models.Order{
		"ord-1": testOrder("ord-1", "Rose Bouquet", "9:00 AM", nil),
	}}
	router := newTestRouter(backend)

	rec := doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1/assign",
		`{"florist_id":"flo-2"}`, &testAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1/unassign", "", &testAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	// Florists may not unassign.
	rec = doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1/unassign", "", &testFlorist)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateRemarksAdminOnly(t *testing.T) {
	backend := &fakeBackend{orders: map[string]models.Order{
		"ord-1": testOrder("ord-1", "Rose Bouquet", "9:00 AM", nil),
	}}
	router := newTestRouter(backend)

	rec := doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1",
		`{"remarks":"extra ribbon"}`, &testFlorist)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, http.MethodPatch, "/api/v1/orders/ord-1",
		`{"remarks":"extra ribbon"}`, &testAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "extra ribbon", order.Remarks)
}

func TestOrderNotFound(t *testing.T) {
	router := newTestRouter(&fakeBackend{orders: map[string]models.Order{}})

	rec := doRequest(router, http.MethodPatch, "/api/v1/orders/missing/assign", "{}", &testFlorist)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLabelValidation(t *testing.T) {
	router := newTestRouter(&fakeBackend{orders: map[string]models.Order{}})

	rec := doRequest(router, http.MethodPost, "/api/v1/labels",
		`{"name":"Hard","category":"urgency","priority":1}`, &testAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/v1/labels",
		`{"name":"Hard","category":"difficulty","priority":-1}`, &testAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/v1/labels",
		`{"name":"Hard","category":"difficulty","priority":1,"color":"#cc0000"}`, &testAdmin)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Florists may not manage labels.
	rec = doRequest(router, http.MethodPost, "/api/v1/labels",
		`{"name":"Easy","category":"difficulty","priority":5}`, &testFlorist)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAnalyticsEndpoint(t *testing.T) {
	backend := &fakeBackend{orders: map[string]models.Order{}}
	flo1 := "flo-1"
	completedAt := time.Now().UTC()
	assignedAt := completedAt.Add(-30 * time.Minute)
	o := testOrder("ord-1", "Rose Bouquet", "9:00 AM", func(o *models.Order) {
		o.Status = models.OrderStatusCompleted
		o.AssignedFloristID = &flo1
		o.AssignedAt = &assignedAt
		o.CompletedAt = &completedAt
	})
	backend.orders[o.ID] = o
	router := newTestRouter(backend)

	rec := doRequest(router, http.MethodGet, "/api/v1/analytics?timeframe=today", "", &testAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stats []models.FloristStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Stats, 2)

	byID := map[string]models.FloristStats{}
	for _, s := range resp.Stats {
		byID[s.FloristID] = s
	}
	assert.Equal(t, 1, byID["flo-1"].CompletedCount)
	require.NotNil(t, byID["flo-1"].AverageCompletionMinutes)
	assert.Equal(t, int64(30), *byID["flo-1"].AverageCompletionMinutes)
	assert.Equal(t, 0, byID["flo-2"].CompletedCount)
	assert.Nil(t, byID["flo-2"].AverageCompletionMinutes)

	rec = doRequest(router, http.MethodGet, "/api/v1/analytics?timeframe=fortnight", "", &testAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFilterParam(t *testing.T) {
	backend := &fakeBackend{orders: map[string]models.Order{
		"ord-1": testOrder("ord-1", "Rose Bouquet", "9:00 AM", nil),
	}}
	router := newTestRouter(backend)

	rec := doRequest(router, http.MethodGet, "/api/v1/orders?date=2025-06-02&status=completed", "", &testFlorist)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Orders)

	rec = doRequest(router, http.MethodGet, "/api/v1/orders?date=2025-06-02&status=bogus", "", &testFlorist)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
