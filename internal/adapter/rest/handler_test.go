package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testID = "65f0c0ffee0000000000abcd"

type MockListingUsecase struct {
	mock.Mock
}

func (m *MockListingUsecase) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingUsecase) Get(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingUsecase) Create(ctx context.Context, input domain.Input) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockListingUsecase) Update(ctx context.Context, id string, input domain.Input) error {
	return m.Called(ctx, id, input).Error(0)
}

func (m *MockListingUsecase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockListingUsecase) Search(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error) {
	args := m.Called(ctx, criteria)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingUsecase) Publish(ctx context.Context, id string) (*domain.PublishResult, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.PublishResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockListingUsecase) Unpublish(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockListingUsecase) Health(ctx context.Context) usecase.HealthStatus {
	return m.Called(ctx).Get(0).(usecase.HealthStatus)
}

type testServer struct {
	uc      *MockListingUsecase
	metrics *metrics.MetricsManager
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	uc := new(MockListingUsecase)
	m := metrics.NewMetricsManager("test")
	log := logger.NewNop()
	h := NewListingHandler(uc, m, log)
	t.Cleanup(func() { uc.AssertExpectations(t) })
	return &testServer{uc: uc, metrics: m, handler: NewRouter(h, m, log, 5*time.Second)}
}

func (s *testServer) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func sampleListing() *domain.Listing {
	at := time.Date(2024, 3, 1, 12, 0, 0, 123000000, time.UTC)
	return &domain.Listing{
		ID: testID, Brand: "Toyota", Model: "Corolla", Year: 2018, Price: 12000,
		CreatedAt: at, UpdatedAt: at,
	}
}

func TestHome(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Health", mock.Anything).Return(usecase.HealthStatus{
		Status: "healthy", Database: usecase.DatabaseDisconnected, Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}).Once()

	rec, body := s.do(t, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disconnected", body["database"])
	assert.Equal(t, "2024-03-01T00:00:00.000Z", body["timestamp"])
}

func TestListCars(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("ListAll", mock.Anything).Return([]*domain.Listing{sampleListing()}, nil).Once()

	rec, body := s.do(t, http.MethodGet, "/api/cars", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1.0, body["count"])
	cars := body["cars"].([]interface{})
	car := cars[0].(map[string]interface{})
	assert.Equal(t, testID, car["_id"])
	assert.Equal(t, "2024-03-01T12:00:00.123Z", car["created_at"])
	assert.Equal(t, []interface{}{}, car["features"])
	assert.Nil(t, car["external_listing_id"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListCars_EmptyIsArray(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("ListAll", mock.Anything).Return([]*domain.Listing{}, nil).Once()

	rec, body := s.do(t, http.MethodGet, "/api/cars", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, body["count"])
	assert.Equal(t, []interface{}{}, body["cars"])
}

func TestGetCar_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "not found", err: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantError: "Car not found"},
		{name: "invalid id", err: domain.ErrInvalidID, wantStatus: http.StatusBadRequest, wantError: "Invalid car ID"},
		{name: "store unavailable", err: domain.ErrStoreUnavailable, wantStatus: http.StatusInternalServerError, wantError: "Database connection failed"},
		{
			name:       "store unreachable",
			err:        fmt.Errorf("db findone failed: %w: %w", domain.ErrStoreUnavailable, errors.New("server selection error: context deadline exceeded")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Database connection failed",
		},
		{name: "unexpected", err: assert.AnError, wantStatus: http.StatusInternalServerError, wantError: "Internal server error"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.uc.On("Get", mock.Anything, "abc").Return(nil, tc.err).Once()

			rec, body := s.do(t, http.MethodGet, "/api/cars/abc", "")

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantError, body["error"])
		})
	}
}

func TestGetCar(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Get", mock.Anything, testID).Return(sampleListing(), nil).Once()

	rec, body := s.do(t, http.MethodGet, "/api/cars/"+testID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Toyota", body["car"].(map[string]interface{})["brand"])
}

func TestCreateCar_BadBodies(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantError string
	}{
		{name: "empty body", body: "", wantError: "No data provided"},
		{name: "empty object", body: "{}", wantError: "No data provided"},
		{name: "null", body: "null", wantError: "No data provided"},
		{name: "malformed", body: `{"brand":`, wantError: "Invalid JSON"},
		{name: "array", body: `[1,2]`, wantError: "Request body must be a JSON object"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			rec, body := s.do(t, http.MethodPost, "/api/cars", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.wantError, body["error"])
		})
	}
}

func TestCreateCar_BodyTooLarge(t *testing.T) {
	s := newTestServer(t)
	body := `{"description":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	rec, decoded := s.do(t, http.MethodPost, "/api/cars", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", decoded["error"])
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.APIErrorsTotal.WithLabelValues("CreateCar", "body_too_large")))
	s.uc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCar(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Create", mock.Anything, mock.MatchedBy(func(in domain.Input) bool {
		return in["brand"] == "BMW" && in["year"] == json.Number("2020")
	})).Return(testID, nil).Once()

	rec, body := s.do(t, http.MethodPost, "/api/cars", `{"brand":"BMW","model":"320d","year":2020,"price":89000}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Car added successfully", body["message"])
	assert.Equal(t, testID, body["car_id"])
}

func TestCreateCar_ValidationFailed(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Create", mock.Anything, mock.Anything).
		Return("", &domain.ValidationError{Errors: []string{"model is required", "Price must be a number"}}).Once()

	rec, body := s.do(t, http.MethodPost, "/api/cars", `{"brand":"BMW","price":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Equal(t, []interface{}{"model is required", "Price must be a number"}, body["details"])
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.APIErrorsTotal.WithLabelValues("CreateCar", "validation")))
}

func TestUpdateCar(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Update", mock.Anything, testID, mock.MatchedBy(func(in domain.Input) bool {
		return in["price"] == json.Number("85000")
	})).Return(nil).Once()

	rec, body := s.do(t, http.MethodPut, "/api/cars/"+testID, `{"price":85000}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Car updated successfully", body["message"])
}

func TestUpdateCar_NoData(t *testing.T) {
	s := newTestServer(t)
	rec, body := s.do(t, http.MethodPut, "/api/cars/"+testID, "{}")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No data provided", body["error"])
}

func TestUpdateCar_NotFound(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Update", mock.Anything, testID, mock.Anything).Return(domain.ErrNotFound).Once()

	rec, _ := s.do(t, http.MethodPut, "/api/cars/"+testID, `{"price":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCar(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Delete", mock.Anything, testID).Return(nil).Once()

	rec, body := s.do(t, http.MethodDelete, "/api/cars/"+testID, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Car deleted successfully", body["message"])
}

func TestSearchCars(t *testing.T) {
	s := newTestServer(t)
	minPrice, maxPrice, year := 80000.0, 90000.0, 2020
	want := domain.SearchCriteria{Brand: "bmw", MinPrice: &minPrice, MaxPrice: &maxPrice, Year: &year}
	s.uc.On("Search", mock.Anything, want).Return([]*domain.Listing{sampleListing()}, nil).Once()

	rec, body := s.do(t, http.MethodGet, "/api/cars/search?brand=bmw&min_price=80000&max_price=90000&year=2020", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["count"])
}

func TestSearchCars_ZeroIsAConstraint(t *testing.T) {
	s := newTestServer(t)
	zero := 0.0
	s.uc.On("Search", mock.Anything, domain.SearchCriteria{MaxPrice: &zero}).Return([]*domain.Listing{}, nil).Once()

	rec, body := s.do(t, http.MethodGet, "/api/cars/search?max_price=0&model=", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["cars"])
}

func TestSearchCars_InvalidParams(t *testing.T) {
	for _, query := range []string{"min_price=cheap", "max_price=1e", "year=20x0", "min_price=NaN"} {
		t.Run(query, func(t *testing.T) {
			s := newTestServer(t)
			rec, body := s.do(t, http.MethodGet, "/api/cars/search?"+query, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, body["error"], "Invalid value for")
		})
	}
}

func TestPublishCar(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Publish", mock.Anything, testID).Return(&domain.PublishResult{
		Status: domain.PublishSuccess, ExternalID: "placeholder-1", Message: "Car published to marketplace (placeholder)",
	}, nil).Once()

	rec, body := s.do(t, http.MethodPost, "/api/cars/"+testID+"/publish", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "placeholder-1", body["external_listing_id"])
}

func TestPublishCar_Failure(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Publish", mock.Anything, testID).
		Return(nil, &domain.ExternalPublishError{Message: "marketplace API key not configured"}).Once()

	rec, body := s.do(t, http.MethodPost, "/api/cars/"+testID+"/publish", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "marketplace API key not configured", body["error"])
}

func TestUnpublishCar(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("Unpublish", mock.Anything, testID).Return(nil).Once()

	rec, body := s.do(t, http.MethodDelete, "/api/cars/"+testID+"/publish", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Car unpublished successfully", body["message"])
}

func TestPanicIsRecovered(t *testing.T) {
	s := newTestServer(t)
	s.uc.On("ListAll", mock.Anything).Run(func(mock.Arguments) { panic("boom") }).Return(nil, nil).Once()

	rec, _ := s.do(t, http.MethodGet, "/api/cars", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_cars_created_total")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/cars", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
