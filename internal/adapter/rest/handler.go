package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	serviceMessage = "VM Auto Backend API"
	serviceVersion = "1.0.0"
	maxBodyBytes   = 1 << 20
)

// ListingUsecase is the set of listing operations the HTTP surface exposes.
type ListingUsecase interface {
	ListAll(ctx context.Context) ([]*domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Create(ctx context.Context, input domain.Input) (string, error)
	Update(ctx context.Context, id string, input domain.Input) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error)
	Publish(ctx context.Context, id string) (*domain.PublishResult, error)
	Unpublish(ctx context.Context, id string) error
	Health(ctx context.Context) usecase.HealthStatus
}

type ListingHandler struct {
	uc      ListingUsecase
	metrics *metrics.MetricsManager
	logger  *logger.Logger
}

func NewListingHandler(uc ListingUsecase, m *metrics.MetricsManager, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		uc:      uc,
		metrics: m,
		logger:  log.Named("ListingHandler"),
	}
}

// Home describes the service and its main endpoints.
func (h *ListingHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": serviceMessage,
		"status":  "running",
		"version": serviceVersion,
		"endpoints": map[string]string{
			"cars":    "/api/cars",
			"add_car": "/api/cars (POST)",
			"get_car": "/api/cars/<car_id>",
			"search":  "/api/cars/search",
			"publish": "/api/cars/<car_id>/publish (POST)",
			"health":  "/api/health",
		},
	})
}

func (h *ListingHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.uc.Health(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    status.Status,
		"timestamp": status.Timestamp.UTC().Format(domain.TimestampLayout),
		"database":  status.Database,
	})
}

func (h *ListingHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	listings, err := h.uc.ListAll(r.Context())
	if err != nil {
		h.writeError(w, "ListCars", err)
		return
	}
	h.writeList(w, listings)
}

func (h *ListingHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	listing, err := h.uc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "GetCar", err)
		return
	}
	h.writeJSON(w, http.StatusOK, itemResponse{Success: true, Car: domain.ToTransport(listing)})
}

func (h *ListingHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	input, status, msg := decodeInput(w, r)
	if msg != "" {
		h.rejectBody(w, "CreateCar", status, msg)
		return
	}

	id, err := h.uc.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, "CreateCar", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, messageResponse{Success: true, Message: "Car added successfully", CarID: id})
}

func (h *ListingHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	input, status, msg := decodeInput(w, r)
	if msg != "" {
		h.rejectBody(w, "UpdateCar", status, msg)
		return
	}

	if err := h.uc.Update(r.Context(), chi.URLParam(r, "id"), input); err != nil {
		h.writeError(w, "UpdateCar", err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Car updated successfully"})
}

func (h *ListingHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, "DeleteCar", err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Car deleted successfully"})
}

func (h *ListingHandler) SearchCars(w http.ResponseWriter, r *http.Request) {
	criteria, msg := parseSearchCriteria(r)
	if msg != "" {
		h.badRequest(w, "SearchCars", msg)
		return
	}

	listings, err := h.uc.Search(r.Context(), criteria)
	if err != nil {
		h.writeError(w, "SearchCars", err)
		return
	}
	h.writeList(w, listings)
}

func (h *ListingHandler) PublishCar(w http.ResponseWriter, r *http.Request) {
	res, err := h.uc.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "PublishCar", err)
		return
	}
	message := res.Message
	if message == "" {
		message = "Car published successfully"
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: message, ExternalListingID: res.ExternalID})
}

func (h *ListingHandler) UnpublishCar(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Unpublish(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, "UnpublishCar", err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Car unpublished successfully"})
}

func (h *ListingHandler) writeList(w http.ResponseWriter, listings []*domain.Listing) {
	cars := domain.ToTransportList(listings)
	h.writeJSON(w, http.StatusOK, listResponse{Success: true, Count: len(cars), Cars: cars})
}

// decodeInput reads a JSON object body. It returns a status and client-facing message
// when the body is too large, empty, malformed or not a non-empty object.
func decodeInput(w http.ResponseWriter, r *http.Request) (domain.Input, int, string) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, "Request body too large"
		}
		return nil, http.StatusBadRequest, "Invalid JSON"
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, http.StatusBadRequest, "No data provided"
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, http.StatusBadRequest, "Invalid JSON"
	}

	switch v := body.(type) {
	case nil:
		return nil, http.StatusBadRequest, "No data provided"
	case map[string]interface{}:
		if len(v) == 0 {
			return nil, http.StatusBadRequest, "No data provided"
		}
		return domain.Input(v), 0, ""
	default:
		return nil, http.StatusBadRequest, "Request body must be a JSON object"
	}
}

// parseSearchCriteria reads the search query. A parameter that is absent or empty
// imposes no constraint; a malformed number yields a client-facing message.
func parseSearchCriteria(r *http.Request) (domain.SearchCriteria, string) {
	q := r.URL.Query()
	criteria := domain.SearchCriteria{
		Brand: strings.TrimSpace(q.Get("brand")),
		Model: strings.TrimSpace(q.Get("model")),
	}

	var ok bool
	if criteria.MinPrice, ok = floatParam(q.Get("min_price")); !ok {
		return criteria, invalidParam("min_price", q.Get("min_price"))
	}
	if criteria.MaxPrice, ok = floatParam(q.Get("max_price")); !ok {
		return criteria, invalidParam("max_price", q.Get("max_price"))
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return criteria, invalidParam("year", v)
		}
		criteria.Year = &year
	}
	return criteria, ""
}

func floatParam(raw string) (*float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}

func invalidParam(name, value string) string {
	return fmt.Sprintf("Invalid value for %s: %q", name, strings.TrimSpace(value))
}

// logRoutes writes the registered routes at debug level.
func logRoutes(router chi.Routes, log *logger.Logger) {
	_ = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		log.Debug("Route registered", zap.String("method", method), zap.String("route", route))
		return nil
	})
}
