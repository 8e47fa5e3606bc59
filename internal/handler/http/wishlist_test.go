package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rdev014/bio-farm-wishlist/internal/domain"
	"github.com/rdev014/bio-farm-wishlist/internal/event"
	"github.com/rdev014/bio-farm-wishlist/internal/service"
	apperrors "github.com/rdev014/bio-farm-wishlist/pkg/errors"
	pkgkafka "github.com/rdev014/bio-farm-wishlist/pkg/kafka"
)

// ============================================================================
// Mock WishlistRepository
// ============================================================================

type mockWishlistRepository struct {
	mock.Mock
}

func (m *mockWishlistRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepository) Save(ctx context.Context, w *domain.Wishlist) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *mockWishlistRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// ============================================================================
// Stub share publisher
// ============================================================================

type stubPublisher struct {
	url string
	err error
}

func (p *stubPublisher) Publish(_ context.Context, _, _ string) (string, error) {
	return p.url, p.err
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func testWishlistHandler(repo *mockWishlistRepository, pub *stubPublisher) *WishlistHandler {
	svc := service.NewWishlistService(repo, pub, testEventProducer(), testLogger())
	return NewWishlistHandler(svc, testLogger())
}

// setupWishlistRouter creates a chi router matching the production route
// layout, including the UserIDFromHeader and ContentTypeJSON middleware so
// that auth behavior is tested end-to-end.
func setupWishlistRouter(handler *WishlistHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(UserIDFromHeader)

		r.Get("/", handler.GetWishlist)
		r.Delete("/", handler.ClearWishlist)

		r.Get("/export", handler.ExportWishlist)
		r.Post("/import", handler.ImportWishlist)

		r.Get("/analytics", handler.GetAnalytics)
		r.Post("/analytics/views", handler.RecordView)
		r.Post("/analytics/shares", handler.RecordShare)

		r.Post("/items", handler.AddItem)
		r.Get("/items/{productId}", handler.ContainsItem)
		r.Delete("/items/{productId}", handler.RemoveItem)
		r.Post("/items/{productId}/move", handler.MoveItem)
		r.Put("/items/{productId}/notes", handler.UpdateNotes)
		r.Post("/items/{productId}/notifications", handler.ToggleNotification)
		r.Put("/items/{productId}/price-alert", handler.SetPriceAlert)

		r.Post("/lists", handler.CreateList)
		r.Put("/lists/{listId}", handler.RenameList)
		r.Delete("/lists/{listId}", handler.DeleteList)
		r.Post("/lists/{listId}/visibility", handler.ToggleListVisibility)
		r.Post("/lists/{listId}/share", handler.ShareList)
	})
	return r
}

// testResponse mirrors the JSON envelope written by the handlers.
type testResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// sampleWishlist returns a wishlist with one item, suitable for assertions.
func sampleWishlist() *domain.Wishlist {
	now := time.Now().UTC()
	w := domain.New("user-123", now)
	w.AddItem(domain.Product{
		ID:       "prod-1",
		Name:     "Raw Honey",
		Price:    1299,
		ImageURL: "https://img.example.com/honey.jpg",
	}, now)
	return w
}

func marshalBody(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ============================================================================
// GET /api/v1/wishlist - GetWishlist
// ============================================================================

func TestGetWishlist_Success(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(sampleWishlist(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var wl domain.Wishlist
	require.NoError(t, json.Unmarshal(resp.Data, &wl))
	assert.Equal(t, "user-123", wl.UserID)
	assert.Len(t, wl.Items, 1)
	repo.AssertExpectations(t)
}

func TestGetWishlist_SeedsWhenMissing(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(nil, apperrors.NotFound("wishlist", "user-123"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var wl domain.Wishlist
	require.NoError(t, json.Unmarshal(resp.Data, &wl))
	assert.Empty(t, wl.Items)
	require.Len(t, wl.Lists, 1)
	assert.Equal(t, domain.DefaultListID, wl.Lists[0].ID)
	repo.AssertExpectations(t)
}

func TestGetWishlist_MissingUserID_Returns401(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil)
	// No X-User-ID header.
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestGetWishlist_ServiceError(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(nil, fmt.Errorf("redis connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	repo.AssertExpectations(t)
}

// ============================================================================
// POST /api/v1/wishlist/items - AddItem
// ============================================================================

func validAddItemJSON(t *testing.T) []byte {
	return marshalBody(t, AddItemRequest{
		ProductID: "prod-1",
		Name:      "Raw Honey",
		Price:     1299,
		ImageURL:  "https://img.example.com/honey.jpg",
	})
}

func TestAddItem_Created(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(nil, apperrors.NotFound("wishlist", "user-123"))
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Wishlist")).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/items", bytes.NewReader(validAddItemJSON(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var wl domain.Wishlist
	require.NoError(t, json.Unmarshal(resp.Data, &wl))
	require.Len(t, wl.Items, 1)
	assert.Equal(t, "prod-1", wl.Items[0].ID)
	repo.AssertExpectations(t)
}

func TestAddItem_InvalidJSON(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/items", bytes.NewReader([]byte(`{invalid json`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "invalid request body")
}

func TestAddItem_ValidationError_MissingFields(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	body := marshalBody(t, map[string]any{"product_id": "", "name": "", "price": 0})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "product_id")
}

// ============================================================================
// Item routes
// ============================================================================

func TestRemoveItem_ReturnsUpdatedWishlist(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(sampleWishlist(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Wishlist")).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/wishlist/items/prod-1", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var wl domain.Wishlist
	require.NoError(t, json.Unmarshal(resp.Data, &wl))
	assert.Empty(t, wl.Items)
	repo.AssertExpectations(t)
}

func TestContainsItem_True(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(sampleWishlist(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist/items/prod-1", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var data map[string]bool
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data["in_wishlist"])
	repo.AssertExpectations(t)
}

func TestMoveItem_Success(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	wl := sampleWishlist()
	l := wl.CreateList("Gifts", false, time.Now().UTC())

	repo.On("Get", mock.Anything, "user-123").Return(wl, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Wishlist")).Return(nil)

	body := marshalBody(t, MoveItemRequest{FromListID: domain.DefaultListID, ToListID: l.ID})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/items/prod-1/move", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var got domain.Wishlist
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Empty(t, got.Lists[0].Items)
	assert.Len(t, got.Lists[1].Items, 1)
	repo.AssertExpectations(t)
}

func TestToggleNotification_InvalidKind_ValidationError(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	body := marshalBody(t, ToggleNotificationRequest{Kind: "sms"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/items/prod-1/notifications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestSetPriceAlert_Success(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(sampleWishlist(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Wishlist")).Return(nil)

	body := marshalBody(t, PriceAlertRequest{TargetPrice: 999})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/wishlist/items/prod-1/price-alert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var got domain.Wishlist
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.NotNil(t, got.Items[0].NotifyOnPriceChange)
	assert.True(t, got.Items[0].NotifyOnPriceChange.Enabled)
	assert.Equal(t, int64(999), got.Items[0].NotifyOnPriceChange.TargetPrice)
	repo.AssertExpectations(t)
}

// ============================================================================
// List routes
// ============================================================================

func TestCreateList_Created(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(sampleWishlist(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Wishlist")).Return(nil)

	body := marshalBody(t, CreateListRequest{Name: "Holiday Gifts", IsPublic: true})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/lists", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var got domain.Wishlist
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.Len(t, got.Lists, 2)
	assert.Equal(t, "Holiday Gifts", got.Lists[1].Name)
	assert.True(t, got.Lists[1].IsPublic)
	repo.AssertExpectations(t)
}

func TestCreateList_EmptyName_ValidationError(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	body := marshalBody(t, CreateListRequest{Name: ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/lists", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestShareList_ReturnsURL(t *testing.T) {
	repo := new(mockWishlistRepository)
	pub := &stubPublisher{url: "https://shop.example/wishlist/list-9"}
	router := setupWishlistRouter(testWishlistHandler(repo, pub))

	wl := sampleWishlist()
	l := wl.CreateList("Public Picks", true, time.Now().UTC())

	repo.On("Get", mock.Anything, "user-123").Return(wl, nil).Twice()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Wishlist")).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/lists/"+l.ID+"/share", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var data map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "https://shop.example/wishlist/list-9", data["share_url"])
	repo.AssertExpectations(t)
}

func TestShareList_PrivateList_EmptyURL(t *testing.T) {
	repo := new(mockWishlistRepository)
	pub := &stubPublisher{url: "https://shop.example/wishlist/x"}
	router := setupWishlistRouter(testWishlistHandler(repo, pub))

	repo.On("Get", mock.Anything, "user-123").Return(sampleWishlist(), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/lists/"+domain.DefaultListID+"/share", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var data map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Empty(t, data["share_url"])
	repo.AssertExpectations(t)
}

// ============================================================================
// Export / import
// ============================================================================

func TestExportImport_RoundTripOverHTTP(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	source := sampleWishlist()
	repo.On("Get", mock.Anything, "user-123").Return(source, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist/export", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var data map[string]string
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &data))
	blob := data["data"]
	require.NotEmpty(t, blob)

	target := domain.New("user-456", time.Now().UTC())
	repo.On("Get", mock.Anything, "user-456").Return(target, nil).Once()
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Wishlist")).Return(nil)

	body := marshalBody(t, ImportRequest{Data: blob})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-456")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var imported map[string]bool
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &imported))
	assert.True(t, imported["imported"])
	assert.Len(t, target.Items, 1)
	repo.AssertExpectations(t)
}

func TestImport_MalformedBlob_ReportsFalse(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(sampleWishlist(), nil)

	body := marshalBody(t, ImportRequest{Data: "{{nope"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	// A blob that fails to parse is not an HTTP error.
	assert.Equal(t, http.StatusOK, rec.Code)
	var data map[string]bool
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &data))
	assert.False(t, data["imported"])
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

// ============================================================================
// Analytics routes
// ============================================================================

func TestRecordView_ReturnsAnalytics(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	repo.On("Get", mock.Anything, "user-123").Return(sampleWishlist(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Wishlist")).Return(nil)

	body := marshalBody(t, RecordViewRequest{ProductID: "prod-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlist/analytics/views", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var analytics domain.Analytics
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &analytics))
	assert.Equal(t, 1, analytics.TotalViews)
	assert.Equal(t, []string{"prod-1"}, analytics.MostViewedItems)
	repo.AssertExpectations(t)
}

func TestGetAnalytics_Success(t *testing.T) {
	repo := new(mockWishlistRepository)
	router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

	wl := sampleWishlist()
	wl.IncrementViews("prod-1", time.Now().UTC())
	repo.On("Get", mock.Anything, "user-123").Return(wl, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wishlist/analytics", nil)
	req.Header.Set("X-User-ID", "user-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var analytics domain.Analytics
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &analytics))
	assert.Equal(t, 1, analytics.TotalViews)
	repo.AssertExpectations(t)
}

// ============================================================================
// Middleware tests
// ============================================================================

func TestUserIDFromHeader_Middleware_SetsContext(t *testing.T) {
	var capturedUID string
	handler := UserIDFromHeader(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := userIDFromContext(r.Context())
		if ok {
			capturedUID = uid
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "user-abc")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-abc", capturedUID)
}

func TestUserIDFromHeader_Middleware_MissingHeader(t *testing.T) {
	called := false
	handler := UserIDFromHeader(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	// No X-User-ID header.
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called, "handler should not have been called")
}

func TestContentTypeJSON_Middleware_RejectsNonJSON(t *testing.T) {
	called := false
	handler := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("data")))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.False(t, called, "handler should not have been called")
}

// ============================================================================
// Table-driven: all endpoints reject missing X-User-ID with 401
// ============================================================================

func TestAllEndpoints_RejectMissingUserID(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
		body   []byte
	}{
		{http.MethodGet, "/api/v1/wishlist", nil},
		{http.MethodDelete, "/api/v1/wishlist", nil},
		{http.MethodGet, "/api/v1/wishlist/export", nil},
		{http.MethodPost, "/api/v1/wishlist/import", []byte(`{"data":"{}"}`)},
		{http.MethodGet, "/api/v1/wishlist/analytics", nil},
		{http.MethodPost, "/api/v1/wishlist/analytics/views", []byte(`{"product_id":"prod-1"}`)},
		{http.MethodPost, "/api/v1/wishlist/analytics/shares", nil},
		{http.MethodPost, "/api/v1/wishlist/items", []byte(`{"product_id":"prod-1","name":"x"}`)},
		{http.MethodGet, "/api/v1/wishlist/items/prod-1", nil},
		{http.MethodDelete, "/api/v1/wishlist/items/prod-1", nil},
		{http.MethodPost, "/api/v1/wishlist/lists", []byte(`{"name":"Gifts"}`)},
		{http.MethodDelete, "/api/v1/wishlist/lists/list-1", nil},
		{http.MethodPost, "/api/v1/wishlist/lists/list-1/share", nil},
	}

	for _, ep := range endpoints {
		name := fmt.Sprintf("%s %s", ep.method, ep.path)
		t.Run(name, func(t *testing.T) {
			repo := new(mockWishlistRepository)
			router := setupWishlistRouter(testWishlistHandler(repo, &stubPublisher{}))

			req := httptest.NewRequest(ep.method, ep.path, bytes.NewReader(ep.body))
			if ep.body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			// No X-User-ID header.
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code, "expected 401 for missing X-User-ID on %s", name)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
		})
	}
}
