package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rdev014/bio-farm-wishlist/internal/domain"
	"github.com/rdev014/bio-farm-wishlist/internal/service"
	apperrors "github.com/rdev014/bio-farm-wishlist/pkg/errors"
	"github.com/rdev014/bio-farm-wishlist/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for saving an item.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required,min=1,max=500"`
	Price     int64  `json:"price" validate:"gte=0"`
	ImageURL  string `json:"image_url"`
}

// MoveItemRequest is the JSON request body for moving an item between lists.
type MoveItemRequest struct {
	FromListID string `json:"from_list_id" validate:"required"`
	ToListID   string `json:"to_list_id" validate:"required"`
}

// UpdateNotesRequest is the JSON request body for updating item notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// ToggleNotificationRequest is the JSON request body for flipping an alert.
type ToggleNotificationRequest struct {
	Kind string `json:"kind" validate:"required,oneof=availability price"`
}

// PriceAlertRequest is the JSON request body for setting a price alert.
type PriceAlertRequest struct {
	TargetPrice int64 `json:"target_price" validate:"gte=0"`
}

// CreateListRequest is the JSON request body for creating a list.
type CreateListRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	IsPublic bool   `json:"is_public"`
}

// RenameListRequest is the JSON request body for renaming a list.
type RenameListRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// ImportRequest is the JSON request body for importing an exported wishlist.
type ImportRequest struct {
	Data string `json:"data" validate:"required"`
}

// RecordViewRequest is the JSON request body for counting a product view.
type RecordViewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// --- Response envelope ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// --- Handlers ---

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	wl, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	input := service.AddItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		ImageURL:  req.ImageURL,
	}

	wl, err := h.service.AddItem(r.Context(), userID, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: wl})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	wl, err := h.service.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// ContainsItem handles GET /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) ContainsItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	productID := chi.URLParam(r, "productId")
	contains, err := h.service.Contains(r.Context(), userID, productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]bool{"in_wishlist": contains}})
}

// MoveItem handles POST /api/v1/wishlist/items/{productId}/move
func (h *WishlistHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	productID := chi.URLParam(r, "productId")

	var req MoveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	wl, err := h.service.MoveToList(r.Context(), userID, productID, req.FromListID, req.ToListID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// UpdateNotes handles PUT /api/v1/wishlist/items/{productId}/notes
func (h *WishlistHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	productID := chi.URLParam(r, "productId")

	var req UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	wl, err := h.service.UpdateNotes(r.Context(), userID, productID, req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// ToggleNotification handles POST /api/v1/wishlist/items/{productId}/notifications
func (h *WishlistHandler) ToggleNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	productID := chi.URLParam(r, "productId")

	var req ToggleNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	wl, err := h.service.ToggleNotification(r.Context(), userID, productID, domain.NotificationKind(req.Kind))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// SetPriceAlert handles PUT /api/v1/wishlist/items/{productId}/price-alert
func (h *WishlistHandler) SetPriceAlert(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	productID := chi.URLParam(r, "productId")

	var req PriceAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	wl, err := h.service.SetPriceAlert(r.Context(), userID, productID, req.TargetPrice)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// CreateList handles POST /api/v1/wishlist/lists
func (h *WishlistHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	wl, err := h.service.CreateList(r.Context(), userID, req.Name, req.IsPublic)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: wl})
}

// DeleteList handles DELETE /api/v1/wishlist/lists/{listId}
func (h *WishlistHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	listID := chi.URLParam(r, "listId")

	wl, err := h.service.DeleteList(r.Context(), userID, listID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// RenameList handles PUT /api/v1/wishlist/lists/{listId}
func (h *WishlistHandler) RenameList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	listID := chi.URLParam(r, "listId")

	var req RenameListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	wl, err := h.service.RenameList(r.Context(), userID, listID, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// ToggleListVisibility handles POST /api/v1/wishlist/lists/{listId}/visibility
func (h *WishlistHandler) ToggleListVisibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	listID := chi.URLParam(r, "listId")

	wl, err := h.service.ToggleListVisibility(r.Context(), userID, listID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// ShareList handles POST /api/v1/wishlist/lists/{listId}/share
//
// A list that cannot be shared (missing, private, or publisher outage) yields
// an empty share_url with status 200; the caller decides how to surface that.
func (h *WishlistHandler) ShareList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	listID := chi.URLParam(r, "listId")

	url, err := h.service.ShareList(r.Context(), userID, listID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"share_url": url}})
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	wl, err := h.service.ClearAll(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: wl})
}

// ExportWishlist handles GET /api/v1/wishlist/export
func (h *WishlistHandler) ExportWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	blob, err := h.service.Export(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"data": blob}})
}

// ImportWishlist handles POST /api/v1/wishlist/import
//
// A malformed blob is reported through the imported flag, not as an HTTP
// error.
func (h *WishlistHandler) ImportWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	imported, err := h.service.Import(r.Context(), userID, req.Data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]bool{"imported": imported}})
}

// GetAnalytics handles GET /api/v1/wishlist/analytics
func (h *WishlistHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	analytics, err := h.service.Analytics(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: analytics})
}

// RecordView handles POST /api/v1/wishlist/analytics/views
func (h *WishlistHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req RecordViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	analytics, err := h.service.RecordView(r.Context(), userID, req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: analytics})
}

// RecordShare handles POST /api/v1/wishlist/analytics/shares
func (h *WishlistHandler) RecordShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	analytics, err := h.service.RecordShare(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: analytics})
}

// --- Helpers ---

func (h *WishlistHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	if errors.Is(err, apperrors.ErrNotFound) {
		code = "NOT_FOUND"
		message = "resource not found"
		status = http.StatusNotFound
	} else if errors.Is(err, apperrors.ErrInvalidInput) {
		code = "INVALID_INPUT"
		message = err.Error()
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeJSON(w, status, response{
		Error: &errorResponse{Code: code, Message: message},
	})
}

func (h *WishlistHandler) writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, response{
		Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
	})
}

func writeBadBody(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}
