package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rdev014/bio-farm-wishlist/internal/service"
	"github.com/rdev014/bio-farm-wishlist/pkg/health"
	"github.com/rdev014/bio-farm-wishlist/pkg/middleware"
)

// NewRouter creates a chi router with all wishlist service routes registered.
func NewRouter(
	wishlistService *service.WishlistService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wishlist"))
	r.Use(middleware.Tracing("wishlist"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Wishlist API endpoints
	wishlistHandler := NewWishlistHandler(wishlistService, logger)

	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(UserIDFromHeader)

		r.Get("/", wishlistHandler.GetWishlist)
		r.Delete("/", wishlistHandler.ClearWishlist)

		r.Get("/export", wishlistHandler.ExportWishlist)
		r.Post("/import", wishlistHandler.ImportWishlist)

		r.Get("/analytics", wishlistHandler.GetAnalytics)
		r.Post("/analytics/views", wishlistHandler.RecordView)
		r.Post("/analytics/shares", wishlistHandler.RecordShare)

		r.Post("/items", wishlistHandler.AddItem)
		r.Get("/items/{productId}", wishlistHandler.ContainsItem)
		r.Delete("/items/{productId}", wishlistHandler.RemoveItem)
		r.Post("/items/{productId}/move", wishlistHandler.MoveItem)
		r.Put("/items/{productId}/notes", wishlistHandler.UpdateNotes)
		r.Post("/items/{productId}/notifications", wishlistHandler.ToggleNotification)
		r.Put("/items/{productId}/price-alert", wishlistHandler.SetPriceAlert)

		r.Post("/lists", wishlistHandler.CreateList)
		r.Put("/lists/{listId}", wishlistHandler.RenameList)
		r.Delete("/lists/{listId}", wishlistHandler.DeleteList)
		r.Post("/lists/{listId}/visibility", wishlistHandler.ToggleListVisibility)
		r.Post("/lists/{listId}/share", wishlistHandler.ShareList)
	})

	return r
}
