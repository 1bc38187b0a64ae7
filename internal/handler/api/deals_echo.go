package api

import (
	"net/http"
	"time"

	"DealPull/internal/domain/models"
	"DealPull/internal/domain/repository"
	"DealPull/internal/usecase"
	xhttp "DealPull/pkg/http"
	"DealPull/pkg/http/middleware"
	"DealPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DealsHandler exposes the aggregation API over Echo.
type DealsHandler struct {
	deals     *usecase.DealsUseCase
	snapshots *usecase.SnapshotService
	limiter   middleware.Allower
	metrics   repository.Metrics
	log       *logger.Logger
	window    time.Duration
	started   time.Time
}

func NewDealsHandler(deals *usecase.DealsUseCase, snapshots *usecase.SnapshotService, limiter middleware.Allower, metrics repository.Metrics, log *logger.Logger, window time.Duration) *DealsHandler {
	return &DealsHandler{
		deals:     deals,
		snapshots: snapshots,
		limiter:   limiter,
		metrics:   metrics,
		log:       log,
		window:    window,
		started:   time.Now(),
	}
}

// RegisterRoutes mounts the public surface. Only the parameterized
// aggregation endpoint sits behind the rate limiter; the status page
// and the cached snapshot stay cheap and unthrottled.
func (h *DealsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Status)
	e.GET("/discounts", h.GetSnapshot)

	apiGroup := e.Group("/api", middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:    h.limiter,
		RetryAfter: h.window,
		OnRejected: func(key string) {
			h.metrics.RecordRateLimited()
			h.log.Warn("rate limited", logger.String("caller", key))
		},
	}))
	apiGroup.POST("/get-discounts", h.GetDiscounts)
}

// Status reports service liveness.
func (h *DealsHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service": "DealPull",
		"status":  "ok",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// GetSnapshot serves the cached default aggregated view.
func (h *DealsHandler) GetSnapshot(c echo.Context) error {
	snap, err := h.snapshots.Get(c.Request().Context())
	if err != nil {
		h.log.Error("snapshot get failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"discounts": snap.Discounts,
	})
}

// GetDiscounts runs a parameterized aggregation. Validation failures
// never reach the planner, so no upstream fetch is attempted for a bad
// request.
func (h *DealsHandler) GetDiscounts(c echo.Context) error {
	var req models.DealsRequest
	if errs := xhttp.ReadAndValidateRequest(c, &req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	resp, err := h.deals.GetDeals(c.Request().Context(), req)
	if err != nil {
		h.log.Error("aggregation failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return c.JSON(http.StatusOK, resp)
}
