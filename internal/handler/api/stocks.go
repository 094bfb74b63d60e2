package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/prediction"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

// StocksHandler exposes the synchronized stock views over HTTP.
type StocksHandler struct {
	logger    *xlogger.Logger
	agg       *usecase.Aggregator
	sync      *usecase.Synchronizer
	forecasts *prediction.Client
	store     domrepo.Store
}

// NewStocksHandler creates the handler.
func NewStocksHandler(
	logger *xlogger.Logger,
	agg *usecase.Aggregator,
	sync *usecase.Synchronizer,
	forecasts *prediction.Client,
	store domrepo.Store,
) *StocksHandler {
	return &StocksHandler{
		logger:    logger,
		agg:       agg,
		sync:      sync,
		forecasts: forecasts,
		store:     store,
	}
}

// RegisterRoutes mounts the API routes.
func (h *StocksHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/stock/:symbol", h.Stock)
	g.GET("/stock/:symbol/history", h.History)
	g.GET("/stock/:symbol/predict", h.Predict)
	g.GET("/stocks/trending", h.Trending)
	g.GET("/search/:query", h.Search)
	g.POST("/stocks/batch", h.Batch)
}

// Health reports liveness, the selected store backend and the freshness
// window.
func (h *StocksHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"store":  string(h.store.Kind()),
		"ttl":    h.sync.TTL().String(),
	})
}

// Stock returns the canonical quote view for one symbol.
func (h *StocksHandler) Stock(c echo.Context) error {
	req := &models.StockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	view, err := h.agg.GetStock(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "stock lookup", err)
	}
	return xhttp.SuccessResponse(c, view)
}

// History returns the trailing daily bars for one symbol.
func (h *StocksHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bars, err := h.agg.History(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		return h.fail(c, "history lookup", err)
	}
	resp := models.NewHistoryResponse(usecase.Canonical(req.Symbol), req.Days, bars)
	return xhttp.SuccessResponse(c, resp)
}

// Predict proxies the forecast request to the external service.
func (h *StocksHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result, err := h.forecasts.Predict(c.Request().Context(), usecase.Canonical(req.Symbol), req.Days)
	if err != nil {
		if errors.Is(err, prediction.ErrDisabled) {
			return xhttp.AppErrorResponse(c, xhttp.NewAppError(
				"ERR_UNAVAILABLE", "", "prediction service not configured", http.StatusServiceUnavailable))
		}
		h.logger.Error("predict upstream error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(
			"ERR_UPSTREAM", "", "prediction service failed", http.StatusBadGateway).WithError(err))
	}
	return xhttp.SuccessResponse(c, result)
}

// Trending returns the movers view.
func (h *StocksHandler) Trending(c echo.Context) error {
	req := &models.TrendingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	views, err := h.agg.Trending(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "trending", err)
	}
	return xhttp.SuccessResponse(c, views)
}

// Search matches known records, falling back to a direct lookup for
// ticker-shaped queries.
func (h *StocksHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	views, err := h.agg.Search(c.Request().Context(), req.Query, req.Limit)
	if err != nil {
		return h.fail(c, "search", err)
	}
	return xhttp.SuccessResponse(c, views)
}

// Batch synchronizes up to the configured cap of symbols in one call.
func (h *StocksHandler) Batch(c echo.Context) error {
	req := &models.BatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result, err := h.agg.Batch(c.Request().Context(), req.Symbols)
	if err != nil {
		return h.fail(c, "batch", err)
	}
	return xhttp.SuccessResponse(c, result)
}

// fail maps usecase errors onto the response envelope. Upstream provider
// failures never reach here; they degrade to synthetic data inside the
// synchronizer, so anything left is a caller error or a genuine bug.
func (h *StocksHandler) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrEmptySymbol),
		errors.Is(err, usecase.ErrEmptyQuery),
		errors.Is(err, usecase.ErrBatchTooLarge):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	h.logger.Error(op+" error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
