package api

import (
	"net/http"
	"time"

	models "EGXAdvisor/internal/domain/models"
	"EGXAdvisor/internal/service/metrics"
	"EGXAdvisor/internal/usecase"
	xhttp "EGXAdvisor/pkg/http"
	xlogger "EGXAdvisor/pkg/logger"
	"EGXAdvisor/pkg/queue"
	"EGXAdvisor/pkg/util"

	"github.com/labstack/echo/v4"
)

// AdvisorEchoHandler implements the Echo-based HTTP surface of the advisor.
type AdvisorEchoHandler struct {
	logger  *xlogger.Logger
	advisor *usecase.Advisor
	bars    *usecase.BarsUseCase
	jobs    queue.QueueService
}

func NewAdvisorEchoHandler(logger *xlogger.Logger, advisor *usecase.Advisor, bars *usecase.BarsUseCase, jobs queue.QueueService) *AdvisorEchoHandler {
	metrics.Register()
	return &AdvisorEchoHandler{logger: logger, advisor: advisor, bars: bars, jobs: jobs}
}

func (h *AdvisorEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/recommendation", h.Recommendation)
	g.GET("/risk", h.Risk)
	g.GET("/validation", h.Validation)
	g.GET("/bars", h.Bars)
	g.GET("/journal", h.Journal)
	g.POST("/scan", h.Scan)
}

func (h *AdvisorEchoHandler) Recommendation(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AdvisorLatency.WithLabelValues("recommendation").Observe(time.Since(start).Seconds())
	}()

	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.advisor.Recommend(c.Request().Context(), req.Symbol, req.N, req.Refresh)
	if err != nil {
		metrics.AdvisorErrors.WithLabelValues("recommendation").Inc()
		h.logger.Error("recommendation usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, rec)
}

func (h *AdvisorEchoHandler) Risk(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AdvisorLatency.WithLabelValues("risk").Observe(time.Since(start).Seconds())
	}()

	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rep, err := h.advisor.RiskReport(c.Request().Context(), req.Symbol, req.N)
	if err != nil {
		metrics.AdvisorErrors.WithLabelValues("risk").Inc()
		h.logger.Error("risk usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *AdvisorEchoHandler) Validation(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.AdvisorLatency.WithLabelValues("validation").Observe(time.Since(start).Seconds())
	}()

	req := &models.ValidationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rep, err := h.advisor.Validate(c.Request().Context(), req.Symbol, req.N)
	if err != nil {
		metrics.AdvisorErrors.WithLabelValues("validation").Inc()
		h.logger.Error("validation usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *AdvisorEchoHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	from := util.ParseTimeDefault(req.From, now.AddDate(-1, 0, 0))
	to := util.ParseTimeDefault(req.To, now)
	from, to = util.AlignToDays(from, to)

	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Symbol: req.Symbol,
		From:   from,
		To:     to,
		Limit:  req.Limit,
	})
	if err != nil {
		metrics.AdvisorErrors.WithLabelValues("bars").Inc()
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AdvisorEchoHandler) Journal(c echo.Context) error {
	req := &models.JournalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entries, err := h.advisor.Journal(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		metrics.AdvisorErrors.WithLabelValues("journal").Inc()
		h.logger.Error("journal usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

// Scan enqueues a background universe scan and returns immediately.
func (h *AdvisorEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.jobs == nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("scan queue not configured"))
	}

	payload := usecase.ScanRequest{Symbols: req.Symbols, N: req.N, Refresh: req.Refresh}
	if err := h.jobs.PublishMessage(c.Request().Context(), "advisor.scan", payload); err != nil {
		metrics.AdvisorErrors.WithLabelValues("scan").Inc()
		h.logger.Error("scan enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]interface{}{
		"queued":  true,
		"symbols": len(req.Symbols),
	})
}
