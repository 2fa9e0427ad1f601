package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"lg/fitness-metrics-go-api/internal/biometrics"
	"lg/fitness-metrics-go-api/internal/metrics"
	"lg/fitness-metrics-go-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// Handler holds shared dependencies (store, metrics, config) for all route handlers.
type Handler struct {
	store         store.Store
	metrics       *metrics.Manager
	formulas      biometrics.Formulas // defaults when a profile names none
	openAIBaseURL string              // Base URL for OpenAI API (overridable for tests)
	now           func() time.Time
}

func newHandler(st store.Store, m *metrics.Manager, formulas biometrics.Formulas, openAIBaseURL string) *Handler {
	return &Handler{
		store:         st,
		metrics:       m,
		formulas:      formulas.Normalized(),
		openAIBaseURL: openAIBaseURL,
		now:           time.Now,
	}
}

func (h *Handler) today() string {
	return h.now().Format(dateLayout)
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// invalidInput replies 400 with the reason of a biometric validation error and
// counts it against op. Returns false when err is some other failure.
func (h *Handler) invalidInput(c *gin.Context, op string, err error) bool {
	var ie *biometrics.InvalidInputError
	if !errors.As(err, &ie) {
		return false
	}
	h.metrics.CounterInvalidInput.WithLabelValues(op).Inc()
	apiError(c, http.StatusBadRequest, ie.Reason)
	return true
}

// storeError maps store.ErrNotFound to 404 and anything else to a logged 500.
func storeError(c *gin.Context, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		apiError(c, http.StatusNotFound, what+" not found")
		return
	}
	log.Errorf("[%s] %s: %v", c.FullPath(), what, err)
	apiError(c, http.StatusInternalServerError, "failed to load "+what)
}

// pathID parses the :id route parameter, replying 400 when it is not a positive integer.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// dateRange reads the required start/end query params (YYYY-MM-DD, start <= end).
func dateRange(c *gin.Context) (string, string, bool) {
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return "", "", false
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return "", "", false
	}
	if _, err := time.Parse(dateLayout, end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return "", "", false
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newRouter builds the gin engine with middleware and all routes.
func (h *Handler) newRouter(gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), h.instrument())
	_ = router.SetTrustedProxies(nil)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/health", h.health)
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.POST("/metrics/compute", h.computeMetrics)
	api.GET("/metrics/burn", h.getBurnEstimate)
	api.GET("/logs", h.listLogs)
	api.POST("/logs", h.createLog)
	api.DELETE("/logs/:id", h.deleteLog)
	api.GET("/logs/week-summary", h.getWeekSummary)
	api.GET("/logs/progress", h.getProgress)
	api.GET("/logs/earliest-date", h.getEarliestLogDate)
	api.POST("/logs/suggest", h.suggestLogEntry)
	api.POST("/logs/import-fit", h.importFitUpload)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
	api.GET("/export", h.exportWorkbook)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
