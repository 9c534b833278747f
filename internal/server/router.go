package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/history"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultHeartbeatInterval = 25 * time.Second

var (
	errMissingRecordStore = errors.New("record store dependency required")
	errMissingHistory     = errors.New("history provider dependency required")
)

// HistoryProvider reconciles stored records into charts.
type HistoryProvider interface {
	Charts(ctx context.Context, name string) (history.ChartSet, error)
}

type Dependencies struct {
	RecordStore       *records.Service
	History           HistoryProvider
	Realtime          *RealtimeDispatcher
	Logger            *zap.Logger
	MetricsRegistry   *prometheus.Registry
	RateLimit         float64
	RateBurst         int
	HeartbeatInterval time.Duration
	Clock             func() time.Time
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.RecordStore == nil {
		return nil, errMissingRecordStore
	}
	if deps.History == nil {
		return nil, errMissingHistory
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	realtime := deps.Realtime
	if realtime == nil {
		realtime = NewRealtimeDispatcher()
	}
	registry := deps.MetricsRegistry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	heartbeat := deps.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	metrics, err := newHTTPMetrics(registry)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(metrics.middleware())

	handler := &httpHandler{
		store:     deps.RecordStore,
		history:   deps.History,
		realtime:  realtime,
		metrics:   metrics,
		logger:    logger,
		heartbeat: heartbeat,
		clock:     clock,
	}

	router.GET("/healthz", handler.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/")
	if deps.RateLimit > 0 {
		api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(deps.RateLimit), deps.RateBurst)))
	}

	api.POST("/symptoms", handler.handleCreateSymptom)
	api.GET("/symptoms", handler.handleListSymptoms)
	api.GET("/symptoms/:id", handler.handleGetSymptom)
	api.PATCH("/symptoms/:id", handler.handleUpdateSymptom)
	api.POST("/symptoms/:id/save", handler.handleSaveSymptom)

	api.POST("/medications", handler.handleCreateMedication)
	api.GET("/medications", handler.handleListMedications)
	api.GET("/medications/:id", handler.handleGetMedication)
	api.PATCH("/medications/:id", handler.handleUpdateMedication)
	api.PATCH("/medications/:id/taken", handler.handleSetMedicationTaken)
	api.POST("/medications/:id/save", handler.handleSaveMedication)

	api.POST("/notes", handler.handleCreateNote)
	api.GET("/notes", handler.handleListNotes)
	api.GET("/notes/:id", handler.handleGetNote)
	api.PATCH("/notes/:id", handler.handleUpdateNote)
	api.POST("/notes/:id/save", handler.handleSaveNote)

	api.GET("/history", handler.handleHistory)
	api.GET("/events", handler.handleEvents)

	return router, nil
}

type httpHandler struct {
	store     *records.Service
	history   HistoryProvider
	realtime  *RealtimeDispatcher
	metrics   *httpMetrics
	logger    *zap.Logger
	heartbeat time.Duration
	clock     func() time.Time
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type", "Last-Event-ID"},
		MaxAge:          12 * time.Hour,
	})
}

func rateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps store and history errors onto HTTP statuses. The service error code is
// included when available so clients can tell failures apart.
func (h *httpHandler) respondError(c *gin.Context, err error) {
	status := http.StatusServiceUnavailable
	errorName := "store_unavailable"
	switch {
	case errors.Is(err, records.ErrValidation):
		status = http.StatusBadRequest
		errorName = "invalid_request"
	case errors.Is(err, records.ErrNotFound):
		status = http.StatusNotFound
		errorName = "not_found"
	case errors.Is(err, history.ErrUnknownChart):
		status = http.StatusNotFound
		errorName = "unknown_chart"
	}

	body := gin.H{"error": errorName}
	var serviceErr *records.ServiceError
	if errors.As(err, &serviceErr) {
		body["code"] = serviceErr.Code()
	}
	if status == http.StatusServiceUnavailable {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, body)
}

func (h *httpHandler) publish(collection records.Collection, recordIDs ...string) {
	if h.realtime == nil {
		return
	}
	h.realtime.Publish(RealtimeMessage{
		Collection: string(collection),
		EventType:  RealtimeEventRecordChanged,
		RecordIDs:  recordIDs,
		Timestamp:  h.clock().UTC(),
	})
	if h.metrics != nil {
		h.metrics.recordChanges.WithLabelValues(string(collection)).Inc()
	}
}
