package main

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// requestLogger logs one debug line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debugln("request")
	}
}

// instrument records request counts and durations. Unmatched routes share
// one label so random paths cannot blow up cardinality.
func (h *Handler) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.metrics.GaugeRequests.Inc()
		defer h.metrics.GaugeRequests.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		h.metrics.CounterRequests.WithLabelValues(c.Request.Method, status).Inc()
		h.metrics.HistRequestDuration.
			WithLabelValues(route, c.Request.Method, status).
			Observe(time.Since(start).Seconds())
	}
}
