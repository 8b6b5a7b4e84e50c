// Package server serves the report as an HTML dashboard with PNG and JSON
// endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/naka-gawa/github-report/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghreport_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ghreport_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

const shutdownTimeout = 10 * time.Second

// Server is the dashboard. It only reads from its Reporter.
type Server struct {
	reporter *usecase.Reporter
	logger   *log.Logger
	engine   *gin.Engine
}

// New creates a Server with every route registered.
func New(reporter *usecase.Reporter, logger *log.Logger) *Server {
	s := &Server{reporter: reporter, logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.observe())
	s.engine.SetHTMLTemplate(page)

	s.engine.GET("/", s.index)
	s.engine.GET("/charts/:id", s.chart)
	s.engine.GET("/api/top/:category", s.top)
	s.engine.GET("/api/correlation", s.correlation)
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Handler returns the HTTP handler of the dashboard.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Server: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Println("Server: shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// observe records request counts and durations per route.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) index(c *gin.Context) {
	section, err := usecase.ParseSection(c.DefaultQuery("section", string(usecase.SectionActivity)))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	category, err := domain.ParseField(c.DefaultQuery("category", string(domain.FieldStars)))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	rep, err := s.reporter.Section(c.Request.Context(), section, category)
	if err != nil {
		s.logger.Printf("Server: section %s failed: %v", section, err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.HTML(http.StatusOK, "index.html", newPageData(rep))
}

func (s *Server) chart(c *gin.Context) {
	id := strings.TrimSuffix(c.Param("id"), ".png")
	if !usecase.KnownChart(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown chart %q", id)})
		return
	}
	ch := s.reporter.Chart(id)
	switch {
	case ch.Err == nil:
		c.Data(http.StatusOK, "image/png", ch.PNG)
	case ch.Degraded():
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ch.Err.Error(), "chart": id})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": ch.Err.Error(), "chart": id})
	}
}

func (s *Server) top(c *gin.Context) {
	category, err := domain.ParseField(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	sel, err := s.reporter.Top(category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sel)
}

func (s *Server) correlation(c *gin.Context) {
	c.JSON(http.StatusOK, s.reporter.Correlation())
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "records": len(s.reporter.Dataset())})
}
