package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/angristan/music-tonight/internal/infra/metrics"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "music-tonight"

type Server struct {
	*http.Server
}

func New(
	cfg Config,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	ph PlaylistHandler,
) (*Server, error) {
	httpPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", cfg.Port, err)
	}

	engine := gin.New()

	engine.Use(requestID())
	if !cfg.DisableMiddleware {
		engine.Use(gin.Recovery())
		engine.Use(accessLog(logger, m))
		engine.Use(otelgin.Middleware(serviceName))
	}
	engine.Use(cors())
	// promhttp negotiates its own compression.
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	engine.GET("/api/playlist", ph.Build)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	internalServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", httpPort),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Builds can take several provider round trips.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{internalServer}, nil
}
