package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	applog "storefront/internal/logger"
)

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Logger
}

// New builds a Server with every storefront route.
func New(addr string, logger *logrus.Logger, deps Deps) *Server {
	logger = applog.OrDiscard(logger)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(logger, deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &Server{
		httpServer: httpSrv,
		logger:     logger,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Infof("http server: listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(r readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "cart store not configured"})
			return
		}
		if !r.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "cart not loaded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
