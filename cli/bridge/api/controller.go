package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controller owns the HTTP server and its route table.
type Controller struct {
	Handler *Handler
	router  *gin.Engine
	server  *http.Server
}

func NewController(handler *Handler, address string, registry *prometheus.Registry) *Controller {
	router := gin.Default()

	api := router.Group("/api")
	{
		api.GET("/telemetry", handler.GetTelemetry)
		api.GET("/telemetry/history", handler.GetHistory)
		api.GET("/telemetry/stream", handler.StreamTelemetry)
		api.GET("/health", handler.GetHealth)
	}

	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return &Controller{
		Handler: handler,
		router:  router,
		server:  &http.Server{Addr: address, Handler: router},
	}
}

// Run serves HTTP until the server is shut down.
func (c *Controller) Run() error {
	if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting new requests and waits for in-flight ones up to
// the context deadline.
func (c *Controller) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

// Router exposes the route table, mainly for tests.
func (c *Controller) Router() *gin.Engine {
	return c.router
}
