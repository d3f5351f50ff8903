// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server serves the tool transport and a small REST mirror over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/search"
)

// MCPPath is where the streamable MCP endpoint is mounted.
const MCPPath = "/mcp"

// NewRouter builds the HTTP routes. mcpServer may be nil to serve the REST
// routes alone.
func NewRouter(o *search.Orchestrator, mcpServer *mcp.Server, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if mcpServer != nil {
		h := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpServer }, nil)
		router.Any(MCPPath, gin.WrapH(h))
	}

	api := router.Group("/api")
	{
		api.GET("/search", searchHandler(o))
		api.GET("/recent", recentHandler(o))
		api.GET("/count", countHandler(o))
		api.DELETE("/cache", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"cleared": o.ClearCaches()})
		})
	}
	return router
}

type searchQuery struct {
	Query      string `form:"query"`
	Author     string `form:"author"`
	Source     string `form:"source"`
	MaxResults int    `form:"max_results"`
}

type recentQuery struct {
	MonthsBack int    `form:"months_back"`
	Source     string `form:"source"`
	MaxResults int    `form:"max_results"`
}

func searchHandler(o *search.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q searchQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		resp, err := o.Search(c.Request.Context(), search.SearchRequest{
			Query: q.Query, Author: q.Author, Source: q.Source, MaxResults: q.MaxResults,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func countHandler(o *search.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q searchQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		resp, err := o.Count(c.Request.Context(), search.SearchRequest{
			Query: q.Query, Author: q.Author, Source: q.Source,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func recentHandler(o *search.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q recentQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		resp, err := o.Recent(c.Request.Context(), search.RecentRequest{
			MonthsBack: q.MonthsBack, Source: q.Source, MaxResults: q.MaxResults,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if apperr.Is(err, apperr.KindValidation) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("http request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()))
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
