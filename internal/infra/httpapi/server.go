// internal/infra/httpapi/server.go
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"kitchen_notification_bot/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server exposes the notification store and the batch aggregator to the
// display surface (waiter tablet / kitchen display). It is a thin REST shell:
// all invariants live in the app services.
type Server struct {
	router       *gin.Engine
	srv          *http.Server
	notifService app.NotificationService
	batchService *app.BatchService
	logger       *logrus.Logger
}

func NewServer(
	notifService app.NotificationService,
	batchService *app.BatchService,
	logger *logrus.Logger,
	port string,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:       router,
		srv:          &http.Server{Addr: fmt.Sprintf(":%s", port), Handler: router},
		notifService: notifService,
		batchService: batchService,
		logger:       logger,
	}
	s.setupRoutes()
	return s
}

// Run starts the HTTP server and blocks until Shutdown is called or the
// listener fails. Returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Run() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting new connections and waits for in-flight requests
// to finish, bounded by the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the underlying http.Handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		notifications := api.Group("/notifications")
		{
			notifications.GET("", s.handleListNotifications())
			notifications.PUT("/:id/read", s.handleMarkRead())
			notifications.POST("/:id/confirm", s.handleConfirmDelivered())
			notifications.DELETE("/:id", s.handleDismiss())
		}

		batches := api.Group("/batches")
		{
			batches.GET("", s.handleListBatches())
			batches.POST("/:dishID/start", s.handleStartBatch())
			batches.POST("/:dishID/complete", s.handleCompleteBatch())
		}
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "kitchen-notification-bot"})
	})
}

func (s *Server) handleListNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"notifications": s.notifService.Notifications(),
			"unread_count":  s.notifService.UnreadCount(),
		})
	}
}

func (s *Server) handleMarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.notifService.MarkRead(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
	}
}

func (s *Server) handleConfirmDelivered() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := s.notifService.ConfirmDelivered(c.Request.Context(), id); err != nil {
			s.logger.Warnf("WARN: Delivered confirmation failed for notification %s: %v", id, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "delivered confirmation failed, the notification was kept"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "notification confirmed"})
	}
}

func (s *Server) handleDismiss() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.notifService.Dismiss(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"message": "notification dismissed"})
	}
}

func (s *Server) handleListBatches() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"batches": s.batchService.Groups()})
	}
}

func (s *Server) handleStartBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.transitionBatch(c, s.batchService.StartBatch)
	}
}

func (s *Server) handleCompleteBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.transitionBatch(c, s.batchService.CompleteBatch)
	}
}

func (s *Server) transitionBatch(c *gin.Context, op func(ctx context.Context, dishID string) error) {
	dishID := c.Param("dishID")
	if err := op(c.Request.Context(), dishID); err != nil {
		if errors.Is(err, app.ErrBatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no batch group for this dish in the latest snapshot"})
			return
		}
		s.logger.Warnf("WARN: Bulk transition failed for dish %s: %v", dishID, err)
		// No local state was applied; the next poll shows the real statuses.
		c.JSON(http.StatusBadGateway, gin.H{"error": "bulk transition failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bulk transition issued"})
}
