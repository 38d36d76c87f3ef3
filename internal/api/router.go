package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// NewRouter builds the gin engine with all API routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/categories", h.ListCategories)
		api.GET("/places", h.KnownPlaces)

		owned := api.Group("", h.currentUser)
		owned.GET("/reminders", h.ListReminders)
		owned.POST("/reminders", h.CreateReminder)
		owned.PUT("/reminders/:id", h.UpdateReminder)
		owned.DELETE("/reminders/:id", h.DeleteReminder)
		owned.GET("/settings", h.GetSettings)
		owned.PUT("/settings", h.UpdateSettings)
		owned.POST("/nearby_places", h.NearbyPlaces)
		owned.POST("/record_notification", h.RecordNotification)
	}

	return r
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)

		start := time.Now()
		c.Next()
		log.Printf("[info] %s %s %s -> %d (%s)", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
