package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"placeminder/internal/model"
	"placeminder/internal/service"
)

const userKey = "user"

// Handler serves the JSON API on behalf of a single configured user.
type Handler struct {
	Users         *service.UserService
	Categories    *service.CategoryService
	Reminders     *service.ReminderService
	Nearby        *service.NearbyService
	Notifications *service.NotificationService
	Places        *service.PlaceService
	Username      string
}

// currentUser loads the configured user and stores it in the request context.
func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.Users.ByUsername(c.Request.Context(), h.Username)
	if err != nil {
		if service.IsNotFound(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		writeError(c, err)
		c.Abort()
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func userFrom(c *gin.Context) *model.User {
	return c.MustGet(userKey).(*model.User)
}

// ListReminders handles GET /api/reminders.
func (h *Handler) ListReminders(c *gin.Context) {
	reminders, err := h.Reminders.List(c.Request.Context(), userFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]reminderJSON, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, toReminderJSON(r))
	}
	c.JSON(http.StatusOK, gin.H{"reminders": out})
}

// CreateReminder handles POST /api/reminders.
func (h *Handler) CreateReminder(c *gin.Context) {
	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == nil || req.CategoryID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	reminder, err := h.Reminders.Create(c.Request.Context(), userFrom(c).ID, service.ReminderInput{
		Title:       *req.Title,
		Description: req.Description,
		CategoryID:  *req.CategoryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Reminder created successfully",
		"reminder": toReminderJSON(*reminder),
	})
}

// UpdateReminder handles PUT /api/reminders/:id.
func (h *Handler) UpdateReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	var req updateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	reminder, err := h.Reminders.Update(c.Request.Context(), userFrom(c).ID, id, service.ReminderPatch{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Completed:   req.Completed,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Reminder updated successfully",
		"reminder": toReminderJSON(*reminder),
	})
}

// DeleteReminder handles DELETE /api/reminders/:id.
func (h *Handler) DeleteReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}
	if err := h.Reminders.Delete(c.Request.Context(), userFrom(c).ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Categories.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]categoryJSON, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryJSON{ID: cat.ID, Name: cat.Name, GooglePlacesType: cat.ExternalTag, Icon: cat.Icon})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, toSettingsJSON(userFrom(c)))
}

// UpdateSettings handles PUT /api/settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	user, err := h.Users.UpdateSettings(c.Request.Context(), userFrom(c).ID, service.SettingsPatch{
		SearchRadius:        req.SearchRadius,
		NotificationEnabled: req.NotificationEnabled,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully",
		"settings": toSettingsJSON(user),
	})
}

// NearbyPlaces handles POST /api/nearby_places.
func (h *Handler) NearbyPlaces(c *gin.Context) {
	var req nearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing location data"})
		return
	}

	res, err := h.Nearby.Resolve(c.Request.Context(), userFrom(c), *req.Latitude, *req.Longitude)
	if err != nil {
		writeError(c, err)
		return
	}

	venues := make([]placeJSON, 0, len(res.Venues))
	for _, v := range res.Venues {
		venues = append(venues, toPlaceJSON(v))
	}
	reminders := make([]matchedReminderJSON, 0, len(res.Reminders))
	for _, r := range res.Reminders {
		reminders = append(reminders, matchedReminderJSON{
			ID:           r.ID,
			Title:        r.Title,
			Description:  r.Description,
			CategoryID:   r.CategoryID,
			CategoryName: r.Category.Name,
		})
	}
	c.JSON(http.StatusOK, gin.H{"places": venues, "reminders": reminders})
}

// RecordNotification handles POST /api/record_notification.
func (h *Handler) RecordNotification(c *gin.Context) {
	var req recordNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReminderID == nil || req.PlaceID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if _, err := h.Notifications.Record(c.Request.Context(), userFrom(c).ID, *req.ReminderID, *req.PlaceID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Notification recorded successfully"})
}

// KnownPlaces handles GET /api/places?lat=&lon=&limit=.
func (h *Handler) KnownPlaces(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude or longitude"})
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	known, err := h.Places.Nearest(c.Request.Context(), lat, lon, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]placeJSON, 0, len(known))
	for _, k := range known {
		out = append(out, knownToPlaceJSON(k))
	}
	c.JSON(http.StatusOK, gin.H{"places": out})
}

func reminderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps the service error kinds onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var notFound *service.NotFoundError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	default:
		log.Printf("[error] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
