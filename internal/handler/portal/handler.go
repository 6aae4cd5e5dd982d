package portal

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/service/booking"
	"github.com/acube-health/acube-api/internal/service/psychologist"
	"github.com/acube-health/acube-api/pkg/httputil"
)

// Handler serves the signed-in psychologist portal
type Handler struct {
	psychologists *psychologist.Service
	bookings      *booking.Service
}

func NewHandler(psychologists *psychologist.Service, bookings *booking.Service) *Handler {
	return &Handler{psychologists: psychologists, bookings: bookings}
}

// GetDashboard returns the portal landing view
func (h *Handler) GetDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	dashboard, err := h.psychologists.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, dashboard)
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	profile, err := h.psychologists.GetProfile(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	profile, err := h.psychologists.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profile)
}

// GetAvailability returns the psychologist's own weekly schedule
func (h *Handler) GetAvailability(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	slots, err := h.bookings.AvailabilityForUser(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, slots)
}

// UpdateAvailability replaces the psychologist's weekly schedule
func (h *Handler) UpdateAvailability(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	slots, err := h.bookings.ReplaceAvailability(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, slots)
}

// RegisterRoutes mounts the portal endpoints, all of which require the
// psychologist role
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	portal := r.Group("/portal")
	{
		portal.GET("/dashboard", h.GetDashboard)
		portal.GET("/profile", h.GetProfile)
		portal.PUT("/profile", h.UpdateProfile)
		portal.GET("/availability", h.GetAvailability)
		portal.PUT("/availability", h.UpdateAvailability)
	}
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
