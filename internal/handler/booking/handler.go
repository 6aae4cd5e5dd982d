package booking

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/service/booking"
	"github.com/acube-health/acube-api/pkg/httputil"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	found, err := h.service.Get(c.Request.Context(), userID, isPsychologist(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, found)
}

// ListBookings returns the caller's bookings. Psychologists get their
// schedule, clients get their own sessions.
func (h *Handler) ListBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	status := c.Query("status")

	if isPsychologist(c) {
		from, to, err := parseRange(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
		bookings, err := h.service.ListForPsychologist(c.Request.Context(), userID, status, from, to)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, http.StatusOK, bookings)
		return
	}

	bookings, err := h.service.ListForClient(c.Request.Context(), userID, status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, bookings)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"omitempty,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), userID, isPsychologist(c), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, cancelled)
}

// ConfirmBooking attaches a settled payment to a pending booking
func (h *Handler) ConfirmBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid booking ID"})
		return
	}

	var req struct {
		PaymentID string `json:"payment_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	confirmed, err := h.service.Confirm(c.Request.Context(), userID, isPsychologist(c), id, req.PaymentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, confirmed)
}

// GetAvailability returns a psychologist's weekly slots so clients can
// pick a time
func (h *Handler) GetAvailability(c *gin.Context) {
	psychologistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid psychologist ID"})
		return
	}

	slots, err := h.service.GetAvailability(c.Request.Context(), psychologistID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, slots)
}

// RegisterRoutes mounts public booking endpoints
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/psychologists/:id/availability", h.GetAvailability)
}

// RegisterProtectedRoutes mounts endpoints that need a signed-in user
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/confirm", h.ConfirmBooking)
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

func isPsychologist(c *gin.Context) bool {
	v, ok := c.Get("roles")
	if !ok {
		return false
	}
	roles, ok := v.([]string)
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == model.RolePsychologist {
			return true
		}
	}
	return false
}

func parseRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}
