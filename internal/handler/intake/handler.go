package intake

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/service/intake"
	"github.com/acube-health/acube-api/pkg/httputil"
)

type Handler struct {
	service *intake.Service
}

func NewHandler(service *intake.Service) *Handler {
	return &Handler{service: service}
}

// Submit accepts a completed intake form. Validation failures come back
// with one message per field so the form can highlight each problem.
func (h *Handler) Submit(c *gin.Context) {
	var req model.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.service.Submit(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, gin.H{"id": req.ID})
}

// List returns intake submissions for care team review
func (h *Handler) List(c *gin.Context) {
	requests, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, requests)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid intake request ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, nil)
}

// RegisterRoutes mounts the public intake endpoint
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/intake", h.Submit)
}

// RegisterAdminRoutes mounts care team review endpoints
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	requests := r.Group("/intake")
	{
		requests.GET("", h.List)
		requests.PATCH("/:id/status", h.UpdateStatus)
	}
}
