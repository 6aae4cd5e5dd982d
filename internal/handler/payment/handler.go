package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/service/payment"
	"github.com/acube-health/acube-api/pkg/httputil"
)

type Handler struct {
	service *payment.Service
}

func NewHandler(service *payment.Service) *Handler {
	return &Handler{service: service}
}

// CreateIntent starts a mock payment for the given amount
func (h *Handler) CreateIntent(c *gin.Context) {
	var req model.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	intent, err := h.service.CreateIntent(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, intent)
}

// ConfirmIntent resolves a pending intent. Declined cards come back as
// 400 with the declined intent attached so the client can retry.
func (h *Handler) ConfirmIntent(c *gin.Context) {
	intentID := c.Param("id")

	var userID *uuid.UUID
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uuid.UUID); ok {
			userID = &id
		}
	}

	intent, err := h.service.ConfirmIntent(c.Request.Context(), intentID, userID)
	if err != nil {
		if intent != nil {
			c.JSON(http.StatusBadRequest, httputil.Response{
				Status:  "error",
				Message: "your card was declined. Please try a different payment method.",
				Data:    intent,
			})
			return
		}
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, intent)
}

func (h *Handler) GetIntent(c *gin.Context) {
	intent, err := h.service.GetIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, intent)
}

// ListPayments returns the caller's payment history
func (h *Handler) ListPayments(c *gin.Context) {
	userID, ok := c.Get("userID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication required"})
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, payments)
}

// RegisterRoutes mounts the mock payment endpoints
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/intents", h.CreateIntent)
		payments.GET("/intents/:id", h.GetIntent)
		payments.POST("/intents/:id/confirm", h.ConfirmIntent)
	}
}

// RegisterProtectedRoutes mounts endpoints that need a signed-in user
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/payments", h.ListPayments)
}
