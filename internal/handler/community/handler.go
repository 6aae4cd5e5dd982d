package community

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/service/community"
	"github.com/acube-health/acube-api/pkg/httputil"
)

type Handler struct {
	service *community.Service
}

func NewHandler(service *community.Service) *Handler {
	return &Handler{service: service}
}

// ListPosts returns the feed, newest first
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.service.ListPosts(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, posts)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req model.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, post)
}

// LikePost records a like for the calling client. Repeat likes from the
// same client return the current count unchanged.
func (h *Handler) LikePost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid post ID"})
		return
	}

	result, err := h.service.LikePost(c.Request.Context(), postID, clientIdentity(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, result)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid post ID"})
		return
	}

	var req model.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	post, err := h.service.UpdatePost(c.Request.Context(), postID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid post ID"})
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), postID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, nil)
}

// RegisterRoutes mounts the public feed endpoints
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	posts := r.Group("/community/posts")
	{
		posts.GET("", h.ListPosts)
		posts.POST("", h.CreatePost)
		posts.POST("/:id/like", h.LikePost)
	}
}

// RegisterAdminRoutes mounts the moderation endpoints
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	posts := r.Group("/community/posts")
	{
		posts.PUT("/:id", h.UpdatePost)
		posts.DELETE("/:id", h.DeletePost)
	}
}

// clientIdentity picks a stable id for like deduplication. Signed-in
// users are identified by account; anonymous visitors send the browser
// identifier the frontend generates once and stores locally.
func clientIdentity(c *gin.Context) string {
	if userID, ok := c.Get("userID"); ok {
		if id, ok := userID.(uuid.UUID); ok {
			return "user:" + id.String()
		}
	}
	return strings.TrimSpace(c.GetHeader("X-Client-ID"))
}
