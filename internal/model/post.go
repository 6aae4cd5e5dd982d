package model

import (
	"time"

	"github.com/google/uuid"
)

// Input limits for community posts
const (
	MaxPostNameLen       = 100
	MaxPostOccupationLen = 100
	MaxPostMessageLen    = 1000
)

// CommunityPost is a visitor-submitted message on the community wall.
// Likes only ever grows; it is mutated exclusively through the atomic
// like-increment path.
type CommunityPost struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Occupation string    `json:"occupation" db:"occupation"`
	Message    string    `json:"message" db:"message"`
	Likes      int       `json:"likes" db:"likes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PostLike records that a client already liked a post. The unique
// (post_id, client_id) pair is what makes likes idempotent per client.
type PostLike struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PostID    uuid.UUID `json:"post_id" db:"post_id"`
	ClientID  string    `json:"client_id" db:"client_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreatePostRequest carries a new community post submission
type CreatePostRequest struct {
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	Message    string `json:"message"`
}

// UpdatePostRequest is the admin moderation edit payload
type UpdatePostRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Occupation string `json:"occupation" binding:"required,max=100"`
	Message    string `json:"message" binding:"required,max=1000"`
}

// LikeResult is returned from the like operation with the authoritative
// stored count.
type LikeResult struct {
	PostID uuid.UUID `json:"post_id"`
	Likes  int       `json:"likes"`
	Liked  bool      `json:"liked"`
}
