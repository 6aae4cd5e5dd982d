package community

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/repository"
	"github.com/acube-health/acube-api/pkg/errors"
	"github.com/acube-health/acube-api/pkg/logger"
	"github.com/acube-health/acube-api/pkg/metrics"
)

// FeedCache caches the rendered feed between writes
type FeedCache interface {
	Get(ctx context.Context) ([]*model.CommunityPost, bool)
	Set(ctx context.Context, posts []*model.CommunityPost)
	Invalidate(ctx context.Context)
}

type Service struct {
	repo    repository.PostRepository
	outbox  repository.OutboxRepository
	cache   FeedCache
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo repository.PostRepository, outbox repository.OutboxRepository, cache FeedCache, l *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		outbox:  outbox,
		cache:   cache,
		logger:  l,
		metrics: m,
	}
}

// ListPosts returns the feed newest-first, from cache when fresh
func (s *Service) ListPosts(ctx context.Context) ([]*model.CommunityPost, error) {
	if s.cache != nil {
		if posts, ok := s.cache.Get(ctx); ok {
			if s.metrics != nil {
				s.metrics.FeedCacheHits.Inc()
			}
			return posts, nil
		}
		if s.metrics != nil {
			s.metrics.FeedCacheMiss.Inc()
		}
	}

	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, posts)
	}
	return posts, nil
}

// CreatePost validates and stores a submission. The stored post is returned
// so callers can prepend it to their feed without a refetch.
func (s *Service) CreatePost(ctx context.Context, req *model.CreatePostRequest) (*model.CommunityPost, error) {
	post := &model.CommunityPost{
		Name:       strings.TrimSpace(req.Name),
		Occupation: strings.TrimSpace(req.Occupation),
		Message:    strings.TrimSpace(req.Message),
	}

	if err := validatePost(post); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.metrics != nil {
		s.metrics.PostsCreated.Inc()
	}

	s.enqueueEvent(ctx, model.EventPostCreated, post)
	return post, nil
}

// LikePost records a like for the client and returns the authoritative
// count. Repeated likes from the same client are no-ops, not errors.
func (s *Service) LikePost(ctx context.Context, postID uuid.UUID, clientID string) (*model.LikeResult, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.BadRequest("client identifier is required", nil)
	}

	likes, liked, err := s.repo.Like(ctx, postID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to like post: %w", err)
	}

	if s.metrics != nil {
		if liked {
			s.metrics.LikesRecorded.Inc()
		} else {
			s.metrics.DuplicateLikes.Inc()
		}
	}
	if liked && s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	return &model.LikeResult{PostID: postID, Likes: likes, Liked: liked}, nil
}

// UpdatePost is the admin moderation edit
func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, req *model.UpdatePostRequest) (*model.CommunityPost, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("post", err)
	}

	post.Name = strings.TrimSpace(req.Name)
	post.Occupation = strings.TrimSpace(req.Occupation)
	post.Message = strings.TrimSpace(req.Message)

	if err := validatePost(post); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return post, nil
}

// DeletePost is the admin moderation removal
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NotFound("post", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

func validatePost(post *model.CommunityPost) error {
	fields := make(map[string]string)

	if post.Name == "" {
		fields["name"] = "name is required"
	} else if len(post.Name) > model.MaxPostNameLen {
		fields["name"] = fmt.Sprintf("name must be at most %d characters", model.MaxPostNameLen)
	}

	if post.Occupation == "" {
		fields["occupation"] = "occupation is required"
	} else if len(post.Occupation) > model.MaxPostOccupationLen {
		fields["occupation"] = fmt.Sprintf("occupation must be at most %d characters", model.MaxPostOccupationLen)
	}

	if post.Message == "" {
		fields["message"] = "message is required"
	} else if len(post.Message) > model.MaxPostMessageLen {
		fields["message"] = fmt.Sprintf("message must be at most %d characters", model.MaxPostMessageLen)
	}

	if len(fields) > 0 {
		return errors.Validation(fields)
	}
	return nil
}

func (s *Service) enqueueEvent(ctx context.Context, eventType string, payload interface{}) {
	if s.outbox == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal outbox payload", "event_type", eventType)
		return
	}

	event := &model.OutboxEvent{EventType: eventType, Payload: data}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to enqueue outbox event", "event_type", eventType)
	}
}
