package community

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/pkg/errors"
)

// fakePostRepo keeps posts and per-client like markers in memory, mirroring
// the idempotent-insert semantics of the postgres repository.
type fakePostRepo struct {
	posts       []*model.CommunityPost
	likes       map[string]bool
	createCalls int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{likes: make(map[string]bool)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *model.CommunityPost) error {
	r.createCalls++
	post.ID = uuid.New()
	r.posts = append([]*model.CommunityPost{post}, r.posts...)
	return nil
}

func (r *fakePostRepo) Get(ctx context.Context, id uuid.UUID) (*model.CommunityPost, error) {
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, assert.AnError
}

func (r *fakePostRepo) List(ctx context.Context) ([]*model.CommunityPost, error) {
	return r.posts, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *model.CommunityPost) error {
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, p := range r.posts {
		if p.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return assert.AnError
}

func (r *fakePostRepo) Like(ctx context.Context, postID uuid.UUID, clientID string) (int, bool, error) {
	post, err := r.Get(ctx, postID)
	if err != nil {
		return 0, false, err
	}

	key := postID.String() + "|" + clientID
	if r.likes[key] {
		return post.Likes, false, nil
	}
	r.likes[key] = true
	post.Likes++
	return post.Likes, true, nil
}

func newTestService(repo *fakePostRepo) *Service {
	return NewService(repo, nil, nil, nil, nil)
}

func seedPost(t *testing.T, svc *Service) *model.CommunityPost {
	t.Helper()
	post, err := svc.CreatePost(context.Background(), &model.CreatePostRequest{
		Name:       "Asha",
		Occupation: "Teacher",
		Message:    "Grateful for this space, it helped me through a hard month.",
	})
	require.NoError(t, err)
	return post
}

func TestLikePostIncrementsExactlyOncePerClient(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(repo)
	post := seedPost(t, svc)

	first, err := svc.LikePost(context.Background(), post.ID, "client-a")
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 1, first.Likes)

	// Second like from the same client is a no-op, not an error
	second, err := svc.LikePost(context.Background(), post.ID, "client-a")
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, 1, second.Likes)

	// A different client still counts
	third, err := svc.LikePost(context.Background(), post.ID, "client-b")
	require.NoError(t, err)
	assert.True(t, third.Liked)
	assert.Equal(t, 2, third.Likes)
}

func TestLikePostRequiresClientID(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(repo)
	post := seedPost(t, svc)

	_, err := svc.LikePost(context.Background(), post.ID, "   ")
	assert.Error(t, err)
}

func TestCreatePostRejectsOverlongMessageBeforePersisting(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(repo)

	_, err := svc.CreatePost(context.Background(), &model.CreatePostRequest{
		Name:       "Asha",
		Occupation: "Teacher",
		Message:    strings.Repeat("a", 1001),
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	appErr := err.(*errors.AppError)
	assert.Contains(t, appErr.Fields, "message")
	assert.Equal(t, 0, repo.createCalls, "repository must not be called for invalid input")
}

func TestCreatePostRejectsMissingFields(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(repo)

	_, err := svc.CreatePost(context.Background(), &model.CreatePostRequest{
		Name:       "  ",
		Occupation: "Teacher",
		Message:    "hello there",
	})
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Contains(t, appErr.Fields, "name")
	assert.NotContains(t, appErr.Fields, "occupation")
	assert.NotContains(t, appErr.Fields, "message")
}

func TestCreatePostReturnsStoredPostForPrepending(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(repo)
	seedPost(t, svc)

	created, err := svc.CreatePost(context.Background(), &model.CreatePostRequest{
		Name:       "Ravi",
		Occupation: "Student",
		Message:    "Sharing my story here felt easier than I expected.",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	// The newest post heads the feed without a refetch round-trip
	posts, err := svc.ListPosts(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	assert.Equal(t, created.ID, posts[0].ID)
}
