package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acube-health/acube-api/internal/model"
)

func (r *postRepository) Create(ctx context.Context, post *model.CommunityPost) error {
	query := `
		INSERT INTO community_posts (id, name, occupation, message, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	post.ID = uuid.New()
	post.Likes = 0
	post.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.Name,
		post.Occupation,
		post.Message,
		post.Likes,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postRepository) Get(ctx context.Context, id uuid.UUID) (*model.CommunityPost, error) {
	query := `
		SELECT id, name, occupation, message, likes, created_at
		FROM community_posts
		WHERE id = $1
	`
	var post model.CommunityPost
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*model.CommunityPost, error) {
	query := `
		SELECT id, name, occupation, message, likes, created_at
		FROM community_posts
		ORDER BY created_at DESC
	`
	var posts []*model.CommunityPost
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.CommunityPost) error {
	query := `
		UPDATE community_posts
		SET name = $1, occupation = $2, message = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, post.Name, post.Occupation, post.Message, post.ID)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM community_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// Like inserts the (post, client) marker and bumps the counter in one
// transaction. The unique constraint on post_likes makes repeats no-ops and
// the `likes = likes + 1` form keeps concurrent likes from losing updates.
func (r *postRepository) Like(ctx context.Context, postID uuid.UUID, clientID string) (int, bool, error) {
	var likes int
	var liked bool

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO post_likes (id, post_id, client_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (post_id, client_id) DO NOTHING
		`
		result, err := tx.ExecContext(ctx, insert, uuid.New(), postID, clientID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to record like: %w", err)
		}

		inserted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if inserted == 0 {
			liked = false
			return tx.GetContext(ctx, &likes, `SELECT likes FROM community_posts WHERE id = $1`, postID)
		}

		liked = true
		increment := `
			UPDATE community_posts
			SET likes = likes + 1
			WHERE id = $1
			RETURNING likes
		`
		return tx.GetContext(ctx, &likes, increment, postID)
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to like post: %w", err)
	}
	return likes, liked, nil
}
