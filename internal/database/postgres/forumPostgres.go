package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
)

type forumRepository struct {
	db *sql.DB
}

func NewForumRepository(db *sql.DB) database.ForumRepository {
	return &forumRepository{db: db}
}

func (r *forumRepository) CreatePost(ctx context.Context, post *entity.ForumPost) error {
	query := `
		INSERT INTO forum_posts (event_id, author_id, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, query,
		post.EventID,
		post.AuthorID,
		post.Title,
		post.Content,
		post.CreatedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *forumRepository) GetPost(ctx context.Context, id int64) (*entity.ForumPost, error) {
	query := `SELECT id, event_id, author_id, title, content, created_at FROM forum_posts WHERE id = $1`

	var post entity.ForumPost
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.EventID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (r *forumRepository) ListPostsByEvent(ctx context.Context, eventID int64) ([]*entity.ForumPost, error) {
	query := `
		SELECT id, event_id, author_id, title, content, created_at
		FROM forum_posts
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*entity.ForumPost
	for rows.Next() {
		var post entity.ForumPost
		if err := rows.Scan(&post.ID, &post.EventID, &post.AuthorID, &post.Title, &post.Content, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, &post)
	}
	return posts, rows.Err()
}

func (r *forumRepository) CreateComment(ctx context.Context, comment *entity.ForumComment) error {
	query := `
		INSERT INTO forum_comments (post_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	err := r.db.QueryRowContext(ctx, query,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *forumRepository) ListComments(ctx context.Context, postID int64) ([]*entity.ForumComment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at
		FROM forum_comments
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*entity.ForumComment
	for rows.Next() {
		var c entity.ForumComment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
