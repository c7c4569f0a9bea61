package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"eureka/internal/feed/models"
	"eureka/pkg/domain"
	"eureka/pkg/platform/sentinel"
	"eureka/pkg/platform/tx"
)

const foreignKeyViolation = "23503"

const postColumns = `
	p.id, p.author_id, p.content, p.category, p.created_at,
	(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreatePost(ctx context.Context, post *models.Post) error {
	_, err := tx.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO posts (id, author_id, content, category, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(post.ID), uuid.UUID(post.AuthorID), post.Content, string(post.Category), post.CreatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindPost(ctx context.Context, id domain.PostID) (*models.Post, error) {
	rows, err := tx.Use(ctx, s.db).QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return posts[0], nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, filter ListFilter) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p`
	var args []any
	if filter.Category != "" {
		query += ` WHERE p.category = $1`
		args = append(args, string(filter.Category))
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := tx.Use(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return scanPosts(rows)
}

func (s *PostgresStore) ListBookmarked(ctx context.Context, user domain.UserID) ([]*models.Post, error) {
	rows, err := tx.Use(ctx, s.db).QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN bookmarks b ON b.post_id = p.id AND b.user_id = $1
		ORDER BY p.created_at DESC
	`, uuid.UUID(user))
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return scanPosts(rows)
}

func (s *PostgresStore) ViewerState(ctx context.Context, viewer domain.UserID, ids []domain.PostID) (map[domain.PostID]models.ViewerState, error) {
	out := make(map[domain.PostID]models.ViewerState, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
		out[id] = models.ViewerState{}
	}

	rows, err := tx.Use(ctx, s.db).QueryContext(ctx, `
		SELECT p.id,
			EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1),
			EXISTS (SELECT 1 FROM bookmarks b WHERE b.post_id = p.id AND b.user_id = $1)
		FROM posts p
		WHERE p.id = ANY($2::uuid[])
	`, uuid.UUID(viewer), pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("load viewer state: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id uuid.UUID
			vs models.ViewerState
		)
		if err := rows.Scan(&id, &vs.Liked, &vs.Bookmarked); err != nil {
			return nil, fmt.Errorf("scan viewer state: %w", err)
		}
		out[domain.PostID(id)] = vs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load viewer state: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ToggleLike(ctx context.Context, post domain.PostID, user domain.UserID) (bool, int, error) {
	var (
		liked bool
		count int
	)
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Use(ctx, s.db)
		// row lock serializes concurrent toggles on the same post
		if err := lockPost(ctx, q, post); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, uuid.UUID(post), uuid.UUID(user))
		if err != nil {
			return fmt.Errorf("unlike: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := q.ExecContext(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, uuid.UUID(post), uuid.UUID(user)); err != nil {
				return fmt.Errorf("like: %w", err)
			}
			liked = true
		}
		return q.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, uuid.UUID(post)).Scan(&count)
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

func (s *PostgresStore) ToggleBookmark(ctx context.Context, post domain.PostID, user domain.UserID, now time.Time) (bool, error) {
	var bookmarked bool
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Use(ctx, s.db)
		if err := lockPost(ctx, q, post); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND post_id = $2`, uuid.UUID(user), uuid.UUID(post))
		if err != nil {
			return fmt.Errorf("remove bookmark: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := q.ExecContext(ctx, `INSERT INTO bookmarks (user_id, post_id, created_at) VALUES ($1, $2, $3)`, uuid.UUID(user), uuid.UUID(post), now); err != nil {
				return fmt.Errorf("add bookmark: %w", err)
			}
			bookmarked = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return bookmarked, nil
}

func (s *PostgresStore) CreateComment(ctx context.Context, c *models.Comment) error {
	_, err := tx.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO comments (id, post_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(c.ID), uuid.UUID(c.PostID), uuid.UUID(c.AuthorID), c.Content, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == "comments_post_id_fkey" {
			return fmt.Errorf("create comment: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListComments(ctx context.Context, post domain.PostID) ([]*models.Comment, error) {
	rows, err := tx.Use(ctx, s.db).QueryContext(ctx, `
		SELECT id, post_id, author_id, content, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`, uuid.UUID(post))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		var (
			c                    models.Comment
			id, postID, authorID uuid.UUID
		)
		if err := rows.Scan(&id, &postID, &authorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.ID = domain.CommentID(id)
		c.PostID = domain.PostID(postID)
		c.AuthorID = domain.UserID(authorID)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func lockPost(ctx context.Context, q tx.Querier, post domain.PostID) error {
	var id uuid.UUID
	err := q.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, uuid.UUID(post)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock post: %w", err)
	}
	return nil
}

func scanPosts(rows *sql.Rows) ([]*models.Post, error) {
	defer rows.Close()
	var out []*models.Post
	for rows.Next() {
		var (
			p                  models.Post
			id, authorID       uuid.UUID
			category           string
			likes, numComments int
		)
		if err := rows.Scan(&id, &authorID, &p.Content, &category, &p.CreatedAt, &likes, &numComments); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.ID = domain.PostID(id)
		p.AuthorID = domain.UserID(authorID)
		p.Category = domain.Category(category)
		p.Likes = likes
		p.Comments = numComments
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}
	return out, nil
}
