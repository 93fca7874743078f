package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"instaclone/internal/db"
	"instaclone/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (domain.Post, error)
	Delete(ctx context.Context, id string) error
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
	ListBookmarked(ctx context.Context, userID string) ([]domain.Post, error)
	ListFeed(ctx context.Context, userID string, limit int) ([]domain.Post, error)
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	AddComment(ctx context.Context, comment domain.Comment) error
	ListComments(ctx context.Context, postID string) ([]domain.Comment, error)
	ToggleBookmark(ctx context.Context, userID, postID string) (domain.BookmarkAction, error)
}

type PgPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

const selectPost = `
	SELECT p.id, p.author_id, a.username, a.profile_picture, p.caption, p.image,
		COALESCE((SELECT array_agg(l.user_id ORDER BY l.created_at, l.user_id)
			FROM post_likes l WHERE l.post_id = p.id), '{}') AS likes,
		p.created_at
	FROM posts p
	JOIN users a ON a.id = p.author_id
`

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post) error {
	const query = `
		INSERT INTO posts (id, author_id, caption, image, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.AuthorID,
		post.Caption,
		post.Image,
		post.CreatedAt,
	)
	return err
}

func (r *PgPostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	posts, err := r.queryPosts(ctx, selectPost+` WHERE p.id = $1`, id)
	if err != nil {
		return domain.Post{}, err
	}
	if len(posts) == 0 {
		return domain.Post{}, pgx.ErrNoRows
	}
	return posts[0], nil
}

func (r *PgPostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgPostRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	return r.queryPosts(ctx, selectPost+`
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`, authorID)
}

func (r *PgPostRepository) ListBookmarked(ctx context.Context, userID string) ([]domain.Post, error) {
	return r.queryPosts(ctx, selectPost+`
		JOIN bookmarks b ON b.post_id = p.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, p.id DESC
	`, userID)
}

// ListFeed devuelve los posts del usuario y de quienes sigue.
func (r *PgPostRepository) ListFeed(ctx context.Context, userID string, limit int) ([]domain.Post, error) {
	return r.queryPosts(ctx, selectPost+`
		WHERE p.author_id = $1
			OR p.author_id IN (SELECT followee_id FROM follows WHERE follower_id = $1)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2
	`, userID, limit)
}

func (r *PgPostRepository) AddLike(ctx context.Context, postID, userID string) error {
	const query = `
		INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, postID, userID)
	return err
}

func (r *PgPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	return err
}

func (r *PgPostRepository) AddComment(ctx context.Context, comment domain.Comment) error {
	const query = `
		INSERT INTO comments (id, post_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Text,
		comment.CreatedAt,
	)
	return err
}

func (r *PgPostRepository) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	byPost, err := r.commentsFor(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	comments := byPost[postID]
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

func (r *PgPostRepository) ToggleBookmark(ctx context.Context, userID, postID string) (domain.BookmarkAction, error) {
	var action domain.BookmarkAction
	err := db.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND post_id = $2`, userID, postID)
		if err != nil {
			return fmt.Errorf("delete bookmark: %w", err)
		}
		if tag.RowsAffected() > 0 {
			action = domain.BookmarkRemoved
			return nil
		}
		const insertQuery = `
			INSERT INTO bookmarks (user_id, post_id, created_at)
			VALUES ($1, $2, now())
			ON CONFLICT (user_id, post_id) DO NOTHING
		`
		if _, err := tx.Exec(ctx, insertQuery, userID, postID); err != nil {
			return fmt.Errorf("insert bookmark: %w", err)
		}
		action = domain.BookmarkAdded
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// queryPosts ejecuta la consulta y carga los comentarios de todos los posts en un solo viaje.
func (r *PgPostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var p domain.Post
		err := rows.Scan(
			&p.ID,
			&p.AuthorID,
			&p.Author.Username,
			&p.Author.ProfilePicture,
			&p.Caption,
			&p.Image,
			&p.Likes,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.Author.ID = p.AuthorID
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	byPost, err := r.commentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Comments = byPost[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []domain.Comment{}
		}
	}
	return posts, nil
}

func (r *PgPostRepository) commentsFor(ctx context.Context, postIDs []string) (map[string][]domain.Comment, error) {
	const query = `
		SELECT c.id, c.post_id, c.author_id, a.username, a.profile_picture, c.text, c.created_at
		FROM comments c
		JOIN users a ON a.id = c.author_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at ASC, c.id ASC
	`
	rows, err := r.pool.Query(ctx, query, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byPost := make(map[string][]domain.Comment, len(postIDs))
	for rows.Next() {
		var c domain.Comment
		err := rows.Scan(
			&c.ID,
			&c.PostID,
			&c.AuthorID,
			&c.Author.Username,
			&c.Author.ProfilePicture,
			&c.Text,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		c.Author.ID = c.AuthorID
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return byPost, nil
}
