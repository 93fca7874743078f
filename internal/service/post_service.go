package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"instaclone/internal/domain"
	"instaclone/internal/media"
	"instaclone/internal/repository"
)

const feedLimit = 50

// PostService maneja posts, likes, comentarios y bookmarks.
type PostService struct {
	logger         *zap.Logger
	posts          repository.PostRepository
	uploader       media.Uploader
	maxUploadBytes int64
	now            func() time.Time
}

func NewPostService(logger *zap.Logger, posts repository.PostRepository, uploader media.Uploader, maxUploadBytes int64) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if uploader == nil {
		uploader = media.NewDisabledUploader("image uploads not configured")
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &PostService{
		logger:         logger,
		posts:          posts,
		uploader:       uploader,
		maxUploadBytes: maxUploadBytes,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *PostService) AddPost(ctx context.Context, authorID, caption string, image *media.Image) (domain.Post, error) {
	if s == nil || s.posts == nil {
		return domain.Post{}, domain.ErrServiceNotConfigured
	}
	if image == nil {
		return domain.Post{}, domain.ErrImageRequired
	}
	if err := media.Validate(*image, s.maxUploadBytes); err != nil {
		return domain.Post{}, err
	}

	now := s.now()
	url, err := s.uploader.Upload(ctx, media.PostKey(now, image.Filename), *image)
	if err != nil {
		s.logger.Warn("post image upload failed", zap.String("user_id", authorID), zap.Error(err))
		return domain.Post{}, domain.ErrImageUploadFailed
	}

	post := domain.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Caption:   strings.TrimSpace(caption),
		Image:     url,
		CreatedAt: now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return domain.Post{}, err
	}
	return s.get(ctx, post.ID)
}

// Feed devuelve los posts del usuario y de quienes sigue, del mas nuevo al mas viejo.
func (s *PostService) Feed(ctx context.Context, userID string) ([]domain.Post, error) {
	if s == nil || s.posts == nil {
		return nil, domain.ErrServiceNotConfigured
	}
	return s.posts.ListFeed(ctx, userID, feedLimit)
}

func (s *PostService) UserPosts(ctx context.Context, userID string) ([]domain.Post, error) {
	if s == nil || s.posts == nil {
		return nil, domain.ErrServiceNotConfigured
	}
	return s.posts.ListByAuthor(ctx, userID)
}

func (s *PostService) Like(ctx context.Context, userID, postID string) (domain.Post, error) {
	if s == nil || s.posts == nil {
		return domain.Post{}, domain.ErrServiceNotConfigured
	}
	if _, err := s.get(ctx, postID); err != nil {
		return domain.Post{}, err
	}
	if err := s.posts.AddLike(ctx, postID, userID); err != nil {
		return domain.Post{}, err
	}
	return s.get(ctx, postID)
}

func (s *PostService) Dislike(ctx context.Context, userID, postID string) (domain.Post, error) {
	if s == nil || s.posts == nil {
		return domain.Post{}, domain.ErrServiceNotConfigured
	}
	if _, err := s.get(ctx, postID); err != nil {
		return domain.Post{}, err
	}
	if err := s.posts.RemoveLike(ctx, postID, userID); err != nil {
		return domain.Post{}, err
	}
	return s.get(ctx, postID)
}

func (s *PostService) Comment(ctx context.Context, userID, postID, text string) (domain.Comment, error) {
	if s == nil || s.posts == nil {
		return domain.Comment{}, domain.ErrServiceNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, domain.ErrEmptyText
	}
	if _, err := s.get(ctx, postID); err != nil {
		return domain.Comment{}, err
	}

	comment := domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  userID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		return domain.Comment{}, err
	}

	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return domain.Comment{}, err
	}
	for _, c := range comments {
		if c.ID == comment.ID {
			return c, nil
		}
	}
	return comment, nil
}

func (s *PostService) Comments(ctx context.Context, postID string) ([]domain.Comment, error) {
	if s == nil || s.posts == nil {
		return nil, domain.ErrServiceNotConfigured
	}
	if _, err := s.get(ctx, postID); err != nil {
		return nil, err
	}
	return s.posts.ListComments(ctx, postID)
}

// DeletePost elimina el post solo si userID es el autor.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	if s == nil || s.posts == nil {
		return domain.ErrServiceNotConfigured
	}
	post, err := s.get(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return domain.ErrForbidden
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *PostService) ToggleBookmark(ctx context.Context, userID, postID string) (domain.BookmarkAction, error) {
	if s == nil || s.posts == nil {
		return "", domain.ErrServiceNotConfigured
	}
	if _, err := s.get(ctx, postID); err != nil {
		return "", err
	}
	return s.posts.ToggleBookmark(ctx, userID, postID)
}

func (s *PostService) get(ctx context.Context, postID string) (domain.Post, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return domain.Post{}, domain.ErrPostNotFound
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, domain.ErrPostNotFound
		}
		return domain.Post{}, err
	}
	return post, nil
}
