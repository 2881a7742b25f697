package posts

import (
	"context"
	"errors"
	"strings"

	"github.com/scrollr/scrollr/internal/apperr"
	"github.com/scrollr/scrollr/internal/logging"
	"github.com/scrollr/scrollr/internal/models"
	"github.com/scrollr/scrollr/internal/store"
)

// PostStore defines the interface for post persistence.
type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// AuthorStore resolves post authors for display.
type AuthorStore interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// FeedCache holds the joined feed between writes. Get reports the current
// generation even on a miss; Set must be given that generation so a value
// read before a concurrent Invalidate is never served.
type FeedCache interface {
	Get(ctx context.Context) ([]models.Post, int64, bool, error)
	Set(ctx context.Context, gen int64, posts []models.Post) error
	Invalidate(ctx context.Context) error
}

// Service implements the feed operations.
type Service struct {
	posts PostStore
	users AuthorStore
	cache FeedCache
	log   logging.Logger
}

// NewService builds the service. cache may be nil.
func NewService(posts PostStore, users AuthorStore, cache FeedCache, log logging.Logger) *Service {
	return &Service{posts: posts, users: users, cache: cache, log: log}
}

// Create stores a post by author.
func (s *Service) Create(ctx context.Context, author *models.User, text string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}

	post, err := s.posts.CreatePost(ctx, &models.Post{Text: text, AuthorID: author.ID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	post.Author = models.Author{ID: author.ID, Username: author.Username, Avatar: author.Avatar}

	s.invalidate(ctx)
	s.log.Info(ctx, "post created", "post_id", post.ID, "author", author.ID)
	return post, nil
}

// List returns every post newest first with authors joined.
func (s *Service) List(ctx context.Context) ([]models.Post, error) {
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		posts, g, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.log.Warn(ctx, "feed cache read failed", "err", err)
		case ok:
			return posts, nil
		default:
			gen, cacheable = g, true
		}
	}

	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.joinAuthors(ctx, posts); err != nil {
		return nil, apperr.Internal(err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, gen, posts); err != nil {
			s.log.Warn(ctx, "feed cache write failed", "err", err)
		}
	}
	return posts, nil
}

// Delete removes postID if requesterID wrote it.
func (s *Service) Delete(ctx context.Context, requesterID, postID string) error {
	post, err := s.posts.GetPost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if post.AuthorID != requesterID {
		return ErrNotAuthor
	}

	err = s.posts.DeletePost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return apperr.Internal(err)
	}

	s.invalidate(ctx)
	s.log.Info(ctx, "post deleted", "post_id", postID, "author", requesterID)
	return nil
}

func (s *Service) joinAuthors(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; !ok {
			seen[p.AuthorID] = struct{}{}
			ids = append(ids, p.AuthorID)
		}
	}

	authors, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].Author = models.Author{ID: posts[i].AuthorID}
		if u, ok := authors[posts[i].AuthorID]; ok {
			posts[i].Author.Username = u.Username
			posts[i].Author.Avatar = u.Avatar
		}
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn(ctx, "feed cache invalidate failed", "err", err)
	}
}
