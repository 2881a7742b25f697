package posts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrollr/scrollr/internal/apperr"
	"github.com/scrollr/scrollr/internal/logging"
	"github.com/scrollr/scrollr/internal/models"
	"github.com/scrollr/scrollr/internal/store"
)

type memCache struct {
	mu          sync.Mutex
	gen         int64
	feeds       map[int64][]models.Post
	gets        int
	invalidated int
	err         error
}

func (c *memCache) Get(context.Context) ([]models.Post, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return nil, 0, false, c.err
	}
	posts, ok := c.feeds[c.gen]
	return posts, c.gen, ok, nil
}

func (c *memCache) Set(_ context.Context, gen int64, posts []models.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.feeds == nil {
		c.feeds = make(map[int64][]models.Post)
	}
	c.feeds[gen] = posts
	return c.err
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidated++
	return c.err
}

func (c *memCache) cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.feeds[c.gen]
	return ok
}

func newUsers(t *testing.T, s *store.MemoryStore, names ...string) []*models.User {
	t.Helper()
	out := make([]*models.User, 0, len(names))
	for _, n := range names {
		u, err := s.CreateUser(context.Background(), &models.User{Username: n, Email: n + "@example.com", Password: "x", Avatar: n + ".png"})
		require.NoError(t, err)
		out = append(out, u)
	}
	return out
}

func TestCreate(t *testing.T) {
	s := store.NewMemoryStore()
	users := newUsers(t, s, "alice")
	cache := &memCache{}
	svc := NewService(s, s, cache, logging.Discard())

	post, err := svc.Create(context.Background(), users[0], "  hello world  ")
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, models.Author{ID: users[0].ID, Username: "alice", Avatar: "alice.png"}, post.Author)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, 1, cache.invalidated)

	_, err = svc.Create(context.Background(), users[0], "   ")
	assert.ErrorIs(t, err, ErrTextRequired)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Equal(t, 1, cache.invalidated)
}

func TestList_NewestFirstWithAuthors(t *testing.T) {
	s := store.NewMemoryStore()
	users := newUsers(t, s, "alice", "bob")
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, off := range []int{5, 1, 9, 3} {
		_, err := s.CreatePost(ctx, &models.Post{
			Text:      "p",
			AuthorID:  users[i%2].ID,
			CreatedAt: base.Add(time.Duration(off) * time.Second),
		})
		require.NoError(t, err)
	}
	// orphaned author
	_, err := s.CreatePost(ctx, &models.Post{Text: "ghost", AuthorID: "gone", CreatedAt: base})
	require.NoError(t, err)

	svc := NewService(s, s, nil, logging.Discard())
	posts, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 5)

	for i := 1; i < len(posts); i++ {
		assert.True(t, posts[i-1].CreatedAt.After(posts[i].CreatedAt))
	}
	assert.Equal(t, "alice", posts[0].Author.Username) // offset 9, index 2
	assert.Equal(t, "alice.png", posts[0].Author.Avatar)
	last := posts[len(posts)-1]
	assert.Equal(t, models.Author{ID: "gone"}, last.Author)
}

func TestList_UsesCache(t *testing.T) {
	s := store.NewMemoryStore()
	users := newUsers(t, s, "alice")
	cache := &memCache{}
	svc := NewService(s, s, cache, logging.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, users[0], "first")
	require.NoError(t, err)

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, cache.cached())

	// a write straight to the store is invisible until invalidation
	_, err = s.CreatePost(ctx, &models.Post{Text: "sneaky", AuthorID: users[0].ID})
	require.NoError(t, err)
	cached, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	_, err = svc.Create(ctx, users[0], "second")
	require.NoError(t, err)
	fresh, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestList_CacheErrorFallsBack(t *testing.T) {
	s := store.NewMemoryStore()
	users := newUsers(t, s, "alice")
	cache := &memCache{err: errors.New("redis down")}
	svc := NewService(s, s, cache, logging.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, users[0], "still works")
	require.NoError(t, err)

	posts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestDelete(t *testing.T) {
	s := store.NewMemoryStore()
	users := newUsers(t, s, "alice", "bob")
	cache := &memCache{}
	svc := NewService(s, s, cache, logging.Discard())
	ctx := context.Background()

	post, err := svc.Create(ctx, users[0], "mine")
	require.NoError(t, err)

	err = svc.Delete(ctx, users[1].ID, post.ID)
	assert.ErrorIs(t, err, ErrNotAuthor)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = svc.Delete(ctx, users[0].ID, "65a000000000000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, svc.Delete(ctx, users[0].ID, post.ID))
	assert.Equal(t, 2, cache.invalidated)

	_, err = s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = svc.Delete(ctx, users[0].ID, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

type brokenPosts struct{}

func (brokenPosts) CreatePost(context.Context, *models.Post) (*models.Post, error) {
	return nil, errors.New("write failed")
}
func (brokenPosts) ListPosts(context.Context) ([]models.Post, error) {
	return nil, errors.New("read failed")
}
func (brokenPosts) GetPost(context.Context, string) (*models.Post, error) {
	return nil, errors.New("read failed")
}
func (brokenPosts) DeletePost(context.Context, string) error { return errors.New("write failed") }

func TestStoreFailuresAreInternal(t *testing.T) {
	s := store.NewMemoryStore()
	users := newUsers(t, s, "alice")
	svc := NewService(brokenPosts{}, s, nil, logging.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, users[0], "x")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	_, err = svc.List(ctx)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	err = svc.Delete(ctx, users[0].ID, "p")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

// stallingPosts blocks the first ListPosts after it has read the store,
// until release is closed.
type stallingPosts struct {
	*store.MemoryStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newStallingPosts(s *store.MemoryStore) *stallingPosts {
	return &stallingPosts{MemoryStore: s, read: make(chan struct{}), release: make(chan struct{})}
}

func (p *stallingPosts) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := p.MemoryStore.ListPosts(ctx)
	p.once.Do(func() {
		close(p.read)
		<-p.release
	})
	return posts, err
}

func newRedisCache(t *testing.T) *store.RedisFeedCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return store.NewRedisFeedCache(rdb, time.Minute)
}

func TestList_WriteDuringInFlightListIsVisible(t *testing.T) {
	tests := []struct {
		name  string
		seed  bool
		write func(ctx context.Context, svc *Service, author *models.User, seeded *models.Post) error
		want  int
	}{
		{
			name: "create",
			write: func(ctx context.Context, svc *Service, author *models.User, _ *models.Post) error {
				_, err := svc.Create(ctx, author, "new post")
				return err
			},
			want: 1,
		},
		{
			name: "delete",
			seed: true,
			write: func(ctx context.Context, svc *Service, author *models.User, seeded *models.Post) error {
				return svc.Delete(ctx, author.ID, seeded.ID)
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := store.NewMemoryStore()
			alice := newUsers(t, s, "alice")[0]

			var seeded *models.Post
			if tt.seed {
				var err error
				seeded, err = s.CreatePost(ctx, &models.Post{Text: "old post", AuthorID: alice.ID})
				require.NoError(t, err)
			}

			stalled := newStallingPosts(s)
			svc := NewService(stalled, s, newRedisCache(t), logging.Discard())

			done := make(chan error, 1)
			go func() {
				_, err := svc.List(ctx)
				done <- err
			}()

			<-stalled.read
			require.NoError(t, tt.write(ctx, svc, alice, seeded))
			close(stalled.release)
			require.NoError(t, <-done)

			feed, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Len(t, feed, tt.want)
		})
	}
}
