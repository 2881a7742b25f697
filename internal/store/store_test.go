package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrollr/scrollr/internal/models"
)

type userStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

type postStore interface {
	CreatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

var (
	_ userStore = (*MemoryStore)(nil)
	_ postStore = (*MemoryStore)(nil)
	_ userStore = (*MongoStore)(nil)
	_ postStore = (*MongoStore)(nil)
	_ userStore = (*PostgresUserStore)(nil)
)

// runUserStoreTests exercises behaviour every user store must share.
func runUserStoreTests(t *testing.T, s userStore) {
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "alice@example.com", Password: "hash", Avatar: "a.png"})
	require.NoError(t, err)
	require.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.CreateUser(ctx, &models.User{Username: "other", Email: "alice@example.com", Password: "hash"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "hash"})
		assert.ErrorIs(t, err, ErrDuplicateUsername)
	})

	t.Run("lookups", func(t *testing.T) {
		byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byEmail.ID)
		assert.Equal(t, "hash", byEmail.Password)

		byName, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byName.ID)

		byID, err := s.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "a.png", byID.Avatar)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByID(ctx, "65a000000000000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("batch", func(t *testing.T) {
		users, err := s.GetUsersByIDs(ctx, []string{alice.ID, "does-not-exist"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[alice.ID].Username)
		assert.Empty(t, users[alice.ID].Password)
	})
}

func runPostStoreTests(t *testing.T, s postStore) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	// inserted out of order on purpose
	offsets := []int{2, 0, 3, 1}
	ids := make(map[int]string)
	for _, off := range offsets {
		p, err := s.CreatePost(ctx, &models.Post{
			Text:      "post",
			AuthorID:  "author-1",
			CreatedAt: base.Add(time.Duration(off) * time.Minute),
		})
		require.NoError(t, err)
		ids[off] = p.ID
	}

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 4)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt), "feed must be newest first")
	}
	assert.Equal(t, ids[3], posts[0].ID)
	assert.Equal(t, "author-1", posts[0].AuthorID)

	got, err := s.GetPost(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "author-1", got.AuthorID)

	require.NoError(t, s.DeletePost(ctx, ids[0]))
	_, err = s.GetPost(ctx, ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(ctx, ids[0]), ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(ctx, "not-an-id"), ErrNotFound)
}

func TestMemoryStore_Users(t *testing.T) {
	runUserStoreTests(t, NewMemoryStore())
}

func TestMemoryStore_Posts(t *testing.T) {
	runPostStoreTests(t, NewMemoryStore())
}
