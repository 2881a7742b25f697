package views

import (
	"context"
	"strings"

	"github.com/scrollr/scrollr/internal/client/api"
	"github.com/scrollr/scrollr/internal/models"
)

// FeedAPI is the part of the API the feed calls.
type FeedAPI interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, text string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (string, error)
}

// Feed is the post list with its compose box. Viewer may be nil for an
// anonymous reader.
type Feed struct {
	Posts  []models.Post
	Error  string
	client FeedAPI
	viewer *models.AuthResponse
}

func NewFeed(client FeedAPI, viewer *models.AuthResponse) *Feed {
	return &Feed{client: client, viewer: viewer}
}

// Load replaces Posts with the server's feed.
func (f *Feed) Load(ctx context.Context) error {
	posts, err := f.client.ListPosts(ctx)
	if err != nil {
		f.Error = api.MessageOf(err)
		return err
	}
	f.Posts = posts
	f.Error = ""
	return nil
}

// Submit creates a post and then reloads the whole feed. Blank text is
// ignored and reports false.
func (f *Feed) Submit(ctx context.Context, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	if _, err := f.client.CreatePost(ctx, text); err != nil {
		f.Error = api.MessageOf(err)
		return false, err
	}
	return true, f.Load(ctx)
}

// CanDelete reports whether the viewer wrote p.
func (f *Feed) CanDelete(p models.Post) bool {
	return f.viewer != nil && f.viewer.ID != "" && p.Author.ID == f.viewer.ID
}

// Find returns the loaded post with id.
func (f *Feed) Find(id string) (models.Post, bool) {
	for _, p := range f.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Delete asks confirm, deletes the post and drops it from Posts. It
// reports false without calling the API when the user declines. On
// failure Posts is unchanged and Error holds the server's message.
func (f *Feed) Delete(ctx context.Context, id string, confirm func(models.Post) bool) (bool, error) {
	post, _ := f.Find(id)
	if post.ID == "" {
		post.ID = id
	}
	if confirm != nil && !confirm(post) {
		return false, nil
	}

	if _, err := f.client.DeletePost(ctx, id); err != nil {
		f.Error = api.MessageOf(err)
		return false, err
	}

	kept := f.Posts[:0:0]
	for _, p := range f.Posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.Posts = kept
	f.Error = ""
	return true, nil
}
