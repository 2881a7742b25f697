package models

import "time"

// Author is the subset of User joined into a post for display.
type Author struct {
	ID       string `json:"_id"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar"`
}

// Post is a single feed entry. AuthorID is what the store persists;
// Author is filled on read.
type Post struct {
	ID        string    `json:"_id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"-"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreatePostRequest is the JSON body for POST /api/posts.
type CreatePostRequest struct {
	Text string `json:"text"`
}

// MessageResponse carries a human-readable outcome or error.
type MessageResponse struct {
	Message string `json:"message"`
}
