package posts

import "github.com/scrollr/scrollr/internal/apperr"

var (
	ErrTextRequired = apperr.New(apperr.KindInvalidInput, "Post text is required")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "Post not found")
	ErrNotAuthor    = apperr.New(apperr.KindForbidden, "Not authorized to delete this post")
)
