package board

import (
	domain "github.com/example/forum-chat-demo/domain/board"
)

// Sort orders accepted by ListPosts. Anything else falls back to newest
// first.
const (
	SortByLikes    = "likes"
	SortByComments = "comments"
)

// ListPostsParams captures the query parameters of a post listing.
type ListPostsParams struct {
	SortBy   string
	Category string
	Search   string
	Page     int
	Limit    int
}

// PostPage is one page of a post listing.
type PostPage struct {
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Posts       []domain.Post `json:"posts"`
}

// CreatePostInput carries the fields of a new post.
type CreatePostInput struct {
	Title    string
	Content  string
	Category string
	File     string
	Username string
}

// UpdatePostInput carries a partial post update. Nil fields are left
// untouched.
type UpdatePostInput struct {
	Title    *string
	Content  *string
	Category *string
	File     *string
}
