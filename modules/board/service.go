package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/forum-chat-demo/domain/board"
)

const (
	// DefaultPageSize is used when the client does not send a limit.
	DefaultPageSize = 10
	// MaxPageSize caps client-supplied limits.
	MaxPageSize = 100
)

var (
	// ErrTitleRequired is returned when a post is created without a title.
	ErrTitleRequired = errors.New("post title is required")
	// ErrUsernameRequired is returned when a post has no author.
	ErrUsernameRequired = errors.New("post author is required")
	// ErrCommentEmpty is returned when a comment has no content.
	ErrCommentEmpty = errors.New("comment content cannot be empty")
)

// Service provides forum board operations on top of the repository.
type Service struct {
	repo *Repository
}

// NewService creates a new board service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreatePost creates a new post with zero likes.
func (s *Service) CreatePost(_ context.Context, in CreatePostInput) (*domain.Post, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.Username == "" {
		return nil, ErrUsernameRequired
	}

	now := time.Now()
	post := &domain.Post{
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		File:      in.File,
		Username:  in.Username,
		Likes:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePost(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// GetPost retrieves a post by ID.
func (s *Service) GetPost(_ context.Context, id int64) (*domain.Post, error) {
	return s.repo.FindPostByID(id)
}

// ListPosts returns one page of posts after filtering, searching, and
// sorting.
func (s *Service) ListPosts(_ context.Context, params ListPostsParams) (*PostPage, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = DefaultPageSize
	}
	if params.Limit > MaxPageSize {
		params.Limit = MaxPageSize
	}

	posts, total, err := s.repo.ListPosts(params)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	if posts == nil {
		posts = []domain.Post{}
	}

	return &PostPage{
		TotalPages:  totalPages,
		CurrentPage: params.Page,
		Posts:       posts,
	}, nil
}

// UpdatePost applies a partial update to a post.
func (s *Service) UpdatePost(_ context.Context, id int64, in UpdatePostInput) (*domain.Post, error) {
	updates := map[string]any{
		"updated_at": time.Now(),
	}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.File != nil {
		updates["file"] = *in.File
	}

	return s.repo.UpdatePost(id, updates)
}

// DeletePost removes a post and its comments.
func (s *Service) DeletePost(_ context.Context, id int64) error {
	return s.repo.DeletePost(id)
}

// LikePost increments a post's like counter.
func (s *Service) LikePost(_ context.Context, id int64) (*domain.Post, error) {
	return s.repo.IncrementLikes(id)
}

// PostsByUsername returns all posts authored by a user.
func (s *Service) PostsByUsername(_ context.Context, username string) ([]domain.Post, error) {
	posts, err := s.repo.ListPostsByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts for %s: %w", username, err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	return posts, nil
}

// AddComment attaches a comment to a post. The post must exist.
func (s *Service) AddComment(_ context.Context, postID int64, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, ErrCommentEmpty
	}
	if _, err := s.repo.FindPostByID(postID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID:    postID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateComment(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// Comments returns all comments of a post in creation order.
func (s *Service) Comments(_ context.Context, postID int64) ([]domain.Comment, error) {
	comments, err := s.repo.ListComments(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}
