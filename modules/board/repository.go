package board

import (
	"errors"
	"strings"

	domain "github.com/example/forum-chat-demo/domain/board"
	"gorm.io/gorm"
)

var (
	// ErrPostNotFound is returned when a post is not found.
	ErrPostNotFound = errors.New("post not found")
)

// Repository handles post and comment persistence using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// CreatePost inserts a new post.
func (r *Repository) CreatePost(post *domain.Post) error {
	return r.db.Create(post).Error
}

// FindPostByID finds a post by ID.
func (r *Repository) FindPostByID(id int64) (*domain.Post, error) {
	var post domain.Post
	result := r.db.First(&post, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, result.Error
	}
	return &post, nil
}

// ListPosts returns the matching posts and the total match count.
func (r *Repository) ListPosts(params ListPostsParams) ([]domain.Post, int64, error) {
	query := r.db.Model(&domain.Post{})

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(username) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch params.SortBy {
	case SortByLikes:
		query = query.Order("likes DESC, id DESC")
	case SortByComments:
		query = query.
			Select("posts.*").
			Joins("LEFT JOIN comments ON comments.post_id = posts.id").
			Group("posts.id").
			Order("COUNT(comments.id) DESC, posts.id DESC")
	default:
		// Newest first.
		query = query.Order("id DESC")
	}

	offset := (params.Page - 1) * params.Limit
	var posts []domain.Post
	if err := query.Offset(offset).Limit(params.Limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// UpdatePost applies the given column updates to a post.
func (r *Repository) UpdatePost(id int64, updates map[string]any) (*domain.Post, error) {
	result := r.db.Model(&domain.Post{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}
	return r.FindPostByID(id)
}

// DeletePost removes a post and its comments.
func (r *Repository) DeletePost(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Post{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.Delete(&domain.Comment{}, "post_id = ?", id).Error
	})
}

// IncrementLikes adds one like to a post and returns the updated post.
func (r *Repository) IncrementLikes(id int64) (*domain.Post, error) {
	result := r.db.Model(&domain.Post{}).Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}
	return r.FindPostByID(id)
}

// ListPostsByUsername returns all posts authored by a user, newest first.
func (r *Repository) ListPostsByUsername(username string) ([]domain.Post, error) {
	var posts []domain.Post
	if err := r.db.Where("username = ?", username).Order("id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateComment inserts a new comment.
func (r *Repository) CreateComment(comment *domain.Comment) error {
	return r.db.Create(comment).Error
}

// ListComments returns all comments of a post in creation order.
func (r *Repository) ListComments(postID int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := r.db.Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
