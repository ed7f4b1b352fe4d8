package board

import (
	"time"
)

// Post represents a forum post.
type Post struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string `gorm:"not null;type:text" json:"title"`
	Content   string `gorm:"type:text" json:"content"`
	Category  string `gorm:"index;type:text" json:"category"`
	Likes     int    `gorm:"not null;default:0" json:"likes"`
	File      string `gorm:"type:text" json:"file,omitempty"`
	Username  string `gorm:"index;not null;type:text" json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Post entity.
func (Post) TableName() string {
	return "posts"
}

// Comment represents a comment attached to a post.
type Comment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64  `gorm:"index;not null" json:"post_id"`
	Content   string `gorm:"not null;type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for the Comment entity.
func (Comment) TableName() string {
	return "comments"
}
