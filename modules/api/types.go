package api

import (
	"time"

	boarddomain "github.com/example/forum-chat-demo/domain/board"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents an authentication token response.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	TokenType string `json:"token_type"`
}

// UserResponse represents a user response.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse represents a user profile with the posts they wrote.
type ProfileResponse struct {
	ID        string             `json:"id"`
	Username  string             `json:"username"`
	CreatedAt time.Time          `json:"created_at"`
	Posts     []boarddomain.Post `json:"posts"`
}

// UpdatePostRequest represents a partial post update.
type UpdatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

// CommentRequest represents a new comment on a post.
type CommentRequest struct {
	Content string `json:"content"`
}

// RoomResponse represents one chat room in the room listing.
type RoomResponse struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
	Leader      string `json:"leader"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
