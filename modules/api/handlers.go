package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	userdomain "github.com/example/forum-chat-demo/domain/user"
	"github.com/example/forum-chat-demo/modules/activity"
	"github.com/example/forum-chat-demo/modules/auth"
	"github.com/example/forum-chat-demo/modules/board"
	"github.com/example/forum-chat-demo/modules/chat"
	"github.com/example/forum-chat-demo/modules/files"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	board         *board.Service
	files         *files.Service
	registry      *chat.Registry
	feed          *activity.Feed
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	authContainer mono.ServiceContainer,
	authAdapter auth.AuthPort,
	boardService *board.Service,
	fileService *files.Service,
	registry *chat.Registry,
	feed *activity.Feed,
) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		authAdapter:   authAdapter,
		board:         boardService,
		files:         fileService,
		registry:      registry,
		feed:          feed,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	authReq := auth.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	}
	var resp auth.RegisterResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Username:  resp.Username,
		CreatedAt: resp.CreatedAt,
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	authReq := auth.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		Token:     resp.Token,
		ExpiresIn: resp.ExpiresIn,
		TokenType: resp.TokenType,
	})
}

// Profile returns the authenticated user and the posts they wrote.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*userdomain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	user, err := h.authAdapter.GetUserByUsername(c.UserContext(), claims.Username)
	if err != nil {
		return internalError(c, "Failed to retrieve user profile")
	}

	posts, err := h.board.PostsByUsername(c.UserContext(), user.Username)
	if err != nil {
		return internalError(c, "Failed to retrieve user posts")
	}

	return c.Status(fiber.StatusOK).JSON(ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		Posts:     posts,
	})
}

// ListPosts returns a page of posts with optional sorting, category
// filtering, and search.
func (h *Handlers) ListPosts(c *fiber.Ctx) error {
	params := board.ListPostsParams{
		SortBy:   c.Query("sortBy"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", board.DefaultPageSize),
	}

	page, err := h.board.ListPosts(c.UserContext(), params)
	if err != nil {
		return internalError(c, "Failed to list posts")
	}
	return c.Status(fiber.StatusOK).JSON(page)
}

// GetPost returns a single post.
func (h *Handlers) GetPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}

	post, err := h.board.GetPost(c.UserContext(), int64(id))
	if err != nil {
		return h.handleBoardError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// CreatePost creates a post from a multipart form, with an optional
// image attachment under the "image" field.
func (h *Handlers) CreatePost(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*userdomain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	input := board.CreatePostInput{
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		Category: c.FormValue("category"),
		Username: claims.Username,
	}

	name, err := h.storeUploadedImage(c)
	if err != nil {
		return h.handleUploadError(c, err)
	}
	input.File = name

	post, err := h.board.CreatePost(c.UserContext(), input)
	if err != nil {
		return h.handleBoardError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

var errUnreadableUpload = errors.New("failed to read uploaded file")

// storeUploadedImage reads the optional "image" multipart field and
// stores it, returning the storage name. A missing field is not an
// error.
func (h *Handlers) storeUploadedImage(c *fiber.Ctx) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil || fileHeader == nil {
		return "", nil
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", errUnreadableUpload
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return "", errUnreadableUpload
	}

	upload, err := h.files.Store(
		c.UserContext(),
		fileHeader.Filename,
		data,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		return "", err
	}
	return upload.Name, nil
}

// handleUploadError maps image upload errors to HTTP responses.
func (h *Handlers) handleUploadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, files.ErrNotAnImage),
		errors.Is(err, files.ErrEmptyFile),
		errors.Is(err, errUnreadableUpload):
		return badRequest(c, err.Error())
	default:
		log.Printf("[api] Upload error: %v", err)
		return internalError(c, "Failed to store uploaded file")
	}
}

// UpdatePost applies a partial update to a post. It accepts either a
// JSON body or a multipart form with an optional replacement image.
func (h *Handlers) UpdatePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}

	var input board.UpdatePostInput
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		for field, dst := range map[string]**string{
			"title":    &input.Title,
			"content":  &input.Content,
			"category": &input.Category,
		} {
			if value := c.FormValue(field); value != "" {
				v := value
				*dst = &v
			}
		}

		name, err := h.storeUploadedImage(c)
		if err != nil {
			return h.handleUploadError(c, err)
		}
		if name != "" {
			input.File = &name
		}
	} else {
		var req UpdatePostRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		input.Title = req.Title
		input.Content = req.Content
		input.Category = req.Category
	}

	post, err := h.board.UpdatePost(c.UserContext(), int64(id), input)
	if err != nil {
		return h.handleBoardError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost removes a post and its comments.
func (h *Handlers) DeletePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}

	if err := h.board.DeletePost(c.UserContext(), int64(id)); err != nil {
		return h.handleBoardError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost increments a post's like counter.
func (h *Handlers) LikePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}

	post, err := h.board.LikePost(c.UserContext(), int64(id))
	if err != nil {
		return h.handleBoardError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// ListComments returns the comments of a post.
func (h *Handlers) ListComments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}

	comments, err := h.board.Comments(c.UserContext(), int64(id))
	if err != nil {
		return internalError(c, "Failed to list comments")
	}
	return c.Status(fiber.StatusOK).JSON(comments)
}

// AddComment attaches a comment to a post.
func (h *Handlers) AddComment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid post ID")
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := h.board.AddComment(c.UserContext(), int64(id), req.Content)
	if err != nil {
		return h.handleBoardError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetUpload serves a stored image by its storage name.
func (h *Handlers) GetUpload(c *fiber.Ctx) error {
	name := c.Params("name")

	data, meta, err := h.files.Fetch(c.UserContext(), name)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "File not found",
		})
	}

	c.Set(fiber.HeaderContentType, meta.ContentType)
	return c.Status(fiber.StatusOK).Send(data)
}

// ChatRooms returns a snapshot of the active chat rooms.
func (h *Handlers) ChatRooms(c *fiber.Ctx) error {
	rooms := h.registry.Rooms()

	out := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomResponse{
			Name:        room.Name,
			MemberCount: room.MemberCount,
			Leader:      room.Leader,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"rooms": out})
}

// ChatActivity returns the recent chat room activity feed.
func (h *Handlers) ChatActivity(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"activity": h.feed.Recent()})
}

// handleBoardError maps board service errors to HTTP responses.
func (h *Handlers) handleBoardError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, board.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Post not found",
		})
	case errors.Is(err, board.ErrTitleRequired),
		errors.Is(err, board.ErrUsernameRequired),
		errors.Is(err, board.ErrCommentEmpty):
		return badRequest(c, err.Error())
	default:
		log.Printf("[api] Internal error: %v", err)
		return internalError(c, "An internal error occurred")
	}
}

// handleAuthError maps auth service errors to HTTP responses without
// exposing internals. The errors cross the service container as strings,
// so matching is on the message.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid username or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid username or password",
		})
	case strings.Contains(errStr, "user with this username already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this username already exists",
		})
	case strings.Contains(errStr, "username cannot be empty"),
		strings.Contains(errStr, "username exceeds maximum length"),
		strings.Contains(errStr, "password must be at least"),
		strings.Contains(errStr, "password must be at most"):
		return badRequest(c, trimServiceError(errStr))
	default:
		log.Printf("[api] Internal error: %v", err)
		return internalError(c, "An internal error occurred")
	}
}

// trimServiceError strips the request-reply wrapping from a service
// error message, keeping only the final cause.
func trimServiceError(msg string) string {
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func internalError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: message,
	})
}
