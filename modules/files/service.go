package files

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	domain "github.com/example/forum-chat-demo/domain/file"
	gonanoid "github.com/jaevor/go-nanoid"
)

const storageNameLength = 16

var (
	// ErrNotAnImage is returned when the uploaded file is not an image.
	ErrNotAnImage = errors.New("only image files are allowed")
	// ErrEmptyFile is returned when the uploaded file has no content.
	ErrEmptyFile = errors.New("uploaded file is empty")
	// ErrFileNotFound is returned when no stored file matches the name.
	ErrFileNotFound = errors.New("file not found")
)

// allowedExtensions lists the image extensions accepted for post
// attachments.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Service stores and serves image attachments for posts.
type Service struct {
	store   ObjectStore
	newName func() string
}

// NewService creates a new file service.
func NewService(store ObjectStore) (*Service, error) {
	newName, err := gonanoid.Standard(storageNameLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create name generator: %w", err)
	}
	return &Service{
		store:   store,
		newName: newName,
	}, nil
}

// Store validates and saves an image, returning its metadata. The
// returned Name is the unique storage name used to serve the image
// later.
func (s *Service) Store(ctx context.Context, originalName string, data []byte, contentType string) (*domain.Upload, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return nil, ErrNotAnImage
	}
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}
	if contentType == "" {
		contentType = "image/" + strings.TrimPrefix(ext, ".")
	}

	storageName := s.newName() + ext
	info, err := s.store.Put(ctx, storageName, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	return &domain.Upload{
		Name:         info.Name,
		OriginalName: originalName,
		Size:         int64(info.Size),
		ContentType:  info.ContentType,
		CreatedAt:    info.ModTime,
	}, nil
}

// Fetch retrieves a stored image by its storage name.
func (s *Service) Fetch(ctx context.Context, name string) ([]byte, *domain.Upload, error) {
	if name == "" {
		return nil, nil, ErrFileNotFound
	}

	data, info, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, nil, ErrFileNotFound
	}

	return data, &domain.Upload{
		Name:        info.Name,
		Size:        int64(info.Size),
		ContentType: info.ContentType,
		CreatedAt:   info.ModTime,
	}, nil
}

// Remove deletes a stored image by its storage name.
func (s *Service) Remove(ctx context.Context, name string) error {
	if name == "" {
		return ErrFileNotFound
	}
	if err := s.store.Delete(ctx, name); err != nil {
		return ErrFileNotFound
	}
	return nil
}

// List returns metadata for every stored image.
func (s *Service) List(ctx context.Context) ([]*domain.Upload, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	uploads := make([]*domain.Upload, 0, len(objects))
	for _, obj := range objects {
		uploads = append(uploads, &domain.Upload{
			Name:        obj.Name,
			Size:        int64(obj.Size),
			ContentType: obj.ContentType,
			CreatedAt:   obj.ModTime,
		})
	}
	return uploads, nil
}
