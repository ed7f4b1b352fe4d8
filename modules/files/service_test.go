package files

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// mockObjectStore is a map-backed ObjectStore for testing.
type mockObjectStore struct {
	objects map[string]mockObject
}

type mockObject struct {
	data        []byte
	contentType string
	modTime     time.Time
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{
		objects: make(map[string]mockObject),
	}
}

func (m *mockObjectStore) Put(_ context.Context, name string, data []byte, contentType string) (*ObjectInfo, error) {
	m.objects[name] = mockObject{
		data:        data,
		contentType: contentType,
		modTime:     time.Now(),
	}
	return &ObjectInfo{
		Name:        name,
		Size:        uint64(len(data)),
		ContentType: contentType,
		ModTime:     m.objects[name].modTime,
	}, nil
}

func (m *mockObjectStore) Get(_ context.Context, name string) ([]byte, *ObjectInfo, error) {
	obj, ok := m.objects[name]
	if !ok {
		return nil, nil, fmt.Errorf("object not found: %s", name)
	}
	return obj.data, &ObjectInfo{
		Name:        name,
		Size:        uint64(len(obj.data)),
		ContentType: obj.contentType,
		ModTime:     obj.modTime,
	}, nil
}

func (m *mockObjectStore) Delete(_ context.Context, name string) error {
	if _, ok := m.objects[name]; !ok {
		return fmt.Errorf("object not found: %s", name)
	}
	delete(m.objects, name)
	return nil
}

func (m *mockObjectStore) List(_ context.Context) ([]*ObjectInfo, error) {
	objects := make([]*ObjectInfo, 0, len(m.objects))
	for name, obj := range m.objects {
		objects = append(objects, &ObjectInfo{
			Name:        name,
			Size:        uint64(len(obj.data)),
			ContentType: obj.contentType,
			ModTime:     obj.modTime,
		})
	}
	return objects, nil
}

func newTestService(t *testing.T) (*Service, *mockObjectStore) {
	t.Helper()

	store := newMockObjectStore()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, store
}

func TestService_Store(t *testing.T) {
	tests := []struct {
		name         string
		originalName string
		data         []byte
		contentType  string
		wantErr      error
	}{
		{
			name:         "valid jpeg",
			originalName: "photo.jpg",
			data:         []byte("jpeg-bytes"),
			contentType:  "image/jpeg",
		},
		{
			name:         "valid png without content type",
			originalName: "diagram.PNG",
			data:         []byte("png-bytes"),
		},
		{
			name:         "gif accepted",
			originalName: "anim.gif",
			data:         []byte("gif-bytes"),
			contentType:  "image/gif",
		},
		{
			name:         "rejects non-image extension",
			originalName: "script.exe",
			data:         []byte("binary"),
			contentType:  "application/octet-stream",
			wantErr:      ErrNotAnImage,
		},
		{
			name:         "rejects image extension with non-image content type",
			originalName: "fake.png",
			data:         []byte("not really"),
			contentType:  "text/html",
			wantErr:      ErrNotAnImage,
		},
		{
			name:         "rejects empty file",
			originalName: "empty.png",
			data:         nil,
			contentType:  "image/png",
			wantErr:      ErrEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			upload, err := svc.Store(context.Background(), tt.originalName, tt.data, tt.contentType)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Store() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Store() error = %v", err)
			}
			if upload.Name == "" {
				t.Error("Store() returned empty storage name")
			}
			if upload.Name == tt.originalName {
				t.Error("storage name must differ from the original name")
			}
			wantExt := strings.ToLower(tt.originalName[strings.LastIndex(tt.originalName, "."):])
			if !strings.HasSuffix(upload.Name, wantExt) {
				t.Errorf("storage name %q does not keep extension %q", upload.Name, wantExt)
			}
			if upload.Size != int64(len(tt.data)) {
				t.Errorf("Size = %d, want %d", upload.Size, len(tt.data))
			}
		})
	}
}

func TestService_Store_UniqueNames(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		upload, err := svc.Store(ctx, "same.png", []byte("data"), "image/png")
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if seen[upload.Name] {
			t.Fatalf("duplicate storage name %q", upload.Name)
		}
		seen[upload.Name] = true
	}
}

func TestService_FetchRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	stored, err := svc.Store(ctx, "cat.jpg", []byte("meow"), "image/jpeg")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	data, meta, err := svc.Fetch(ctx, stored.Name)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "meow" {
		t.Errorf("Fetch() data = %q, want %q", data, "meow")
	}
	if meta.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q, want image/jpeg", meta.ContentType)
	}

	if _, _, err := svc.Fetch(ctx, "missing.png"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrFileNotFound", err)
	}
}

func TestService_Remove(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	stored, err := svc.Store(ctx, "gone.png", []byte("bye"), "image/png")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if err := svc.Remove(ctx, stored.Name); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(store.objects) != 0 {
		t.Errorf("object still present after Remove()")
	}

	if err := svc.Remove(ctx, stored.Name); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("second Remove() error = %v, want ErrFileNotFound", err)
	}
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"a.png", "b.jpg"} {
		if _, err := svc.Store(ctx, name, []byte("img"), ""); err != nil {
			t.Fatalf("Store(%q) error = %v", name, err)
		}
	}

	uploads, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(uploads) != 2 {
		t.Errorf("len(uploads) = %d, want 2", len(uploads))
	}
}
