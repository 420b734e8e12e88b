// internal/services/memory_image_store.go
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/unique-collection/catalog/internal/models"
)

// MemoryImageStore keeps image metadata in process. It backs local
// development and tests.
type MemoryImageStore struct {
	mu      sync.RWMutex
	objects map[string]int
	baseURL string
	seq     int
}

func NewMemoryImageStore(baseURL string) *MemoryImageStore {
	if baseURL == "" {
		baseURL = "http://localhost/media"
	}
	return &MemoryImageStore{
		objects: make(map[string]int),
		baseURL: baseURL,
	}
}

func (s *MemoryImageStore) Upload(_ context.Context, image ImageUpload) (models.AssetRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	key := fmt.Sprintf("memory/%d-%s", s.seq, image.Filename)
	s.objects[key] = len(image.Data)

	return models.AssetRef{Key: key, URL: fmt.Sprintf("%s/%s", s.baseURL, key)}, nil
}

func (s *MemoryImageStore) Delete(_ context.Context, ref models.AssetRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[ref.Key]; !exists {
		return fmt.Errorf("file not found: %s", ref.Key)
	}

	delete(s.objects, ref.Key)
	return nil
}

func (s *MemoryImageStore) TransformURL(ref models.AssetRef, _ TransformOptions) string {
	return ref.URL
}

// Has reports whether key is currently stored.
func (s *MemoryImageStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[key]
	return ok
}

func (s *MemoryImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
