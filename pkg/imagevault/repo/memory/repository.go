// Package memory provides an in-memory metadata repository, primarily for
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tendant/image-vault/pkg/imagevault"
)

// Repository implements imagevault.Repository using in-memory storage. The
// mutex makes PutIfAbsent and DeleteIfPresent atomic with respect to
// concurrent calls on the same id.
type Repository struct {
	mu     sync.RWMutex
	images map[uuid.UUID]*imagevault.Image
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		images: make(map[uuid.UUID]*imagevault.Image),
	}
}

func (r *Repository) PutIfAbsent(ctx context.Context, image *imagevault.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.images[image.ID]; exists {
		return imagevault.ErrImageExists
	}

	// Store a copy to avoid external modifications
	imageCopy := *image
	r.images[image.ID] = &imageCopy
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*imagevault.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	image, exists := r.images[id]
	if !exists {
		return nil, imagevault.ErrImageNotFound
	}

	imageCopy := *image
	return &imageCopy, nil
}

func (r *Repository) DeleteIfPresent(ctx context.Context, id uuid.UUID) (*imagevault.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	image, exists := r.images[id]
	if !exists {
		return nil, imagevault.ErrImageNotFound
	}

	delete(r.images, id)
	imageCopy := *image
	return &imageCopy, nil
}

func (r *Repository) QueryByOwner(ctx context.Context, ownerID string, limit int) ([]*imagevault.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*imagevault.Image
	for _, image := range r.images {
		if image.OwnerID == ownerID {
			imageCopy := *image
			result = append(result, &imageCopy)
		}
	}

	// Newest first; ties break on id so the order is stable.
	sort.Slice(result, func(i, j int) bool {
		if result[i].UploadedAt != result[j].UploadedAt {
			return result[i].UploadedAt > result[j].UploadedAt
		}
		return result[i].ID.String() > result[j].ID.String()
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// EnumerateAll walks the whole corpus with no ordering guarantee. This is
// the expensive fallback path.
func (r *Repository) EnumerateAll(ctx context.Context) ([]*imagevault.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*imagevault.Image, 0, len(r.images))
	for _, image := range r.images {
		imageCopy := *image
		result = append(result, &imageCopy)
	}
	return result, nil
}
