package media

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// NewMemoryRepository returns an in-memory reference store for tests and
// the no-database container configuration.
func NewMemoryRepository() MediaReferenceRepository {
	return &memoryRepository{records: map[uuid.UUID]*label.MediaReference{}}
}

type memoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.MediaReference
}

func (m *memoryRepository) GetByKey(_ context.Context, sectionID uuid.UUID, referencedObject string, inline bool) (*label.MediaReference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.SectionID == sectionID && record.ReferencedObject == referencedObject && record.Inline == inline {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "media_reference", Key: fmt.Sprintf("%s/%s/%v", sectionID, referencedObject, inline)}
}

func (m *memoryRepository) Create(_ context.Context, record *label.MediaReference) (*label.MediaReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.SectionID == record.SectionID && existing.ReferencedObject == record.ReferencedObject && existing.Inline == record.Inline {
			return nil, fmt.Errorf("media_reference: duplicate key %s/%s/%v", record.SectionID, record.ReferencedObject, record.Inline)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memoryRepository) ListBySection(_ context.Context, sectionID uuid.UUID) ([]*label.MediaReference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*label.MediaReference
	for _, record := range m.records {
		if record.SectionID == sectionID {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out, nil
}
