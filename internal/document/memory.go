package document

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// NewMemoryRepositories returns a fully in-memory repository set for
// tests and the no-database container configuration.
func NewMemoryRepositories() Repositories {
	return Repositories{
		Documents:          &memoryDocuments{records: map[uuid.UUID]*label.Document{}},
		Organizations:      &memoryOrganizations{records: map[uuid.UUID]*label.Organization{}},
		Authors:            &memoryAuthors{records: map[uuid.UUID]*label.DocumentAuthor{}},
		Sections:           &memorySections{records: map[uuid.UUID]*label.Section{}},
		Products:           &memoryProducts{records: map[uuid.UUID]*label.Product{}},
		Ingredients:        &memoryIngredients{records: map[uuid.UUID]*label.Ingredient{}},
		Packaging:          &memoryPackaging{records: map[uuid.UUID]*label.PackagingItem{}},
		BusinessOperations: &memoryOperations{records: map[uuid.UUID]*label.BusinessOperation{}},
	}
}

type memoryDocuments struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.Document
}

func (m *memoryDocuments) GetBySetVersion(_ context.Context, setID string, version int) (*label.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.SetID == setID && record.VersionNumber == version {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "document", Key: fmt.Sprintf("%s/v%d", setID, version)}
}

func (m *memoryDocuments) Create(_ context.Context, record *label.Document) (*label.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.SetID == record.SetID && existing.VersionNumber == record.VersionNumber {
			return nil, fmt.Errorf("document: duplicate key %s/v%d", record.SetID, record.VersionNumber)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryOrganizations struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.Organization
}

func (m *memoryOrganizations) GetByIDRoot(_ context.Context, idRoot string) (*label.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.IDRoot == idRoot {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "organization", Key: idRoot}
}

func (m *memoryOrganizations) Create(_ context.Context, record *label.Organization) (*label.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.IDRoot == record.IDRoot {
			return nil, fmt.Errorf("organization: duplicate id root %s", record.IDRoot)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryAuthors struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.DocumentAuthor
}

func (m *memoryAuthors) GetByLink(_ context.Context, documentID, organizationID uuid.UUID, role string) (*label.DocumentAuthor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.DocumentID == documentID && record.OrganizationID == organizationID && record.Role == role {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "document_author", Key: fmt.Sprintf("%s/%s/%s", documentID, organizationID, role)}
}

func (m *memoryAuthors) Create(_ context.Context, record *label.DocumentAuthor) (*label.DocumentAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.DocumentID == record.DocumentID && existing.OrganizationID == record.OrganizationID && existing.Role == record.Role {
			return nil, fmt.Errorf("document_author: duplicate link")
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memorySections struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.Section
}

func (m *memorySections) GetByGUID(_ context.Context, guid string) (*label.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.GUID == guid {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "section", Key: guid}
}

func (m *memorySections) Create(_ context.Context, record *label.Section) (*label.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.GUID == record.GUID {
			return nil, fmt.Errorf("section: duplicate guid %s", record.GUID)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memorySections) ListByDocument(_ context.Context, documentID uuid.UUID) ([]*label.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*label.Section
	for _, record := range m.records {
		if record.DocumentID == documentID {
			clone := *record
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

type memoryProducts struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.Product
}

func (m *memoryProducts) GetByKey(_ context.Context, sectionID uuid.UUID, name string) (*label.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.SectionID == sectionID && record.Name == name {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "product", Key: fmt.Sprintf("%s/%s", sectionID, name)}
}

func (m *memoryProducts) Create(_ context.Context, record *label.Product) (*label.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.SectionID == record.SectionID && existing.Name == record.Name {
			return nil, fmt.Errorf("product: duplicate key %s/%s", record.SectionID, record.Name)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryIngredients struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.Ingredient
}

func (m *memoryIngredients) GetByKey(_ context.Context, productID uuid.UUID, sequence int) (*label.Ingredient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.ProductID == productID && record.Sequence == sequence {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "ingredient", Key: fmt.Sprintf("%s/%d", productID, sequence)}
}

func (m *memoryIngredients) Create(_ context.Context, record *label.Ingredient) (*label.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.ProductID == record.ProductID && existing.Sequence == record.Sequence {
			return nil, fmt.Errorf("ingredient: duplicate key %s/%d", record.ProductID, record.Sequence)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryPackaging struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.PackagingItem
}

func (m *memoryPackaging) GetByKey(_ context.Context, productID uuid.UUID, sequence int) (*label.PackagingItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.ProductID == productID && record.Sequence == sequence {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "packaging_item", Key: fmt.Sprintf("%s/%d", productID, sequence)}
}

func (m *memoryPackaging) Create(_ context.Context, record *label.PackagingItem) (*label.PackagingItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.ProductID == record.ProductID && existing.Sequence == record.Sequence {
			return nil, fmt.Errorf("packaging_item: duplicate key %s/%d", record.ProductID, record.Sequence)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryOperations struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.BusinessOperation
}

func (m *memoryOperations) GetByKey(_ context.Context, organizationID uuid.UUID, code string) (*label.BusinessOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.OrganizationID == organizationID && record.Code == code {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "business_operation", Key: fmt.Sprintf("%s/%s", organizationID, code)}
}

func (m *memoryOperations) Create(_ context.Context, record *label.BusinessOperation) (*label.BusinessOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.OrganizationID == record.OrganizationID && existing.Code == record.Code {
			return nil, fmt.Errorf("business_operation: duplicate key %s/%s", record.OrganizationID, record.Code)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}
