// Package document ingests a parsed SPL document: the header, the
// authoring organizations, the section tree, and the product data, with
// section bodies handed to the content resolver. Ingestion shares the
// insert-if-absent discipline of the content core, so re-ingesting the
// same document creates nothing.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/content"
	"github.com/goliatone/go-spl/internal/logging"
	"github.com/goliatone/go-spl/label"
	"github.com/goliatone/go-spl/pkg/interfaces"
)

// Service ingests parsed SPL documents.
type Service interface {
	IngestDocument(ctx context.Context, doc *etree.Document) (*IngestResult, error)
}

var (
	ErrDocumentRequired     = errors.New("document: parsed document is required")
	ErrNotSPLDocument       = errors.New("document: root element is not an SPL document")
	ErrSetIDRequired        = errors.New("document: setId is required")
	ErrContentRequired      = errors.New("document: content service is required")
	ErrRepositoriesRequired = errors.New("document: repositories are required")
)

// IngestError records a non-fatal failure on one branch of the ingest.
// Remaining sections and products are still processed.
type IngestError struct {
	Scope string
	Key   string
	Err   error
}

func (e IngestError) Error() string {
	return fmt.Sprintf("document: %s %s: %v", e.Scope, e.Key, e.Err)
}

func (e IngestError) Unwrap() error { return e.Err }

// IngestResult reports what one ingest run created. Re-ingesting the
// same document leaves every count at zero.
type IngestResult struct {
	Document        *label.Document
	DocumentCreated bool

	Organizations      int
	Authors            int
	Sections           int
	Products           int
	Ingredients        int
	PackagingItems     int
	BusinessOperations int

	Content content.EntityCounts
	Errors  []IngestError
}

func (r *IngestResult) addError(scope, key string, err error) {
	r.Errors = append(r.Errors, IngestError{Scope: scope, Key: key, Err: err})
}

// Total returns the number of records created across the header, the
// section tree, the product data, and the resolved content.
func (r *IngestResult) Total() int {
	total := r.Organizations + r.Authors + r.Sections + r.Products +
		r.Ingredients + r.PackagingItems + r.BusinessOperations +
		r.Content.Total()
	if r.DocumentCreated {
		total++
	}
	return total
}

// DocumentRepository persists document headers, keyed by set id plus
// version.
type DocumentRepository interface {
	GetBySetVersion(ctx context.Context, setID string, version int) (*label.Document, error)
	Create(ctx context.Context, record *label.Document) (*label.Document, error)
}

// OrganizationRepository persists organizations, keyed by id root.
type OrganizationRepository interface {
	GetByIDRoot(ctx context.Context, idRoot string) (*label.Organization, error)
	Create(ctx context.Context, record *label.Organization) (*label.Organization, error)
}

// DocumentAuthorRepository persists document-to-organization links.
type DocumentAuthorRepository interface {
	GetByLink(ctx context.Context, documentID, organizationID uuid.UUID, role string) (*label.DocumentAuthor, error)
	Create(ctx context.Context, record *label.DocumentAuthor) (*label.DocumentAuthor, error)
}

// SectionRepository persists sections, keyed by GUID.
type SectionRepository interface {
	GetByGUID(ctx context.Context, guid string) (*label.Section, error)
	Create(ctx context.Context, record *label.Section) (*label.Section, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*label.Section, error)
}

// ProductRepository persists products, keyed by section plus name.
type ProductRepository interface {
	GetByKey(ctx context.Context, sectionID uuid.UUID, name string) (*label.Product, error)
	Create(ctx context.Context, record *label.Product) (*label.Product, error)
}

// IngredientRepository persists ingredients, keyed by product plus
// sequence.
type IngredientRepository interface {
	GetByKey(ctx context.Context, productID uuid.UUID, sequence int) (*label.Ingredient, error)
	Create(ctx context.Context, record *label.Ingredient) (*label.Ingredient, error)
}

// PackagingRepository persists packaging levels, keyed by product plus
// sequence across the whole hierarchy.
type PackagingRepository interface {
	GetByKey(ctx context.Context, productID uuid.UUID, sequence int) (*label.PackagingItem, error)
	Create(ctx context.Context, record *label.PackagingItem) (*label.PackagingItem, error)
}

// BusinessOperationRepository persists operations, keyed by organization
// plus operation code.
type BusinessOperationRepository interface {
	GetByKey(ctx context.Context, organizationID uuid.UUID, code string) (*label.BusinessOperation, error)
	Create(ctx context.Context, record *label.BusinessOperation) (*label.BusinessOperation, error)
}

// Repositories bundles the storage dependencies of the ingest service.
type Repositories struct {
	Documents          DocumentRepository
	Organizations      OrganizationRepository
	Authors            DocumentAuthorRepository
	Sections           SectionRepository
	Products           ProductRepository
	Ingredients        IngredientRepository
	Packaging          PackagingRepository
	BusinessOperations BusinessOperationRepository
}

func (r Repositories) complete() bool {
	return r.Documents != nil && r.Organizations != nil && r.Authors != nil &&
		r.Sections != nil && r.Products != nil && r.Ingredients != nil &&
		r.Packaging != nil && r.BusinessOperations != nil
}

// ServiceOption customizes service construction.
type ServiceOption func(*service)

// WithLogger overrides the default no-op logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(next func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if next != nil {
			s.nextID = next
		}
	}
}

type service struct {
	repos   Repositories
	content content.Service
	logger  interfaces.Logger
	nextID  func() uuid.UUID
}

// NewService constructs the ingest service.
func NewService(repos Repositories, contentSvc content.Service, opts ...ServiceOption) (Service, error) {
	if !repos.complete() {
		return nil, ErrRepositoriesRequired
	}
	if contentSvc == nil {
		return nil, ErrContentRequired
	}
	svc := &service{
		repos:   repos,
		content: contentSvc,
		logger:  logging.NoOp(),
		nextID:  uuid.New,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}
