package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// NewBunRepositories wires the repository set to a bun database. The
// GUID-keyed entities ride go-repository-bun; the composite-key entities
// query bun directly. Both normalize misses to store.NotFoundError.
func NewBunRepositories(db *bun.DB) Repositories {
	return Repositories{
		Documents:          &bunDocuments{db: db, repo: NewDocumentRecordRepository(db)},
		Organizations:      &bunOrganizations{repo: NewOrganizationRecordRepository(db)},
		Authors:            &bunAuthors{db: db},
		Sections:           &bunSections{db: db, repo: NewSectionRecordRepository(db)},
		Products:           &bunProducts{db: db},
		Ingredients:        &bunIngredients{db: db},
		Packaging:          &bunPackaging{db: db},
		BusinessOperations: &bunOperations{db: db},
	}
}

func mapRepositoryError(err error, resource, key string) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &store.NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func mapScanError(err error, resource, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &store.NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s: query: %w", resource, err)
}

type bunDocuments struct {
	db   *bun.DB
	repo repository.Repository[*label.Document]
}

func (r *bunDocuments) GetBySetVersion(ctx context.Context, setID string, version int) (*label.Document, error) {
	record := new(label.Document)
	err := r.db.NewSelect().Model(record).
		Where("d.set_id = ?", setID).
		Where("d.version_number = ?", version).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "document", fmt.Sprintf("%s/v%d", setID, version))
	}
	return record, nil
}

func (r *bunDocuments) Create(ctx context.Context, record *label.Document) (*label.Document, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("document: insert: %w", err)
	}
	return created, nil
}

type bunOrganizations struct {
	repo repository.Repository[*label.Organization]
}

func (r *bunOrganizations) GetByIDRoot(ctx context.Context, idRoot string) (*label.Organization, error) {
	record, err := r.repo.GetByIdentifier(ctx, idRoot)
	if err != nil {
		return nil, mapRepositoryError(err, "organization", idRoot)
	}
	return record, nil
}

func (r *bunOrganizations) Create(ctx context.Context, record *label.Organization) (*label.Organization, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("organization: insert: %w", err)
	}
	return created, nil
}

type bunAuthors struct {
	db *bun.DB
}

func (r *bunAuthors) GetByLink(ctx context.Context, documentID, organizationID uuid.UUID, role string) (*label.DocumentAuthor, error) {
	record := new(label.DocumentAuthor)
	err := r.db.NewSelect().Model(record).
		Where("da.document_id = ?", documentID).
		Where("da.organization_id = ?", organizationID).
		Where("da.role = ?", role).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "document_author", fmt.Sprintf("%s/%s/%s", documentID, organizationID, role))
	}
	return record, nil
}

func (r *bunAuthors) Create(ctx context.Context, record *label.DocumentAuthor) (*label.DocumentAuthor, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("document_author: insert: %w", err)
	}
	return record, nil
}

type bunSections struct {
	db   *bun.DB
	repo repository.Repository[*label.Section]
}

func (r *bunSections) GetByGUID(ctx context.Context, guid string) (*label.Section, error) {
	record, err := r.repo.GetByIdentifier(ctx, guid)
	if err != nil {
		return nil, mapRepositoryError(err, "section", guid)
	}
	return record, nil
}

func (r *bunSections) Create(ctx context.Context, record *label.Section) (*label.Section, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("section: insert: %w", err)
	}
	return created, nil
}

func (r *bunSections) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*label.Section, error) {
	var records []*label.Section
	err := r.db.NewSelect().Model(&records).
		Where("s.document_id = ?", documentID).
		Order("s.sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("section: list: %w", err)
	}
	return records, nil
}

type bunProducts struct {
	db *bun.DB
}

func (r *bunProducts) GetByKey(ctx context.Context, sectionID uuid.UUID, name string) (*label.Product, error) {
	record := new(label.Product)
	err := r.db.NewSelect().Model(record).
		Where("p.section_id = ?", sectionID).
		Where("p.name = ?", name).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "product", fmt.Sprintf("%s/%s", sectionID, name))
	}
	return record, nil
}

func (r *bunProducts) Create(ctx context.Context, record *label.Product) (*label.Product, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("product: insert: %w", err)
	}
	return record, nil
}

type bunIngredients struct {
	db *bun.DB
}

func (r *bunIngredients) GetByKey(ctx context.Context, productID uuid.UUID, sequence int) (*label.Ingredient, error) {
	record := new(label.Ingredient)
	err := r.db.NewSelect().Model(record).
		Where("i.product_id = ?", productID).
		Where("i.sequence = ?", sequence).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "ingredient", fmt.Sprintf("%s/%d", productID, sequence))
	}
	return record, nil
}

func (r *bunIngredients) Create(ctx context.Context, record *label.Ingredient) (*label.Ingredient, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("ingredient: insert: %w", err)
	}
	return record, nil
}

type bunPackaging struct {
	db *bun.DB
}

func (r *bunPackaging) GetByKey(ctx context.Context, productID uuid.UUID, sequence int) (*label.PackagingItem, error) {
	record := new(label.PackagingItem)
	err := r.db.NewSelect().Model(record).
		Where("pi.product_id = ?", productID).
		Where("pi.sequence = ?", sequence).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "packaging_item", fmt.Sprintf("%s/%d", productID, sequence))
	}
	return record, nil
}

func (r *bunPackaging) Create(ctx context.Context, record *label.PackagingItem) (*label.PackagingItem, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("packaging_item: insert: %w", err)
	}
	return record, nil
}

type bunOperations struct {
	db *bun.DB
}

func (r *bunOperations) GetByKey(ctx context.Context, organizationID uuid.UUID, code string) (*label.BusinessOperation, error) {
	record := new(label.BusinessOperation)
	err := r.db.NewSelect().Model(record).
		Where("bo.organization_id = ?", organizationID).
		Where("bo.code = ?", code).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "business_operation", fmt.Sprintf("%s/%s", organizationID, code))
	}
	return record, nil
}

func (r *bunOperations) Create(ctx context.Context, record *label.BusinessOperation) (*label.BusinessOperation, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("business_operation: insert: %w", err)
	}
	return record, nil
}
