package media

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// NewBunRepository wires the reference store to a bun database through
// go-repository-bun. Lookup misses normalize to store.NotFoundError.
func NewBunRepository(db *bun.DB) MediaReferenceRepository {
	return &bunRepository{repo: NewMediaReferenceRecordRepository(db)}
}

type bunRepository struct {
	repo repository.Repository[*label.MediaReference]
}

func (r *bunRepository) GetByKey(ctx context.Context, sectionID uuid.UUID, referencedObject string, inline bool) (*label.MediaReference, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.section_id = ?", sectionID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.referenced_object = ?", referencedObject)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.inline = ?", inline)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("media_reference: query: %w", err)
	}
	if len(records) == 0 {
		return nil, &store.NotFoundError{
			Resource: "media_reference",
			Key:      fmt.Sprintf("%s/%s/%v", sectionID, referencedObject, inline),
		}
	}
	return records[0], nil
}

func (r *bunRepository) Create(ctx context.Context, record *label.MediaReference) (*label.MediaReference, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("media_reference: insert: %w", err)
	}
	return created, nil
}

func (r *bunRepository) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*label.MediaReference, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.section_id = ?", sectionID)
	}))
	if err != nil {
		return nil, fmt.Errorf("media_reference: list: %w", err)
	}
	return records, nil
}
