// Package media resolves renderMultiMedia placeholders into persisted
// media references. The content resolver treats this package as an
// opaque collaborator behind interfaces.MediaResolver.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/logging"
	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
	"github.com/goliatone/go-spl/pkg/interfaces"
)

// ErrRepositoryRequired rejects construction without storage.
var ErrRepositoryRequired = errors.New("media: repository is required")

// MediaReferenceRepository persists resolved placeholders. References
// are unique per (section, referenced object, inline).
type MediaReferenceRepository interface {
	GetByKey(ctx context.Context, sectionID uuid.UUID, referencedObject string, inline bool) (*label.MediaReference, error)
	Create(ctx context.Context, record *label.MediaReference) (*label.MediaReference, error)
	ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*label.MediaReference, error)
}

// ResolverOption customizes resolver construction.
type ResolverOption func(*recordingResolver)

// WithLogger overrides the default no-op logger.
func WithLogger(logger interfaces.Logger) ResolverOption {
	return func(r *recordingResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(next func() uuid.UUID) ResolverOption {
	return func(r *recordingResolver) {
		if next != nil {
			r.nextID = next
		}
	}
}

type recordingResolver struct {
	repo   MediaReferenceRepository
	logger interfaces.Logger
	nextID func() uuid.UUID
}

// NewResolver returns a resolver that records one media reference per
// unique placeholder. Re-resolving an already recorded placeholder
// attaches nothing and reports zero.
func NewResolver(repo MediaReferenceRepository, opts ...ResolverOption) (interfaces.MediaResolver, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	r := &recordingResolver{
		repo:   repo,
		logger: logging.NoOp(),
		nextID: uuid.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *recordingResolver) ResolveMedia(ctx context.Context, input interfaces.MediaResolveInput) (int, error) {
	if input.SectionID == uuid.Nil {
		return 0, errors.New("media: section id is required")
	}
	if input.ReferencedObject == "" {
		return 0, errors.New("media: referenced object is required")
	}

	_, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.MediaReference, error) {
			return r.repo.GetByKey(ctx, input.SectionID, input.ReferencedObject, input.Inline)
		},
		func(ctx context.Context) (*label.MediaReference, error) {
			return r.repo.Create(ctx, &label.MediaReference{
				ID:               r.nextID(),
				SectionID:        input.SectionID,
				ContentNodeID:    input.ContentNodeID,
				ReferencedObject: input.ReferencedObject,
				MediaType:        input.MediaType,
				Inline:           input.Inline,
			})
		},
	)
	if err != nil {
		return 0, fmt.Errorf("media: resolve %s: %w", input.ReferencedObject, err)
	}
	if !created {
		return 0, nil
	}

	r.logger.Debug("media reference recorded",
		"section_id", input.SectionID,
		"referenced_object", input.ReferencedObject,
		"inline", input.Inline)
	return 1, nil
}

// NoopResolver satisfies the media contract without persisting anything.
// The container uses it when media resolution is disabled.
type NoopResolver struct{}

func (NoopResolver) ResolveMedia(context.Context, interfaces.MediaResolveInput) (int, error) {
	return 0, nil
}
