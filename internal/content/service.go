// Package content implements the recursive content-block resolution
// engine: it walks a section's marked-up body, classifies each block,
// idempotently materializes a content node for it, and dispatches to the
// list, table, and excerpt elaborators, recursing into nested blocks.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/logging"
	"github.com/goliatone/go-spl/label"
	"github.com/goliatone/go-spl/pkg/interfaces"
)

// Service exposes section content resolution.
type Service interface {
	ResolveSection(ctx context.Context, input ResolveSectionInput) (*ResolveResult, error)
}

// ResolveSectionInput carries the owning section id and the container to
// resolve. Body may be the section element itself (its text body and
// direct excerpts are located automatically) or any block container.
type ResolveSectionInput struct {
	SectionID uuid.UUID
	Body      *etree.Element
}

// EntityCounts tallies records created during one resolution run. A
// re-run over identical input leaves every count at zero.
type EntityCounts struct {
	ContentNodes    int `json:"content_nodes"`
	ListNodes       int `json:"list_nodes"`
	ListItems       int `json:"list_items"`
	TableNodes      int `json:"table_nodes"`
	TableColumns    int `json:"table_columns"`
	TableRows       int `json:"table_rows"`
	TableCells      int `json:"table_cells"`
	Highlights      int `json:"highlights"`
	MediaReferences int `json:"media_references"`
}

// Add accumulates another run's counts.
func (c *EntityCounts) Add(other EntityCounts) {
	c.ContentNodes += other.ContentNodes
	c.ListNodes += other.ListNodes
	c.ListItems += other.ListItems
	c.TableNodes += other.TableNodes
	c.TableColumns += other.TableColumns
	c.TableRows += other.TableRows
	c.TableCells += other.TableCells
	c.Highlights += other.Highlights
	c.MediaReferences += other.MediaReferences
}

// Total returns the number of records created across all entity kinds.
func (c EntityCounts) Total() int {
	return c.ContentNodes + c.ListNodes + c.ListItems + c.TableNodes +
		c.TableColumns + c.TableRows + c.TableCells + c.Highlights +
		c.MediaReferences
}

// ResolveError records a non-fatal failure on one branch of the content
// tree. Siblings of the failed branch are still processed.
type ResolveError struct {
	BlockType label.BlockType
	Sequence  int
	Err       error
}

func (e ResolveError) Error() string {
	return fmt.Sprintf("content: block %s #%d: %v", e.BlockType, e.Sequence, e.Err)
}

func (e ResolveError) Unwrap() error { return e.Err }

// ResolveResult aggregates created-entity counts and the non-fatal
// errors collected along the way. Partial success is the expected
// outcome, not an exceptional one.
type ResolveResult struct {
	Counts EntityCounts
	Errors []ResolveError
}

func (r *ResolveResult) addError(blockType label.BlockType, sequence int, err error) {
	r.Errors = append(r.Errors, ResolveError{BlockType: blockType, Sequence: sequence, Err: err})
}

// Merge folds another result into this one.
func (r *ResolveResult) Merge(other *ResolveResult) {
	if other == nil {
		return
	}
	r.Counts.Add(other.Counts)
	r.Errors = append(r.Errors, other.Errors...)
}

var (
	ErrSectionIDRequired    = errors.New("content: section id is required")
	ErrBodyRequired         = errors.New("content: body element is required")
	ErrRepositoriesRequired = errors.New("content: repositories are required")
)

// ContentNodeKey is the composite lookup key for a content node. The
// content hash participates only for leaf types; container nodes carry
// no raw text.
type ContentNodeKey struct {
	SectionID   uuid.UUID
	ParentID    *uuid.UUID
	BlockType   label.BlockType
	Sequence    int
	ContentHash *string
}

// ContentNodeRepository persists content nodes.
type ContentNodeRepository interface {
	GetByKey(ctx context.Context, key ContentNodeKey) (*label.ContentNode, error)
	Create(ctx context.Context, record *label.ContentNode) (*label.ContentNode, error)
	ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*label.ContentNode, error)
}

// ListNodeRepository persists list detail records.
type ListNodeRepository interface {
	GetByContentNode(ctx context.Context, contentNodeID uuid.UUID) (*label.ListNode, error)
	Create(ctx context.Context, record *label.ListNode) (*label.ListNode, error)
}

// ListItemRepository persists list items.
type ListItemRepository interface {
	GetByKey(ctx context.Context, listNodeID uuid.UUID, sequence int) (*label.ListItem, error)
	Create(ctx context.Context, record *label.ListItem) (*label.ListItem, error)
	ListByListNode(ctx context.Context, listNodeID uuid.UUID) ([]*label.ListItem, error)
}

// TableNodeRepository persists table detail records.
type TableNodeRepository interface {
	GetByContentNode(ctx context.Context, contentNodeID uuid.UUID) (*label.TableNode, error)
	Create(ctx context.Context, record *label.TableNode) (*label.TableNode, error)
}

// TableColumnRepository persists table columns.
type TableColumnRepository interface {
	GetByKey(ctx context.Context, tableNodeID uuid.UUID, sequence int) (*label.TableColumn, error)
	Create(ctx context.Context, record *label.TableColumn) (*label.TableColumn, error)
	ListByTable(ctx context.Context, tableNodeID uuid.UUID) ([]*label.TableColumn, error)
}

// TableRowRepository persists table rows.
type TableRowRepository interface {
	GetByKey(ctx context.Context, tableNodeID uuid.UUID, group label.RowGroup, sequence int) (*label.TableRow, error)
	Create(ctx context.Context, record *label.TableRow) (*label.TableRow, error)
}

// TableCellRepository persists table cells.
type TableCellRepository interface {
	GetByKey(ctx context.Context, tableRowID uuid.UUID, sequence int) (*label.TableCell, error)
	Create(ctx context.Context, record *label.TableCell) (*label.TableCell, error)
}

// ExcerptHighlightRepository persists highlighted passages, deduplicated
// by exact serialized markup.
type ExcerptHighlightRepository interface {
	GetByMarkupHash(ctx context.Context, sectionID uuid.UUID, markupHash string) (*label.ExcerptHighlight, error)
	Create(ctx context.Context, record *label.ExcerptHighlight) (*label.ExcerptHighlight, error)
}

// Repositories bundles the storage dependencies of the resolver.
type Repositories struct {
	ContentNodes ContentNodeRepository
	ListNodes    ListNodeRepository
	ListItems    ListItemRepository
	TableNodes   TableNodeRepository
	TableColumns TableColumnRepository
	TableRows    TableRowRepository
	TableCells   TableCellRepository
	Highlights   ExcerptHighlightRepository
}

func (r Repositories) complete() bool {
	return r.ContentNodes != nil && r.ListNodes != nil && r.ListItems != nil &&
		r.TableNodes != nil && r.TableColumns != nil && r.TableRows != nil &&
		r.TableCells != nil && r.Highlights != nil
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

// WithMediaResolver supplies the external media collaborator.
func WithMediaResolver(resolver interfaces.MediaResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.media = resolver
		}
	}
}

// WithIDGenerator overrides record id generation, which tests use for
// deterministic ids.
func WithIDGenerator(next func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if next != nil {
			s.nextID = next
		}
	}
}

type service struct {
	repos  Repositories
	media  interfaces.MediaResolver
	logger interfaces.Logger
	nextID func() uuid.UUID
}

// NewService constructs the resolver. Missing repositories are a setup
// error and fail construction immediately; document-shape problems never
// do.
func NewService(repos Repositories, opts ...ServiceOption) (Service, error) {
	if !repos.complete() {
		return nil, ErrRepositoriesRequired
	}
	svc := &service{
		repos:  repos,
		media:  noMedia{},
		logger: logging.NoOp(),
		nextID: uuid.New,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// noMedia satisfies the media contract for callers that disabled media
// resolution.
type noMedia struct{}

func (noMedia) ResolveMedia(context.Context, interfaces.MediaResolveInput) (int, error) {
	return 0, nil
}

// hashMarkup produces the content signature used in leaf lookup keys and
// highlight deduplication.
func hashMarkup(markup string) string {
	sum := sha256.Sum256([]byte(markup))
	return hex.EncodeToString(sum[:])
}
