package content

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

// NewBunRepositories wires the repository set to a bun database. Writes
// and single-identifier lookups ride go-repository-bun; the composite-key
// selects query bun directly. Both normalize misses to
// store.NotFoundError so GetOrCreate treats the SQL and memory backends
// identically.
func NewBunRepositories(db *bun.DB) Repositories {
	return Repositories{
		ContentNodes: &bunContentNodes{db: db, repo: NewContentNodeRecordRepository(db)},
		ListNodes:    &bunListNodes{repo: NewListNodeRecordRepository(db)},
		ListItems:    &bunListItems{db: db, repo: NewListItemRecordRepository(db)},
		TableNodes:   &bunTableNodes{repo: NewTableNodeRecordRepository(db)},
		TableColumns: &bunTableColumns{db: db, repo: NewTableColumnRecordRepository(db)},
		TableRows:    &bunTableRows{db: db, repo: NewTableRowRecordRepository(db)},
		TableCells:   &bunTableCells{db: db, repo: NewTableCellRecordRepository(db)},
		Highlights:   &bunHighlights{repo: NewHighlightRecordRepository(db)},
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

type bunContentNodes struct {
	db   *bun.DB
	repo repository.Repository[*label.ContentNode]
}

func (r *bunContentNodes) GetByKey(ctx context.Context, key ContentNodeKey) (*label.ContentNode, error) {
	record := new(label.ContentNode)
	q := r.db.NewSelect().Model(record).
		Where("cn.section_id = ?", key.SectionID).
		Where("cn.block_type = ?", key.BlockType).
		Where("cn.sequence = ?", key.Sequence)
	if key.ParentID != nil {
		q = q.Where("cn.parent_id = ?", *key.ParentID)
	} else {
		q = q.Where("cn.parent_id IS NULL")
	}
	if key.ContentHash != nil {
		q = q.Where("cn.content_hash = ?", *key.ContentHash)
	} else {
		q = q.Where("cn.content_hash IS NULL")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, mapScanError(err, "content_node", fmt.Sprintf("%s/%s/%d", key.SectionID, key.BlockType, key.Sequence))
	}
	return record, nil
}

func (r *bunContentNodes) Create(ctx context.Context, record *label.ContentNode) (*label.ContentNode, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("content_node: insert: %w", err)
	}
	return created, nil
}

func (r *bunContentNodes) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*label.ContentNode, error) {
	var records []*label.ContentNode
	err := r.db.NewSelect().Model(&records).
		Where("cn.section_id = ?", sectionID).
		Order("cn.sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("content_node: list: %w", err)
	}
	return records, nil
}

type bunListNodes struct {
	repo repository.Repository[*label.ListNode]
}

func (r *bunListNodes) GetByContentNode(ctx context.Context, contentNodeID uuid.UUID) (*label.ListNode, error) {
	record, err := r.repo.GetByIdentifier(ctx, contentNodeID.String())
	if err != nil {
		return nil, mapRepositoryError(err, "list_node", contentNodeID.String())
	}
	return record, nil
}

func (r *bunListNodes) Create(ctx context.Context, record *label.ListNode) (*label.ListNode, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("list_node: insert: %w", err)
	}
	return created, nil
}

type bunListItems struct {
	db   *bun.DB
	repo repository.Repository[*label.ListItem]
}

func (r *bunListItems) GetByKey(ctx context.Context, listNodeID uuid.UUID, sequence int) (*label.ListItem, error) {
	record := new(label.ListItem)
	err := r.db.NewSelect().Model(record).
		Where("li.list_node_id = ?", listNodeID).
		Where("li.sequence = ?", sequence).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "list_item", fmt.Sprintf("%s/%d", listNodeID, sequence))
	}
	return record, nil
}

func (r *bunListItems) Create(ctx context.Context, record *label.ListItem) (*label.ListItem, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("list_item: insert: %w", err)
	}
	return created, nil
}

func (r *bunListItems) ListByListNode(ctx context.Context, listNodeID uuid.UUID) ([]*label.ListItem, error) {
	var records []*label.ListItem
	err := r.db.NewSelect().Model(&records).
		Where("li.list_node_id = ?", listNodeID).
		Order("li.sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_item: list: %w", err)
	}
	return records, nil
}

type bunTableNodes struct {
	repo repository.Repository[*label.TableNode]
}

func (r *bunTableNodes) GetByContentNode(ctx context.Context, contentNodeID uuid.UUID) (*label.TableNode, error) {
	record, err := r.repo.GetByIdentifier(ctx, contentNodeID.String())
	if err != nil {
		return nil, mapRepositoryError(err, "table_node", contentNodeID.String())
	}
	return record, nil
}

func (r *bunTableNodes) Create(ctx context.Context, record *label.TableNode) (*label.TableNode, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("table_node: insert: %w", err)
	}
	return created, nil
}

type bunTableColumns struct {
	db   *bun.DB
	repo repository.Repository[*label.TableColumn]
}

func (r *bunTableColumns) GetByKey(ctx context.Context, tableNodeID uuid.UUID, sequence int) (*label.TableColumn, error) {
	record := new(label.TableColumn)
	err := r.db.NewSelect().Model(record).
		Where("tc.table_node_id = ?", tableNodeID).
		Where("tc.sequence = ?", sequence).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "table_column", fmt.Sprintf("%s/%d", tableNodeID, sequence))
	}
	return record, nil
}

func (r *bunTableColumns) Create(ctx context.Context, record *label.TableColumn) (*label.TableColumn, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("table_column: insert: %w", err)
	}
	return created, nil
}

func (r *bunTableColumns) ListByTable(ctx context.Context, tableNodeID uuid.UUID) ([]*label.TableColumn, error) {
	var records []*label.TableColumn
	err := r.db.NewSelect().Model(&records).
		Where("tc.table_node_id = ?", tableNodeID).
		Order("tc.sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("table_column: list: %w", err)
	}
	return records, nil
}

type bunTableRows struct {
	db   *bun.DB
	repo repository.Repository[*label.TableRow]
}

func (r *bunTableRows) GetByKey(ctx context.Context, tableNodeID uuid.UUID, group label.RowGroup, sequence int) (*label.TableRow, error) {
	record := new(label.TableRow)
	err := r.db.NewSelect().Model(record).
		Where("tr.table_node_id = ?", tableNodeID).
		Where("tr.row_group = ?", group).
		Where("tr.sequence = ?", sequence).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "table_row", fmt.Sprintf("%s/%s/%d", tableNodeID, group, sequence))
	}
	return record, nil
}

func (r *bunTableRows) Create(ctx context.Context, record *label.TableRow) (*label.TableRow, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("table_row: insert: %w", err)
	}
	return created, nil
}

type bunTableCells struct {
	db   *bun.DB
	repo repository.Repository[*label.TableCell]
}

func (r *bunTableCells) GetByKey(ctx context.Context, tableRowID uuid.UUID, sequence int) (*label.TableCell, error) {
	record := new(label.TableCell)
	err := r.db.NewSelect().Model(record).
		Where("td.table_row_id = ?", tableRowID).
		Where("td.sequence = ?", sequence).
		Scan(ctx)
	if err != nil {
		return nil, mapScanError(err, "table_cell", fmt.Sprintf("%s/%d", tableRowID, sequence))
	}
	return record, nil
}

func (r *bunTableCells) Create(ctx context.Context, record *label.TableCell) (*label.TableCell, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("table_cell: insert: %w", err)
	}
	return created, nil
}

type bunHighlights struct {
	repo repository.Repository[*label.ExcerptHighlight]
}

func (r *bunHighlights) GetByMarkupHash(ctx context.Context, sectionID uuid.UUID, markupHash string) (*label.ExcerptHighlight, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.section_id = ?", sectionID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.markup_hash = ?", markupHash)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("excerpt_highlight: query: %w", err)
	}
	if len(records) == 0 {
		return nil, &store.NotFoundError{Resource: "excerpt_highlight", Key: fmt.Sprintf("%s/%s", sectionID, markupHash)}
	}
	return records[0], nil
}

func (r *bunHighlights) Create(ctx context.Context, record *label.ExcerptHighlight) (*label.ExcerptHighlight, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("excerpt_highlight: insert: %w", err)
	}
	return created, nil
}
