package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-spl/label"
)

// models lists every persisted entity in dependency order.
var models = []any{
	(*label.Document)(nil),
	(*label.Organization)(nil),
	(*label.DocumentAuthor)(nil),
	(*label.Section)(nil),
	(*label.ContentNode)(nil),
	(*label.ListNode)(nil),
	(*label.ListItem)(nil),
	(*label.TableNode)(nil),
	(*label.TableColumn)(nil),
	(*label.TableRow)(nil),
	(*label.TableCell)(nil),
	(*label.ExcerptHighlight)(nil),
	(*label.MediaReference)(nil),
	(*label.Product)(nil),
	(*label.Ingredient)(nil),
	(*label.PackagingItem)(nil),
	(*label.BusinessOperation)(nil),
}

// uniqueIndexes declares the composite keys that make creation
// idempotent. They back the conflict re-read path in GetOrCreate when
// the same document is parsed concurrently.
var uniqueIndexes = []struct {
	name    string
	model   any
	columns []string
	expr    string
}{
	{name: "ux_documents_set_version", model: (*label.Document)(nil), columns: []string{"set_id", "version_number"}},
	{name: "ux_organizations_id_root", model: (*label.Organization)(nil), columns: []string{"id_root"}},
	{name: "ux_document_authors_link", model: (*label.DocumentAuthor)(nil), columns: []string{"document_id", "organization_id", "role"}},
	{name: "ux_sections_guid", model: (*label.Section)(nil), columns: []string{"guid"}},
	// parent_id is NULL for top-level nodes and NULLs are distinct in
	// unique indexes, so the key coalesces it to a sentinel.
	{
		name:  "ux_content_nodes_key",
		model: (*label.ContentNode)(nil),
		expr:  "section_id, coalesce(parent_id, '00000000-0000-0000-0000-000000000000'), block_type, sequence",
	},
	{name: "ux_list_nodes_content_node", model: (*label.ListNode)(nil), columns: []string{"content_node_id"}},
	{name: "ux_list_items_key", model: (*label.ListItem)(nil), columns: []string{"list_node_id", "sequence"}},
	{name: "ux_table_nodes_content_node", model: (*label.TableNode)(nil), columns: []string{"content_node_id"}},
	{name: "ux_table_columns_key", model: (*label.TableColumn)(nil), columns: []string{"table_node_id", "sequence"}},
	{name: "ux_table_rows_key", model: (*label.TableRow)(nil), columns: []string{"table_node_id", "row_group", "sequence"}},
	{name: "ux_table_cells_key", model: (*label.TableCell)(nil), columns: []string{"table_row_id", "sequence"}},
	{name: "ux_excerpt_highlights_key", model: (*label.ExcerptHighlight)(nil), columns: []string{"section_id", "markup_hash"}},
	{name: "ux_media_references_key", model: (*label.MediaReference)(nil), columns: []string{"section_id", "referenced_object", "inline"}},
	{name: "ux_products_key", model: (*label.Product)(nil), columns: []string{"section_id", "name"}},
	{name: "ux_ingredients_key", model: (*label.Ingredient)(nil), columns: []string{"product_id", "sequence"}},
	{name: "ux_packaging_items_key", model: (*label.PackagingItem)(nil), columns: []string{"product_id", "sequence"}},
	{name: "ux_business_operations_key", model: (*label.BusinessOperation)(nil), columns: []string{"organization_id", "code"}},
}

// CreateTables creates every table and unique index when absent. It is
// safe to call on every startup.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: create table for %T: %w", model, err)
		}
	}
	for _, idx := range uniqueIndexes {
		q := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Unique().
			IfNotExists()
		if idx.expr != "" {
			q = q.ColumnExpr(idx.expr)
		} else {
			q = q.Column(idx.columns...)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("store: create index %s: %w", idx.name, err)
		}
	}
	return nil
}
