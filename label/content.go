package label

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BlockType is the closed classification for content blocks. It is decided
// once when a block is classified and matched exhaustively afterwards, so
// adding a block kind is a compile-time decision.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockList      BlockType = "list"
	BlockTable     BlockType = "table"
	BlockExcerpt   BlockType = "excerpt"
	BlockMedia     BlockType = "render_multimedia"
	BlockOther     BlockType = "other"
)

// Container reports whether the block type owns its children through a
// dedicated elaborator. Container nodes never carry raw content text and
// never acquire children through generic block recursion.
func (b BlockType) Container() bool {
	return b == BlockList || b == BlockTable
}

// RowGroup identifies the header/body/footer partition a table row
// belongs to. Row sequences restart at 1 within each group.
type RowGroup string

const (
	RowGroupHeader RowGroup = "header"
	RowGroupBody   RowGroup = "body"
	RowGroupFooter RowGroup = "footer"
)

// CellKind distinguishes header cells from data cells. Rows may mix kinds.
type CellKind string

const (
	CellHeader CellKind = "header"
	CellData   CellKind = "data"
)

// ContentNode is one structural unit of a section body. Nodes form a tree
// through the nullable ParentID reference; Sequence is 1-based and unique
// within (section, parent).
type ContentNode struct {
	bun.BaseModel `bun:"table:content_nodes,alias:cn"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	SectionID   uuid.UUID  `bun:"section_id,notnull,type:uuid" json:"section_id"`
	ParentID    *uuid.UUID `bun:"parent_id,type:uuid,nullzero" json:"parent_id,omitempty"`
	BlockType   BlockType  `bun:"block_type,notnull" json:"block_type"`
	StyleCode   *string    `bun:"style_code" json:"style_code,omitempty"`
	Sequence    int        `bun:"sequence,notnull" json:"sequence"`
	ContentText *string    `bun:"content_text" json:"content_text,omitempty"`
	ContentHash *string    `bun:"content_hash" json:"content_hash,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// ListNode captures the list-level attributes of a list-typed content
// node. Exactly one ListNode exists per list content node.
type ListNode struct {
	bun.BaseModel `bun:"table:list_nodes,alias:ln"`

	ID            uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ContentNodeID uuid.UUID `bun:"content_node_id,notnull,type:uuid" json:"content_node_id"`
	ListType      *string   `bun:"list_type" json:"list_type,omitempty"`
	StyleCode     *string   `bun:"style_code" json:"style_code,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// ListItem is an ordered child of a ListNode. Items with an empty body are
// never persisted, so stored sequences are dense over 1..k.
type ListItem struct {
	bun.BaseModel `bun:"table:list_items,alias:li"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ListNodeID uuid.UUID `bun:"list_node_id,notnull,type:uuid" json:"list_node_id"`
	Sequence   int       `bun:"sequence,notnull" json:"sequence"`
	Caption    *string   `bun:"caption" json:"caption,omitempty"`
	Body       string    `bun:"body,notnull" json:"body"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// TableNode captures table-level attributes of a table-typed content node.
type TableNode struct {
	bun.BaseModel `bun:"table:table_nodes,alias:tn"`

	ID            uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ContentNodeID uuid.UUID `bun:"content_node_id,notnull,type:uuid" json:"content_node_id"`
	Width         *string   `bun:"width" json:"width,omitempty"`
	Caption       *string   `bun:"caption" json:"caption,omitempty"`
	HasHeader     bool      `bun:"has_header,notnull" json:"has_header"`
	HasFooter     bool      `bun:"has_footer,notnull" json:"has_footer"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// TableColumn is ordered by one monotonic Sequence across column groups
// and standalone columns. Columns that belong to a group also record
// their group-local sequence and the group's styling defaults; the
// column's own attributes always win, but both sides are retained so the
// effective value can be resolved later.
type TableColumn struct {
	bun.BaseModel `bun:"table:table_columns,alias:tc"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	TableNodeID    uuid.UUID `bun:"table_node_id,notnull,type:uuid" json:"table_node_id"`
	Sequence       int       `bun:"sequence,notnull" json:"sequence"`
	GroupSequence  *int      `bun:"group_sequence" json:"group_sequence,omitempty"`
	Width          *string   `bun:"width" json:"width,omitempty"`
	StyleCode      *string   `bun:"style_code" json:"style_code,omitempty"`
	Align          *string   `bun:"align" json:"align,omitempty"`
	VAlign         *string   `bun:"valign" json:"valign,omitempty"`
	GroupStyleCode *string   `bun:"group_style_code" json:"group_style_code,omitempty"`
	GroupAlign     *string   `bun:"group_align" json:"group_align,omitempty"`
	GroupVAlign    *string   `bun:"group_valign" json:"group_valign,omitempty"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// EffectiveAlign resolves the column's horizontal alignment, preferring
// the column's own attribute over the inherited group default.
func (c *TableColumn) EffectiveAlign() *string {
	if c.Align != nil {
		return c.Align
	}
	return c.GroupAlign
}

// EffectiveVAlign resolves the vertical alignment the same way.
func (c *TableColumn) EffectiveVAlign() *string {
	if c.VAlign != nil {
		return c.VAlign
	}
	return c.GroupVAlign
}

// EffectiveStyleCode resolves the style code the same way.
func (c *TableColumn) EffectiveStyleCode() *string {
	if c.StyleCode != nil {
		return c.StyleCode
	}
	return c.GroupStyleCode
}

// TableRow is ordered per (table, row group); Sequence restarts at 1 for
// each group.
type TableRow struct {
	bun.BaseModel `bun:"table:table_rows,alias:tr"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	TableNodeID uuid.UUID `bun:"table_node_id,notnull,type:uuid" json:"table_node_id"`
	RowGroup    RowGroup  `bun:"row_group,notnull" json:"row_group"`
	Sequence    int       `bun:"sequence,notnull" json:"sequence"`
	StyleCode   *string   `bun:"style_code" json:"style_code,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// TableCell is ordered per row. Span values are positive integers or nil;
// malformed span attributes never abort cell creation. Markup holds the
// cell's inner markup verbatim.
type TableCell struct {
	bun.BaseModel `bun:"table:table_cells,alias:td"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	TableRowID uuid.UUID `bun:"table_row_id,notnull,type:uuid" json:"table_row_id"`
	Sequence   int       `bun:"sequence,notnull" json:"sequence"`
	Kind       CellKind  `bun:"kind,notnull" json:"kind"`
	RowSpan    *int      `bun:"row_span" json:"row_span,omitempty"`
	ColSpan    *int      `bun:"col_span" json:"col_span,omitempty"`
	Markup     string    `bun:"markup,notnull" json:"markup"`
	StyleCode  *string   `bun:"style_code" json:"style_code,omitempty"`
	Align      *string   `bun:"align" json:"align,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// ExcerptHighlight is a highlighted sub-passage owned directly by the
// section rather than by a content node. Highlights are deduplicated by
// their exact serialized markup.
type ExcerptHighlight struct {
	bun.BaseModel `bun:"table:excerpt_highlights,alias:eh"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SectionID  uuid.UUID `bun:"section_id,notnull,type:uuid" json:"section_id"`
	Markup     string    `bun:"markup,notnull" json:"markup"`
	MarkupHash string    `bun:"markup_hash,notnull" json:"markup_hash"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// MediaReference records a resolved media placeholder. Inline references
// were found nested inside a non-media block; block-level references own
// their content node.
type MediaReference struct {
	bun.BaseModel `bun:"table:media_references,alias:mr"`

	ID               uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	SectionID        uuid.UUID  `bun:"section_id,notnull,type:uuid" json:"section_id"`
	ContentNodeID    *uuid.UUID `bun:"content_node_id,type:uuid,nullzero" json:"content_node_id,omitempty"`
	ReferencedObject string     `bun:"referenced_object,notnull" json:"referenced_object"`
	MediaType        *string    `bun:"media_type" json:"media_type,omitempty"`
	Inline           bool       `bun:"inline,notnull" json:"inline"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
