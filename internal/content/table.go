package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/goliatone/go-spl/internal/markup"
	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// elaborateTable records the table detail, its columns, and its rows and
// cells group by group. Everything the source markup states is retained;
// nothing is synthesized for absent attributes.
func (s *service) elaborateTable(ctx context.Context, node *label.ContentNode, block *etree.Element, result *ResolveResult) {
	tableNode, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.TableNode, error) {
			return s.repos.TableNodes.GetByContentNode(ctx, node.ID)
		},
		func(ctx context.Context) (*label.TableNode, error) {
			return s.repos.TableNodes.Create(ctx, &label.TableNode{
				ID:            s.nextID(),
				ContentNodeID: node.ID,
				Width:         markup.Attr(block, "width"),
				Caption:       tableCaption(block),
				HasHeader:     block.SelectElement("thead") != nil,
				HasFooter:     block.SelectElement("tfoot") != nil,
			})
		},
	)
	if err != nil {
		result.addError(label.BlockTable, node.Sequence, fmt.Errorf("resolve table node: %w", err))
		return
	}
	if created {
		result.Counts.TableNodes++
	}

	s.elaborateColumns(ctx, tableNode, block, result)

	groups := []struct {
		tag   string
		group label.RowGroup
	}{
		{"thead", label.RowGroupHeader},
		{"tbody", label.RowGroupBody},
		{"tfoot", label.RowGroupFooter},
	}
	for _, g := range groups {
		// Row sequences restart at 1 within each group even when the
		// group is split across several container elements.
		sequence := 0
		for _, container := range block.SelectElements(g.tag) {
			for _, row := range container.SelectElements("tr") {
				sequence++
				s.elaborateRow(ctx, tableNode, g.group, sequence, row, result)
			}
		}
	}
}

// elaborateColumns walks colgroup children first, then standalone col
// elements, assigning one monotonic overall sequence. Grouped columns
// also record their group-local sequence and the group's styling
// defaults alongside their own attributes.
func (s *service) elaborateColumns(ctx context.Context, tableNode *label.TableNode, block *etree.Element, result *ResolveResult) {
	sequence := 0

	record := func(col *etree.Element, groupSeq *int, group *etree.Element) {
		sequence++
		seq := sequence
		column := &label.TableColumn{
			TableNodeID:   tableNode.ID,
			Sequence:      seq,
			GroupSequence: groupSeq,
			Width:         markup.Attr(col, "width"),
			StyleCode:     markup.StyleCode(col),
			Align:         markup.Attr(col, "align"),
			VAlign:        markup.Attr(col, "valign"),
		}
		if group != nil {
			column.GroupStyleCode = markup.StyleCode(group)
			column.GroupAlign = markup.Attr(group, "align")
			column.GroupVAlign = markup.Attr(group, "valign")
		}
		_, created, err := store.GetOrCreate(ctx,
			func(ctx context.Context) (*label.TableColumn, error) {
				return s.repos.TableColumns.GetByKey(ctx, tableNode.ID, seq)
			},
			func(ctx context.Context) (*label.TableColumn, error) {
				column.ID = s.nextID()
				return s.repos.TableColumns.Create(ctx, column)
			},
		)
		if err != nil {
			result.addError(label.BlockTable, seq, fmt.Errorf("resolve table column: %w", err))
			return
		}
		if created {
			result.Counts.TableColumns++
		}
	}

	for _, group := range block.SelectElements("colgroup") {
		for i, col := range group.SelectElements("col") {
			groupSeq := i + 1
			record(col, &groupSeq, group)
		}
	}
	for _, col := range block.SelectElements("col") {
		record(col, nil, nil)
	}
}

func (s *service) elaborateRow(ctx context.Context, tableNode *label.TableNode, group label.RowGroup, sequence int, rowEl *etree.Element, result *ResolveResult) {
	row, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.TableRow, error) {
			return s.repos.TableRows.GetByKey(ctx, tableNode.ID, group, sequence)
		},
		func(ctx context.Context) (*label.TableRow, error) {
			return s.repos.TableRows.Create(ctx, &label.TableRow{
				ID:          s.nextID(),
				TableNodeID: tableNode.ID,
				RowGroup:    group,
				Sequence:    sequence,
				StyleCode:   markup.StyleCode(rowEl),
			})
		},
	)
	if err != nil {
		result.addError(label.BlockTable, sequence, fmt.Errorf("resolve table row: %w", err))
		return
	}
	if created {
		result.Counts.TableRows++
	}

	cellSeq := 0
	for _, cellEl := range rowEl.ChildElements() {
		var kind label.CellKind
		switch cellEl.Tag {
		case "th":
			kind = label.CellHeader
		case "td":
			kind = label.CellData
		default:
			continue
		}
		cellSeq++
		s.elaborateCell(ctx, row, cellSeq, kind, cellEl, result)
	}
}

func (s *service) elaborateCell(ctx context.Context, row *label.TableRow, sequence int, kind label.CellKind, cellEl *etree.Element, result *ResolveResult) {
	_, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.TableCell, error) {
			return s.repos.TableCells.GetByKey(ctx, row.ID, sequence)
		},
		func(ctx context.Context) (*label.TableCell, error) {
			return s.repos.TableCells.Create(ctx, &label.TableCell{
				ID:         s.nextID(),
				TableRowID: row.ID,
				Sequence:   sequence,
				Kind:       kind,
				RowSpan:    markup.PositiveInt(cellEl, "rowspan"),
				ColSpan:    markup.PositiveInt(cellEl, "colspan"),
				Markup:     markup.InnerMarkup(cellEl),
				StyleCode:  markup.StyleCode(cellEl),
				Align:      markup.Attr(cellEl, "align"),
			})
		},
	)
	if err != nil {
		result.addError(label.BlockTable, sequence, fmt.Errorf("resolve table cell: %w", err))
		return
	}
	if created {
		result.Counts.TableCells++
	}
}

// tableCaption extracts the caption text when present.
func tableCaption(block *etree.Element) *string {
	captionEl := block.SelectElement("caption")
	if captionEl == nil {
		return nil
	}
	text := strings.TrimSpace(markup.TextContent(captionEl))
	if text == "" {
		return nil
	}
	return &text
}
