package content

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-spl/label"
)

func NewContentNodeRecordRepository(db *bun.DB) repository.Repository[*label.ContentNode] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.ContentNode]{
		NewRecord: func() *label.ContentNode { return &label.ContentNode{} },
		GetID: func(n *label.ContentNode) uuid.UUID {
			return n.ID
		},
		SetID: func(n *label.ContentNode, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(n *label.ContentNode) string {
			return n.ID.String()
		},
	})
}

func NewListNodeRecordRepository(db *bun.DB) repository.Repository[*label.ListNode] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.ListNode]{
		NewRecord: func() *label.ListNode { return &label.ListNode{} },
		GetID: func(n *label.ListNode) uuid.UUID {
			return n.ID
		},
		SetID: func(n *label.ListNode, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return "content_node_id"
		},
		GetIdentifierValue: func(n *label.ListNode) string {
			return n.ContentNodeID.String()
		},
	})
}

func NewListItemRecordRepository(db *bun.DB) repository.Repository[*label.ListItem] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.ListItem]{
		NewRecord: func() *label.ListItem { return &label.ListItem{} },
		GetID: func(i *label.ListItem) uuid.UUID {
			return i.ID
		},
		SetID: func(i *label.ListItem, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(i *label.ListItem) string {
			return i.ID.String()
		},
	})
}

func NewTableNodeRecordRepository(db *bun.DB) repository.Repository[*label.TableNode] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.TableNode]{
		NewRecord: func() *label.TableNode { return &label.TableNode{} },
		GetID: func(n *label.TableNode) uuid.UUID {
			return n.ID
		},
		SetID: func(n *label.TableNode, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return "content_node_id"
		},
		GetIdentifierValue: func(n *label.TableNode) string {
			return n.ContentNodeID.String()
		},
	})
}

func NewTableColumnRecordRepository(db *bun.DB) repository.Repository[*label.TableColumn] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.TableColumn]{
		NewRecord: func() *label.TableColumn { return &label.TableColumn{} },
		GetID: func(c *label.TableColumn) uuid.UUID {
			return c.ID
		},
		SetID: func(c *label.TableColumn, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(c *label.TableColumn) string {
			return c.ID.String()
		},
	})
}

func NewTableRowRecordRepository(db *bun.DB) repository.Repository[*label.TableRow] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.TableRow]{
		NewRecord: func() *label.TableRow { return &label.TableRow{} },
		GetID: func(r *label.TableRow) uuid.UUID {
			return r.ID
		},
		SetID: func(r *label.TableRow, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *label.TableRow) string {
			return r.ID.String()
		},
	})
}

func NewTableCellRecordRepository(db *bun.DB) repository.Repository[*label.TableCell] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.TableCell]{
		NewRecord: func() *label.TableCell { return &label.TableCell{} },
		GetID: func(c *label.TableCell) uuid.UUID {
			return c.ID
		},
		SetID: func(c *label.TableCell, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(c *label.TableCell) string {
			return c.ID.String()
		},
	})
}

func NewHighlightRecordRepository(db *bun.DB) repository.Repository[*label.ExcerptHighlight] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.ExcerptHighlight]{
		NewRecord: func() *label.ExcerptHighlight { return &label.ExcerptHighlight{} },
		GetID: func(h *label.ExcerptHighlight) uuid.UUID {
			return h.ID
		},
		SetID: func(h *label.ExcerptHighlight, id uuid.UUID) {
			h.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(h *label.ExcerptHighlight) string {
			return h.ID.String()
		},
	})
}
