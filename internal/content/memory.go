package content

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// NewMemoryRepositories returns a fully in-memory repository set. It
// backs tests and the no-database container configuration.
func NewMemoryRepositories() Repositories {
	return Repositories{
		ContentNodes: &memoryContentNodes{records: map[uuid.UUID]*label.ContentNode{}},
		ListNodes:    &memoryListNodes{records: map[uuid.UUID]*label.ListNode{}},
		ListItems:    &memoryListItems{records: map[uuid.UUID]*label.ListItem{}},
		TableNodes:   &memoryTableNodes{records: map[uuid.UUID]*label.TableNode{}},
		TableColumns: &memoryTableColumns{records: map[uuid.UUID]*label.TableColumn{}},
		TableRows:    &memoryTableRows{records: map[uuid.UUID]*label.TableRow{}},
		TableCells:   &memoryTableCells{records: map[uuid.UUID]*label.TableCell{}},
		Highlights:   &memoryHighlights{records: map[uuid.UUID]*label.ExcerptHighlight{}},
	}
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameHash(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type memoryContentNodes struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.ContentNode
}

func (m *memoryContentNodes) GetByKey(_ context.Context, key ContentNodeKey) (*label.ContentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.SectionID == key.SectionID &&
			sameParent(record.ParentID, key.ParentID) &&
			record.BlockType == key.BlockType &&
			record.Sequence == key.Sequence &&
			sameHash(record.ContentHash, key.ContentHash) {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "content_node", Key: fmt.Sprintf("%s/%s/%d", key.SectionID, key.BlockType, key.Sequence)}
}

func (m *memoryContentNodes) Create(_ context.Context, record *label.ContentNode) (*label.ContentNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.SectionID == record.SectionID &&
			sameParent(existing.ParentID, record.ParentID) &&
			existing.BlockType == record.BlockType &&
			existing.Sequence == record.Sequence {
			return nil, fmt.Errorf("content_node: duplicate key %s/%s/%d", record.SectionID, record.BlockType, record.Sequence)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memoryContentNodes) ListBySection(_ context.Context, sectionID uuid.UUID) ([]*label.ContentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*label.ContentNode
	for _, record := range m.records {
		if record.SectionID == sectionID {
			clone := *record
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

type memoryListNodes struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.ListNode
}

func (m *memoryListNodes) GetByContentNode(_ context.Context, contentNodeID uuid.UUID) (*label.ListNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.ContentNodeID == contentNodeID {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "list_node", Key: contentNodeID.String()}
}

func (m *memoryListNodes) Create(_ context.Context, record *label.ListNode) (*label.ListNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.ContentNodeID == record.ContentNodeID {
			return nil, fmt.Errorf("list_node: duplicate content node %s", record.ContentNodeID)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryListItems struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.ListItem
}

func (m *memoryListItems) GetByKey(_ context.Context, listNodeID uuid.UUID, sequence int) (*label.ListItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.ListNodeID == listNodeID && record.Sequence == sequence {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "list_item", Key: fmt.Sprintf("%s/%d", listNodeID, sequence)}
}

func (m *memoryListItems) Create(_ context.Context, record *label.ListItem) (*label.ListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.ListNodeID == record.ListNodeID && existing.Sequence == record.Sequence {
			return nil, fmt.Errorf("list_item: duplicate key %s/%d", record.ListNodeID, record.Sequence)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memoryListItems) ListByListNode(_ context.Context, listNodeID uuid.UUID) ([]*label.ListItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*label.ListItem
	for _, record := range m.records {
		if record.ListNodeID == listNodeID {
			clone := *record
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

type memoryTableNodes struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.TableNode
}

func (m *memoryTableNodes) GetByContentNode(_ context.Context, contentNodeID uuid.UUID) (*label.TableNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.ContentNodeID == contentNodeID {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "table_node", Key: contentNodeID.String()}
}

func (m *memoryTableNodes) Create(_ context.Context, record *label.TableNode) (*label.TableNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.ContentNodeID == record.ContentNodeID {
			return nil, fmt.Errorf("table_node: duplicate content node %s", record.ContentNodeID)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryTableColumns struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.TableColumn
}

func (m *memoryTableColumns) GetByKey(_ context.Context, tableNodeID uuid.UUID, sequence int) (*label.TableColumn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.TableNodeID == tableNodeID && record.Sequence == sequence {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "table_column", Key: fmt.Sprintf("%s/%d", tableNodeID, sequence)}
}

func (m *memoryTableColumns) Create(_ context.Context, record *label.TableColumn) (*label.TableColumn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.TableNodeID == record.TableNodeID && existing.Sequence == record.Sequence {
			return nil, fmt.Errorf("table_column: duplicate key %s/%d", record.TableNodeID, record.Sequence)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memoryTableColumns) ListByTable(_ context.Context, tableNodeID uuid.UUID) ([]*label.TableColumn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*label.TableColumn
	for _, record := range m.records {
		if record.TableNodeID == tableNodeID {
			clone := *record
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

type memoryTableRows struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.TableRow
}

func (m *memoryTableRows) GetByKey(_ context.Context, tableNodeID uuid.UUID, group label.RowGroup, sequence int) (*label.TableRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.TableNodeID == tableNodeID && record.RowGroup == group && record.Sequence == sequence {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "table_row", Key: fmt.Sprintf("%s/%s/%d", tableNodeID, group, sequence)}
}

func (m *memoryTableRows) Create(_ context.Context, record *label.TableRow) (*label.TableRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.TableNodeID == record.TableNodeID && existing.RowGroup == record.RowGroup && existing.Sequence == record.Sequence {
			return nil, fmt.Errorf("table_row: duplicate key %s/%s/%d", record.TableNodeID, record.RowGroup, record.Sequence)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryTableCells struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.TableCell
}

func (m *memoryTableCells) GetByKey(_ context.Context, tableRowID uuid.UUID, sequence int) (*label.TableCell, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.TableRowID == tableRowID && record.Sequence == sequence {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "table_cell", Key: fmt.Sprintf("%s/%d", tableRowID, sequence)}
}

func (m *memoryTableCells) Create(_ context.Context, record *label.TableCell) (*label.TableCell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.TableRowID == record.TableRowID && existing.Sequence == record.Sequence {
			return nil, fmt.Errorf("table_cell: duplicate key %s/%d", record.TableRowID, record.Sequence)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}

type memoryHighlights struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*label.ExcerptHighlight
}

func (m *memoryHighlights) GetByMarkupHash(_ context.Context, sectionID uuid.UUID, markupHash string) (*label.ExcerptHighlight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, record := range m.records {
		if record.SectionID == sectionID && record.MarkupHash == markupHash {
			clone := *record
			return &clone, nil
		}
	}
	return nil, &store.NotFoundError{Resource: "excerpt_highlight", Key: fmt.Sprintf("%s/%s", sectionID, markupHash)}
}

func (m *memoryHighlights) Create(_ context.Context, record *label.ExcerptHighlight) (*label.ExcerptHighlight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.SectionID == record.SectionID && existing.MarkupHash == record.MarkupHash {
			return nil, fmt.Errorf("excerpt_highlight: duplicate key %s/%s", record.SectionID, record.MarkupHash)
		}
	}
	clone := *record
	m.records[record.ID] = &clone
	out := clone
	return &out, nil
}
