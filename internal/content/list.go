package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/markup"
	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// elaborateList records the list detail and its items. Items with no
// renderable body are skipped so persisted sequences stay dense: the
// fifth stored item is always sequence 5.
func (s *service) elaborateList(ctx context.Context, sectionID uuid.UUID, node *label.ContentNode, block *etree.Element, result *ResolveResult) {
	listType := markup.Attr(block, "listType")

	listNode, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.ListNode, error) {
			return s.repos.ListNodes.GetByContentNode(ctx, node.ID)
		},
		func(ctx context.Context) (*label.ListNode, error) {
			return s.repos.ListNodes.Create(ctx, &label.ListNode{
				ID:            s.nextID(),
				ContentNodeID: node.ID,
				ListType:      listType,
				StyleCode:     markup.StyleCode(block),
			})
		},
	)
	if err != nil {
		result.addError(label.BlockList, node.Sequence, fmt.Errorf("resolve list node: %w", err))
		return
	}
	if created {
		result.Counts.ListNodes++
	}

	sequence := 0
	for _, item := range block.SelectElements("item") {
		caption, body := splitListItem(item)
		if strings.TrimSpace(body) == "" {
			continue
		}
		sequence++

		seq := sequence
		_, itemCreated, err := store.GetOrCreate(ctx,
			func(ctx context.Context) (*label.ListItem, error) {
				return s.repos.ListItems.GetByKey(ctx, listNode.ID, seq)
			},
			func(ctx context.Context) (*label.ListItem, error) {
				return s.repos.ListItems.Create(ctx, &label.ListItem{
					ID:         s.nextID(),
					ListNodeID: listNode.ID,
					Sequence:   seq,
					Caption:    caption,
					Body:       body,
				})
			},
		)
		if err != nil {
			result.addError(label.BlockList, seq, fmt.Errorf("resolve list item: %w", err))
			continue
		}
		if itemCreated {
			result.Counts.ListItems++
		}

		// Media placeholders inside item markup still need records even
		// though the item body already carries them verbatim.
		for _, media := range markup.Media(item) {
			s.recordMedia(ctx, sectionID, &node.ID, media, true, label.BlockList, seq, result)
		}
	}
}

// splitListItem separates an item's optional caption from its body
// markup. The caption element is removed from a working copy so the
// serialized body never duplicates it.
func splitListItem(item *etree.Element) (caption *string, body string) {
	work := item.Copy()
	if captionEl := work.SelectElement("caption"); captionEl != nil {
		text := strings.TrimSpace(markup.TextContent(captionEl))
		if text != "" {
			caption = &text
		}
		work.RemoveChild(captionEl)
	}
	return caption, markup.InnerMarkup(work)
}
