package content

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/markup"
	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// ResolveSection resolves the block tree beneath input.Body for the
// owning section. Branch failures are collected on the result; the
// returned error covers input validation and nothing else.
func (s *service) ResolveSection(ctx context.Context, input ResolveSectionInput) (*ResolveResult, error) {
	if input.SectionID == uuid.Nil {
		return nil, ErrSectionIDRequired
	}
	if input.Body == nil {
		return nil, ErrBodyRequired
	}

	result := &ResolveResult{}
	body := input.Body

	// When handed the section element itself, highlighted passages in
	// direct excerpt children belong to the section (no content node),
	// and the block walk starts at the text body.
	if body.Tag == "section" {
		for _, excerpt := range body.SelectElements("excerpt") {
			s.elaborateExcerpt(ctx, input.SectionID, excerpt, result)
		}
		text := body.SelectElement("text")
		if text == nil {
			s.logger.Debug("section has no text body", "section_id", input.SectionID)
			return result, nil
		}
		body = text
	}

	s.resolveChildren(ctx, input.SectionID, nil, body, result)

	s.logger.Debug("section resolved",
		"section_id", input.SectionID,
		"created", result.Counts.Total(),
		"errors", len(result.Errors))
	return result, nil
}

// resolveChildren walks the immediate blocks of container and resolves
// each. Sequence numbering restarts at 1 for every container.
func (s *service) resolveChildren(ctx context.Context, sectionID uuid.UUID, parentID *uuid.UUID, container *etree.Element, result *ResolveResult) {
	for i, block := range markup.Blocks(container) {
		s.resolveBlock(ctx, sectionID, parentID, block, i+1, result)
	}
}

// resolveBlock materializes one block as a content node and dispatches
// to its elaborator. A failure here stops this branch only.
func (s *service) resolveBlock(ctx context.Context, sectionID uuid.UUID, parentID *uuid.UUID, block *etree.Element, sequence int, result *ResolveResult) {
	blockType := markup.BlockTypeOf(block)

	var contentText, contentHash *string
	if !blockType.Container() {
		raw := markup.InnerMarkup(block)
		hash := hashMarkup(raw)
		contentText = &raw
		contentHash = &hash
	}

	node, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.ContentNode, error) {
			return s.repos.ContentNodes.GetByKey(ctx, ContentNodeKey{
				SectionID:   sectionID,
				ParentID:    parentID,
				BlockType:   blockType,
				Sequence:    sequence,
				ContentHash: contentHash,
			})
		},
		func(ctx context.Context) (*label.ContentNode, error) {
			return s.repos.ContentNodes.Create(ctx, &label.ContentNode{
				ID:          s.nextID(),
				SectionID:   sectionID,
				ParentID:    parentID,
				BlockType:   blockType,
				StyleCode:   markup.StyleCode(block),
				Sequence:    sequence,
				ContentText: contentText,
				ContentHash: contentHash,
			})
		},
	)
	if err != nil {
		result.addError(blockType, sequence, fmt.Errorf("resolve content node: %w", err))
		return
	}
	if created {
		result.Counts.ContentNodes++
	}

	switch blockType {
	case label.BlockList:
		s.elaborateList(ctx, sectionID, node, block, result)
	case label.BlockTable:
		s.elaborateTable(ctx, node, block, result)
		// Cells carry their markup verbatim, so placeholders inside them
		// surface here as inline media attached to the table node.
		s.resolveNestedMedia(ctx, sectionID, node.ID, block, result)
	case label.BlockExcerpt:
		s.elaborateExcerpt(ctx, sectionID, block, result)
		s.resolveChildren(ctx, sectionID, &node.ID, block, result)
	case label.BlockMedia:
		s.resolveMedia(ctx, sectionID, &node.ID, block, parentID != nil, result)
	default:
		// Leaf blocks carry their inline markup verbatim; only media
		// placeholders buried inside that markup need separate records.
		s.resolveNestedMedia(ctx, sectionID, node.ID, block, result)
		s.resolveChildren(ctx, sectionID, &node.ID, block, result)
	}
}
