package content

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/markup"
	"github.com/goliatone/go-spl/label"
	"github.com/goliatone/go-spl/pkg/interfaces"
)

// resolveMedia hands a block-level renderMultiMedia placeholder to the
// media collaborator. Inline is true when the placeholder sits inside
// another block rather than directly in the section body.
func (s *service) resolveMedia(ctx context.Context, sectionID uuid.UUID, contentNodeID *uuid.UUID, block *etree.Element, inline bool, result *ResolveResult) {
	s.recordMedia(ctx, sectionID, contentNodeID, block, inline, label.BlockMedia, 0, result)
}

// resolveNestedMedia finds placeholders buried in a leaf block's inline
// markup and resolves them as inline references attached to that block's
// content node.
func (s *service) resolveNestedMedia(ctx context.Context, sectionID uuid.UUID, contentNodeID uuid.UUID, block *etree.Element, result *ResolveResult) {
	for _, media := range markup.NestedMedia(block) {
		s.recordMedia(ctx, sectionID, &contentNodeID, media, true, label.BlockMedia, 0, result)
	}
}

func (s *service) recordMedia(ctx context.Context, sectionID uuid.UUID, contentNodeID *uuid.UUID, media *etree.Element, inline bool, blockType label.BlockType, sequence int, result *ResolveResult) {
	referenced := media.SelectAttrValue("referencedObject", "")
	if referenced == "" {
		result.addError(blockType, sequence, fmt.Errorf("media placeholder missing referencedObject"))
		return
	}
	created, err := s.media.ResolveMedia(ctx, interfaces.MediaResolveInput{
		SectionID:        sectionID,
		ContentNodeID:    contentNodeID,
		ReferencedObject: referenced,
		MediaType:        markup.Attr(media, "mediaType"),
		Inline:           inline,
	})
	if err != nil {
		result.addError(blockType, sequence, fmt.Errorf("resolve media %s: %w", referenced, err))
		return
	}
	result.Counts.MediaReferences += created
}
