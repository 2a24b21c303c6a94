package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// MediaResolveInput describes one media placeholder encountered while
// resolving section content. Inline placeholders were found nested inside
// a non-media block; block-level placeholders own a content node.
type MediaResolveInput struct {
	SectionID        uuid.UUID
	ContentNodeID    *uuid.UUID
	ReferencedObject string
	MediaType        *string
	Inline           bool
}

// MediaResolver attaches media entities for a placeholder. The resolver
// is opaque to the content core: it returns the number of media records
// attached by this call (zero when the placeholder was already resolved)
// and never raises for document-shape problems.
type MediaResolver interface {
	ResolveMedia(ctx context.Context, input MediaResolveInput) (int, error)
}
