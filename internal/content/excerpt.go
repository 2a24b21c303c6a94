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

// elaborateExcerpt persists the highlighted passages beneath an excerpt.
// The highlight's text markup is kept verbatim and deduplicated by exact
// serialization, so a highlight repeated across versions is stored once
// per section.
func (s *service) elaborateExcerpt(ctx context.Context, sectionID uuid.UUID, excerpt *etree.Element, result *ResolveResult) {
	for _, highlight := range excerpt.SelectElements("highlight") {
		text := highlight.SelectElement("text")
		if text == nil {
			continue
		}
		raw := markup.InnerMarkup(text)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		hash := hashMarkup(raw)

		_, created, err := store.GetOrCreate(ctx,
			func(ctx context.Context) (*label.ExcerptHighlight, error) {
				return s.repos.Highlights.GetByMarkupHash(ctx, sectionID, hash)
			},
			func(ctx context.Context) (*label.ExcerptHighlight, error) {
				return s.repos.Highlights.Create(ctx, &label.ExcerptHighlight{
					ID:         s.nextID(),
					SectionID:  sectionID,
					Markup:     raw,
					MarkupHash: hash,
				})
			},
		)
		if err != nil {
			result.addError(label.BlockExcerpt, 0, fmt.Errorf("resolve highlight: %w", err))
			continue
		}
		if created {
			result.Counts.Highlights++
		}
	}
}
