// Package markup walks the parsed SPL element tree. It enumerates the
// block-level children a container owns, classifies blocks into the
// closed label.BlockType set, and serializes inner markup verbatim so
// rich passages round-trip for display.
package markup

import (
	"github.com/beevik/etree"

	"github.com/goliatone/go-spl/label"
)

// ownedTags never appear as standalone blocks regardless of context.
// highlight belongs to excerpt elaboration and must not be materialized
// twice; caption is owned by the enclosing block's elaborator.
var ownedTags = map[string]struct{}{
	"highlight": {},
	"caption":   {},
}

// inlineTags are formatting elements that belong to their enclosing
// block's raw text. Surfacing them as blocks would duplicate markup the
// parent already carries verbatim.
var inlineTags = map[string]struct{}{
	"content":     {},
	"linkHtml":    {},
	"sub":         {},
	"sup":         {},
	"br":          {},
	"footnote":    {},
	"footnoteRef": {},
}

// Blocks returns the immediate block-level children of a container in
// document order. The walk is read-only; each call returns a fresh
// slice, so callers can restart it freely.
func Blocks(container *etree.Element) []*etree.Element {
	if container == nil {
		return nil
	}
	var out []*etree.Element
	for _, child := range container.ChildElements() {
		if _, owned := ownedTags[child.Tag]; owned {
			continue
		}
		if _, inline := inlineTags[child.Tag]; inline {
			continue
		}
		// Recognized blocks and unrecognized block-level elements both
		// occupy a slot; the resolver classifies the latter as "other".
		out = append(out, child)
	}
	return out
}

// BlockTypeOf classifies an element into the closed block type set.
func BlockTypeOf(el *etree.Element) label.BlockType {
	if el == nil {
		return label.BlockOther
	}
	switch el.Tag {
	case "paragraph":
		return label.BlockParagraph
	case "list":
		return label.BlockList
	case "table":
		return label.BlockTable
	case "excerpt":
		return label.BlockExcerpt
	case "renderMultiMedia":
		return label.BlockMedia
	default:
		return label.BlockOther
	}
}

// Media returns every renderMultiMedia element beneath el in document
// order, excluding el itself.
func Media(el *etree.Element) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == "renderMultiMedia" {
			out = append(out, child)
		}
		out = append(out, Media(child)...)
	}
	return out
}

// NestedMedia returns renderMultiMedia elements nested inside el that are
// not immediate children, i.e. placeholders buried in inline markup that
// generic block recursion would never visit.
func NestedMedia(el *etree.Element) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == "renderMultiMedia" {
			// Immediate children are visited as blocks in their own right.
			continue
		}
		out = append(out, Media(child)...)
	}
	return out
}
