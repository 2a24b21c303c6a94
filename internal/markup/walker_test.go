package markup_test

import (
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/goliatone/go-spl/internal/markup"
	"github.com/goliatone/go-spl/label"
)

func parse(t *testing.T, body string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc.Root()
}

func TestBlocksPreservesDocumentOrder(t *testing.T) {
	root := parse(t, `<text>
		<paragraph>one</paragraph>
		<list listType="ordered"><item>a</item></list>
		<table><tbody><tr><td>x</td></tr></tbody></table>
		<renderMultiMedia referencedObject="MM1"/>
	</text>`)

	blocks := markup.Blocks(root)
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks got %d", len(blocks))
	}
	want := []string{"paragraph", "list", "table", "renderMultiMedia"}
	for i, tag := range want {
		if blocks[i].Tag != tag {
			t.Fatalf("block %d: expected %s got %s", i, tag, blocks[i].Tag)
		}
	}
}

func TestBlocksExcludesHighlightAndCaption(t *testing.T) {
	root := parse(t, `<excerpt>
		<highlight><text><paragraph>boxed warning</paragraph></text></highlight>
		<caption>ignored</caption>
		<paragraph>after</paragraph>
	</excerpt>`)

	blocks := markup.Blocks(root)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block got %d", len(blocks))
	}
	if blocks[0].Tag != "paragraph" {
		t.Fatalf("expected paragraph got %s", blocks[0].Tag)
	}
}

func TestBlocksExcludesInlineMarkup(t *testing.T) {
	root := parse(t, `<paragraph>A <content>bold</content> word<br/><footnote>fn</footnote></paragraph>`)

	if blocks := markup.Blocks(root); len(blocks) != 0 {
		t.Fatalf("expected no blocks inside inline-only paragraph, got %d", len(blocks))
	}
}

func TestBlocksIsRestartable(t *testing.T) {
	root := parse(t, `<text><paragraph>a</paragraph><paragraph>b</paragraph></text>`)

	first := markup.Blocks(root)
	second := markup.Blocks(root)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected both walks to see 2 blocks, got %d and %d", len(first), len(second))
	}
}

func TestBlockTypeOf(t *testing.T) {
	root := parse(t, `<text>
		<paragraph/><list/><table/><excerpt/><renderMultiMedia/><observationMedia/>
	</text>`)

	want := []label.BlockType{
		label.BlockParagraph,
		label.BlockList,
		label.BlockTable,
		label.BlockExcerpt,
		label.BlockMedia,
		label.BlockOther,
	}
	blocks := markup.Blocks(root)
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks got %d", len(want), len(blocks))
	}
	for i, bt := range want {
		if got := markup.BlockTypeOf(blocks[i]); got != bt {
			t.Fatalf("block %d: expected %s got %s", i, bt, got)
		}
	}
}

func TestInnerMarkupRoundTripsRichContent(t *testing.T) {
	root := parse(t, `<highlight><text><paragraph>A <content styleCode="bold">bold</content> word</paragraph></text></highlight>`)

	text := root.SelectElement("text")
	got := markup.InnerMarkup(text)
	want := `<paragraph>A <content styleCode="bold">bold</content> word</paragraph>`
	if got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestInnerMarkupDoesNotMutateInput(t *testing.T) {
	root := parse(t, `<paragraph>A <content>b</content> c</paragraph>`)

	before := len(root.Child)
	_ = markup.InnerMarkup(root)
	if len(root.Child) != before {
		t.Fatalf("input tree mutated: %d children became %d", before, len(root.Child))
	}
	if got := markup.InnerMarkup(root); !strings.Contains(got, "<content>b</content>") {
		t.Fatalf("second serialization lost content: %q", got)
	}
}

func TestTextContentConcatenatesDescendants(t *testing.T) {
	root := parse(t, `<paragraph>A <content>bold</content> word</paragraph>`)

	if got := markup.TextContent(root); got != "A bold word" {
		t.Fatalf("expected %q got %q", "A bold word", got)
	}
}

func TestPositiveInt(t *testing.T) {
	root := parse(t, `<td rowspan="2" colspan="banana" span="-3" width="0"/>`)

	if got := markup.PositiveInt(root, "rowspan"); got == nil || *got != 2 {
		t.Fatalf("expected 2 got %v", got)
	}
	if got := markup.PositiveInt(root, "colspan"); got != nil {
		t.Fatalf("expected nil for malformed span got %d", *got)
	}
	if got := markup.PositiveInt(root, "span"); got != nil {
		t.Fatalf("expected nil for negative span got %d", *got)
	}
	if got := markup.PositiveInt(root, "width"); got != nil {
		t.Fatalf("expected nil for zero got %d", *got)
	}
	if got := markup.PositiveInt(root, "missing"); got != nil {
		t.Fatalf("expected nil for absent attribute got %d", *got)
	}
}

func TestNestedMediaSkipsImmediateChildren(t *testing.T) {
	root := parse(t, `<paragraph>
		<renderMultiMedia referencedObject="MM-direct"/>
		<content><renderMultiMedia referencedObject="MM-nested"/></content>
	</paragraph>`)

	nested := markup.NestedMedia(root)
	if len(nested) != 1 {
		t.Fatalf("expected 1 nested media got %d", len(nested))
	}
	if got := nested[0].SelectAttrValue("referencedObject", ""); got != "MM-nested" {
		t.Fatalf("expected MM-nested got %s", got)
	}
}
