package content_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/content"
	"github.com/goliatone/go-spl/label"
	"github.com/goliatone/go-spl/pkg/interfaces"
)

func mustHash(markup string) string {
	sum := sha256.Sum256([]byte(markup))
	return hex.EncodeToString(sum[:])
}

func parseBody(t *testing.T, body string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc.Root()
}

// captureMedia records every placeholder it is asked to resolve and
// deduplicates by (referenced object, inline) the way the real resolver
// does, so re-runs attach nothing new.
type captureMedia struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	inputs []interfaces.MediaResolveInput
	fail   error
}

func newCaptureMedia() *captureMedia {
	return &captureMedia{seen: map[string]struct{}{}}
}

func (c *captureMedia) ResolveMedia(_ context.Context, input interfaces.MediaResolveInput) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return 0, c.fail
	}
	c.inputs = append(c.inputs, input)
	key := fmt.Sprintf("%s/%s/%v", input.SectionID, input.ReferencedObject, input.Inline)
	if _, ok := c.seen[key]; ok {
		return 0, nil
	}
	c.seen[key] = struct{}{}
	return 1, nil
}

type fixture struct {
	service content.Service
	repos   content.Repositories
	media   *captureMedia
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := content.NewMemoryRepositories()
	media := newCaptureMedia()
	svc, err := content.NewService(repos, content.WithMediaResolver(media))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{service: svc, repos: repos, media: media}
}

func (f *fixture) resolve(t *testing.T, sectionID uuid.UUID, body *etree.Element) *content.ResolveResult {
	t.Helper()
	result, err := f.service.ResolveSection(context.Background(), content.ResolveSectionInput{
		SectionID: sectionID,
		Body:      body,
	})
	if err != nil {
		t.Fatalf("resolve section: %v", err)
	}
	return result
}

func TestResolveSectionValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ResolveSection(context.Background(), content.ResolveSectionInput{
		Body: parseBody(t, `<text/>`),
	})
	if err != content.ErrSectionIDRequired {
		t.Fatalf("expected ErrSectionIDRequired got %v", err)
	}

	_, err = f.service.ResolveSection(context.Background(), content.ResolveSectionInput{
		SectionID: uuid.New(),
	})
	if err != content.ErrBodyRequired {
		t.Fatalf("expected ErrBodyRequired got %v", err)
	}
}

func TestNewServiceRequiresRepositories(t *testing.T) {
	if _, err := content.NewService(content.Repositories{}); err != content.ErrRepositoriesRequired {
		t.Fatalf("expected ErrRepositoriesRequired got %v", err)
	}
}

func TestResolveSectionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<paragraph>Indications <content styleCode="bold">and</content> usage.</paragraph>
		<list listType="ordered">
			<item><caption>1.</caption>Take one tablet.</item>
			<item>Take with water.</item>
		</list>
		<table>
			<colgroup align="center"><col width="50%"/><col align="left"/></colgroup>
			<thead><tr><th>Dose</th><th>Frequency</th></tr></thead>
			<tbody><tr><td rowspan="2">10 mg</td><td>daily</td></tr></tbody>
		</table>
		<renderMultiMedia referencedObject="MM1"/>
	</text>`)

	first := f.resolve(t, sectionID, body)
	if len(first.Errors) != 0 {
		t.Fatalf("unexpected errors on first run: %v", first.Errors)
	}
	if first.Counts.Total() == 0 {
		t.Fatal("first run created nothing")
	}

	second := f.resolve(t, sectionID, body)
	if len(second.Errors) != 0 {
		t.Fatalf("unexpected errors on second run: %v", second.Errors)
	}
	if got := second.Counts.Total(); got != 0 {
		t.Fatalf("re-run created %d records, expected 0: %+v", got, second.Counts)
	}
}

func TestResolveSectionEndToEndCounts(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<paragraph>First.</paragraph>
		<list listType="unordered">
			<item>alpha</item>
			<item>beta</item>
		</list>
		<table>
			<col width="30%"/><col/>
			<thead><tr><th>A</th><th>B</th></tr></thead>
			<tbody>
				<tr><td>1</td><td>2</td></tr>
				<tr><td>3</td><td>4</td></tr>
			</tbody>
		</table>
	</text>`)

	result := f.resolve(t, sectionID, body)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	want := content.EntityCounts{
		ContentNodes: 3,
		ListNodes:    1,
		ListItems:    2,
		TableNodes:   1,
		TableColumns: 2,
		TableRows:    3,
		TableCells:   6,
	}
	if result.Counts != want {
		t.Fatalf("counts mismatch:\n got %+v\nwant %+v", result.Counts, want)
	}
}

func TestResolveSectionPreservesSiblingOrder(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<paragraph>one</paragraph>
		<paragraph>two</paragraph>
		<paragraph>three</paragraph>
	</text>`)

	f.resolve(t, sectionID, body)

	nodes, err := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	if err != nil {
		t.Fatalf("list nodes: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes got %d", len(nodes))
	}
	for i, node := range nodes {
		if node.Sequence != i+1 {
			t.Fatalf("node %d: expected sequence %d got %d", i, i+1, node.Sequence)
		}
		if node.ContentText == nil {
			t.Fatalf("node %d: paragraph should carry content text", i)
		}
	}
}

func TestListItemSequencesAreDense(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<list listType="ordered">
			<item>first</item>
			<item>   </item>
			<item></item>
			<item>second</item>
			<item><br/></item>
		</list>
	</text>`)

	result := f.resolve(t, sectionID, body)
	if result.Counts.ListItems != 3 {
		t.Fatalf("expected 3 persisted items got %d", result.Counts.ListItems)
	}

	nodes, err := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	if err != nil || len(nodes) != 1 {
		t.Fatalf("expected 1 list node, got %d (err %v)", len(nodes), err)
	}
	listNode, err := f.repos.ListNodes.GetByContentNode(context.Background(), nodes[0].ID)
	if err != nil {
		t.Fatalf("get list node: %v", err)
	}
	items, err := f.repos.ListItems.ListByListNode(context.Background(), listNode.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	for i, item := range items {
		if item.Sequence != i+1 {
			t.Fatalf("item %d: expected dense sequence %d got %d", i, i+1, item.Sequence)
		}
	}
	if items[0].Caption != nil {
		t.Fatalf("expected no caption on first item, got %q", *items[0].Caption)
	}
	if items[0].Body != "first" || items[1].Body != "second" {
		t.Fatalf("item bodies out of order: %q, %q", items[0].Body, items[1].Body)
	}
}

func TestListItemCaptionIsSeparatedFromBody(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<list listType="ordered">
			<item><caption>2.1</caption>Shake well before use.</item>
		</list>
	</text>`)

	f.resolve(t, sectionID, body)

	nodes, _ := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	listNode, _ := f.repos.ListNodes.GetByContentNode(context.Background(), nodes[0].ID)
	items, _ := f.repos.ListItems.ListByListNode(context.Background(), listNode.ID)
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	if items[0].Caption == nil || *items[0].Caption != "2.1" {
		t.Fatalf("expected caption 2.1 got %v", items[0].Caption)
	}
	if items[0].Body != "Shake well before use." {
		t.Fatalf("caption leaked into body: %q", items[0].Body)
	}
}

func TestContainerNodesCarryNoRawText(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<list listType="ordered"><item>x</item></list>
		<table><tbody><tr><td>y</td></tr></tbody></table>
	</text>`)

	f.resolve(t, sectionID, body)

	nodes, err := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	if err != nil {
		t.Fatalf("list nodes: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("container children must not become content nodes: got %d nodes", len(nodes))
	}
	for _, node := range nodes {
		if !node.BlockType.Container() {
			t.Fatalf("unexpected non-container node %s", node.BlockType)
		}
		if node.ContentText != nil || node.ContentHash != nil {
			t.Fatalf("container node %s carries raw text", node.BlockType)
		}
	}
}

func TestColumnInheritanceRetainsBothSides(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<table>
			<colgroup align="center" styleCode="Rrule">
				<col width="40%"/>
				<col align="left"/>
			</colgroup>
			<col valign="top"/>
			<tbody><tr><td>a</td><td>b</td><td>c</td></tr></tbody>
		</table>
	</text>`)

	result := f.resolve(t, sectionID, body)
	if result.Counts.TableColumns != 3 {
		t.Fatalf("expected 3 columns got %d", result.Counts.TableColumns)
	}

	nodes, _ := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	tableNode, err := f.repos.TableNodes.GetByContentNode(context.Background(), nodes[0].ID)
	if err != nil {
		t.Fatalf("get table node: %v", err)
	}
	columns, err := f.repos.TableColumns.ListByTable(context.Background(), tableNode.ID)
	if err != nil {
		t.Fatalf("list columns: %v", err)
	}

	for i, col := range columns {
		if col.Sequence != i+1 {
			t.Fatalf("column %d: expected overall sequence %d got %d", i, i+1, col.Sequence)
		}
	}

	first := columns[0]
	if first.GroupSequence == nil || *first.GroupSequence != 1 {
		t.Fatalf("first column: expected group sequence 1 got %v", first.GroupSequence)
	}
	if first.Align != nil {
		t.Fatalf("first column has no own align, got %v", *first.Align)
	}
	if got := first.EffectiveAlign(); got == nil || *got != "center" {
		t.Fatalf("first column: expected inherited align center got %v", got)
	}
	if got := first.EffectiveStyleCode(); got == nil || *got != "Rrule" {
		t.Fatalf("first column: expected inherited style Rrule got %v", got)
	}

	second := columns[1]
	if got := second.EffectiveAlign(); got == nil || *got != "left" {
		t.Fatalf("second column: own align must win over group, got %v", got)
	}
	if second.GroupAlign == nil || *second.GroupAlign != "center" {
		t.Fatalf("second column: group align must be retained, got %v", second.GroupAlign)
	}

	third := columns[2]
	if third.GroupSequence != nil {
		t.Fatalf("standalone column must carry no group sequence, got %d", *third.GroupSequence)
	}
	if third.VAlign == nil || *third.VAlign != "top" {
		t.Fatalf("standalone column: expected valign top got %v", third.VAlign)
	}
	if third.GroupAlign != nil || third.GroupStyleCode != nil {
		t.Fatal("standalone column must carry no group defaults")
	}
}

func TestRowGroupsAndSpans(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<table width="100%">
			<caption>Dosing</caption>
			<thead><tr><th>Dose</th></tr></thead>
			<tbody>
				<tr styleCode="Botrule"><td rowspan="2" colspan="bogus">10 mg</td></tr>
				<tr><td>20 mg</td></tr>
			</tbody>
			<tfoot><tr><td>note</td></tr></tfoot>
		</table>
	</text>`)

	result := f.resolve(t, sectionID, body)
	if result.Counts.TableRows != 4 || result.Counts.TableCells != 4 {
		t.Fatalf("expected 4 rows and 4 cells got %+v", result.Counts)
	}

	nodes, _ := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	tableNode, err := f.repos.TableNodes.GetByContentNode(context.Background(), nodes[0].ID)
	if err != nil {
		t.Fatalf("get table node: %v", err)
	}
	if !tableNode.HasHeader || !tableNode.HasFooter {
		t.Fatalf("expected header and footer flags set: %+v", tableNode)
	}
	if tableNode.Caption == nil || *tableNode.Caption != "Dosing" {
		t.Fatalf("expected caption Dosing got %v", tableNode.Caption)
	}

	// Body row sequences restart at 1 independently of the header group.
	row, err := f.repos.TableRows.GetByKey(context.Background(), tableNode.ID, label.RowGroupBody, 1)
	if err != nil {
		t.Fatalf("get body row 1: %v", err)
	}
	if row.StyleCode == nil || *row.StyleCode != "Botrule" {
		t.Fatalf("expected row style Botrule got %v", row.StyleCode)
	}
	cell, err := f.repos.TableCells.GetByKey(context.Background(), row.ID, 1)
	if err != nil {
		t.Fatalf("get cell: %v", err)
	}
	if cell.RowSpan == nil || *cell.RowSpan != 2 {
		t.Fatalf("expected rowspan 2 got %v", cell.RowSpan)
	}
	if cell.ColSpan != nil {
		t.Fatalf("malformed colspan must default to nil, got %d", *cell.ColSpan)
	}
	if cell.Kind != label.CellData || cell.Markup != "10 mg" {
		t.Fatalf("unexpected cell %+v", cell)
	}

	header, err := f.repos.TableRows.GetByKey(context.Background(), tableNode.ID, label.RowGroupHeader, 1)
	if err != nil {
		t.Fatalf("get header row: %v", err)
	}
	headerCell, err := f.repos.TableCells.GetByKey(context.Background(), header.ID, 1)
	if err != nil {
		t.Fatalf("get header cell: %v", err)
	}
	if headerCell.Kind != label.CellHeader {
		t.Fatalf("expected header cell kind got %s", headerCell.Kind)
	}
}

func TestHighlightsAreVerbatimAndDeduplicated(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	markup := `<paragraph>Boxed <content styleCode="bold">warning</content></paragraph>`
	body := parseBody(t, `<text>
		<excerpt>
			<highlight><text>`+markup+`</text></highlight>
		</excerpt>
		<excerpt>
			<highlight><text>`+markup+`</text></highlight>
		</excerpt>
	</text>`)

	result := f.resolve(t, sectionID, body)
	if result.Counts.Highlights != 1 {
		t.Fatalf("identical highlight markup must be stored once, got %d", result.Counts.Highlights)
	}

	record, err := f.repos.Highlights.GetByMarkupHash(context.Background(), sectionID, mustHash(markup))
	if err != nil {
		t.Fatalf("get highlight: %v", err)
	}
	if record.Markup != markup {
		t.Fatalf("highlight markup not verbatim:\n got %q\nwant %q", record.Markup, markup)
	}
}

func TestSectionElementInputWalksTextBody(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<section>
		<excerpt>
			<highlight><text><paragraph>keep out of reach</paragraph></text></highlight>
		</excerpt>
		<text>
			<paragraph>Body paragraph.</paragraph>
		</text>
	</section>`)

	result := f.resolve(t, sectionID, body)
	if result.Counts.Highlights != 1 {
		t.Fatalf("expected 1 highlight got %d", result.Counts.Highlights)
	}
	if result.Counts.ContentNodes != 1 {
		t.Fatalf("expected 1 content node for the body paragraph got %d", result.Counts.ContentNodes)
	}
}

func TestMediaDispatch(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<renderMultiMedia referencedObject="MM-block" mediaType="image/jpeg"/>
		<paragraph>Structure: <renderMultiMedia referencedObject="MM-immediate"/><content><renderMultiMedia referencedObject="MM-buried"/></content></paragraph>
	</text>`)

	result := f.resolve(t, sectionID, body)
	if result.Counts.MediaReferences != 3 {
		t.Fatalf("expected 3 media references got %d", result.Counts.MediaReferences)
	}

	byRef := map[string]interfaces.MediaResolveInput{}
	for _, input := range f.media.inputs {
		byRef[input.ReferencedObject] = input
	}

	block, ok := byRef["MM-block"]
	if !ok || block.Inline {
		t.Fatalf("top-level placeholder must resolve as block-level: %+v", block)
	}
	if block.MediaType == nil || *block.MediaType != "image/jpeg" {
		t.Fatalf("expected media type image/jpeg got %v", block.MediaType)
	}
	if block.ContentNodeID == nil {
		t.Fatal("block-level placeholder must own a content node")
	}

	immediate, ok := byRef["MM-immediate"]
	if !ok || !immediate.Inline {
		t.Fatalf("placeholder inside a paragraph must resolve as inline: %+v", immediate)
	}

	buried, ok := byRef["MM-buried"]
	if !ok || !buried.Inline {
		t.Fatalf("placeholder buried in inline markup must resolve as inline: %+v", buried)
	}
	if buried.ContentNodeID == nil {
		t.Fatal("buried placeholder must attach to the enclosing block's node")
	}
}

func TestMediaInsideTableCellsIsResolved(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<table>
			<tbody>
				<tr><td>Structure: <renderMultiMedia referencedObject="MM-cell" mediaType="image/png"/></td></tr>
			</tbody>
		</table>
	</text>`)

	result := f.resolve(t, sectionID, body)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Counts.MediaReferences != 1 {
		t.Fatalf("expected 1 media reference got %d", result.Counts.MediaReferences)
	}

	if len(f.media.inputs) != 1 {
		t.Fatalf("expected 1 resolver call got %d", len(f.media.inputs))
	}
	input := f.media.inputs[0]
	if input.ReferencedObject != "MM-cell" || !input.Inline {
		t.Fatalf("cell placeholder must resolve as inline: %+v", input)
	}
	if input.MediaType == nil || *input.MediaType != "image/png" {
		t.Fatalf("expected media type image/png got %v", input.MediaType)
	}

	nodes, err := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	if err != nil || len(nodes) != 1 {
		t.Fatalf("expected the table node only, got %d (err %v)", len(nodes), err)
	}
	if input.ContentNodeID == nil || *input.ContentNodeID != nodes[0].ID {
		t.Fatalf("cell media must attach to the table node %s, got %v", nodes[0].ID, input.ContentNodeID)
	}

	second := f.resolve(t, sectionID, body)
	if second.Counts.MediaReferences != 0 {
		t.Fatalf("re-run attached %d media references, expected 0", second.Counts.MediaReferences)
	}
}

func TestMediaFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.media.fail = fmt.Errorf("media store offline")
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<renderMultiMedia referencedObject="MM1"/>
		<paragraph>still processed</paragraph>
	</text>`)

	result := f.resolve(t, sectionID, body)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 branch error got %d: %v", len(result.Errors), result.Errors)
	}
	if result.Counts.ContentNodes != 2 {
		t.Fatalf("siblings of the failed branch must still resolve, got %d nodes", result.Counts.ContentNodes)
	}
}

func TestUnknownBlockIsClassifiedOther(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<observationMedia ID="MM1"><text>chart</text></observationMedia>
	</text>`)

	f.resolve(t, sectionID, body)

	nodes, _ := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	if len(nodes) == 0 || nodes[0].BlockType != label.BlockOther {
		t.Fatalf("expected other-typed node, got %+v", nodes)
	}
}

func TestNestedBlocksFormATree(t *testing.T) {
	f := newFixture(t)
	sectionID := uuid.New()
	body := parseBody(t, `<text>
		<excerpt>
			<highlight><text><paragraph>hl</paragraph></text></highlight>
			<paragraph>trailing</paragraph>
		</excerpt>
	</text>`)

	f.resolve(t, sectionID, body)

	nodes, _ := f.repos.ContentNodes.ListBySection(context.Background(), sectionID)
	if len(nodes) != 2 {
		t.Fatalf("expected excerpt node and child paragraph, got %d", len(nodes))
	}
	var excerptNode, child *label.ContentNode
	for _, node := range nodes {
		switch node.BlockType {
		case label.BlockExcerpt:
			excerptNode = node
		case label.BlockParagraph:
			child = node
		}
	}
	if excerptNode == nil || child == nil {
		t.Fatalf("missing node kinds: %+v", nodes)
	}
	if excerptNode.ParentID != nil {
		t.Fatal("top-level excerpt must have nil parent")
	}
	if child.ParentID == nil || *child.ParentID != excerptNode.ID {
		t.Fatalf("child paragraph must point at the excerpt node, got %v", child.ParentID)
	}
	if child.Sequence != 1 {
		t.Fatalf("child sequence must restart at 1, got %d", child.Sequence)
	}
}
