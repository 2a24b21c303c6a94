package document_test

import (
	"context"
	"testing"

	"github.com/beevik/etree"

	"github.com/goliatone/go-spl/internal/content"
	"github.com/goliatone/go-spl/internal/document"
	"github.com/goliatone/go-spl/internal/media"
)

const splFixture = `<?xml version="1.0" encoding="UTF-8"?>
<document>
  <id root="11111111-aaaa-bbbb-cccc-000000000001"/>
  <code code="34391-3" displayName="HUMAN PRESCRIPTION DRUG LABEL"/>
  <title>EXAMPLUM (examplium chloride) tablet</title>
  <effectiveTime value="20230115"/>
  <setId root="22222222-aaaa-bbbb-cccc-000000000002"/>
  <versionNumber value="3"/>
  <author>
    <assignedEntity>
      <representedOrganization>
        <id root="004567890"/>
        <name>Examplum Pharmaceuticals Inc.</name>
        <assignedEntity>
          <assignedOrganization>
            <id root="104567890"/>
            <name>Examplum Manufacturing LLC</name>
          </assignedOrganization>
          <performance>
            <actDefinition>
              <code code="C43360" displayName="manufacture"/>
              <subjectOf>
                <approval>
                  <code code="C73583" displayName="NDA"/>
                </approval>
              </subjectOf>
            </actDefinition>
          </performance>
        </assignedEntity>
      </representedOrganization>
    </assignedEntity>
  </author>
  <component>
    <structuredBody>
      <component>
        <section>
          <id root="33333333-aaaa-bbbb-cccc-000000000003"/>
          <code code="34067-9" displayName="INDICATIONS &amp; USAGE SECTION"/>
          <title>1 INDICATIONS AND USAGE</title>
          <effectiveTime value="20230115"/>
          <excerpt>
            <highlight>
              <text><paragraph>EXAMPLUM is indicated for examples.</paragraph></text>
            </highlight>
          </excerpt>
          <text>
            <paragraph>EXAMPLUM is indicated for the treatment of examples in adults.</paragraph>
            <list listType="ordered">
              <item>Primary exampleosis</item>
              <item>Secondary exampleosis</item>
            </list>
          </text>
          <component>
            <section>
              <id root="44444444-aaaa-bbbb-cccc-000000000004"/>
              <code code="34068-7" displayName="DOSAGE &amp; ADMINISTRATION SECTION"/>
              <title>1.1 Dosing</title>
              <text>
                <paragraph>Take one tablet daily.</paragraph>
              </text>
            </section>
          </component>
        </section>
      </component>
      <component>
        <section>
          <id root="55555555-aaaa-bbbb-cccc-000000000005"/>
          <code code="48780-1" displayName="SPL PRODUCT DATA ELEMENTS SECTION"/>
          <subject>
            <manufacturedProduct>
              <manufacturedProduct>
                <code code="0000-1111-22"/>
                <name>EXAMPLUM</name>
                <formCode code="C42998" displayName="TABLET"/>
                <ingredient classCode="ACTIB">
                  <quantity>
                    <numerator value="10" unit="mg"/>
                    <denominator value="1" unit="1"/>
                  </quantity>
                  <ingredientSubstance>
                    <code code="EXAMPLE123"/>
                    <name>EXAMPLIUM CHLORIDE</name>
                  </ingredientSubstance>
                </ingredient>
                <ingredient classCode="IACT">
                  <ingredientSubstance>
                    <code code="FILLER456"/>
                    <name>MICROCRYSTALLINE CELLULOSE</name>
                  </ingredientSubstance>
                </ingredient>
                <asContent>
                  <quantity>
                    <numerator value="30" unit="1"/>
                    <denominator value="1"/>
                  </quantity>
                  <containerPackagedProduct>
                    <code code="0000-1111-33"/>
                    <formCode code="C43169" displayName="BOTTLE"/>
                    <asContent>
                      <quantity>
                        <numerator value="12" unit="1"/>
                        <denominator value="1"/>
                      </quantity>
                      <containerPackagedProduct>
                        <code code="0000-1111-44"/>
                        <formCode code="C43182" displayName="CARTON"/>
                      </containerPackagedProduct>
                    </asContent>
                  </containerPackagedProduct>
                </asContent>
              </manufacturedProduct>
            </manufacturedProduct>
          </subject>
          <text>
            <paragraph>Product data.</paragraph>
          </text>
        </section>
      </component>
    </structuredBody>
  </component>
</document>`

func parseDocument(t *testing.T, body string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func newService(t *testing.T) (document.Service, document.Repositories) {
	t.Helper()
	resolver, err := media.NewResolver(media.NewMemoryRepository())
	if err != nil {
		t.Fatalf("new media resolver: %v", err)
	}
	contentSvc, err := content.NewService(content.NewMemoryRepositories(), content.WithMediaResolver(resolver))
	if err != nil {
		t.Fatalf("new content service: %v", err)
	}
	repos := document.NewMemoryRepositories()
	svc, err := document.NewService(repos, contentSvc)
	if err != nil {
		t.Fatalf("new document service: %v", err)
	}
	return svc, repos
}

func TestIngestDocumentExtractsHeader(t *testing.T) {
	svc, _ := newService(t)

	result, err := svc.IngestDocument(context.Background(), parseDocument(t, splFixture))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	doc := result.Document
	if !result.DocumentCreated {
		t.Fatal("expected new document record")
	}
	if doc.SetID != "22222222-aaaa-bbbb-cccc-000000000002" {
		t.Fatalf("wrong set id: %s", doc.SetID)
	}
	if doc.DocumentGUID != "11111111-aaaa-bbbb-cccc-000000000001" {
		t.Fatalf("wrong document guid: %s", doc.DocumentGUID)
	}
	if doc.VersionNumber != 3 {
		t.Fatalf("wrong version: %d", doc.VersionNumber)
	}
	if doc.Code == nil || *doc.Code != "34391-3" {
		t.Fatalf("wrong code: %v", doc.Code)
	}
	if doc.Title == nil || *doc.Title != "EXAMPLUM (examplium chloride) tablet" {
		t.Fatalf("wrong title: %v", doc.Title)
	}
	if doc.EffectiveTime == nil || *doc.EffectiveTime != "20230115" {
		t.Fatalf("wrong effective time: %v", doc.EffectiveTime)
	}
}

func TestIngestDocumentBuildsSectionTree(t *testing.T) {
	svc, repos := newService(t)

	result, err := svc.IngestDocument(context.Background(), parseDocument(t, splFixture))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Sections != 3 {
		t.Fatalf("expected 3 sections got %d", result.Sections)
	}

	sections, err := repos.Sections.ListByDocument(context.Background(), result.Document.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 persisted sections got %d", len(sections))
	}

	parent, err := repos.Sections.GetByGUID(context.Background(), "33333333-aaaa-bbbb-cccc-000000000003")
	if err != nil {
		t.Fatalf("get parent section: %v", err)
	}
	if parent.ParentSectionID != nil {
		t.Fatal("top-level section must have nil parent")
	}
	if parent.Title == nil || *parent.Title != "1 INDICATIONS AND USAGE" {
		t.Fatalf("wrong title: %v", parent.Title)
	}

	child, err := repos.Sections.GetByGUID(context.Background(), "44444444-aaaa-bbbb-cccc-000000000004")
	if err != nil {
		t.Fatalf("get child section: %v", err)
	}
	if child.ParentSectionID == nil || *child.ParentSectionID != parent.ID {
		t.Fatalf("child section must point at parent, got %v", child.ParentSectionID)
	}
	if child.Sequence != 1 {
		t.Fatalf("child sequence must restart at 1, got %d", child.Sequence)
	}
}

func TestIngestDocumentResolvesContent(t *testing.T) {
	svc, _ := newService(t)

	result, err := svc.IngestDocument(context.Background(), parseDocument(t, splFixture))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	// Section one: paragraph + list with two items, plus one highlight.
	// Section two: child paragraph. Product section: one paragraph.
	if result.Content.Highlights != 1 {
		t.Fatalf("expected 1 highlight got %d", result.Content.Highlights)
	}
	if result.Content.ContentNodes != 4 {
		t.Fatalf("expected 4 content nodes got %d", result.Content.ContentNodes)
	}
	if result.Content.ListItems != 2 {
		t.Fatalf("expected 2 list items got %d", result.Content.ListItems)
	}
}

func TestIngestDocumentExtractsProductData(t *testing.T) {
	svc, repos := newService(t)

	result, err := svc.IngestDocument(context.Background(), parseDocument(t, splFixture))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Products != 1 || result.Ingredients != 2 || result.PackagingItems != 2 {
		t.Fatalf("product extraction mismatch: %+v", result)
	}

	section, _ := repos.Sections.GetByGUID(context.Background(), "55555555-aaaa-bbbb-cccc-000000000005")
	product, err := repos.Products.GetByKey(context.Background(), section.ID, "EXAMPLUM")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.FormCode == nil || *product.FormCode != "C42998" {
		t.Fatalf("wrong form code: %v", product.FormCode)
	}

	active, err := repos.Ingredients.GetByKey(context.Background(), product.ID, 1)
	if err != nil {
		t.Fatalf("get active ingredient: %v", err)
	}
	if active.ClassCode != "ACTIB" || active.SubstanceName != "EXAMPLIUM CHLORIDE" {
		t.Fatalf("unexpected ingredient %+v", active)
	}
	if active.QuantityNumerator == nil || *active.QuantityNumerator != "10 mg" {
		t.Fatalf("quantity must keep its lexical form, got %v", active.QuantityNumerator)
	}
	if active.QuantityDenominator == nil || *active.QuantityDenominator != "1" {
		t.Fatalf("unit '1' must not be appended, got %v", active.QuantityDenominator)
	}

	inactive, err := repos.Ingredients.GetByKey(context.Background(), product.ID, 2)
	if err != nil {
		t.Fatalf("get inactive ingredient: %v", err)
	}
	if inactive.QuantityNumerator != nil {
		t.Fatalf("ingredient without quantity must store nil, got %v", inactive.QuantityNumerator)
	}

	bottle, err := repos.Packaging.GetByKey(context.Background(), product.ID, 1)
	if err != nil {
		t.Fatalf("get bottle: %v", err)
	}
	if bottle.ParentID != nil {
		t.Fatal("outer packaging must have nil parent")
	}
	if bottle.Quantity == nil || *bottle.Quantity != "30" {
		t.Fatalf("wrong bottle quantity: %v", bottle.Quantity)
	}

	carton, err := repos.Packaging.GetByKey(context.Background(), product.ID, 2)
	if err != nil {
		t.Fatalf("get carton: %v", err)
	}
	if carton.ParentID == nil || *carton.ParentID != bottle.ID {
		t.Fatalf("nested packaging must point at its container, got %v", carton.ParentID)
	}
}

func TestIngestDocumentRecordsAuthorsAndOperations(t *testing.T) {
	svc, repos := newService(t)

	result, err := svc.IngestDocument(context.Background(), parseDocument(t, splFixture))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Organizations != 1 || result.Authors != 1 {
		t.Fatalf("expected 1 organization and 1 author link, got %+v", result)
	}
	if result.BusinessOperations != 1 {
		t.Fatalf("expected 1 business operation got %d", result.BusinessOperations)
	}

	org, err := repos.Organizations.GetByIDRoot(context.Background(), "004567890")
	if err != nil {
		t.Fatalf("get organization: %v", err)
	}
	if org.Name != "Examplum Pharmaceuticals Inc." {
		t.Fatalf("wrong organization name: %s", org.Name)
	}

	op, err := repos.BusinessOperations.GetByKey(context.Background(), org.ID, "C43360")
	if err != nil {
		t.Fatalf("get operation: %v", err)
	}
	if op.CodeDisplay == nil || *op.CodeDisplay != "manufacture" {
		t.Fatalf("wrong operation display: %v", op.CodeDisplay)
	}
	if len(op.QualifierCodes) != 1 || op.QualifierCodes[0] != "C73583" {
		t.Fatalf("wrong qualifiers: %v", op.QualifierCodes)
	}
}

func TestIngestDocumentIsIdempotent(t *testing.T) {
	svc, _ := newService(t)

	first, err := svc.IngestDocument(context.Background(), parseDocument(t, splFixture))
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if first.Total() == 0 {
		t.Fatal("first ingest created nothing")
	}

	second, err := svc.IngestDocument(context.Background(), parseDocument(t, splFixture))
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if len(second.Errors) != 0 {
		t.Fatalf("unexpected errors on re-ingest: %v", second.Errors)
	}
	if got := second.Total(); got != 0 {
		t.Fatalf("re-ingest created %d records, expected 0", got)
	}
}

func TestIngestDocumentValidatesInput(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.IngestDocument(context.Background(), nil); err != document.ErrDocumentRequired {
		t.Fatalf("expected ErrDocumentRequired got %v", err)
	}
	if _, err := svc.IngestDocument(context.Background(), parseDocument(t, `<other/>`)); err != document.ErrNotSPLDocument {
		t.Fatalf("expected ErrNotSPLDocument got %v", err)
	}
	if _, err := svc.IngestDocument(context.Background(), parseDocument(t, `<document><id root="x"/></document>`)); err != document.ErrSetIDRequired {
		t.Fatalf("expected ErrSetIDRequired got %v", err)
	}
}

func TestIngestDocumentContinuesPastBadSection(t *testing.T) {
	svc, _ := newService(t)
	fixture := `<document>
	  <setId root="SET-1"/>
	  <versionNumber value="1"/>
	  <component><structuredBody>
	    <component><section>
	      <text><paragraph>orphan, no id</paragraph></text>
	    </section></component>
	    <component><section>
	      <id root="GUID-OK"/>
	      <text><paragraph>valid</paragraph></text>
	    </section></component>
	  </structuredBody></component>
	</document>`

	result, err := svc.IngestDocument(context.Background(), parseDocument(t, fixture))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 branch error got %d: %v", len(result.Errors), result.Errors)
	}
	if result.Sections != 1 {
		t.Fatalf("valid sibling section must still be ingested, got %d", result.Sections)
	}
	if result.Content.ContentNodes != 1 {
		t.Fatalf("valid section content must resolve, got %d nodes", result.Content.ContentNodes)
	}
}
