package document

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/goliatone/go-spl/internal/content"
	"github.com/goliatone/go-spl/internal/markup"
	"github.com/goliatone/go-spl/internal/store"
	"github.com/goliatone/go-spl/label"
)

// IngestDocument processes one parsed SPL document end to end. The
// returned error covers input validation only; anything wrong inside the
// document lands on the result as a branch error.
func (s *service) IngestDocument(ctx context.Context, doc *etree.Document) (*IngestResult, error) {
	if doc == nil || doc.Root() == nil {
		return nil, ErrDocumentRequired
	}
	root := doc.Root()
	if root.Tag != "document" {
		return nil, ErrNotSPLDocument
	}

	setID := attrOf(root.SelectElement("setId"), "root")
	if setID == "" {
		return nil, ErrSetIDRequired
	}

	result := &IngestResult{}

	record, created, err := s.resolveHeader(ctx, root, setID)
	if err != nil {
		return nil, fmt.Errorf("document: resolve header: %w", err)
	}
	result.Document = record
	result.DocumentCreated = created

	for _, author := range root.SelectElements("author") {
		s.ingestAuthor(ctx, record.ID, author, result)
	}

	s.ingestSections(ctx, record.ID, root, result)

	s.logger.Info("document ingested",
		"set_id", record.SetID,
		"version", record.VersionNumber,
		"created", result.Total(),
		"errors", len(result.Errors))
	return result, nil
}

func (s *service) resolveHeader(ctx context.Context, root *etree.Element, setID string) (*label.Document, bool, error) {
	version := 1
	if raw := attrOf(root.SelectElement("versionNumber"), "value"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			version = n
		}
	}

	return store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.Document, error) {
			return s.repos.Documents.GetBySetVersion(ctx, setID, version)
		},
		func(ctx context.Context) (*label.Document, error) {
			code := root.SelectElement("code")
			return s.repos.Documents.Create(ctx, &label.Document{
				ID:            s.nextID(),
				SetID:         setID,
				DocumentGUID:  attrOf(root.SelectElement("id"), "root"),
				Code:          markup.Attr(code, "code"),
				CodeDisplay:   markup.Attr(code, "displayName"),
				Title:         textOf(root.SelectElement("title")),
				EffectiveTime: markup.Attr(root.SelectElement("effectiveTime"), "value"),
				VersionNumber: version,
			})
		},
	)
}

// ingestAuthor records the authoring organization, its link to the
// document, and any business operations declared beneath it.
func (s *service) ingestAuthor(ctx context.Context, documentID uuid.UUID, author *etree.Element, result *IngestResult) {
	orgEl := author.FindElement(".//representedOrganization")
	if orgEl == nil {
		return
	}
	idRoot := attrOf(orgEl.SelectElement("id"), "root")
	name := strings.TrimSpace(markup.TextContent(orgEl.SelectElement("name")))
	if idRoot == "" || name == "" {
		result.addError("author", idRoot, fmt.Errorf("organization missing id or name"))
		return
	}

	org, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.Organization, error) {
			return s.repos.Organizations.GetByIDRoot(ctx, idRoot)
		},
		func(ctx context.Context) (*label.Organization, error) {
			return s.repos.Organizations.Create(ctx, &label.Organization{
				ID:          s.nextID(),
				IDRoot:      idRoot,
				IDExtension: markup.Attr(orgEl.SelectElement("id"), "extension"),
				Name:        name,
			})
		},
	)
	if err != nil {
		result.addError("author", idRoot, err)
		return
	}
	if created {
		result.Organizations++
	}

	const role = "labeler"
	_, linkCreated, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.DocumentAuthor, error) {
			return s.repos.Authors.GetByLink(ctx, documentID, org.ID, role)
		},
		func(ctx context.Context) (*label.DocumentAuthor, error) {
			return s.repos.Authors.Create(ctx, &label.DocumentAuthor{
				ID:             s.nextID(),
				DocumentID:     documentID,
				OrganizationID: org.ID,
				Role:           role,
			})
		},
	)
	if err != nil {
		result.addError("author", idRoot, err)
		return
	}
	if linkCreated {
		result.Authors++
	}

	for _, performance := range author.FindElements(".//performance") {
		s.ingestBusinessOperation(ctx, org.ID, performance, result)
	}
}

func (s *service) ingestBusinessOperation(ctx context.Context, organizationID uuid.UUID, performance *etree.Element, result *IngestResult) {
	act := performance.SelectElement("actDefinition")
	if act == nil {
		return
	}
	codeEl := act.SelectElement("code")
	code := attrOf(codeEl, "code")
	if code == "" {
		return
	}

	var qualifiers []string
	for _, approval := range act.FindElements(".//approval") {
		if q := attrOf(approval.SelectElement("code"), "code"); q != "" {
			qualifiers = append(qualifiers, q)
		}
	}

	_, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.BusinessOperation, error) {
			return s.repos.BusinessOperations.GetByKey(ctx, organizationID, code)
		},
		func(ctx context.Context) (*label.BusinessOperation, error) {
			return s.repos.BusinessOperations.Create(ctx, &label.BusinessOperation{
				ID:             s.nextID(),
				OrganizationID: organizationID,
				Code:           code,
				CodeDisplay:    markup.Attr(codeEl, "displayName"),
				QualifierCodes: qualifiers,
			})
		},
	)
	if err != nil {
		result.addError("business_operation", code, err)
		return
	}
	if created {
		result.BusinessOperations++
	}
}

func (s *service) ingestSections(ctx context.Context, documentID uuid.UUID, root *etree.Element, result *IngestResult) {
	body := root.FindElement("component/structuredBody")
	if body == nil {
		s.logger.Debug("document has no structured body", "document_id", documentID)
		return
	}
	sequence := 0
	for _, component := range body.SelectElements("component") {
		section := component.SelectElement("section")
		if section == nil {
			continue
		}
		sequence++
		s.ingestSection(ctx, documentID, nil, section, sequence, result)
	}
}

// ingestSection records one section, resolves its content, extracts its
// products, and recurses into nested component sections. A failure stops
// this section's subtree only.
func (s *service) ingestSection(ctx context.Context, documentID uuid.UUID, parentID *uuid.UUID, sectionEl *etree.Element, sequence int, result *IngestResult) {
	guid := attrOf(sectionEl.SelectElement("id"), "root")
	if guid == "" {
		result.addError("section", fmt.Sprintf("#%d", sequence), fmt.Errorf("section missing id root"))
		return
	}

	code := sectionEl.SelectElement("code")
	record, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.Section, error) {
			return s.repos.Sections.GetByGUID(ctx, guid)
		},
		func(ctx context.Context) (*label.Section, error) {
			return s.repos.Sections.Create(ctx, &label.Section{
				ID:              s.nextID(),
				DocumentID:      documentID,
				ParentSectionID: parentID,
				GUID:            guid,
				Code:            markup.Attr(code, "code"),
				CodeDisplay:     markup.Attr(code, "displayName"),
				Title:           textOf(sectionEl.SelectElement("title")),
				EffectiveTime:   markup.Attr(sectionEl.SelectElement("effectiveTime"), "value"),
				Sequence:        sequence,
			})
		},
	)
	if err != nil {
		result.addError("section", guid, err)
		return
	}
	if created {
		result.Sections++
	}

	resolved, err := s.content.ResolveSection(ctx, content.ResolveSectionInput{
		SectionID: record.ID,
		Body:      sectionEl,
	})
	if err != nil {
		result.addError("section", guid, err)
	} else {
		result.Content.Add(resolved.Counts)
		for _, resolveErr := range resolved.Errors {
			result.addError("section", guid, resolveErr)
		}
	}

	for _, subject := range sectionEl.SelectElements("subject") {
		if product := subject.FindElement(".//manufacturedProduct"); product != nil {
			s.ingestProduct(ctx, record.ID, product, result)
		}
	}

	childSeq := 0
	for _, component := range sectionEl.SelectElements("component") {
		child := component.SelectElement("section")
		if child == nil {
			continue
		}
		childSeq++
		s.ingestSection(ctx, documentID, &record.ID, child, childSeq, result)
	}
}

func (s *service) ingestProduct(ctx context.Context, sectionID uuid.UUID, productEl *etree.Element, result *IngestResult) {
	// Some labels nest manufacturedProduct/manufacturedProduct (or
	// manufacturedMedicine); descend to the element that carries the name.
	if inner := productEl.SelectElement("manufacturedProduct"); inner != nil {
		productEl = inner
	} else if inner := productEl.SelectElement("manufacturedMedicine"); inner != nil {
		productEl = inner
	}

	name := strings.TrimSpace(markup.TextContent(productEl.SelectElement("name")))
	if name == "" {
		result.addError("product", "", fmt.Errorf("product missing name"))
		return
	}

	product, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.Product, error) {
			return s.repos.Products.GetByKey(ctx, sectionID, name)
		},
		func(ctx context.Context) (*label.Product, error) {
			return s.repos.Products.Create(ctx, &label.Product{
				ID:        s.nextID(),
				SectionID: sectionID,
				Code:      markup.Attr(productEl.SelectElement("code"), "code"),
				Name:      name,
				FormCode:  markup.Attr(productEl.SelectElement("formCode"), "code"),
			})
		},
	)
	if err != nil {
		result.addError("product", name, err)
		return
	}
	if created {
		result.Products++
	}

	for i, ingredientEl := range productEl.SelectElements("ingredient") {
		s.ingestIngredient(ctx, product.ID, ingredientEl, i+1, result)
	}

	sequence := 0
	for _, asContent := range productEl.SelectElements("asContent") {
		s.ingestPackaging(ctx, product.ID, nil, asContent, &sequence, result)
	}
}

func (s *service) ingestIngredient(ctx context.Context, productID uuid.UUID, ingredientEl *etree.Element, sequence int, result *IngestResult) {
	substance := ingredientEl.SelectElement("ingredientSubstance")
	if substance == nil {
		substance = ingredientEl.SelectElement("activeIngredientSubstance")
	}
	if substance == nil {
		result.addError("ingredient", fmt.Sprintf("#%d", sequence), fmt.Errorf("ingredient missing substance"))
		return
	}
	name := strings.TrimSpace(markup.TextContent(substance.SelectElement("name")))
	if name == "" {
		result.addError("ingredient", fmt.Sprintf("#%d", sequence), fmt.Errorf("substance missing name"))
		return
	}

	classCode := strings.TrimSpace(ingredientEl.SelectAttrValue("classCode", ""))
	if classCode == "" {
		classCode = "IACT"
	}

	quantity := ingredientEl.SelectElement("quantity")
	_, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.Ingredient, error) {
			return s.repos.Ingredients.GetByKey(ctx, productID, sequence)
		},
		func(ctx context.Context) (*label.Ingredient, error) {
			var numerator, denominator *string
			if quantity != nil {
				numerator = quantityString(quantity.SelectElement("numerator"))
				denominator = quantityString(quantity.SelectElement("denominator"))
			}
			return s.repos.Ingredients.Create(ctx, &label.Ingredient{
				ID:                  s.nextID(),
				ProductID:           productID,
				ClassCode:           classCode,
				SubstanceCode:       markup.Attr(substance.SelectElement("code"), "code"),
				SubstanceName:       name,
				QuantityNumerator:   numerator,
				QuantityDenominator: denominator,
				Sequence:            sequence,
			})
		},
	)
	if err != nil {
		result.addError("ingredient", name, err)
		return
	}
	if created {
		result.Ingredients++
	}
}

// ingestPackaging records one packaging level and recurses into nested
// asContent containers. Sequence is monotonic across the whole hierarchy
// of a product.
func (s *service) ingestPackaging(ctx context.Context, productID uuid.UUID, parentID *uuid.UUID, asContent *etree.Element, sequence *int, result *IngestResult) {
	container := asContent.SelectElement("containerPackagedProduct")
	if container == nil {
		container = asContent.SelectElement("containerPackagedMedicine")
	}
	if container == nil {
		return
	}
	*sequence++
	seq := *sequence

	item, created, err := store.GetOrCreate(ctx,
		func(ctx context.Context) (*label.PackagingItem, error) {
			return s.repos.Packaging.GetByKey(ctx, productID, seq)
		},
		func(ctx context.Context) (*label.PackagingItem, error) {
			return s.repos.Packaging.Create(ctx, &label.PackagingItem{
				ID:        s.nextID(),
				ProductID: productID,
				ParentID:  parentID,
				Code:      markup.Attr(container.SelectElement("code"), "code"),
				FormCode:  markup.Attr(container.SelectElement("formCode"), "code"),
				Quantity:  quantityString(asContent.FindElement("quantity/numerator")),
				Sequence:  seq,
			})
		},
	)
	if err != nil {
		result.addError("packaging", fmt.Sprintf("#%d", seq), err)
		return
	}
	if created {
		result.PackagingItems++
	}

	for _, nested := range container.SelectElements("asContent") {
		s.ingestPackaging(ctx, productID, &item.ID, nested, sequence, result)
	}
}

// attrOf is a nil-safe raw attribute read used for required fields where
// blank and absent mean the same thing.
func attrOf(el *etree.Element, key string) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.SelectAttrValue(key, ""))
}

func textOf(el *etree.Element) *string {
	if el == nil {
		return nil
	}
	text := strings.TrimSpace(markup.TextContent(el))
	if text == "" {
		return nil
	}
	return &text
}

// quantityString keeps the source lexical form of a quantity: the value
// followed by the unit when the unit carries information.
func quantityString(el *etree.Element) *string {
	if el == nil {
		return nil
	}
	value := strings.TrimSpace(el.SelectAttrValue("value", ""))
	if value == "" {
		return nil
	}
	unit := strings.TrimSpace(el.SelectAttrValue("unit", ""))
	if unit != "" && unit != "1" {
		combined := value + " " + unit
		return &combined
	}
	return &value
}
