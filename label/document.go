package label

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Document is the SPL document header. A document is identified by its
// set id plus version number: re-submissions of the same labeling share
// the set id and bump the version.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID            uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SetID         string    `bun:"set_id,notnull" json:"set_id"`
	DocumentGUID  string    `bun:"document_guid,notnull" json:"document_guid"`
	Code          *string   `bun:"code" json:"code,omitempty"`
	CodeDisplay   *string   `bun:"code_display" json:"code_display,omitempty"`
	Title         *string   `bun:"title" json:"title,omitempty"`
	EffectiveTime *string   `bun:"effective_time" json:"effective_time,omitempty"`
	VersionNumber int       `bun:"version_number,notnull" json:"version_number"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Section is one section of the structured body, identified by its GUID.
// Sections nest through ParentSectionID and keep their document order in
// Sequence.
type Section struct {
	bun.BaseModel `bun:"table:sections,alias:s"`

	ID              uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	DocumentID      uuid.UUID  `bun:"document_id,notnull,type:uuid" json:"document_id"`
	ParentSectionID *uuid.UUID `bun:"parent_section_id,type:uuid,nullzero" json:"parent_section_id,omitempty"`
	GUID            string     `bun:"guid,notnull" json:"guid"`
	Code            *string    `bun:"code" json:"code,omitempty"`
	CodeDisplay     *string    `bun:"code_display" json:"code_display,omitempty"`
	Title           *string    `bun:"title" json:"title,omitempty"`
	EffectiveTime   *string    `bun:"effective_time" json:"effective_time,omitempty"`
	Sequence        int        `bun:"sequence,notnull" json:"sequence"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Organization is a labeler, registrant, or establishment referenced by
// the document header, identified by its id root (typically a DUNS
// number).
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:o"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	IDRoot      string    `bun:"id_root,notnull" json:"id_root"`
	IDExtension *string   `bun:"id_extension" json:"id_extension,omitempty"`
	Name        string    `bun:"name,notnull" json:"name"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// DocumentAuthor links a document to an authoring organization.
type DocumentAuthor struct {
	bun.BaseModel `bun:"table:document_authors,alias:da"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	DocumentID     uuid.UUID `bun:"document_id,notnull,type:uuid" json:"document_id"`
	OrganizationID uuid.UUID `bun:"organization_id,notnull,type:uuid" json:"organization_id"`
	Role           string    `bun:"role,notnull" json:"role"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Product is a manufactured product declared inside a section subject.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SectionID uuid.UUID `bun:"section_id,notnull,type:uuid" json:"section_id"`
	Code      *string   `bun:"code" json:"code,omitempty"`
	Name      string    `bun:"name,notnull" json:"name"`
	FormCode  *string   `bun:"form_code" json:"form_code,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Ingredient is one ingredient row of a product, ordered by Sequence.
// Quantities keep their source lexical form; the resolver never
// normalizes units.
type Ingredient struct {
	bun.BaseModel `bun:"table:ingredients,alias:i"`

	ID                  uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ProductID           uuid.UUID `bun:"product_id,notnull,type:uuid" json:"product_id"`
	ClassCode           string    `bun:"class_code,notnull" json:"class_code"`
	SubstanceCode       *string   `bun:"substance_code" json:"substance_code,omitempty"`
	SubstanceName       string    `bun:"substance_name,notnull" json:"substance_name"`
	QuantityNumerator   *string   `bun:"quantity_numerator" json:"quantity_numerator,omitempty"`
	QuantityDenominator *string   `bun:"quantity_denominator" json:"quantity_denominator,omitempty"`
	Sequence            int       `bun:"sequence,notnull" json:"sequence"`
	CreatedAt           time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// PackagingItem is one level of a product's packaging hierarchy.
type PackagingItem struct {
	bun.BaseModel `bun:"table:packaging_items,alias:pi"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ProductID uuid.UUID  `bun:"product_id,notnull,type:uuid" json:"product_id"`
	ParentID  *uuid.UUID `bun:"parent_id,type:uuid,nullzero" json:"parent_id,omitempty"`
	Code      *string    `bun:"code" json:"code,omitempty"`
	FormCode  *string    `bun:"form_code" json:"form_code,omitempty"`
	Quantity  *string    `bun:"quantity" json:"quantity,omitempty"`
	Sequence  int        `bun:"sequence,notnull" json:"sequence"`
	CreatedAt time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// BusinessOperation records an operation an organization performs
// (manufacture, repack, relabel, ...) together with its qualifier codes.
type BusinessOperation struct {
	bun.BaseModel `bun:"table:business_operations,alias:bo"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID `bun:"organization_id,notnull,type:uuid" json:"organization_id"`
	Code           string    `bun:"code,notnull" json:"code"`
	CodeDisplay    *string   `bun:"code_display" json:"code_display,omitempty"`
	QualifierCodes []string  `bun:"qualifier_codes,type:jsonb" json:"qualifier_codes,omitempty"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
