package document

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-spl/label"
)

func NewDocumentRecordRepository(db *bun.DB) repository.Repository[*label.Document] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.Document]{
		NewRecord: func() *label.Document { return &label.Document{} },
		GetID: func(d *label.Document) uuid.UUID {
			return d.ID
		},
		SetID: func(d *label.Document, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "document_guid"
		},
		GetIdentifierValue: func(d *label.Document) string {
			return d.DocumentGUID
		},
	})
}

func NewSectionRecordRepository(db *bun.DB) repository.Repository[*label.Section] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.Section]{
		NewRecord: func() *label.Section { return &label.Section{} },
		GetID: func(s *label.Section) uuid.UUID {
			return s.ID
		},
		SetID: func(s *label.Section, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "guid"
		},
		GetIdentifierValue: func(s *label.Section) string {
			return s.GUID
		},
	})
}

func NewOrganizationRecordRepository(db *bun.DB) repository.Repository[*label.Organization] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.Organization]{
		NewRecord: func() *label.Organization { return &label.Organization{} },
		GetID: func(o *label.Organization) uuid.UUID {
			return o.ID
		},
		SetID: func(o *label.Organization, id uuid.UUID) {
			o.ID = id
		},
		GetIdentifier: func() string {
			return "id_root"
		},
		GetIdentifierValue: func(o *label.Organization) string {
			return o.IDRoot
		},
	})
}
