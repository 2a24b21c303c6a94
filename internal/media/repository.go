package media

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-spl/label"
)

func NewMediaReferenceRecordRepository(db *bun.DB) repository.Repository[*label.MediaReference] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*label.MediaReference]{
		NewRecord: func() *label.MediaReference { return &label.MediaReference{} },
		GetID: func(m *label.MediaReference) uuid.UUID {
			return m.ID
		},
		SetID: func(m *label.MediaReference, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "referenced_object"
		},
		GetIdentifierValue: func(m *label.MediaReference) string {
			return m.ReferencedObject
		},
	})
}
