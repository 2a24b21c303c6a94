package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-spl/internal/store"
)

func TestGetOrCreateReturnsExisting(t *testing.T) {
	creates := 0
	record, created, err := store.GetOrCreate(context.Background(),
		func(context.Context) (string, error) { return "existing", nil },
		func(context.Context) (string, error) { creates++; return "new", nil },
	)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if created {
		t.Fatal("expected existing record, got created=true")
	}
	if record != "existing" || creates != 0 {
		t.Fatalf("expected existing record without create, got %q creates=%d", record, creates)
	}
}

func TestGetOrCreateCreatesOnMiss(t *testing.T) {
	record, created, err := store.GetOrCreate(context.Background(),
		func(context.Context) (string, error) {
			return "", &store.NotFoundError{Resource: "content_node", Key: "1"}
		},
		func(context.Context) (string, error) { return "new", nil },
	)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created || record != "new" {
		t.Fatalf("expected created new record, got %q created=%v", record, created)
	}
}

func TestGetOrCreatePropagatesLookupFailure(t *testing.T) {
	boom := errors.New("storage offline")
	_, _, err := store.GetOrCreate(context.Background(),
		func(context.Context) (string, error) { return "", boom },
		func(context.Context) (string, error) { return "new", nil },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup failure, got %v", err)
	}
}

func TestGetOrCreateRereadsWinnerOnConflict(t *testing.T) {
	calls := 0
	record, created, err := store.GetOrCreate(context.Background(),
		func(context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", &store.NotFoundError{Resource: "list_item", Key: "1"}
			}
			return "winner", nil
		},
		func(context.Context) (string, error) {
			return "", errors.New("UNIQUE constraint failed")
		},
	)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if created || record != "winner" {
		t.Fatalf("expected conflict re-read to return winner, got %q created=%v", record, created)
	}
}

func TestGetOrCreateSurfacesCreateFailure(t *testing.T) {
	boom := errors.New("insert failed")
	_, _, err := store.GetOrCreate(context.Background(),
		func(context.Context) (string, error) {
			return "", &store.NotFoundError{Resource: "table_cell", Key: "1"}
		},
		func(context.Context) (string, error) { return "", boom },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected create failure, got %v", err)
	}
}
