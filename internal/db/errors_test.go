package db

import (
	"errors"
	"testing"

	"github.com/surrealdb/surrealdb.go"
)

func TestWrapQueryError(t *testing.T) {
	if wrapQueryError(nil) != nil {
		t.Fatal("nil error should stay nil")
	}

	conflict := &surrealdb.QueryError{Message: "Transaction conflict: resource busy"}
	if err := wrapQueryError(conflict); !errors.Is(err, ErrTransactionConflict) {
		t.Errorf("expected ErrTransactionConflict, got %v", err)
	}

	other := errors.New("socket closed")
	if err := wrapQueryError(other); err != other {
		t.Errorf("unknown errors should pass through, got %v", err)
	}
}
