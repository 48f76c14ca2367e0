package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23514",
		Message:        "new row violates check constraint",
		ConstraintName: "clothing_items_price_check",
		TableName:      "clothing_items",
	}
	err := Wrap(CodeValidation, fmt.Errorf("insert item: %w", pgErr), "invalid listing")

	d := Dump(err)
	if d.Code != CodeValidation {
		t.Fatalf("expected validation code, got %q", d.Code)
	}
	if d.PGCode != "23514" || d.PGConstraint != "clothing_items_price_check" || d.PGTable != "clothing_items" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) < 3 {
		t.Fatalf("expected full unwrap chain, got %v", d.Chain)
	}

	fields := d.Fields()
	if fields["pg_constraint"] != "clothing_items_price_check" {
		t.Fatalf("missing constraint field: %v", fields)
	}
	if _, ok := fields["pg_column"]; ok {
		t.Fatalf("empty pg_column should be omitted: %v", fields)
	}
}

func TestDumpFallsBackToPq(t *testing.T) {
	err := fmt.Errorf("upsert profile: %w", &pq.Error{Code: "23503", Constraint: "user_profiles_id_fkey"})

	d := Dump(err)
	if d.PGCode != "23503" || d.PGConstraint != "user_profiles_id_fkey" {
		t.Fatalf("unexpected pq fields %+v", d)
	}
	if d.Code != "" {
		t.Fatalf("untyped error should have no code, got %q", d.Code)
	}
}

func TestDumpWithoutDatabaseError(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", d)
	}

	fields := Dump(New(CodeNotFound, "listing not found")).Fields()
	if len(fields) != 3 {
		t.Fatalf("expected only error, code and chain fields, got %v", fields)
	}
}
