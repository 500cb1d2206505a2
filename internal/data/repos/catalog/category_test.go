package catalog

import (
	"context"
	"reflect"
	"testing"

	"github.com/altegra/catalog-backend/internal/data/repos/testutil"
	"github.com/altegra/catalog-backend/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestCategoryRepoCreateAndGetAll(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCategoryRepo(db, testutil.Logger(t))

	cats := []*domain.Category{
		{ID: 1, Name: "A"},
		{ID: 2, ParentID: intPtr(1), Name: "B"},
		{ID: 3, ParentID: intPtr(2), Name: "C"},
	}
	if err := repo.Create(ctx, tx, cats); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, err := repo.GetAll(ctx, tx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("GetAll len = %d, want 3", len(rows))
	}
	if rows[0].ID != 1 || rows[2].Name != "C" {
		t.Fatalf("GetAll order wrong: %+v", rows)
	}
}

func TestCategoryRepoResolvePathSQL(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCategoryRepo(db, testutil.Logger(t))

	testutil.SeedCategory(t, ctx, tx, 1, nil, "A")
	testutil.SeedCategory(t, ctx, tx, 2, intPtr(1), "B")
	testutil.SeedCategory(t, ctx, tx, 3, intPtr(2), "C")

	got, err := repo.ResolvePathSQL(ctx, tx, 3)
	if err != nil {
		t.Fatalf("ResolvePathSQL: %v", err)
	}
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolvePathSQL = %v, want %v", got, want)
	}

	got, err = repo.ResolvePathSQL(ctx, tx, 42)
	if err != nil {
		t.Fatalf("ResolvePathSQL missing leaf: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ResolvePathSQL(42) = %v, want empty", got)
	}
}
