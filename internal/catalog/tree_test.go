package catalog

import (
	"reflect"
	"testing"

	"github.com/altegra/catalog-backend/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestResolvePathRootToLeaf(t *testing.T) {
	tree := NewCategoryTree([]domain.Category{
		{ID: 1, Name: "Electronics"},
		{ID: 2, ParentID: intPtr(1), Name: "Phones"},
		{ID: 3, ParentID: intPtr(2), Name: "Android"},
		{ID: 4, ParentID: intPtr(3), Name: "Budget"},
	})

	got := tree.ResolvePath(4)
	want := []string{"Electronics", "Phones", "Android", "Budget"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolvePath(4) = %v, want %v", got, want)
	}

	if got := tree.ResolvePath(1); !reflect.DeepEqual(got, []string{"Electronics"}) {
		t.Fatalf("ResolvePath(1) = %v", got)
	}
}

func TestResolvePathUnknownLeaf(t *testing.T) {
	tree := NewCategoryTree([]domain.Category{{ID: 1, Name: "Electronics"}})
	if got := tree.ResolvePath(99); len(got) != 0 {
		t.Fatalf("ResolvePath(99) = %v, want empty", got)
	}
}

func TestResolvePathMissingParentTruncates(t *testing.T) {
	tree := NewCategoryTree([]domain.Category{
		{ID: 2, ParentID: intPtr(1), Name: "Phones"}, // parent 1 never loaded
		{ID: 3, ParentID: intPtr(2), Name: "Android"},
	})
	got := tree.ResolvePath(3)
	want := []string{"Phones", "Android"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolvePath(3) = %v, want %v", got, want)
	}
}

func TestResolvePathTerminatesOnCycle(t *testing.T) {
	tree := NewCategoryTree([]domain.Category{
		{ID: 1, ParentID: intPtr(3), Name: "A"},
		{ID: 2, ParentID: intPtr(1), Name: "B"},
		{ID: 3, ParentID: intPtr(2), Name: "C"},
	})

	got := tree.ResolvePath(2)
	// Walk: 2 -> 1 -> 3 -> (2 already visited, stop). Leaf-last order.
	want := []string{"C", "A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolvePath(2) = %v, want %v", got, want)
	}
}

func TestResolvePathSelfParent(t *testing.T) {
	tree := NewCategoryTree([]domain.Category{
		{ID: 7, ParentID: intPtr(7), Name: "Loop"},
	})
	got := tree.ResolvePath(7)
	if !reflect.DeepEqual(got, []string{"Loop"}) {
		t.Fatalf("ResolvePath(7) = %v", got)
	}
}

func TestResolvePathMemoized(t *testing.T) {
	tree := NewCategoryTree([]domain.Category{
		{ID: 1, Name: "Root"},
		{ID: 2, ParentID: intPtr(1), Name: "Leaf"},
	})
	first := tree.ResolvePath(2)
	second := tree.ResolvePath(2)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("memoized path differs: %v vs %v", first, second)
	}
	if len(tree.memo) != 1 {
		t.Fatalf("memo size = %d, want 1", len(tree.memo))
	}
}
