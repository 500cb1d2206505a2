// Package catalog holds the pure normalization logic of the pipeline: category
// path resolution over the in-memory category forest and conversion of raw
// feed offers into canonical SKU records.
package catalog

import (
	"github.com/altegra/catalog-backend/internal/domain"
)

// CategoryTree resolves full ancestor paths over a parent-linked category
// forest loaded once per run. Lookups are memoized per leaf id; the tree is
// not safe for concurrent use while resolving.
type CategoryTree struct {
	nodes map[int]domain.Category
	memo  map[int][]string
}

func NewCategoryTree(categories []domain.Category) *CategoryTree {
	nodes := make(map[int]domain.Category, len(categories))
	for _, c := range categories {
		nodes[c.ID] = c
	}
	return &CategoryTree{
		nodes: nodes,
		memo:  make(map[int][]string),
	}
}

// ResolvePath walks parent pointers from leafID upward and returns category
// names in root-to-leaf order. A missing category or a missing parent
// truncates the walk and yields the partial path resolved so far. A parent
// cycle is detected with a visited set and treated as a dead end; malformed
// category data must never loop the resolver.
func (t *CategoryTree) ResolvePath(leafID int) []string {
	if cached, ok := t.memo[leafID]; ok {
		return cached
	}

	var reversed []string
	visited := make(map[int]struct{})
	id := leafID
	for {
		if _, seen := visited[id]; seen {
			break
		}
		visited[id] = struct{}{}

		node, ok := t.nodes[id]
		if !ok {
			break
		}
		reversed = append(reversed, node.Name)
		if node.ParentID == nil {
			break
		}
		id = *node.ParentID
	}

	path := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	t.memo[leafID] = path
	return path
}

// Size returns the number of loaded categories.
func (t *CategoryTree) Size() int {
	return len(t.nodes)
}
