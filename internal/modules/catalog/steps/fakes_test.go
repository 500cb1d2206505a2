package steps

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/domain"
	"github.com/altegra/catalog-backend/internal/platform/elastic"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

func testLogger(tb interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

type fakeCategoryRepo struct {
	mu      sync.Mutex
	created []*domain.Category
}

func (f *fakeCategoryRepo) Create(ctx context.Context, tx *gorm.DB, categories []*domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, categories...)
	return nil
}

func (f *fakeCategoryRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Category, 0, len(f.created))
	for _, c := range f.created {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) ResolvePathSQL(ctx context.Context, tx *gorm.DB, leafID int) ([]string, error) {
	return nil, nil
}

type fakeSkuRepo struct {
	mu        sync.Mutex
	skus      []*domain.Sku
	similar   map[uuid.UUID][]uuid.UUID
	updateErr map[uuid.UUID]error
	updates   map[uuid.UUID]int
}

func newFakeSkuRepo(skus ...*domain.Sku) *fakeSkuRepo {
	return &fakeSkuRepo{
		skus:      skus,
		similar:   map[uuid.UUID][]uuid.UUID{},
		updateErr: map[uuid.UUID]error{},
		updates:   map[uuid.UUID]int{},
	}
}

func (f *fakeSkuRepo) Create(ctx context.Context, tx *gorm.DB, skus []*domain.Sku) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skus = append(f.skus, skus...)
	return nil
}

func (f *fakeSkuRepo) List(ctx context.Context, tx *gorm.DB) ([]*domain.Sku, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.Sku(nil), f.skus...), nil
}

func (f *fakeSkuRepo) ListUnlinked(ctx context.Context, tx *gorm.DB) ([]*domain.Sku, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Sku
	for _, s := range f.skus {
		if _, linked := f.similar[s.ID]; !linked {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSkuRepo) UpdateSimilar(ctx context.Context, tx *gorm.DB, id uuid.UUID, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[id]; err != nil {
		return err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	f.similar[id] = ids
	f.updates[id]++
	return nil
}

func (f *fakeSkuRepo) CountLinked(ctx context.Context, tx *gorm.DB) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.similar)), nil
}

type fakeSearchIndex struct {
	mu       sync.Mutex
	docs     map[string]map[string]any
	bulks    int
	matches  map[string][]elastic.Match
	queryErr map[string]error
	lastOpts elastic.MoreLikeThisOptions
}

func newFakeSearchIndex() *fakeSearchIndex {
	return &fakeSearchIndex{
		docs:     map[string]map[string]any{},
		matches:  map[string][]elastic.Match{},
		queryErr: map[string]error{},
	}
}

func (f *fakeSearchIndex) Ping(ctx context.Context) error { return nil }

func (f *fakeSearchIndex) EnsureIndex(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = map[string]map[string]any{}
	return nil
}

func (f *fakeSearchIndex) BulkUpsert(ctx context.Context, docs []elastic.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulks++
	for _, d := range docs {
		f.docs[d.ID] = d.Fields
	}
	return nil
}

func (f *fakeSearchIndex) MoreLikeThis(ctx context.Context, refID string, opts elastic.MoreLikeThisOptions) ([]elastic.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	if err := f.queryErr[refID]; err != nil {
		return nil, err
	}
	return f.matches[refID], nil
}
