package steps

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/data/repos"
	"github.com/altegra/catalog-backend/internal/platform/elastic"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

const (
	defaultScoreThreshold  = 0.5
	defaultMaxSimilar      = 2
	defaultMinTermFreq     = 2
	defaultMinDocFreq      = 2
	defaultMaxQueryTerms   = 10
	defaultCandidateSize   = 10
	defaultLinkConcurrency = 8
)

// similarityFields are the document fields a candidate is matched over.
var similarityFields = []string{"title", "description", "brand", "features"}

type LinkSimilarDeps struct {
	DB    *gorm.DB
	Log   *logger.Logger
	Skus  repos.SkuRepo
	Index elastic.SearchIndex
}

type LinkSimilarInput struct {
	// ScoreThreshold drops candidates scoring below it (engine-native scale).
	ScoreThreshold float64
	// MaxSimilar caps the persisted link list per SKU.
	MaxSimilar int
	// MaxConcurrency bounds the worker pool issuing query+update round trips.
	MaxConcurrency int
	// SkipLinked skips rows whose similar_sku was already set, which makes an
	// aborted run resumable without recomputing finished items.
	SkipLinked bool

	// Candidate generation knobs, all defaulted to the engine settings the
	// index was tuned for.
	MinTermFreq   int
	MinDocFreq    int
	MaxQueryTerms int
	CandidateSize int
	Boosts        map[string]float64
}

type LinkSimilarOutput struct {
	Total  int `json:"total"`
	Linked int `json:"linked"`
	// Failed counts per-item query/update failures. Those rows keep a NULL
	// similar_sku, distinct from a computed empty list.
	Failed int `json:"failed"`
}

func (in *LinkSimilarInput) applyDefaults() {
	if in.ScoreThreshold <= 0 {
		in.ScoreThreshold = defaultScoreThreshold
	}
	if in.MaxSimilar <= 0 {
		in.MaxSimilar = defaultMaxSimilar
	}
	if in.MaxConcurrency <= 0 {
		in.MaxConcurrency = defaultLinkConcurrency
	}
	if in.MinTermFreq <= 0 {
		in.MinTermFreq = defaultMinTermFreq
	}
	if in.MinDocFreq <= 0 {
		in.MinDocFreq = defaultMinDocFreq
	}
	if in.MaxQueryTerms <= 0 {
		in.MaxQueryTerms = defaultMaxQueryTerms
	}
	if in.CandidateSize <= 0 {
		in.CandidateSize = defaultCandidateSize
	}
}

// LinkSimilar computes and persists the top-K most similar items for every
// stored SKU. Items are independent, so the work fans out over a bounded
// worker pool; one failed item is logged and counted, never fatal. Re-running
// over an unchanged store and index reproduces the same links.
func LinkSimilar(ctx context.Context, deps LinkSimilarDeps, in LinkSimilarInput) (LinkSimilarOutput, error) {
	out := LinkSimilarOutput{}
	if deps.DB == nil || deps.Log == nil || deps.Skus == nil || deps.Index == nil {
		return out, fmt.Errorf("link_similar: missing deps")
	}
	in.applyDefaults()
	log := deps.Log.With("step", "link_similar")

	list := deps.Skus.List
	if in.SkipLinked {
		list = deps.Skus.ListUnlinked
	}
	skus, err := list(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("link_similar: list skus: %w", err)
	}
	out.Total = len(skus)

	opts := elastic.MoreLikeThisOptions{
		Fields:        similarityFields,
		Boosts:        in.Boosts,
		MinTermFreq:   in.MinTermFreq,
		MinDocFreq:    in.MinDocFreq,
		MaxQueryTerms: in.MaxQueryTerms,
		Size:          in.CandidateSize,
	}

	var linked, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.MaxConcurrency)
	for _, sku := range skus {
		sku := sku
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			matches, err := deps.Index.MoreLikeThis(gctx, sku.ID.String(), opts)
			if err != nil {
				failed.Add(1)
				log.Warn("similarity query failed",
					"sku", sku.ID,
					"error", err,
				)
				return nil
			}

			ids := selectSimilar(matches, sku.ID, in.ScoreThreshold, in.MaxSimilar)
			if err := deps.Skus.UpdateSimilar(gctx, nil, sku.ID, ids); err != nil {
				failed.Add(1)
				log.Warn("similar link update failed",
					"sku", sku.ID,
					"error", err,
				)
				return nil
			}
			linked.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("link_similar: %w", err)
	}

	out.Linked = int(linked.Load())
	out.Failed = int(failed.Load())
	log.Info("similar items linked",
		"total", out.Total,
		"linked", out.Linked,
		"failed", out.Failed,
	)
	return out, nil
}

// selectSimilar filters ranked matches to those at or above the threshold,
// drops the reference item itself and ids that are not valid SKU ids, then
// returns the top k ordered by descending score with a lexicographic id
// tie-break so identical scores always order the same way.
func selectSimilar(matches []elastic.Match, self uuid.UUID, threshold float64, k int) []uuid.UUID {
	type scored struct {
		id    uuid.UUID
		score float64
	}
	kept := make([]scored, 0, len(matches))
	for _, m := range matches {
		if m.Score < threshold {
			continue
		}
		id, err := uuid.Parse(m.ID)
		if err != nil || id == self {
			continue
		}
		kept = append(kept, scored{id: id, score: m.Score})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].id.String() < kept[j].id.String()
	})

	if len(kept) > k {
		kept = kept[:k]
	}
	ids := make([]uuid.UUID, 0, len(kept))
	for _, s := range kept {
		ids = append(ids, s.id)
	}
	return ids
}
