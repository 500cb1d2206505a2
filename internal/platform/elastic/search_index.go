// Package elastic wraps the Elasticsearch product index behind a small
// SearchIndex interface: provisioning with an explicit mapping, bulk document
// upsert, and "more like this" similarity queries returning (id, score) pairs.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/altegra/catalog-backend/internal/platform/logger"
)

const maxErrorBodyBytes = 1024

// Document is one indexable product record keyed by its catalog id.
type Document struct {
	ID     string
	Fields map[string]any
}

// Match is a ranked similarity hit. Higher score is more similar.
type Match struct {
	ID    string
	Score float64
}

// MoreLikeThisOptions control candidate generation for a similarity query.
// Boosts maps a field name to a per-field weight rendered as "field^weight".
type MoreLikeThisOptions struct {
	Fields        []string
	Boosts        map[string]float64
	MinTermFreq   int
	MinDocFreq    int
	MaxQueryTerms int
	Size          int
}

type SearchIndex interface {
	Ping(ctx context.Context) error
	// EnsureIndex drops the index if present and recreates it with the
	// product mapping. The pipeline re-indexes the full snapshot each run.
	EnsureIndex(ctx context.Context) error
	BulkUpsert(ctx context.Context, docs []Document) error
	// MoreLikeThis returns candidates similar to the already-indexed document
	// refID, ranked by descending relevance score. refID itself may appear in
	// the result set; callers filter it out.
	MoreLikeThis(ctx context.Context, refID string, opts MoreLikeThisOptions) ([]Match, error)
}

type searchIndex struct {
	log   *logger.Logger
	es    *elasticsearch.Client
	index string
}

func NewSearchIndex(log *logger.Logger, cfg Config) (SearchIndex, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.URL},
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}
	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("init elasticsearch client: %w", err)
	}

	return &searchIndex{
		log:   log.With("service", "SearchIndex", "index", cfg.Index),
		es:    es,
		index: cfg.Index,
	}, nil
}

func (s *searchIndex) Ping(ctx context.Context) error {
	const op = "ping"
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return opErr(op, OperationErrorQueryFailed, readErrorBody(res.Body), nil)
	}
	return nil
}

// productMapping mirrors the fields the similarity query matches over:
// full text for title/description, exact keyword for brand, and the
// flattened attribute map as an object field.
func productMapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"uuid":        map[string]any{"type": "keyword"},
				"source_id":   map[string]any{"type": "keyword"},
				"title":       map[string]any{"type": "text"},
				"description": map[string]any{"type": "text"},
				"brand":       map[string]any{"type": "keyword"},
				"features":    map[string]any{"type": "object"},
			},
		},
	}
}

func (s *searchIndex) EnsureIndex(ctx context.Context) error {
	const op = "ensure_index"

	del, err := s.es.Indices.Delete(
		[]string{s.index},
		s.es.Indices.Delete.WithContext(ctx),
		s.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "delete index", err)
	}
	defer del.Body.Close()
	if del.IsError() && del.StatusCode != 404 {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: del.StatusCode,
			Message:    readErrorBody(del.Body),
		}
	}

	body, err := json.Marshal(productMapping())
	if err != nil {
		return opErr(op, OperationErrorEncodeFailed, "marshal mapping", err)
	}
	res, err := s.es.Indices.Create(
		s.index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "create index", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: res.StatusCode,
			Message:    readErrorBody(res.Body),
		}
	}
	s.log.Info("search index provisioned")
	return nil
}

func (s *searchIndex) BulkUpsert(ctx context.Context, docs []Document) error {
	const op = "bulk_upsert"
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			return opErr(op, OperationErrorValidation, "document id is required", nil)
		}
		action := map[string]any{
			"index": map[string]any{"_index": s.index, "_id": id},
		}
		if err := enc.Encode(action); err != nil {
			return opErr(op, OperationErrorEncodeFailed, fmt.Sprintf("encode action for %q", id), err)
		}
		if err := enc.Encode(d.Fields); err != nil {
			return opErr(op, OperationErrorEncodeFailed, fmt.Sprintf("encode document %q", id), err)
		}
	}

	res, err := s.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.es.Bulk.WithContext(ctx),
		// Linking queries run right after indexing; make documents visible.
		s.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return opErr(op, OperationErrorTransportFailed, "", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return &OperationError{
			Code:       OperationErrorBulkFailed,
			Operation:  op,
			StatusCode: res.StatusCode,
			Message:    readErrorBody(res.Body),
		}
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode bulk response", err)
	}
	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			for _, st := range item {
				if st.Error != nil {
					return opErr(op, OperationErrorBulkFailed,
						fmt.Sprintf("%s: %s", st.Error.Type, st.Error.Reason), nil)
				}
			}
		}
		return opErr(op, OperationErrorBulkFailed, "bulk response reported errors", nil)
	}

	s.log.Info("bulk upsert complete", "documents", len(docs))
	return nil
}

func (s *searchIndex) MoreLikeThis(ctx context.Context, refID string, opts MoreLikeThisOptions) ([]Match, error) {
	const op = "more_like_this"
	refID = strings.TrimSpace(refID)
	if refID == "" {
		return nil, opErr(op, OperationErrorValidation, "reference document id is required", nil)
	}

	body, err := json.Marshal(moreLikeThisBody(s.index, refID, opts))
	if err != nil {
		return nil, opErr(op, OperationErrorEncodeFailed, "marshal query", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, opErr(op, OperationErrorTransportFailed, "", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, &OperationError{
			Code:       OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: res.StatusCode,
			Message:    readErrorBody(res.Body),
		}
	}

	var searchRes struct {
		Hits struct {
			Hits []struct {
				ID    string   `json:"_id"`
				Score *float64 `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchRes); err != nil {
		return nil, opErr(op, OperationErrorDecodeFailed, "decode search response", err)
	}

	matches := make([]Match, 0, len(searchRes.Hits.Hits))
	for _, hit := range searchRes.Hits.Hits {
		score := 0.0
		if hit.Score != nil {
			score = *hit.Score
		}
		matches = append(matches, Match{ID: hit.ID, Score: score})
	}
	return matches, nil
}

// moreLikeThisBody builds the search body for a reference-document similarity
// query. Fields with a boost render as "field^weight".
func moreLikeThisBody(index, refID string, opts MoreLikeThisOptions) map[string]any {
	fields := make([]string, 0, len(opts.Fields))
	for _, f := range opts.Fields {
		if boost, ok := opts.Boosts[f]; ok && boost > 0 {
			fields = append(fields, fmt.Sprintf("%s^%g", f, boost))
			continue
		}
		fields = append(fields, f)
	}

	return map[string]any{
		"query": map[string]any{
			"more_like_this": map[string]any{
				"fields": fields,
				"like": []map[string]any{
					{"_index": index, "_id": refID},
				},
				"min_term_freq":   opts.MinTermFreq,
				"min_doc_freq":    opts.MinDocFreq,
				"max_query_terms": opts.MaxQueryTerms,
			},
		},
		"size": opts.Size,
		"sort": []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
		},
	}
}

func readErrorBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
