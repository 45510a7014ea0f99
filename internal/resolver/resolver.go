package resolver

import (
	"fmt"
	"log"

	"github.com/gluk-w/tabshell/internal/aiclient"
	"github.com/gluk-w/tabshell/internal/history"
)

// defaultMinSimilarity is the cosine-similarity cutoff for an embedding
// cache hit when the caller doesn't override it.
const defaultMinSimilarity = 0.75

// defaultCacheHitThreshold is the similarity above which some callers skip
// the AI translator even when it is otherwise selected.
const defaultCacheHitThreshold = 0.85

// ftsRankThreshold is the internal cutoff on history_fts's bm25() rank
// (more negative is a better match in SQLite's FTS5 ranking) above which a
// find_similar hit is accepted as a cache hit. There is no external
// interface exposing this value, so it is fixed rather than configured,
// per the spec's "above an internal threshold" wording.
const ftsRankThreshold = -2.0

// Options tunes Resolve's thresholds; a zero-value Options falls back to
// the package defaults.
type Options struct {
	MinSimilarity     float64
	CacheHitThreshold float64
}

func (o Options) withDefaults() Options {
	if o.MinSimilarity <= 0 {
		o.MinSimilarity = defaultMinSimilarity
	}
	if o.CacheHitThreshold <= 0 {
		o.CacheHitThreshold = defaultCacheHitThreshold
	}
	return o
}

// Result describes the outcome of a Resolve call.
type Result struct {
	Hit        bool
	Method     string // "embedding" or "fts"
	Similarity float64
	Record     history.Record
}

// MeetsCacheHitThreshold reports whether r is a confident enough hit that a
// caller may skip the AI translator entirely even when it is configured.
// FTS hits have no comparable similarity score, so they never clear this
// bar on their own.
func (r Result) MeetsCacheHitThreshold(threshold float64) bool {
	if !r.Hit {
		return false
	}
	if threshold <= 0 {
		threshold = defaultCacheHitThreshold
	}
	return r.Method == "embedding" && r.Similarity >= threshold
}

// Resolve looks up userInput in the history cache: first by embedding
// similarity (if embedder is non-nil), then by lexical BM25 match. A hit
// increments the matched row's use_count. A nil, non-hit Result with a nil
// error means a genuine miss — the caller must invoke the AI translator
// and persist the result itself.
func Resolve(embedder aiclient.Embedder, userInput string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	if embedder != nil {
		vec, err := embedder.Embed(userInput)
		if err != nil {
			log.Printf("resolver: embed failed, falling back to lexical search: %v", err)
		} else {
			matches, err := history.SearchVector(vec, opts.MinSimilarity, 1)
			if err != nil {
				return Result{}, fmt.Errorf("resolver: search_vector: %w", err)
			}
			if len(matches) > 0 {
				m := matches[0]
				if err := history.IncrementUseCount(m.Record.ID); err != nil {
					return Result{}, fmt.Errorf("resolver: increment_use_count: %w", err)
				}
				return Result{Hit: true, Method: "embedding", Similarity: m.Similarity, Record: m.Record}, nil
			}
		}
	}

	matches, err := history.FindSimilar(userInput, 1)
	if err != nil {
		return Result{}, fmt.Errorf("resolver: find_similar: %w", err)
	}
	if len(matches) > 0 && matches[0].Rank <= ftsRankThreshold {
		m := matches[0]
		if err := history.IncrementUseCount(m.Record.ID); err != nil {
			return Result{}, fmt.Errorf("resolver: increment_use_count: %w", err)
		}
		return Result{Hit: true, Method: "fts", Record: m.Record}, nil
	}

	return Result{Hit: false}, nil
}
