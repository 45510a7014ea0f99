// Package resolver implements the hybrid cache lookup sitting in front of
// the AI translator: embed the input and check for a near-duplicate by
// cosine similarity, fall back to a lexical BM25 match, and only report a
// miss when neither finds anything usable. The step order and thresholds
// follow the embedding-first, lexical-fallback shape of
// internal/history's own SearchVector/FindSimilar pair; there is no direct
// teacher analog for a resolution policy layered on top of a history
// store, since the teacher proxies every command straight to its remote
// agent with no local cache.
package resolver
