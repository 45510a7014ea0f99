package history

import (
	"database/sql"
	"sort"
	"strings"
	"time"
)

// vectorScanLimit bounds how many recent successful rows with a non-null
// embedding are pulled into memory for a vector search.
const vectorScanLimit = 1000

// SearchText runs a BM25 full-text query against history_fts. If the FTS
// query engine rejects the input (a malformed MATCH expression, for
// instance an unescaped quote), it falls back to a plain LIKE substring
// scan across the same columns.
func SearchText(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := DB.Raw(ftsSelectColumns+`, history_fts.rank AS rank
		FROM history_fts
		JOIN history_records r ON r.id = history_fts.rowid
		WHERE history_fts MATCH ?
		ORDER BY history_fts.rank
		LIMIT ?`, query, limit).Rows()
	if err != nil {
		return searchTextFallback(query, limit)
	}
	defer rows.Close()

	results, err := scanFTSRows(rows, "text")
	if err != nil {
		// A malformed MATCH expression is reported when the first row is
		// stepped, not when the query is issued.
		return searchTextFallback(query, limit)
	}
	return results, nil
}

// ftsSelectColumns lists history_records' own columns explicitly (instead
// of `r.*`) so scanFTSRows's fixed Scan order always matches the query,
// regardless of how the bm25 rank column is aliased alongside them.
const ftsSelectColumns = `
		SELECT r.id, r.user_input, r.generated_command, r.original_command,
		       r.explanation, r.output, r.error, r.server_profile,
		       r.is_success, r.was_edited, r.executed_at, r.embedding_vector, r.use_count`

// scanFTSRows scans every row of an ftsSelectColumns-shaped query plus a
// trailing numeric rank/bm25 column into SearchResults tagged with method.
func scanFTSRows(rows *sql.Rows, method string) ([]SearchResult, error) {
	var results []SearchResult
	for rows.Next() {
		var r Record
		var rank float64
		if err := rows.Scan(&r.ID, &r.UserInput, &r.GeneratedCommand, &r.OriginalCommand,
			&r.Explanation, &r.Output, &r.Error, &r.ServerProfile,
			&r.IsSuccess, &r.WasEdited, &r.ExecutedAt, &r.EmbeddingVector, &r.UseCount, &rank); err != nil {
			continue
		}
		results = append(results, SearchResult{Record: r, Method: method, Rank: rank})
	}
	return results, rows.Err()
}

// searchTextFallback is the LIKE-based substring scan used when the FTS
// query engine raises on the input query.
func searchTextFallback(query string, limit int) ([]SearchResult, error) {
	like := "%" + query + "%"
	var rows []Record
	err := DB.Where("user_input LIKE ? OR generated_command LIKE ? OR explanation LIKE ? OR output LIKE ?",
		like, like, like, like).
		Order("executed_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, len(rows))
	for i, r := range rows {
		results[i] = SearchResult{Record: r, Method: "text"}
	}
	return results, nil
}

// SearchVector fetches up to vectorScanLimit recent successful rows with a
// non-null embedding, computes cosine similarity in memory against
// queryVector, and returns the ones at or above minSimilarity, best first,
// truncated to limit.
func SearchVector(queryVector []float32, minSimilarity float64, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []Record
	err := DB.Where("is_success = ? AND embedding_vector != ''", true).
		Order("executed_at DESC").
		Limit(vectorScanLimit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, r := range rows {
		vec := deserializeVector(r.EmbeddingVector)
		if vec == nil {
			continue
		}
		sim := cosineSimilarity(queryVector, vec)
		if sim >= minSimilarity {
			results = append(results, SearchResult{Record: r, Method: "vector", Similarity: sim})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// FindSimilar runs a BM25 query against user_input only (via FTS5's
// column-filter syntax), weighting columns (10.0, 1.0, 0.5, 0.1) in the
// order they're declared in the FTS5 table (user_input, generated_command,
// explanation, output), keeping only query words of 3+ characters, and
// returning the top 5.
func FindSimilar(userInput string, limit int) ([]SearchResult, error) {
	if limit <= 0 || limit > 5 {
		limit = 5
	}

	words := significantWords(userInput)
	if len(words) == 0 {
		return nil, nil
	}
	matchQuery := "user_input : (" + strings.Join(quoteWords(words), " OR ") + ")"

	rows, err := DB.Raw(ftsSelectColumns+`, bm25(history_fts, 10.0, 1.0, 0.5, 0.1) AS rank
		FROM history_fts
		JOIN history_records r ON r.id = history_fts.rowid
		WHERE history_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, matchQuery, limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFTSRows(rows, "fts")
}

// significantWords lowercases and splits userInput, keeping only words of
// 3 or more characters.
func significantWords(userInput string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(userInput)) {
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	return words
}

func quoteWords(words []string) []string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return quoted
}

// FrequentCommands aggregates successful rows grouped by
// (generated_command, server_profile), ordered by summed use_count then
// execution count, optionally filtered to one profile.
func FrequentCommands(limit int, profile string) ([]FrequentCommand, error) {
	if limit <= 0 {
		limit = 20
	}

	query := DB.Model(&Record{}).
		Select(`generated_command AS command, server_profile,
			MAX(explanation) AS explanation,
			SUM(use_count) AS sum_use_count,
			COUNT(*) AS execution_count,
			MAX(executed_at) AS last_used`).
		Where("is_success = ?", true)
	if profile != "" {
		query = query.Where("server_profile = ?", profile)
	}

	var rows []struct {
		Command        string
		ServerProfile  string
		Explanation    string
		SumUseCount    int
		ExecutionCount int
		LastUsed       time.Time
	}
	err := query.Group("generated_command, server_profile").
		Order("sum_use_count DESC, execution_count DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]FrequentCommand, len(rows))
	for i, r := range rows {
		out[i] = FrequentCommand{
			Command:        r.Command,
			ServerProfile:  r.ServerProfile,
			Explanation:    r.Explanation,
			SumUseCount:    r.SumUseCount,
			ExecutionCount: r.ExecutionCount,
			LastUsed:       r.LastUsed,
		}
	}
	return out, nil
}

// GetStatistics returns the total row count, success count, and per-profile
// breakdown.
func GetStatistics() (Statistics, error) {
	var total, success int64
	if err := DB.Model(&Record{}).Count(&total).Error; err != nil {
		return Statistics{}, err
	}
	if err := DB.Model(&Record{}).Where("is_success = ?", true).Count(&success).Error; err != nil {
		return Statistics{}, err
	}

	var perProfileRows []struct {
		ServerProfile string
		Count         int64
	}
	if err := DB.Model(&Record{}).
		Select("server_profile, COUNT(*) AS count").
		Group("server_profile").
		Find(&perProfileRows).Error; err != nil {
		return Statistics{}, err
	}

	perProfile := make(map[string]int, len(perProfileRows))
	for _, r := range perProfileRows {
		perProfile[r.ServerProfile] = int(r.Count)
	}

	return Statistics{Total: int(total), SuccessCount: int(success), PerProfile: perProfile}, nil
}
