package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gluk-w/tabshell/internal/aiclient"
	"github.com/gluk-w/tabshell/internal/history"
	"github.com/gluk-w/tabshell/internal/resolver"
)

type translateRequest struct {
	UserInput      string   `json:"user_input"`
	ServerProfile  string   `json:"server_profile,omitempty"`
	WorkingDir     string   `json:"working_dir,omitempty"`
	RecentOutput   string   `json:"recent_output,omitempty"`
	RecentCommands []string `json:"recent_commands,omitempty"`
}

type translateResponse struct {
	Command      string   `json:"command"`
	Explanation  string   `json:"explanation,omitempty"`
	Confidence   float64  `json:"confidence"`
	Warning      string   `json:"warning,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	RequiresSudo bool     `json:"requires_sudo"`
	IsDangerous  bool     `json:"is_dangerous"`
	Category     string   `json:"category,omitempty"`

	IsFromCache     bool    `json:"is_from_cache"`
	CacheMethod     string  `json:"cache_method,omitempty"`
	CacheSimilarity float64 `json:"cache_similarity,omitempty"`
}

// handleTranslate implements the hybrid-resolver-then-AI-translator path:
// a history cache hit (embedding first, then lexical) short-circuits the
// AI call entirely; a miss falls through to the translator and persists
// the new row (with its embedding, when embedding is enabled) for future
// lookups.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserInput == "" {
		writeError(w, http.StatusBadRequest, "user_input is required")
		return
	}

	result, err := resolver.Resolve(s.Embedder, req.UserInput, resolver.Options{})
	if err != nil {
		writeError(w, http.StatusBadGateway, "resolve: "+err.Error())
		return
	}
	if result.Hit {
		writeJSON(w, http.StatusOK, translateResponse{
			Command:         result.Record.GeneratedCommand,
			Explanation:     result.Record.Explanation,
			IsFromCache:     true,
			CacheMethod:     result.Method,
			CacheSimilarity: result.Similarity,
		})
		return
	}

	if s.Translator == nil {
		writeError(w, http.StatusServiceUnavailable, "no AI translator configured")
		return
	}

	ctx := &aiclient.Context{
		WorkingDir:     req.WorkingDir,
		RecentOutput:   req.RecentOutput,
		RecentCommands: req.RecentCommands,
	}
	translated, err := s.Translator.Translate(req.UserInput, ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, "translate: "+err.Error())
		return
	}

	var embedding []float32
	if s.Embedder != nil {
		if vec, err := s.Embedder.Embed(req.UserInput); err == nil {
			embedding = vec
		}
	}
	record := &history.Record{
		UserInput:        req.UserInput,
		GeneratedCommand: translated.Command,
		Explanation:      translated.Explanation,
		ServerProfile:    req.ServerProfile,
		IsSuccess:        true,
		ExecutedAt:       time.Now(),
	}
	history.Add(record, embedding)

	writeJSON(w, http.StatusOK, translateResponse{
		Command:      translated.Command,
		Explanation:  translated.Explanation,
		Confidence:   translated.Confidence,
		Warning:      translated.Warning,
		Alternatives: translated.Alternatives,
		RequiresSudo: translated.RequiresSudo,
		IsDangerous:  translated.IsDangerous,
		Category:     translated.Category,
	})
}
