package aiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{baseURL: srv.URL, apiKey: "test-key", model: "test-model"}, srv
}

func TestTranslateParsesModelJSONResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		resp := chatCompletionResponse{Choices: []struct {
			Message chatMessage `json:"message"`
		}{{Message: chatMessage{Role: "assistant", Content: `{"command":"ls -la","confidence":0.95,"requires_sudo":false,"is_dangerous":false}`}}}}
		json.NewEncoder(w).Encode(resp)
	})

	result, err := client.Translate("list files", &Context{WorkingDir: "/tmp"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if result.Command != "ls -la" || result.Confidence != 0.95 {
		t.Errorf("Translate() = %+v", result)
	}
}

func TestTranslatePropagatesProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	})

	if _, err := client.Translate("list files", nil); err == nil {
		t.Fatal("expected error from 500 response")
	}
}

func TestAnalyzeErrorParsesFixResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := chatCompletionResponse{Choices: []struct {
			Message chatMessage `json:"message"`
		}{{Message: chatMessage{Content: `{"fixed_command":"sudo apt install curl","error_cause":"missing package","is_fixable":true}`}}}}
		json.NewEncoder(w).Encode(resp)
	})

	result, err := client.AnalyzeError("curl example.com", "curl: command not found", nil)
	if err != nil {
		t.Fatalf("AnalyzeError: %v", err)
	}
	if !result.IsFixable || result.FixedCommand != "sudo apt install curl" {
		t.Errorf("AnalyzeError() = %+v", result)
	}
}

func TestEmbedReturnsSingleVector(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %q, want /embeddings", r.URL.Path)
		}
		resp := embeddingResponse{Data: []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{{Embedding: []float32{0.1, 0.2, 0.3}, Index: 0}}}
		json.NewEncoder(w).Encode(resp)
	})

	vec, err := client.Embed("list files")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("len(vec) = %d, want 3", len(vec))
	}
}

func TestEmbedBatchPreservesOrderByIndex(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) != 2 {
			t.Fatalf("len(req.Input) = %d, want 2", len(req.Input))
		}
		resp := embeddingResponse{Data: []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float32{2}, Index: 1},
			{Embedding: []float32{1}, Index: 0},
		}}
		json.NewEncoder(w).Encode(resp)
	})

	vecs, err := client.EmbedBatch([]string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if vecs[0][0] != 1 || vecs[1][0] != 2 {
		t.Errorf("EmbedBatch() = %+v, want index-ordered", vecs)
	}
}

func TestEmbedBatchEmptyInputReturnsNil(t *testing.T) {
	client := &Client{baseURL: "http://unused.invalid"}
	vecs, err := client.EmbedBatch(nil)
	if err != nil || vecs != nil {
		t.Errorf("EmbedBatch(nil) = %v, %v; want nil, nil", vecs, err)
	}
}
