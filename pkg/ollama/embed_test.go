package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req embedReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "test-model" || req.Prompt != "white tiles" {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(embedResp{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "test-model")
	vec, err := c.Embed(context.Background(), "white tiles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestEmbed_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("empty text must not call the model")
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m")
	vec, err := c.Embed(context.Background(), "")
	if err != nil || vec != nil {
		t.Errorf("expected nil, nil, got %v, %v", vec, err)
	}
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m")
	if _, err := c.Embed(context.Background(), "tiles"); err == nil {
		t.Error("expected an error on 500")
	}
}
