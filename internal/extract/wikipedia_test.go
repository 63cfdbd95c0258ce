package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newWikipediaTestServer(t *testing.T, handler http.HandlerFunc) *WikipediaExtractor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	e := NewWikipediaExtractor("en")
	e.baseURL = server.URL
	return e
}

func TestWikipediaExtract(t *testing.T) {
	e := newWikipediaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("prop") != "extracts" {
			t.Errorf("Unexpected query parameters: %v", q)
		}
		if q.Get("titles") != "Go (programming language)" {
			t.Errorf("Unexpected title: %q", q.Get("titles"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{
					"12345": map[string]interface{}{
						"title":   "Go (programming language)",
						"extract": "Go is a statically typed, compiled programming language.",
					},
				},
			},
		})
	})

	text, err := e.Extract(context.Background(), "Go (programming language)")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(text, "statically typed") {
		t.Errorf("Unexpected extract: %q", text)
	}
}

func TestWikipediaMissingPageWithSuggestions(t *testing.T) {
	e := newWikipediaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list") == "search" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"query": map[string]interface{}{
					"search": []map[string]string{
						{"title": "Golang"},
						{"title": "Go (game)"},
					},
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{
					"-1": map[string]interface{}{"title": "Golnag"},
				},
			},
		})
	})

	_, err := e.Extract(context.Background(), "Golnag")
	if err == nil {
		t.Fatal("Expected error for missing page")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected missing-page error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Golang") || !strings.Contains(err.Error(), "Go (game)") {
		t.Errorf("Expected title suggestions in error, got %v", err)
	}
}

func TestWikipediaDisambiguationPage(t *testing.T) {
	extract := "Mercury may refer to:\nMercury (planet), the smallest planet\nMercury (element), a chemical element\nMercury (mythology), a Roman god"
	e := newWikipediaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"query": map[string]interface{}{
				"pages": map[string]interface{}{
					"777": map[string]interface{}{
						"title":   "Mercury",
						"extract": extract,
					},
				},
			},
		})
	})

	_, err := e.Extract(context.Background(), "Mercury")
	if err == nil {
		t.Fatal("Expected error for disambiguation page")
	}
	if !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("Expected ambiguity error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Mercury (planet)") {
		t.Errorf("Expected listed meanings in error, got %v", err)
	}
}

func TestWikipediaServerError(t *testing.T) {
	e := newWikipediaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := e.Extract(context.Background(), "Anything"); err == nil {
		t.Fatal("Expected error for HTTP 503")
	}
}
