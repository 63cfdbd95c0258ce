package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateSendsPromptAndReturnsContent(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  The answer is 42.  "}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	text, err := client.Generate(context.Background(), "What is the answer?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if text != "The answer is 42." {
		t.Errorf("Expected trimmed completion, got %q", text)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("Expected /chat/completions path, got %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("Expected model test-model, got %v", gotBody["model"])
	}
	messages, ok := gotBody["messages"].([]interface{})
	if !ok || len(messages) != 1 {
		t.Fatalf("Expected a single message, got %v", gotBody["messages"])
	}
}

func TestGenerateNoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")
	if _, err := client.Generate(context.Background(), "hi"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Expected no auth header, got %q", gotAuth)
	}
}

func TestGenerateErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limit exceeded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model")
	_, err := client.Generate(context.Background(), "hi")
	if err == nil {
		t.Fatal("Expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}

func TestGenerateMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model")
	_, err := client.Generate(context.Background(), "hi")
	if err == nil {
		t.Fatal("Expected error for empty choices")
	}
	if !strings.Contains(err.Error(), "no completion content") {
		t.Errorf("Expected malformed response error, got %v", err)
	}
}

func TestGenerateEmptyContentIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model")
	text, err := client.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty string, got %q", text)
	}
}
