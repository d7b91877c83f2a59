package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":" work_related\n"},"done":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "qwen2.5:7b")
	reply, err := c.Complete(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != " work_related\n" {
		t.Fatalf("reply = %q", reply)
	}
	if got.Model != "qwen2.5:7b" || got.Stream || len(got.Messages) != 1 || got.Messages[0].Content != "classify this" {
		t.Fatalf("request = %+v", got)
	}
}

func TestComplete_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model 'llama3' not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Complete(context.Background(), "x")
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err = %v, want ErrModelNotFound", err)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestComplete_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := NewClient(srv.URL, "").Complete(ctx, "x"); err == nil {
		t.Fatal("expected deadline error")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "")
	if c.baseURL != DefaultBaseURL || c.Model() != DefaultModel {
		t.Fatalf("defaults = %q %q", c.baseURL, c.Model())
	}
}
