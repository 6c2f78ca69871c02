package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/apperr"
	"go.uber.org/zap"
)

type countingTransport struct {
	calls int64
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt64(&t.calls, 1)
	return t.next.RoundTrip(req)
}

func TestGenerateMissingCredentialSkipsNetwork(t *testing.T) {
	transport := &countingTransport{next: http.DefaultTransport}
	client := New(zap.NewNop(), openaioption.WithHTTPClient(&http.Client{Transport: transport}))

	_, err := client.Generate(context.Background(), GenerateParams{
		Model:  "gpt-3.5-turbo",
		Prompt: "hello",
	})
	if apperr.KindOf(err) != apperr.KindMissingCredential {
		t.Fatalf("kind = %q, want %q", apperr.KindOf(err), apperr.KindMissingCredential)
	}
	if n := atomic.LoadInt64(&transport.calls); n != 0 {
		t.Errorf("expected no network traffic, saw %d requests", n)
	}
}

func TestValidateKeyMissingCredential(t *testing.T) {
	client := New(zap.NewNop())
	err := client.ValidateKey(context.Background(), "   ")
	if apperr.KindOf(err) != apperr.KindMissingCredential {
		t.Fatalf("kind = %q, want %q", apperr.KindOf(err), apperr.KindMissingCredential)
	}
}

func TestListModelsMissingCredential(t *testing.T) {
	client := New(zap.NewNop())
	_, err := client.ListModels(context.Background(), "")
	if apperr.KindOf(err) != apperr.KindMissingCredential {
		t.Fatalf("kind = %q, want %q", apperr.KindOf(err), apperr.KindMissingCredential)
	}
}

func TestGenerateRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := New(zap.NewNop(), openaioption.WithBaseURL(srv.URL))
	_, err := client.Generate(context.Background(), GenerateParams{
		APIKey: "sk-bad",
		Model:  "gpt-3.5-turbo",
		Prompt: "hello",
	})
	if apperr.KindOf(err) != apperr.KindRemote {
		t.Fatalf("kind = %q (err=%v), want %q", apperr.KindOf(err), err, apperr.KindRemote)
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	client := New(zap.NewNop(), openaioption.WithBaseURL(srv.URL))
	_, err := client.Generate(context.Background(), GenerateParams{
		APIKey: "sk-test",
		Model:  "gpt-3.5-turbo",
		Prompt: "hello",
	})
	if apperr.KindOf(err) != apperr.KindEmptyResponse {
		t.Fatalf("kind = %q (err=%v), want %q", apperr.KindOf(err), err, apperr.KindEmptyResponse)
	}
}

func TestGenerateReturnsTrimmedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  A digest.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	client := New(zap.NewNop(), openaioption.WithBaseURL(srv.URL))
	got, err := client.Generate(context.Background(), GenerateParams{
		APIKey:      "sk-test",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   800,
		System:      "be brief",
		Prompt:      "hello",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "A digest." {
		t.Errorf("content = %q", got)
	}
}
