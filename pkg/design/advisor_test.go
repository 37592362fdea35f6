package design

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bannerlord/bannerlord/pkg/errors"
)

func TestNewOpenAIAdvisorRequiresKey(t *testing.T) {
	_, err := NewOpenAIAdvisor("")
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("code = %q, want UNAUTHORIZED", errors.GetCode(err))
	}
}

func TestNewOpenAIAdvisorOptions(t *testing.T) {
	a, err := NewOpenAIAdvisor("sk-test", WithModel("gpt-4o-mini"))
	if err != nil {
		t.Fatalf("NewOpenAIAdvisor() error: %v", err)
	}
	if a.model != "gpt-4o-mini" {
		t.Errorf("model = %q", a.model)
	}

	// Blank option values keep the defaults.
	b, err := NewOpenAIAdvisor("sk-test", WithModel(""), WithBaseURL(""), WithHTTPClient(nil))
	if err != nil {
		t.Fatal(err)
	}
	if b.model == "" {
		t.Error("blank WithModel should not clear the default model")
	}
}

func TestOpenAIAdvisorDesign(t *testing.T) {
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"concept": "bold"}`}},
			},
		})
	}))
	defer srv.Close()

	a, err := NewOpenAIAdvisor("sk-test", WithBaseURL(srv.URL+"/v1"))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := a.Design(context.Background(), "tech conference banner")
	if err != nil {
		t.Fatalf("Design() error: %v", err)
	}
	if resp != `{"concept": "bold"}` {
		t.Errorf("response = %q", resp)
	}

	if len(gotBody.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" {
		t.Errorf("first message role = %q", gotBody.Messages[0].Role)
	}
	if !strings.Contains(gotBody.Messages[1].Content, "tech conference banner") {
		t.Error("user prompt not forwarded")
	}
}

func TestOpenAIAdvisorRefineForwardsFeedback(t *testing.T) {
	var userContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) == 2 {
			userContent = body.Messages[1].Content
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "revised"}},
			},
		})
	}))
	defer srv.Close()

	a, err := NewOpenAIAdvisor("sk-test", WithBaseURL(srv.URL+"/v1"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.Refine(context.Background(), "launch banner", "make it darker"); err != nil {
		t.Fatalf("Refine() error: %v", err)
	}
	if !strings.Contains(userContent, "launch banner") || !strings.Contains(userContent, "make it darker") {
		t.Errorf("refine prompt missing request or feedback: %q", userContent)
	}
}

func TestOpenAIAdvisorNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	a, err := NewOpenAIAdvisor("sk-test", WithBaseURL(srv.URL+"/v1"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.Design(context.Background(), "p")
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("code = %q, want NETWORK_ERROR", errors.GetCode(err))
	}
}
