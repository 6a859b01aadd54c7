package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"faqsearch/internal/llm"
)

type fakeModelLister struct {
	models []llm.ModelInfo
	err    error
}

func (f *fakeModelLister) ListModels(ctx context.Context) ([]llm.ModelInfo, error) {
	return f.models, f.err
}

func TestModelsHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		lister     *fakeModelLister
		wantStatus int
		check      func(t *testing.T, resp ModelsResponse)
	}{
		{
			name:   "returns configuration and available models",
			method: http.MethodGet,
			lister: &fakeModelLister{models: []llm.ModelInfo{
				{ID: "gpt-4o-mini", OwnedBy: "openai"},
				{ID: "text-embedding-3-small", OwnedBy: "openai"},
			}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp ModelsResponse) {
				if resp.Provider != "OpenAI" {
					t.Errorf("provider = %q, want OpenAI", resp.Provider)
				}
				if resp.ChatModel != "gpt-4o-mini" || resp.EmbeddingsModel != "text-embedding-3-small" {
					t.Errorf("unexpected models: %+v", resp)
				}
				if len(resp.Available) != 2 {
					t.Errorf("got %d available models, want 2", len(resp.Available))
				}
			},
		},
		{
			name:       "listing failure still returns configuration",
			method:     http.MethodGet,
			lister:     &fakeModelLister{err: errors.New("connection refused")},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp ModelsResponse) {
				if resp.ChatModel != "gpt-4o-mini" {
					t.Errorf("chat model = %q, want gpt-4o-mini", resp.ChatModel)
				}
				if resp.Available != nil {
					t.Errorf("available = %v, want nil", resp.Available)
				}
			},
		},
		{
			name:       "method not allowed",
			method:     http.MethodPost,
			lister:     &fakeModelLister{},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewModelsHandler(tt.lister, "OpenAI", "gpt-4o-mini", "text-embedding-3-small")

			req := httptest.NewRequest(tt.method, "/get-models", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.check != nil {
				var resp ModelsResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				tt.check(t, resp)
			}
		})
	}
}
