package forge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
)

func TestBaseForge_NewRequest(t *testing.T) {
	tests := []struct {
		name              string
		apiURL            string
		endpoint          string
		customHeaders     map[string]string
		wantURL           string
		wantAuth          string
		wantCustomHeaders map[string]string
	}{
		{
			name:     "default token scheme",
			apiURL:   "https://api.github.com",
			endpoint: "/repos/acme/api",
			wantURL:  "https://api.github.com/repos/acme/api",
			wantAuth: "token test-token",
		},
		{
			name:     "enterprise base path preserved",
			apiURL:   "https://ghe.example.com/api/v3/",
			endpoint: "repos/acme/api/branches",
			wantURL:  "https://ghe.example.com/api/v3/repos/acme/api/branches",
			wantAuth: "token test-token",
		},
		{
			name:     "endpoint with query string",
			apiURL:   "https://api.github.com",
			endpoint: "/repos/acme/api/commits?sha=release%2F2.0&since=2024-01-01T00:00:00Z",
			wantURL:  "https://api.github.com/repos/acme/api/commits?sha=release%2F2.0&since=2024-01-01T00:00:00Z",
			wantAuth: "token test-token",
		},
		{
			name:     "absolute resource URL",
			apiURL:   "https://api.github.com",
			endpoint: "https://api.github.com/repos/acme/api/commits/abc123",
			wantURL:  "https://api.github.com/repos/acme/api/commits/abc123",
			wantAuth: "token test-token",
		},
		{
			name:     "with custom headers",
			apiURL:   "https://api.github.com",
			endpoint: "/repos/acme/api",
			customHeaders: map[string]string{
				"Accept":               "application/vnd.github+json",
				"X-GitHub-Api-Version": "2022-11-28",
			},
			wantURL:  "https://api.github.com/repos/acme/api",
			wantAuth: "token test-token",
			wantCustomHeaders: map[string]string{
				"Accept":               "application/vnd.github+json",
				"X-GitHub-Api-Version": "2022-11-28",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bf := NewBaseForge(&http.Client{}, tt.apiURL, "test-token")
			for k, v := range tt.customHeaders {
				bf.SetCustomHeader(k, v)
			}

			req, err := bf.NewRequest(context.Background(), http.MethodGet, tt.endpoint)
			if err != nil {
				t.Fatalf("NewRequest() error = %v", err)
			}

			if got := req.URL.String(); got != tt.wantURL {
				t.Errorf("NewRequest() url = %v, want %v", got, tt.wantURL)
			}
			if auth := req.Header.Get("Authorization"); auth != tt.wantAuth {
				t.Errorf("NewRequest() Authorization = %v, want %v", auth, tt.wantAuth)
			}
			for k, wantV := range tt.wantCustomHeaders {
				if gotV := req.Header.Get(k); gotV != wantV {
					t.Errorf("NewRequest() header %s = %v, want %v", k, gotV, wantV)
				}
			}
		})
	}
}

func TestBaseForge_NewRequest_BadAPIURL(t *testing.T) {
	bf := NewBaseForge(nil, "://broken", "test-token")
	if _, err := bf.NewRequest(context.Background(), http.MethodGet, "/repos/acme/api"); err == nil {
		t.Fatal("expected error for unparsable API URL")
	}
}

func TestBaseForge_DoRequest(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse string
		statusCode     int
		result         any
		wantErr        bool
		wantCategory   errors.ErrorCategory
		wantResponse   string
	}{
		{
			name:           "successful JSON response",
			serverResponse: `{"full_name": "acme/api"}`,
			statusCode:     200,
			result:         &Repository{},
		},
		{
			name:       "successful empty response",
			statusCode: 204,
		},
		{
			name:           "not found",
			serverResponse: `{"message": "Not Found"}`,
			statusCode:     404,
			result:         &Repository{},
			wantErr:        true,
			wantCategory:   errors.CategoryNotFound,
			wantResponse:   `{"message": "Not Found"}`,
		},
		{
			name:           "bad credentials",
			serverResponse: "{\"message\": \"Bad credentials\"}\n",
			statusCode:     401,
			wantErr:        true,
			wantCategory:   errors.CategoryAuth,
			wantResponse:   `{"message": "Bad credentials"}`,
		},
		{
			name:           "server error with HTML body",
			serverResponse: `<html><body>Internal Server Error</body></html>`,
			statusCode:     500,
			wantErr:        true,
			wantCategory:   errors.CategoryForge,
		},
		{
			name:           "undecodable body",
			serverResponse: `not json`,
			statusCode:     200,
			result:         &Repository{},
			wantErr:        true,
			wantCategory:   errors.CategoryForge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.serverResponse))
			}))
			defer server.Close()

			bf := NewBaseForge(server.Client(), server.URL, "test-token")
			req, err := bf.NewRequest(context.Background(), http.MethodGet, "/test")
			if err != nil {
				t.Fatalf("failed to create request: %v", err)
			}

			err = bf.DoRequest(req, tt.result)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DoRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			if !errors.HasCategory(err, tt.wantCategory) {
				t.Errorf("DoRequest() category = %v, want %v", errors.GetCategory(err), tt.wantCategory)
			}
			if tt.wantResponse != "" {
				classified, _ := errors.AsClassified(err)
				body, _ := classified.Context().GetString("response")
				if body != tt.wantResponse {
					t.Errorf("DoRequest() response context = %q, want %q", body, tt.wantResponse)
				}
			}
		})
	}
}

func TestBaseForge_DoRequest_TruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	bf := NewBaseForge(server.Client(), server.URL, "test-token")
	req, _ := bf.NewRequest(context.Background(), http.MethodGet, "/test")

	err := bf.DoRequest(req, nil)
	classified, ok := errors.AsClassified(err)
	if !ok {
		t.Fatalf("expected classified error, got %v", err)
	}
	body, _ := classified.Context().GetString("response")
	if len(body) != maxErrorBody {
		t.Errorf("response context length = %d, want %d", len(body), maxErrorBody)
	}
}

func TestBaseForge_DoRequest_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	bf := NewBaseForge(&http.Client{}, url, "test-token")
	req, _ := bf.NewRequest(context.Background(), http.MethodGet, "/test")

	if err := bf.DoRequest(req, nil); !errors.HasCategory(err, errors.CategoryNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}
