package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/iksnae/persona-chat/testutil"
)

func TestRouteClient_Complete(t *testing.T) {
	var got ChatRequest
	var requestID string
	body := testutil.JSONMarshal(t, ChatResponse{Reply: "Hello!"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		requestID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := NewRouteClient(srv.URL, nil)
	reply, err := c.Complete(context.Background(), "Coach", "hi")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "Hello!" {
		t.Errorf("Complete() = %q, want %q", reply, "Hello!")
	}
	if got.Message != "hi" || got.Persona != "Coach" {
		t.Errorf("request = %+v, want message=hi persona=Coach", got)
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Errorf("X-Request-ID = %q, want a uuid", requestID)
	}
}

func TestRouteClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
		wantErr     error
	}{
		{
			name:        "server error with message",
			status:      http.StatusInternalServerError,
			body:        `{"error":"Missing GEMINI_API_KEY"}`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Missing GEMINI_API_KEY",
		},
		{
			name:        "server error without body",
			status:      http.StatusServiceUnavailable,
			body:        ``,
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Service Unavailable",
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{not json`,
		},
		{
			name:    "missing reply",
			status:  http.StatusOK,
			body:    `{}`,
			wantErr: ErrEmptyReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewRouteClient(srv.URL, nil).Complete(context.Background(), "Teacher", "hi")
			if err == nil {
				t.Fatal("Complete() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantStatus != 0 {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("error = %v, want *APIError", err)
				}
				if apiErr.Status != tt.wantStatus || apiErr.Message != tt.wantMessage {
					t.Errorf("APIError = %+v, want status %d message %q", apiErr, tt.wantStatus, tt.wantMessage)
				}
			}
		})
	}
}

func TestRouteClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRouteClient(url, nil).Complete(context.Background(), "Teacher", "hi")
	var ce *CompletionError
	if !errors.As(err, &ce) || ce.Backend != "route" {
		t.Errorf("Complete() error = %v, want *CompletionError from route", err)
	}
}

func TestRouteClient_NoEndpoint(t *testing.T) {
	_, err := NewRouteClient("", nil).Complete(context.Background(), "Teacher", "hi")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Complete() error = %v, want ErrNotConfigured", err)
	}
}
