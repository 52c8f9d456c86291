package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mamadbah2/herdbook/internal/config"
)

func TestSplitText(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "short", text: "hello", limit: 10, want: []string{"hello"}},
		{name: "empty", text: "", limit: 10, want: []string{""}},
		{name: "hard cut", text: "abcdefghij", limit: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "newline", text: "line one\nline two", limit: 12, want: []string{"line one\n", "line two"}},
		{name: "runes", text: "ééééé", limit: 2, want: []string{"éé", "éé", "é"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitText(tc.text, tc.limit)
			if len(got) != len(tc.want) {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("part %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL,
		APIVersion:    "v20.0",
	})
}

func TestSendTextMessageSplitsLongBodies(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v20.0/12345/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("unexpected authorization %q", got)
		}
		var payload struct {
			To   string `json:"to"`
			Text struct {
				Body string `json:"body"`
			} `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len([]rune(payload.Text.Body)) > MaxTextLength {
			t.Errorf("body of %d runes exceeds the limit", len([]rune(payload.Text.Body)))
		}
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.` + string(rune('0'+n)) + `"}]}`))
	})

	resp, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{
		To:   "224622350064",
		Body: strings.Repeat("x", MaxTextLength+10),
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls.Load() != 2 || len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d calls and %d ids", calls.Load(), len(resp.Messages))
	}
}

func TestSendTextMessageReportsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	})

	_, err := c.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "hi"})
	if err == nil || !strings.Contains(err.Error(), "code=100") {
		t.Fatalf("expected api error with code 100, got %v", err)
	}
}
