package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"buy cow 2500000 zebu":       "/buy cow 2500000 zebu",
		"/dashboard":                 "/dashboard",
		"sell 4 3000000\nbecause...": "/sell 4 3000000",
		"NONE":                       "",
		"  ":                         "",
	}
	for in, want := range cases {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTranslateToCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "secret" {
			t.Errorf("unexpected api key %q", got)
		}
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[1].Content != "/" {
			t.Errorf("expected a prefilled assistant turn, got %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"text":"animals sold"}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithURL(srv.URL))
	got, err := c.TranslateToCommand(context.Background(), "which animals did I sell?")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "/animals sold" {
		t.Fatalf("got %q", got)
	}
}

func TestTranslateToCommandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad", WithURL(srv.URL))
	if _, err := c.TranslateToCommand(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error")
	}
}
