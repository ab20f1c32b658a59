package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"keytray/shortcut"
)

func TestSendWebhook(t *testing.T) {
	var got webhookPayload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tc := triggerContext{
		Entry:  ShortcutEntry{Name: "deploy", Keys: KeyCombo{"Ctrl", "Shift", "D"}, Webhook: srv.URL},
		Source: SourceBridge,
		OS:     shortcut.MacOS,
		Time:   time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sendWebhook(ctx, srv.URL, newWebhookPayload(tc)); err != nil {
		t.Fatalf("sendWebhook: %v", err)
	}

	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if got.Shortcut != "deploy" || got.Source != SourceBridge || got.OS != "MacOS" {
		t.Errorf("payload = %+v", got)
	}
	if strings.Join(got.Keys, "+") != "ctrl+shift+d" {
		t.Errorf("Keys = %v", got.Keys)
	}
}

func TestSendWebhookStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := sendWebhook(context.Background(), srv.URL, map[string]string{"a": "b"})
	if err == nil || !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("err = %v", err)
	}
}

func TestHTTPSessionKeepsCookies(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			seen = append(seen, c.Value)
		} else {
			seen = append(seen, "")
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	session, err := NewHTTPSession(false)
	if err != nil {
		t.Fatalf("NewHTTPSession: %v", err)
	}
	for i := 0; i < 2; i++ {
		status, body, err := session.PostJSON(context.Background(), srv.URL, struct{}{})
		if err != nil || status != http.StatusOK || body != "ok" {
			t.Fatalf("PostJSON = %d, %q, %v", status, body, err)
		}
	}
	if len(seen) != 2 || seen[0] != "" || seen[1] != "s1" {
		t.Fatalf("cookies seen = %q", seen)
	}
}

func TestHTTPGetHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := httpGet(ctx, srv.URL, nil, false); err == nil {
		t.Fatal("httpGet ignored the context deadline")
	}
}
