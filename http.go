package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests (30 seconds)
const DefaultHTTPTimeout = 30 * time.Second

// maxResponseBytes caps the body read from script and webhook responses
const maxResponseBytes = 4 << 20

// insecureClient is an HTTP client that skips TLS certificate verification
var insecureClient = &http.Client{
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	},
}

// HTTPSession maintains cookies across multiple HTTP requests
type HTTPSession struct {
	jar    *cookiejar.Jar
	client *http.Client
}

// NewHTTPSession creates a new HTTP session with cookie jar support
func NewHTTPSession(skipVerify bool) (*HTTPSession, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport
	if skipVerify {
		transport = insecureClient.Transport
	}

	return &HTTPSession{
		jar: jar,
		client: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   DefaultHTTPTimeout,
		},
	}, nil
}

// PostJSON posts v as JSON and returns the response status and body.
// Cookies set by earlier responses are sent along.
func (s *HTTPSession) PostJSON(ctx context.Context, url string, v interface{}) (int, string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, "", fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "keytray/"+Version)

	return do(s.client, req)
}

var (
	webhookSessionOnce sync.Once
	webhookSession     *HTTPSession
	webhookSessionErr  error
)

// sendWebhook delivers a trigger payload. Non-2xx responses are errors.
func sendWebhook(ctx context.Context, url string, payload interface{}) error {
	webhookSessionOnce.Do(func() {
		webhookSession, webhookSessionErr = NewHTTPSession(false)
	})
	if webhookSessionErr != nil {
		return webhookSessionErr
	}

	status, body, err := webhookSession.PostJSON(ctx, url, payload)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("unexpected status %d: %s", status, strings.TrimSpace(body))
	}
	return nil
}

// httpGet performs an HTTP GET request with optional headers and skip_verify
func httpGet(ctx context.Context, url string, headers map[string]string, skipVerify bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	_, body, err := do(clientFor(skipVerify), req)
	return body, err
}

// httpPost performs an HTTP POST request with body, optional headers and skip_verify
func httpPost(ctx context.Context, url string, body string, headers map[string]string, skipVerify bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", err
	}

	// Default content type
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	_, respBody, err := do(clientFor(skipVerify), req)
	return respBody, err
}

func clientFor(skipVerify bool) *http.Client {
	if skipVerify {
		return insecureClient
	}
	return http.DefaultClient
}

func do(client *http.Client, req *http.Request) (int, string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}
