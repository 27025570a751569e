package crous

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restou/internal/config"
)

func TestFetchMenuPage(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Mock CROUS site
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("Expected GET, got %s", r.Method)
			}
			if !strings.Contains(r.Header.Get("User-Agent"), "restou") {
				t.Errorf("Expected restou user agent, got '%s'", r.Header.Get("User-Agent"))
			}

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `<div class="menu"></div>`)
		}))
		defer server.Close()

		client := NewClient(&config.Config{MenuSourceURL: server.URL})

		page, err := client.FetchMenuPage(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(page, `class="menu"`) {
			t.Errorf("Expected page body, got %q", page)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(&config.Config{MenuSourceURL: server.URL})

		_, err := client.FetchMenuPage(context.Background())
		if !errors.Is(err, ErrUpstreamFetch) {
			t.Fatalf("Expected ErrUpstreamFetch for non-2xx status, got %v", err)
		}
	})

	t.Run("PageTooLarge", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(strings.Repeat("a", maxPageSize+1)))
		}))
		defer server.Close()

		client := NewClient(&config.Config{MenuSourceURL: server.URL})

		_, err := client.FetchMenuPage(context.Background())
		if !errors.Is(err, ErrUpstreamFetch) {
			t.Fatalf("Expected ErrUpstreamFetch for oversized page, got %v", err)
		}
	})

	t.Run("PageAtLimit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(strings.Repeat("a", maxPageSize)))
		}))
		defer server.Close()

		client := NewClient(&config.Config{MenuSourceURL: server.URL})

		page, err := client.FetchMenuPage(context.Background())
		if err != nil {
			t.Fatalf("Expected no error at the size limit, got %v", err)
		}
		if len(page) != maxPageSize {
			t.Errorf("Expected %d bytes, got %d", maxPageSize, len(page))
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client := NewClient(&config.Config{MenuSourceURL: url, HTTPTimeout: time.Second})

		_, err := client.FetchMenuPage(context.Background())
		if !errors.Is(err, ErrUpstreamFetch) {
			t.Fatalf("Expected ErrUpstreamFetch for closed server, got %v", err)
		}
	})
}
