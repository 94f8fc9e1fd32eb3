package source

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meal-planner/internal/config"
)

func TestFetchRecipes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("key") != "test_key" {
				t.Errorf("Expected key 'test_key', got '%s'", r.URL.Query().Get("key"))
			}

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{
				"posts": [
					{"id": "1", "title": "Paella", "html": "<h1>Paella</h1>", "updated_at": "2026-02-02T10:00:00Z"},
					{"id": "2", "title": "Lentil soup", "html": "<h1>Lentil soup</h1>", "updated_at": "2026-02-03T10:00:00Z"}
				]
			}`)
		}))
		defer server.Close()

		cfg := &config.Config{
			SourceURL:        server.URL,
			SourceContentKey: "test_key",
		}
		client := NewClient(cfg)

		posts, err := client.FetchRecipes()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(posts) != 2 {
			t.Fatalf("Expected 2 posts, got %d", len(posts))
		}
		if posts[0].Title != "Paella" {
			t.Errorf("Expected first post 'Paella', got '%s'", posts[0].Title)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := &config.Config{
			SourceURL:        server.URL,
			SourceContentKey: "test_key",
		}
		client := NewClient(cfg)

		if _, err := client.FetchRecipes(); err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})
}

func TestPublishRecipe(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Ghost ") {
				t.Errorf("Expected Ghost token auth, got '%s'", auth)
			}

			var payload struct {
				Posts []map[string]interface{} `json:"posts"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("Failed to decode request body: %v", err)
			}
			if len(payload.Posts) != 1 || payload.Posts[0]["status"] != "published" {
				t.Errorf("Unexpected payload: %+v", payload.Posts)
			}

			w.WriteHeader(http.StatusCreated)
			fmt.Fprintln(w, `{"posts": [{"id": "9", "title": "Gazpacho", "updated_at": "2026-02-02T10:00:00Z"}]}`)
		}))
		defer server.Close()

		cfg := &config.Config{
			SourceURL:      server.URL,
			SourceAdminKey: "keyid:61626f726465",
		}
		client := NewClient(cfg)

		post, err := client.PublishRecipe("Gazpacho", "<h1>Gazpacho</h1>", true)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if post.ID != "9" {
			t.Errorf("Expected created post id '9', got '%s'", post.ID)
		}
	})

	t.Run("BadAdminKey", func(t *testing.T) {
		cfg := &config.Config{
			SourceURL:      "http://localhost",
			SourceAdminKey: "not-an-id-secret-pair",
		}
		client := NewClient(cfg)

		if _, err := client.PublishRecipe("Gazpacho", "<h1>Gazpacho</h1>", false); err == nil {
			t.Fatal("Expected an error for malformed admin key, got nil")
		}
	})
}
