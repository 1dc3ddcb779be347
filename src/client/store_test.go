package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLink(id string, visibility string, order int) Link {
	return Link{
		ID:         id,
		Title:      id,
		URL:        "https://example.com/" + id,
		Slug:       id,
		Visibility: visibility,
		Order:      order,
		CreatedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func storeIDs(s *Store) []string {
	links := s.Links()
	ids := make([]string, len(links))
	for i, link := range links {
		ids[i] = link.ID
	}
	return ids
}

func TestStoreActions(t *testing.T) {
	t.Run("set sorts public before private", func(t *testing.T) {
		s := NewStore()
		s.SetLinks([]Link{
			testLink("priv", "private", 0),
			testLink("pub2", "public", 8),
			testLink("pub1", "public", 3),
		})
		assert.Equal(t, []string{"pub1", "pub2", "priv"}, storeIDs(s))
	})

	t.Run("add keeps display order", func(t *testing.T) {
		s := NewStore()
		s.SetLinks([]Link{testLink("a", "public", 0), testLink("c", "public", 5)})
		s.AddLink(testLink("b", "public", 2))
		assert.Equal(t, []string{"a", "b", "c"}, storeIDs(s))
	})

	t.Run("edit re-sorts", func(t *testing.T) {
		s := NewStore()
		s.SetLinks([]Link{testLink("a", "public", 0), testLink("b", "public", 1)})

		edited := testLink("a", "public", 9)
		s.EditLink(edited)
		assert.Equal(t, []string{"b", "a"}, storeIDs(s))
	})

	t.Run("delete", func(t *testing.T) {
		s := NewStore()
		s.SetLinks([]Link{testLink("a", "public", 0), testLink("b", "public", 1)})
		s.DeleteLink("a")
		assert.Equal(t, []string{"b"}, storeIDs(s))

		// Unknown ids are a no-op.
		s.DeleteLink("nope")
		assert.Equal(t, []string{"b"}, storeIDs(s))
	})

	t.Run("move swaps ranks within the partition", func(t *testing.T) {
		s := NewStore()
		s.SetLinks([]Link{
			testLink("a", "public", 0),
			testLink("b", "public", 3),
			testLink("c", "public", 7),
			testLink("p", "private", 1),
		})

		s.MoveLink("b", "up")
		assert.Equal(t, []string{"b", "a", "c", "p"}, storeIDs(s))

		// The swap exchanged ranks instead of renumbering.
		links := s.Links()
		assert.Equal(t, 0, links[0].Order)
		assert.Equal(t, 3, links[1].Order)
		assert.Equal(t, 7, links[2].Order)
		assert.Equal(t, 1, links[3].Order)
	})

	t.Run("move at the boundary is a no-op", func(t *testing.T) {
		s := NewStore()
		s.SetLinks([]Link{testLink("a", "public", 0), testLink("b", "public", 1)})
		s.MoveLink("a", "up")
		s.MoveLink("b", "down")
		assert.Equal(t, []string{"a", "b"}, storeIDs(s))
	})

	t.Run("toggle appends to public and keeps rank going private", func(t *testing.T) {
		s := NewStore()
		s.SetLinks([]Link{
			testLink("a", "public", 0),
			testLink("b", "public", 6),
			testLink("p", "private", 2),
		})

		s.ToggleVisibility("p")
		links := s.Links()
		assert.Equal(t, []string{"a", "b", "p"}, storeIDs(s))
		assert.Equal(t, 7, links[2].Order)

		s.ToggleVisibility("b")
		links = s.Links()
		assert.Equal(t, []string{"a", "p", "b"}, storeIDs(s))
		assert.Equal(t, 6, links[2].Order)
	})
}

func TestMoveLinkInStore(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors the server's refreshed list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "/api/v1/links/b/move", r.URL.Path)
			w.Write([]byte(`{"data":[{"id":"b","visibility":"public","order":0},{"id":"a","visibility":"public","order":1}]}`))
		}))
		defer srv.Close()

		s := NewStore()
		s.SetLinks([]Link{testLink("a", "public", 0), testLink("b", "public", 1)})

		c := NewClient(srv.URL, "tok")
		err := c.MoveLinkInStore(ctx, s, "b", "up")
		require.Nil(t, err)
		assert.Equal(t, []string{"b", "a"}, storeIDs(s))
	})

	t.Run("reconciles by re-fetch when the move fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/v1/links/b/move" {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Internal Server Error"}`))
				return
			}
			require.Equal(t, "/api/v1/links", r.URL.Path)
			w.Write([]byte(`{"data":[{"id":"a","visibility":"public","order":0},{"id":"b","visibility":"public","order":99}]}`))
		}))
		defer srv.Close()

		s := NewStore()
		s.SetLinks([]Link{testLink("a", "public", 0), testLink("b", "public", 1)})

		c := NewClient(srv.URL, "tok")
		err := c.MoveLinkInStore(ctx, s, "b", "up")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

		// The store picked up the server's actual state.
		links := s.Links()
		require.Equal(t, 2, len(links))
		assert.Equal(t, 99, links[1].Order)
	})

	t.Run("client-fault errors do not trigger a re-fetch", func(t *testing.T) {
		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"Forbidden"}`))
		}))
		defer srv.Close()

		s := NewStore()
		c := NewClient(srv.URL, "tok")
		err := c.MoveLinkInStore(ctx, s, "b", "up")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, 1, requests)
	})
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"slug: must not be empty"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, err := c.CreateLink(context.Background(), LinkInput{Title: "x", URL: "https://example.com"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "slug")
}
