package website

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/astr0n0mer/linkli/src/config"
	"github.com/astr0n0mer/linkli/src/identity"
	"github.com/astr0n0mer/linkli/src/linkdata"
	"github.com/astr0n0mer/linkli/src/models"
	"github.com/astr0n0mer/linkli/src/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	usersByID map[string]*identity.User
}

func (f *fakeIdentity) ResolveCallerID(ctx context.Context, credential string) (string, error) {
	userID, found := strings.CutPrefix(credential, "token:")
	if !found {
		return "", identity.ErrUnauthorized
	}
	return userID, nil
}

func (f *fakeIdentity) UserByUsername(ctx context.Context, username string) (*identity.User, error) {
	for _, user := range f.usersByID {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (f *fakeIdentity) DisplayInfo(ctx context.Context, userID string) (*identity.User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *linkdata.MemStore, *fakeIdentity) {
	store := linkdata.NewMemStore()
	fake := &fakeIdentity{
		usersByID: map[string]*identity.User{
			"user_1": {ID: "user_1", Username: "annie", DisplayName: "Annie Example", AvatarUrl: "https://img.example.com/a.png"},
			"user_2": {ID: "user_2", Username: "bert", DisplayName: "Bert"},
		},
	}
	srv := httptest.NewServer(NewWebsiteRoutes(store, fake))
	t.Cleanup(srv.Close)
	return srv, store, fake
}

func doRequestJson(t *testing.T, srv *httptest.Server, method string, path string, token string, body any) (*http.Response, []byte) {
	var reqBody io.Reader
	if body != nil {
		marshaled, err := json.Marshal(body)
		require.Nil(t, err)
		reqBody = bytes.NewReader(marshaled)
	}

	req, err := http.NewRequest(method, srv.URL+path, reqBody)
	require.Nil(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := srv.Client().Do(req)
	require.Nil(t, err)
	resBody, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.Nil(t, err)
	return res, resBody
}

func unmarshalData(t *testing.T, body []byte, dest any) {
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.Nil(t, json.Unmarshal(body, &envelope))
	require.NotNil(t, envelope.Data, "response had no data envelope: %s", body)
	require.Nil(t, json.Unmarshal(envelope.Data, dest))
}

func TestAuthRequired(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res, _ := doRequestJson(t, srv, http.MethodGet, "/api/v1/links", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = doRequestJson(t, srv, http.MethodGet, "/api/v1/links", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLinkCrud(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := "token:user_1"

	res, body := doRequestJson(t, srv, http.MethodPost, "/api/v1/links", token, map[string]string{
		"title": "My Blog",
		"url":   "https://blog.example.com",
		"slug":  "blog",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var created LinkJson
	unmarshalData(t, body, &created)
	assert.Equal(t, "My Blog", created.Title)
	assert.Equal(t, "public", created.Visibility)
	assert.Equal(t, 0, created.Order)

	t.Run("create rejects missing fields", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodPost, "/api/v1/links", token, map[string]string{
			"url": "https://blog.example.com", "slug": "x",
		})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Contains(t, string(body), "title")
	})

	t.Run("get by id", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodGet, "/api/v1/links/"+created.ID, token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var fetched LinkJson
		unmarshalData(t, body, &fetched)
		assert.Equal(t, created.ID, fetched.ID)
	})

	t.Run("unknown id is 404, unowned is 403", func(t *testing.T) {
		res, _ := doRequestJson(t, srv, http.MethodGet, "/api/v1/links/nope", token, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, _ = doRequestJson(t, srv, http.MethodGet, "/api/v1/links/"+created.ID, "token:user_2", nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("update", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodPut, "/api/v1/links/"+created.ID, token, map[string]string{
			"title": "My Cool Blog",
		})
		require.Equal(t, http.StatusOK, res.StatusCode)
		var updated LinkJson
		unmarshalData(t, body, &updated)
		assert.Equal(t, "My Cool Blog", updated.Title)
		assert.Equal(t, created.URL, updated.URL)
	})

	t.Run("list", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodGet, "/api/v1/links", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var list []LinkJson
		unmarshalData(t, body, &list)
		require.Equal(t, 1, len(list))
	})

	t.Run("delete", func(t *testing.T) {
		res, _ := doRequestJson(t, srv, http.MethodDelete, "/api/v1/links/"+created.ID, token, nil)
		assert.Equal(t, http.StatusNoContent, res.StatusCode)

		res, _ = doRequestJson(t, srv, http.MethodDelete, "/api/v1/links/"+created.ID, token, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestMoveAndToggle(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := "token:user_1"

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		res, body := doRequestJson(t, srv, http.MethodPost, "/api/v1/links", token, map[string]string{
			"title": title,
			"url":   "https://example.com/" + title,
			"slug":  title,
		})
		require.Equal(t, http.StatusCreated, res.StatusCode)
		var created LinkJson
		unmarshalData(t, body, &created)
		ids = append(ids, created.ID)
	}

	t.Run("move returns the refreshed list", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodPost, "/api/v1/links/"+ids[1]+"/move", token, map[string]string{
			"direction": "up",
		})
		require.Equal(t, http.StatusOK, res.StatusCode)
		var list []LinkJson
		unmarshalData(t, body, &list)
		require.Equal(t, 3, len(list))
		assert.Equal(t, ids[1], list[0].ID)
		assert.Equal(t, ids[0], list[1].ID)
		assert.Equal(t, ids[2], list[2].ID)
	})

	t.Run("bad direction is a 400", func(t *testing.T) {
		res, _ := doRequestJson(t, srv, http.MethodPost, "/api/v1/links/"+ids[1]+"/move", token, map[string]string{
			"direction": "sideways",
		})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("toggle hides and appends on re-show", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodPost, "/api/v1/links/"+ids[2]+"/visibility", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var toggled LinkJson
		unmarshalData(t, body, &toggled)
		assert.Equal(t, "private", toggled.Visibility)

		// Re-showing appends after whatever public ranks remain.
		res, body = doRequestJson(t, srv, http.MethodGet, "/api/v1/links", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var list []LinkJson
		unmarshalData(t, body, &list)
		maxPublicOrder := -1
		for _, link := range list {
			if link.Visibility == "public" {
				maxPublicOrder = utils.IntMax(maxPublicOrder, link.Order)
			}
		}

		res, body = doRequestJson(t, srv, http.MethodPost, "/api/v1/links/"+ids[2]+"/visibility", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		unmarshalData(t, body, &toggled)
		assert.Equal(t, "public", toggled.Visibility)
		assert.Equal(t, maxPublicOrder+1, toggled.Order)
	})
}

// Fails every rank write; everything else passes through to the real store.
type brokenRankStore struct {
	linkdata.Store
}

func (s *brokenRankStore) UpdateLinkFields(ctx context.Context, id string, patch linkdata.LinkPatch) (*models.Link, error) {
	return nil, errors.New("rank write failed")
}

func TestMoveFailureReturnsFreshList(t *testing.T) {
	store := linkdata.NewMemStore()
	fake := &fakeIdentity{
		usersByID: map[string]*identity.User{
			"user_1": {ID: "user_1", Username: "annie"},
		},
	}
	srv := httptest.NewServer(NewWebsiteRoutes(&brokenRankStore{Store: store}, fake))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	first, err := linkdata.CreateLink(ctx, store, "user_1", linkdata.LinkInput{
		Title: "a", URL: "https://example.com/a", Slug: "a",
	})
	require.Nil(t, err)
	_, err = linkdata.CreateLink(ctx, store, "user_1", linkdata.LinkInput{
		Title: "b", URL: "https://example.com/b", Slug: "b",
	})
	require.Nil(t, err)

	res, body := doRequestJson(t, srv, http.MethodPost, "/api/v1/links/"+first.ID+"/move", "token:user_1", map[string]string{
		"direction": "down",
	})
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)

	// The swap may have half-applied, so the body carries the error plus the
	// current list for the client to resynchronize from.
	var envelope struct {
		Error string     `json:"error"`
		Data  []LinkJson `json:"data"`
	}
	require.Nil(t, json.Unmarshal(body, &envelope))
	assert.NotEmpty(t, envelope.Error)
	require.Equal(t, 2, len(envelope.Data))
	assert.Equal(t, first.ID, envelope.Data[0].ID)
}

func TestPublicLinks(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()

	_, err := linkdata.CreateLink(ctx, store, "user_1", linkdata.LinkInput{
		Title: "GitHub", URL: "https://github.com/annie", Slug: "gh",
	})
	require.Nil(t, err)
	_, err = linkdata.CreateLink(ctx, store, "user_1", linkdata.LinkInput{
		Title: "Secret", URL: "https://example.com/secret", Slug: "secret", Visibility: "private",
	})
	require.Nil(t, err)

	res, body := doRequestJson(t, srv, http.MethodGet, "/api/v1/links/username/annie", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list []PublicLinkJson
	unmarshalData(t, body, &list)
	require.Equal(t, 1, len(list))
	assert.Equal(t, "GitHub", list[0].Title)
	assert.Equal(t, "github", list[0].ServiceIcon)
	assert.Equal(t, "annie", list[0].ServiceUsername)
	assert.Contains(t, list[0].ShortUrl, "/annie/gh")

	res, _ = doRequestJson(t, srv, http.MethodGet, "/api/v1/links/username/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	t.Run("by user id", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodGet, "/api/v1/links/user/user_1", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var list []PublicLinkJson
		unmarshalData(t, body, &list)
		require.Equal(t, 1, len(list))
		assert.Equal(t, "GitHub", list[0].Title)
		assert.Contains(t, list[0].ShortUrl, "/annie/gh")

		res, _ = doRequestJson(t, srv, http.MethodGet, "/api/v1/links/user/user_nobody", "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("by user id degrades without identity", func(t *testing.T) {
		_, err := linkdata.CreateLink(ctx, store, "user_gone", linkdata.LinkInput{
			Title: "Old Site", URL: "https://old.example.com", Slug: "old",
		})
		require.Nil(t, err)

		res, body := doRequestJson(t, srv, http.MethodGet, "/api/v1/links/user/user_gone", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var list []PublicLinkJson
		unmarshalData(t, body, &list)
		require.Equal(t, 1, len(list))
		assert.Equal(t, "Old Site", list[0].Title)
		assert.Equal(t, "", list[0].ShortUrl)
	})
}

func TestProfiles(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := "token:user_1"

	t.Run("own profile is created lazily", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodGet, "/api/v1/profiles/me", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var profile ProfileJson
		unmarshalData(t, body, &profile)
		assert.Equal(t, "user_1", profile.UserID)
		assert.Equal(t, "", profile.Bio)
		assert.Equal(t, "annie", profile.Username)
	})

	t.Run("bio upsert", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodPut, "/api/v1/profiles/me", token, map[string]string{
			"bio": "I make links.",
		})
		require.Equal(t, http.StatusOK, res.StatusCode)
		var profile ProfileJson
		unmarshalData(t, body, &profile)
		assert.Equal(t, "I make links.", profile.Bio)
	})

	t.Run("public by username", func(t *testing.T) {
		res, body := doRequestJson(t, srv, http.MethodGet, "/api/v1/profiles/username/annie", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var profile ProfileJson
		unmarshalData(t, body, &profile)
		assert.Equal(t, "user_1", profile.UserID)
		assert.Equal(t, "Annie Example", profile.DisplayName)
		assert.Equal(t, "I make links.", profile.Bio)
		assert.Contains(t, profile.ProfileUrl, "/annie")

		res, _ = doRequestJson(t, srv, http.MethodGet, "/api/v1/profiles/username/nobody", "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("public by user id degrades without identity info", func(t *testing.T) {
		// Store a bio for a user the identity provider no longer knows.
		res, body := doRequestJson(t, srv, http.MethodPut, "/api/v1/profiles/me", "token:user_gone", map[string]string{
			"bio": "still here",
		})
		require.Equal(t, http.StatusOK, res.StatusCode)

		res, body = doRequestJson(t, srv, http.MethodGet, "/api/v1/profiles/user_gone", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		var profile ProfileJson
		unmarshalData(t, body, &profile)
		assert.Equal(t, "still here", profile.Bio)
		assert.Equal(t, "", profile.Username)
		assert.Equal(t, "", profile.DisplayName)
	})

	t.Run("unknown everywhere is a 404", func(t *testing.T) {
		res, _ := doRequestJson(t, srv, http.MethodGet, "/api/v1/profiles/user_never_seen", "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func signWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestIdentityWebhook(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()

	const secret = "whsec_test"
	oldSecret := config.Config.Identity.WebhookSecret
	config.Config.Identity.WebhookSecret = secret
	t.Cleanup(func() { config.Config.Identity.WebhookSecret = oldSecret })

	post := func(t *testing.T, body []byte, signature string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/webhooks/identity", bytes.NewReader(body))
		require.Nil(t, err)
		if signature != "" {
			req.Header.Set(webhookSignatureHeader, signature)
		}
		res, err := srv.Client().Do(req)
		require.Nil(t, err)
		res.Body.Close()
		return res
	}

	t.Run("rejects missing or bad signatures", func(t *testing.T) {
		body := []byte(`{"type":"user.created","data":{"id":"user_9"}}`)
		res := post(t, body, "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		res = post(t, body, signWebhookBody("wrong secret", body))
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("user.created provisions a profile", func(t *testing.T) {
		body := []byte(`{"type":"user.created","data":{"id":"user_9"}}`)
		res := post(t, body, signWebhookBody(secret, body))
		assert.Equal(t, http.StatusOK, res.StatusCode)

		profile, err := store.FindProfile(ctx, "user_9")
		require.Nil(t, err)
		assert.Equal(t, "user_9", profile.UserID)
	})

	t.Run("user.deleted removes everything", func(t *testing.T) {
		_, err := linkdata.CreateLink(ctx, store, "user_9", linkdata.LinkInput{
			Title: "Doomed", URL: "https://example.com", Slug: "doomed",
		})
		require.Nil(t, err)

		body := []byte(`{"type":"user.deleted","data":{"id":"user_9"}}`)
		res := post(t, body, signWebhookBody(secret, body))
		assert.Equal(t, http.StatusOK, res.StatusCode)

		links, err := store.FindLinksByOwner(ctx, "user_9")
		require.Nil(t, err)
		assert.Empty(t, links)
	})

	t.Run("unknown event types are acknowledged", func(t *testing.T) {
		body := []byte(`{"type":"user.renamed","data":{"id":"user_9"}}`)
		res := post(t, body, signWebhookBody(secret, body))
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}

func TestFourOhFour(t *testing.T) {
	srv, _, _ := newTestServer(t)
	for _, path := range []string{"/", "/api", "/api/v1/nonsense"} {
		res, _ := doRequestJson(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode, fmt.Sprintf("path %s", path))
	}
}
