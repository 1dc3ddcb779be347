package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/astr0n0mer/linkli/src/oops"
)

/*
A Go client for the linkli API, for tooling and for embedding linkli state
into other programs. Pairs with Store, the local reducer-style mirror of the
caller's link collection.
*/

// A link as it appears on the wire.
type Link struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Slug       string    `json:"slug"`
	Category   string    `json:"category"`
	Visibility string    `json:"visibility"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Profile struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarUrl   string `json:"avatarUrl"`
	Bio         string `json:"bio"`
	ProfileUrl  string `json:"profileUrl"`
}

type LinkInput struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Slug       string `json:"slug"`
	Category   string `json:"category,omitempty"`
	Visibility string `json:"visibility,omitempty"`
}

type LinkPatch struct {
	Title      *string `json:"title,omitempty"`
	URL        *string `json:"url,omitempty"`
	Slug       *string `json:"slug,omitempty"`
	Category   *string `json:"category,omitempty"`
	Visibility *string `json:"visibility,omitempty"`
	Order      *int    `json:"order,omitempty"`
}

// A non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	BaseUrl string
	Token   string

	httpClient *http.Client
}

func NewClient(baseUrl string, token string) *Client {
	return &Client{
		BaseUrl:    baseUrl,
		Token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Links(ctx context.Context) ([]Link, error) {
	var links []Link
	err := c.do(ctx, http.MethodGet, "/api/v1/links", nil, &links)
	return links, err
}

func (c *Client) CreateLink(ctx context.Context, input LinkInput) (Link, error) {
	var link Link
	err := c.do(ctx, http.MethodPost, "/api/v1/links", input, &link)
	return link, err
}

func (c *Client) UpdateLink(ctx context.Context, id string, patch LinkPatch) (Link, error) {
	var link Link
	err := c.do(ctx, http.MethodPut, "/api/v1/links/"+url.PathEscape(id), patch, &link)
	return link, err
}

func (c *Client) DeleteLink(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/links/"+url.PathEscape(id), nil, nil)
}

// Returns the full refreshed list, the way the server responds to a move.
func (c *Client) MoveLink(ctx context.Context, id string, direction string) ([]Link, error) {
	var links []Link
	err := c.do(ctx, http.MethodPost, "/api/v1/links/"+url.PathEscape(id)+"/move", struct {
		Direction string `json:"direction"`
	}{Direction: direction}, &links)
	return links, err
}

func (c *Client) ToggleVisibility(ctx context.Context, id string) (Link, error) {
	var link Link
	err := c.do(ctx, http.MethodPost, "/api/v1/links/"+url.PathEscape(id)+"/visibility", nil, &link)
	return link, err
}

func (c *Client) PublicLinks(ctx context.Context, username string) ([]Link, error) {
	var links []Link
	err := c.do(ctx, http.MethodGet, "/api/v1/links/username/"+url.PathEscape(username), nil, &links)
	return links, err
}

func (c *Client) OwnProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodGet, "/api/v1/profiles/me", nil, &profile)
	return profile, err
}

func (c *Client) UpdateBio(ctx context.Context, bio string) (Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodPut, "/api/v1/profiles/me", struct {
		Bio string `json:"bio"`
	}{Bio: bio}, &profile)
	return profile, err
}

// Replaces the store's state with a fresh fetch.
func (c *Client) SyncStore(ctx context.Context, s *Store) error {
	links, err := c.Links(ctx)
	if err != nil {
		return err
	}
	s.SetLinks(links)
	return nil
}

/*
Moves a link remotely and mirrors the result into the store. A failed move
may have half-applied on the server, so on error the store is reconciled
with a fresh fetch rather than left guessing.
*/
func (c *Client) MoveLinkInStore(ctx context.Context, s *Store, id string, direction string) error {
	links, err := c.MoveLink(ctx, id, direction)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return err
		}
		if syncErr := c.SyncStore(ctx, s); syncErr != nil {
			return errors.Join(err, syncErr)
		}
		return err
	}
	s.SetLinks(links)
	return nil
}

func (c *Client) do(ctx context.Context, method string, path string, body any, dest any) error {
	var reqBody io.Reader
	if body != nil {
		marshaled, err := json.Marshal(body)
		if err != nil {
			return oops.New(err, "failed to marshal request body")
		}
		reqBody = bytes.NewReader(marshaled)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseUrl+path, reqBody)
	if err != nil {
		return oops.New(err, "failed to create request")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return oops.New(err, "failed to reach the linkli API")
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return oops.New(err, "failed to read response body")
	}

	if res.StatusCode >= 400 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(resBody, &envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(res.StatusCode)
		}
		return &APIError{StatusCode: res.StatusCode, Message: envelope.Error}
	}

	if dest != nil {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		err = json.Unmarshal(resBody, &envelope)
		if err != nil {
			return oops.New(err, "failed to unmarshal response envelope")
		}
		err = json.Unmarshal(envelope.Data, dest)
		if err != nil {
			return oops.New(err, "failed to unmarshal response data")
		}
	}

	return nil
}
