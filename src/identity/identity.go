package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/astr0n0mer/linkli/src/config"
	"github.com/astr0n0mer/linkli/src/jobs"
	"github.com/astr0n0mer/linkli/src/logging"
	"github.com/astr0n0mer/linkli/src/oops"
	"github.com/astr0n0mer/linkli/src/utils"
	"github.com/jpillora/backoff"
)

// A user as known to the identity provider. We never store any of this;
// it is fetched at read time and merged into responses.
type User struct {
	ID          string
	Username    string
	DisplayName string
	AvatarUrl   string
}

var ErrUnauthorized = errors.New("invalid or expired credential")
var ErrUserNotFound = errors.New("no such user")

// The identity provider, as seen by the rest of the app. Implementations
// must be safe for concurrent use.
type Client interface {
	// Verifies a bearer credential and returns the caller's user id.
	ResolveCallerID(ctx context.Context, credential string) (string, error)
	// Resolves a username to a full user record. Returns ErrUserNotFound if
	// the provider doesn't know the username.
	UserByUsername(ctx context.Context, username string) (*User, error)
	// Fetches display info for a known user id.
	DisplayInfo(ctx context.Context, userID string) (*User, error)
}

const displayInfoTTL = 5 * time.Minute

type cachedUser struct {
	user      User
	fetchedAt time.Time
}

// Talks to the identity provider's management API over HTTP. Session
// credentials are verified locally (see token.go); only username resolution
// and display-info enrichment hit the network.
type HTTPClient struct {
	BaseUrl   string
	APIKey    string
	JWTSecret string

	httpClient *http.Client

	cacheMu sync.Mutex
	cache   map[string]cachedUser
}

var _ Client = &HTTPClient{}

func NewHTTPClient(cfg config.IdentityConfig) *HTTPClient {
	return &HTTPClient{
		BaseUrl:    cfg.BaseUrl,
		APIKey:     cfg.APIKey,
		JWTSecret:  cfg.JWTSecret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      make(map[string]cachedUser),
	}
}

func (c *HTTPClient) ResolveCallerID(ctx context.Context, credential string) (string, error) {
	return VerifySessionToken(c.JWTSecret, credential)
}

type providerUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageUrl  string `json:"image_url"`
}

func (pu *providerUser) toUser() *User {
	displayName := pu.FirstName
	if pu.LastName != "" {
		if displayName != "" {
			displayName += " "
		}
		displayName += pu.LastName
	}
	return &User{
		ID:          pu.ID,
		Username:    pu.Username,
		DisplayName: displayName,
		AvatarUrl:   pu.ImageUrl,
	}
}

func (c *HTTPClient) UserByUsername(ctx context.Context, username string) (*User, error) {
	body, err := c.get(ctx, fmt.Sprintf("/users?username=%s", url.QueryEscape(username)))
	if err != nil {
		return nil, err
	}

	var result []providerUser
	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, oops.New(err, "failed to unmarshal identity provider response")
	}
	if len(result) == 0 {
		return nil, ErrUserNotFound
	}

	user := result[0].toUser()
	c.cachePut(user)
	return user, nil
}

func (c *HTTPClient) DisplayInfo(ctx context.Context, userID string) (*User, error) {
	if user, ok := c.cacheGet(userID); ok {
		return user, nil
	}

	body, err := c.get(ctx, fmt.Sprintf("/users/%s", url.PathEscape(userID)))
	if err != nil {
		return nil, err
	}

	var result providerUser
	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, oops.New(err, "failed to unmarshal identity provider response")
	}

	user := result.toUser()
	c.cachePut(user)
	return user, nil
}

const maxAttempts = 3

// Performs a GET against the provider's management API, retrying transient
// failures with exponential backoff.
func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	b := backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 2 * time.Second,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := utils.SleepContext(ctx, b.Duration()); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseUrl+path, nil)
		if err != nil {
			panic(err)
		}
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

		res, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = oops.New(err, "failed to reach identity provider")
			continue
		}

		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			lastErr = oops.New(err, "failed to read identity provider response")
			continue
		}

		switch {
		case res.StatusCode == http.StatusNotFound:
			return nil, ErrUserNotFound
		case res.StatusCode >= 500:
			lastErr = oops.New(nil, "identity provider returned status %d", res.StatusCode)
			continue
		case res.StatusCode >= 400:
			return nil, oops.New(nil, "identity provider rejected request with status %d", res.StatusCode)
		}

		return body, nil
	}

	return nil, lastErr
}

func (c *HTTPClient) cacheGet(userID string) (*User, bool) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	cached, ok := c.cache[userID]
	if !ok || time.Since(cached.fetchedAt) > displayInfoTTL {
		return nil, false
	}
	user := cached.user
	return &user, true
}

func (c *HTTPClient) cachePut(user *User) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[user.ID] = cachedUser{user: *user, fetchedAt: time.Now()}
}

func (c *HTTPClient) evictStale() int {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	evicted := 0
	for id, cached := range c.cache {
		if time.Since(cached.fetchedAt) > displayInfoTTL {
			delete(c.cache, id)
			evicted++
		}
	}
	return evicted
}

// Periodically drops expired display-info cache entries so the cache doesn't
// grow without bound on a long-running process.
func PeriodicallySweepDisplayInfoCache(c *HTTPClient) *jobs.Job {
	job := jobs.New("identity cache sweep")
	go func() {
		defer job.Finish()

		t := time.NewTicker(displayInfoTTL)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				n := c.evictStale()
				if n > 0 {
					logging.Debug().Int("num evicted", n).Msg("Evicted stale identity cache entries")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}
