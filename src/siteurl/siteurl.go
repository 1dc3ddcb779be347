package siteurl

import (
	"net/url"
	"strings"

	"github.com/astr0n0mer/linkli/src/config"
	"github.com/astr0n0mer/linkli/src/oops"
)

/*
Absolute URLs for the public-facing pages, built from the configured base
URL. Only the URLs we hand out in API responses live here; API routes
themselves are defined next to their handlers.
*/

var baseUrl url.URL

func init() {
	SetBaseUrl(config.Config.BaseUrl)
}

func SetBaseUrl(base string) {
	parsed, err := url.Parse(base)
	if err != nil {
		panic(oops.New(err, "could not parse base URL: %s", base))
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		panic(oops.New(nil, "base URL must be absolute, got: %s", base))
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	baseUrl = *parsed
}

// The public profile page for a user, e.g. https://linkli.example/annie.
func BuildUserProfile(username string) string {
	return buildPath(url.PathEscape(username))
}

// The public short link for one of a user's links, e.g.
// https://linkli.example/annie/blog.
func BuildShortLink(username string, slug string) string {
	return buildPath(url.PathEscape(username) + "/" + url.PathEscape(slug))
}

func buildPath(escapedPath string) string {
	return baseUrl.Scheme + "://" + baseUrl.Host + baseUrl.Path + "/" + escapedPath
}
