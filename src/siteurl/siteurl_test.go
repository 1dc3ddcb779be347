package siteurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUrls(t *testing.T) {
	SetBaseUrl("https://linkli.example")

	assert.Equal(t, "https://linkli.example/annie", BuildUserProfile("annie"))
	assert.Equal(t, "https://linkli.example/annie/blog", BuildShortLink("annie", "blog"))

	t.Run("escapes usernames and slugs", func(t *testing.T) {
		assert.Equal(t, "https://linkli.example/a%20b", BuildUserProfile("a b"))
		assert.Equal(t, "https://linkli.example/annie/my%20site", BuildShortLink("annie", "my site"))
	})

	t.Run("tolerates a trailing slash on the base", func(t *testing.T) {
		SetBaseUrl("https://linkli.example/")
		assert.Equal(t, "https://linkli.example/annie", BuildUserProfile("annie"))
	})

	t.Run("keeps a base path prefix", func(t *testing.T) {
		SetBaseUrl("https://example.com/linkli")
		assert.Equal(t, "https://example.com/linkli/annie", BuildUserProfile("annie"))
	})

	t.Run("rejects relative bases", func(t *testing.T) {
		assert.Panics(t, func() {
			SetBaseUrl("not-a-url")
		})
	})
}
