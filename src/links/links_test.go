package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKnownServicesForUrl(t *testing.T) {
	tests := []struct {
		url      string
		icon     string
		username string
	}{
		{"https://github.com/torvalds", "github", "torvalds"},
		{"https://gitlab.com/gitlab-org", "gitlab", "gitlab-org"},
		{"https://twitter.com/jack", "twitter", "jack"},
		{"https://x.com/jack", "twitter", "jack"},
		{"https://www.twitch.tv/j_blow", "twitch", "j_blow"},
		{"https://bsky.app/profile/example.com", "bluesky", "example.com"},
		{"https://www.linkedin.com/in/some-body", "linkedin", "some-body"},
		{"mailto:hello@example.com", "mail", ""},
		{"tel:+15551234567", "phone", ""},
		{"https://example.com/whatever", "website", ""},
	}

	for _, test := range tests {
		t.Run(test.url, func(t *testing.T) {
			svc, username := ParseKnownServicesForUrl(test.url)
			assert.Equal(t, test.icon, svc.IconName)
			assert.Equal(t, test.username, username)
		})
	}
}
