package links

import "regexp"

// An online site/service for which we recognize the link. Public link
// responses carry the icon name so clients don't each maintain their own
// domain table.
type Service struct {
	Name     string
	IconName string
	Regex    *regexp.Regexp
}

var Services = []Service{
	{
		Name:     "Bluesky",
		IconName: "bluesky",
		Regex:    regexp.MustCompile(`^https?://bsky\.app/profile/(?P<username>[\w.-]+)$`),
	},
	{
		Name:     "CodePen",
		IconName: "codepen",
		Regex:    regexp.MustCompile(`^https?://codepen\.io/(?P<username>[\w-]+)`),
	},
	{
		Name:     "Dribbble",
		IconName: "dribbble",
		Regex:    regexp.MustCompile(`^https?://dribbble\.com/(?P<username>[\w-]+)`),
	},
	{
		Name:     "Email",
		IconName: "mail",
		Regex:    regexp.MustCompile(`^mailto:`),
	},
	{
		Name:     "Facebook",
		IconName: "facebook",
		Regex:    regexp.MustCompile(`^https?://(www\.)?facebook\.com/(?P<username>[\w.]+)`),
	},
	{
		Name:     "Figma",
		IconName: "figma",
		Regex:    regexp.MustCompile(`^https?://(www\.)?figma\.com/@(?P<username>[\w-]+)`),
	},
	{
		Name:     "GitHub",
		IconName: "github",
		Regex:    regexp.MustCompile(`^https?://github\.com/(?P<username>[\w/-]+)`),
	},
	{
		Name:     "GitLab",
		IconName: "gitlab",
		Regex:    regexp.MustCompile(`^https?://gitlab\.com/(?P<username>[\w/-]+)`),
	},
	{
		Name:     "Instagram",
		IconName: "instagram",
		Regex:    regexp.MustCompile(`^https?://(www\.)?instagram\.com/(?P<username>[\w.]+)`),
	},
	{
		Name:     "LinkedIn",
		IconName: "linkedin",
		Regex:    regexp.MustCompile(`^https?://(www\.)?linkedin\.com/in/(?P<username>[\w-]+)`),
	},
	{
		Name:     "Phone",
		IconName: "phone",
		Regex:    regexp.MustCompile(`^tel:`),
	},
	{
		Name:     "Slack",
		IconName: "slack",
		Regex:    regexp.MustCompile(`^https?://(?P<username>[\w-]+)\.slack\.com`),
	},
	{
		Name:     "Twitch",
		IconName: "twitch",
		Regex:    regexp.MustCompile(`^https?://(www\.)?twitch\.tv/(?P<username>[\w/-]+)`),
	},
	{
		Name:     "Twitter",
		IconName: "twitter",
		Regex:    regexp.MustCompile(`^https?://(twitter|x)\.com/(?P<username>\w+)`),
	},
	{
		Name:     "YouTube",
		IconName: "youtube",
		Regex:    regexp.MustCompile(`youtube\.com/(c/)?(?P<username>[@\w/-]+)$`),
	},
}

func ParseKnownServicesForUrl(url string) (service Service, username string) {
	for _, svc := range Services {
		match := svc.Regex.FindStringSubmatch(url)
		if match != nil {
			username := ""
			if idx := svc.Regex.SubexpIndex("username"); idx >= 0 {
				username = match[idx]
			}

			return svc, username
		}
	}
	return Service{
		IconName: "website",
	}, ""
}
