package tracking

import (
	"strings"

	"github.com/mssola/useragent"
)

// Substrings matched case-insensitively against the User-Agent.
var botSignatures = []string{
	// Generic patterns
	"bot",
	"spider",
	"crawl",

	// Link-preview / unfurler bots
	"facebookexternalhit",
	"facebot",
	"whatsapp",
	"slackbot",
	"telegrambot",
	"applebot",
	"twitterbot",
	"linkedinbot",
	"preview",

	// Google
	"google web preview",
	"google favicon",
	"google-site-verification",
	"chrome-lighthouse",

	// HTTP client libraries (not real browsers)
	"go-http-client/",
	"curl/",
	"wget/",
	"python-requests/",
	"python-urllib/",
	"java/",
	"okhttp/",
	"ruby",

	// Headless / renderers
	"headlesschrome/",
	"phantomjs",
	"slimerjs",
	"wkhtmltoimage",
	"wkhtmltopdf",
}

// IsBot returns true if the user-agent looks like a bot or link-preview
// fetcher. Bot visitors are flagged, not dropped; view counts stay raw.
func IsBot(rawUA string) bool {
	ua := useragent.New(rawUA)
	if ua.Bot() {
		return true
	}
	lower := strings.ToLower(rawUA)
	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
