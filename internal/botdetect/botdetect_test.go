package botdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		verdict   Verdict
		pattern   string
	}{
		{"empty agent", "", VerdictSuspicious, "empty-user-agent"},
		{"curl", "curl/7.68.0", VerdictBlocked, `(?i)curl`},
		{"wget", "Wget/1.21", VerdictBlocked, `(?i)wget`},
		{"python requests", "python-requests/2.31.0", VerdictBlocked, `(?i)python-requests`},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", VerdictBlocked, ""},
		{"scrapy", "Scrapy/2.11 (+https://scrapy.org)", VerdictBlocked, `(?i)scrapy`},
		{"headless chrome", "Mozilla/5.0 (X11; Linux x86_64) HeadlessChrome/119.0", VerdictBlocked, `(?i)headless`},
		{"go http client", "Go-http-client/2.0", VerdictBlocked, `(?i)go-http-client`},
		{"postman", "PostmanRuntime/7.36.0", VerdictBlocked, `(?i)postman`},
		{"okhttp", "okhttp/4.12.0", VerdictBlocked, `(?i)okhttp`},
		{"bare mozilla 4", "Mozilla/4.0", VerdictSuspicious, `(?i)^mozilla/4\.0$`},
		{"bare mozilla 5", "Mozilla/5.0", VerdictSuspicious, `(?i)^mozilla/5\.0$`},
		{"real chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36", VerdictBenign, ""},
		{"real firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0", VerdictBenign, ""},
		{"real safari", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15", VerdictBenign, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(tc.userAgent)
			assert.Equal(t, tc.verdict, res.Verdict)
			if tc.pattern != "" {
				assert.Equal(t, tc.pattern, res.MatchedPattern)
			}
			if tc.verdict == VerdictBlocked {
				assert.NotEmpty(t, res.MatchedPattern)
				assert.True(t, res.Blocked())
			}
			if tc.verdict == VerdictBenign {
				assert.Empty(t, res.MatchedPattern)
			}
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// "spiderbot" matches both spider and bot; the earlier rule is reported.
	res := Classify("spiderbot/1.0")
	assert.Equal(t, VerdictBlocked, res.Verdict)
	assert.Equal(t, `(?i)spider`, res.MatchedPattern)
}
