package botdetect

import (
	"regexp"
)

// Verdict is the outcome of a User-Agent classification.
type Verdict string

const (
	VerdictBenign     Verdict = "benign"
	VerdictSuspicious Verdict = "suspicious"
	VerdictBlocked    Verdict = "blocked"
)

// Result carries the verdict and, when a rule fired, the pattern that
// matched.
type Result struct {
	Verdict        Verdict `json:"verdict"`
	MatchedPattern string  `json:"matched_pattern,omitempty"`
}

// Blocked reports whether the classified agent should be denied outright.
func (r Result) Blocked() bool { return r.Verdict == VerdictBlocked }

// Suspicious reports whether the agent warrants logging but not a block.
func (r Result) Suspicious() bool { return r.Verdict == VerdictSuspicious }

// blockedPatterns are evaluated in order; the first match wins. They cover
// scraping frameworks, generic bot tokens, search-engine bots, HTTP client
// libraries, headless browsers and API testing tools.
var blockedPatterns = []*regexp.Regexp{
	// Scrapers and crawlers
	regexp.MustCompile(`(?i)scrapy`),
	regexp.MustCompile(`(?i)crawl`),
	regexp.MustCompile(`(?i)spider`),
	regexp.MustCompile(`(?i)bot`),
	regexp.MustCompile(`(?i)slurp`),
	regexp.MustCompile(`(?i)bingbot`),
	regexp.MustCompile(`(?i)googlebot`),
	regexp.MustCompile(`(?i)yandex`),
	regexp.MustCompile(`(?i)baiduspider`),

	// HTTP libraries commonly used for automation
	regexp.MustCompile(`(?i)curl`),
	regexp.MustCompile(`(?i)wget`),
	regexp.MustCompile(`(?i)python-requests`),
	regexp.MustCompile(`(?i)python-urllib`),
	regexp.MustCompile(`(?i)axios`),
	regexp.MustCompile(`(?i)node-fetch`),
	regexp.MustCompile(`(?i)got/`),
	regexp.MustCompile(`(?i)http\.rb`),
	regexp.MustCompile(`(?i)go-http-client`),
	regexp.MustCompile(`(?i)java/`),
	regexp.MustCompile(`(?i)apache-httpclient`),
	regexp.MustCompile(`(?i)okhttp`),

	// Headless browsers
	regexp.MustCompile(`(?i)headless`),
	regexp.MustCompile(`(?i)phantom`),
	regexp.MustCompile(`(?i)puppeteer`),
	regexp.MustCompile(`(?i)selenium`),
	regexp.MustCompile(`(?i)playwright`),

	// API testing and scanning tools
	regexp.MustCompile(`(?i)postman`),
	regexp.MustCompile(`(?i)insomnia`),
	regexp.MustCompile(`(?i)httpie`),
	regexp.MustCompile(`(?i)scraper`),
	regexp.MustCompile(`(?i)monitor`),
	regexp.MustCompile(`(?i)scanner`),
}

// suspiciousPatterns match deliberately fake or truncated agents that are
// logged but not blocked on their own.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^mozilla/4\.0$`),
	regexp.MustCompile(`(?i)^mozilla/5\.0$`),
}

// Classify maps a User-Agent string to a verdict. It is pure and
// deterministic: policy (log, block, escalate) is the caller's concern.
func Classify(userAgent string) Result {
	if userAgent == "" {
		return Result{Verdict: VerdictSuspicious, MatchedPattern: "empty-user-agent"}
	}

	for _, p := range blockedPatterns {
		if p.MatchString(userAgent) {
			return Result{Verdict: VerdictBlocked, MatchedPattern: p.String()}
		}
	}

	for _, p := range suspiciousPatterns {
		if p.MatchString(userAgent) {
			return Result{Verdict: VerdictSuspicious, MatchedPattern: p.String()}
		}
	}

	return Result{Verdict: VerdictBenign}
}
