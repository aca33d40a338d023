package guard

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arsya371/apologyhub/internal/botdetect"
	"github.com/arsya371/apologyhub/internal/config"
	"github.com/arsya371/apologyhub/internal/edge"
	"github.com/arsya371/apologyhub/internal/logger"
	"github.com/arsya371/apologyhub/internal/metrics"
	"github.com/arsya371/apologyhub/internal/models"
	"github.com/arsya371/apologyhub/internal/ratelimit"
	"github.com/arsya371/apologyhub/internal/services"
	"github.com/arsya371/apologyhub/internal/util"
)

// Number of high-severity bot denials inside botBlockWindow that act as a
// temporary block even without a persisted record.
const (
	botBlockLimit  = 5
	botBlockWindow = 5 * time.Minute
)

// Options select which admission layers run for an endpoint.
type Options struct {
	CheckBlocked    bool
	CheckSuspicious bool
	CheckBots       bool
	LogRequest      bool
	Endpoint        string
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Status  int
	Reason  string
	Body    gin.H
}

func allow() Decision {
	return Decision{Allowed: true}
}

// genericDenial hides why the request was rejected. Bots and temporarily
// blocked clients get an opaque server error so they cannot probe which
// defense layer fired.
func genericDenial() Decision {
	return Decision{
		Allowed: false,
		Status:  http.StatusInternalServerError,
		Body:    gin.H{"error": "internal server error"},
	}
}

func forbidden(reason string) Decision {
	return Decision{
		Allowed: false,
		Status:  http.StatusForbidden,
		Reason:  reason,
		Body:    gin.H{"error": "access denied", "reason": reason},
	}
}

// Guard composes the admission layers: allowlist, bot classification,
// persisted blocks, and the sliding-window suspicion ledger with
// auto-escalation. Lookup failures fail open; availability wins over strict
// enforcement.
type Guard struct {
	Ledger    *ratelimit.Ledger
	Limiter   *ratelimit.Limiter
	Blocklist *services.BlocklistService
	Allowlist *services.AllowlistService
	SecLog    *services.SecurityLogService
	Notifier  *services.NotifierService
	Edge      *edge.Client
	Security  config.SecurityConfig
}

// Check runs the configured admission layers for the request, in order of
// authority: allowlist first, then bots, persisted blocks, and finally the
// request ledger.
func (g *Guard) Check(c *gin.Context, opts Options) Decision {
	ip := c.ClientIP()
	userAgent := util.SanitizeForLog(c.Request.UserAgent())
	metrics.IncAdmissionChecked()

	allowed, err := g.Allowlist.IsAllowed(ip)
	if err != nil {
		logger.WithFields(map[string]interface{}{"ip": ip}).WithError(err).Error("allowlist lookup failed, failing open")
	}
	if allowed {
		return allow()
	}

	if opts.CheckBots {
		if d := g.checkBots(c, ip, userAgent, opts.Endpoint); !d.Allowed {
			return d
		}
	}

	if opts.CheckBlocked {
		if d := g.checkBlocked(ip, userAgent, opts.Endpoint); !d.Allowed {
			return d
		}
	}

	if opts.CheckSuspicious {
		if d := g.checkSuspicious(c, ip, userAgent, opts.Endpoint); !d.Allowed {
			return d
		}
	}

	if opts.LogRequest {
		logger.WithFields(map[string]interface{}{
			"ip":       ip,
			"endpoint": opts.Endpoint,
		}).Debug("request admitted")
	}

	return allow()
}

func (g *Guard) checkBots(c *gin.Context, ip, userAgent, endpoint string) Decision {
	result := botdetect.Classify(c.Request.UserAgent())

	if result.Blocked() {
		g.SecLog.Record(&models.SecurityLog{
			IPAddress:  ip,
			Action:     models.ActionBotBlocked,
			Endpoint:   endpoint,
			UserAgent:  userAgent,
			Details:    fmt.Sprintf("Bot denied: pattern %s", result.MatchedPattern),
			ReasonCode: models.ReasonBotDetected,
			Severity:   models.SeverityHigh,
		})
		metrics.IncBotBlocked()
		metrics.IncAdmissionDenied()
		return genericDenial()
	}

	// Repeated bot denials act as a temporary block for the identifier even
	// when the current request carries a clean User-Agent.
	count, err := g.SecLog.CountRecentBotBlocks(ip, botBlockWindow)
	if err != nil {
		logger.WithFields(map[string]interface{}{"ip": ip}).WithError(err).Error("bot denial count failed, failing open")
	} else if count >= botBlockLimit {
		metrics.IncAdmissionDenied()
		return genericDenial()
	}

	if result.Suspicious() {
		g.SecLog.Record(&models.SecurityLog{
			IPAddress:  ip,
			Action:     models.ActionSuspiciousUA,
			Endpoint:   endpoint,
			UserAgent:  userAgent,
			Details:    fmt.Sprintf("Suspicious user agent: pattern %s", result.MatchedPattern),
			ReasonCode: models.ReasonSuspiciousUA,
			Severity:   models.SeverityMedium,
		})
	}

	return allow()
}

func (g *Guard) checkBlocked(ip, userAgent, endpoint string) Decision {
	record, err := g.Blocklist.GetBlocked(ip)
	if errors.Is(err, services.ErrBlockNotFound) {
		return allow()
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{"ip": ip}).WithError(err).Error("blocklist lookup failed, failing open")
		return allow()
	}
	if record.ExpiresAt != nil && !record.ExpiresAt.After(time.Now()) {
		return allow()
	}

	g.SecLog.Record(&models.SecurityLog{
		IPAddress: ip,
		Action:    models.ActionBlockedAttempt,
		Endpoint:  endpoint,
		UserAgent: userAgent,
		Details:   fmt.Sprintf("Blocked IP attempted access: %s", record.Reason),
		Severity:  models.SeverityMedium,
	})
	if err := g.Blocklist.IncrementRequestCount(ip); err != nil {
		logger.WithFields(map[string]interface{}{"ip": ip}).WithError(err).Error("failed to bump blocked request counter")
	}

	metrics.IncAdmissionDenied()
	return forbidden(record.Reason)
}

func (g *Guard) checkSuspicious(c *gin.Context, ip, userAgent, endpoint string) Decision {
	g.Ledger.Record(ip)

	suspicion := g.Ledger.Suspicious(ip, ratelimit.Thresholds{
		ShortTerm:  g.Security.ShortTermThreshold,
		MediumTerm: g.Security.MediumTermThreshold,
		LongTerm:   g.Security.LongTermThreshold,
	})
	if !suspicion.Suspicious {
		return allow()
	}

	g.SecLog.Record(&models.SecurityLog{
		IPAddress:  ip,
		Action:     models.ActionSuspiciousTraffic,
		Endpoint:   endpoint,
		UserAgent:  userAgent,
		Details:    suspicion.Reason,
		ReasonCode: models.ReasonRateExceeded,
		Severity:   models.SeverityHigh,
	})

	if suspicion.Counts.Minute > g.Security.HardCeiling {
		return g.autoBlock(c, ip, suspicion.Reason, suspicion.Counts.Minute)
	}

	// Suspicious but below the hard ceiling: logged and admitted.
	return allow()
}

// autoBlock escalates a suspicious identifier into a persisted block, mirrors
// it to the edge firewall when configured, and alerts the operator.
func (g *Guard) autoBlock(c *gin.Context, ip, reason string, requestCount int) Decision {
	blockReason := "Auto-blocked: " + reason

	_, err := g.Blocklist.Block(c.Request.Context(), ip, services.BlockOptions{
		Reason:       blockReason,
		BlockedBy:    "auto_escalation",
		RequestCount: requestCount,
		SyncEdge:     true,
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{"ip": ip}).WithError(err).Error("auto-block failed")
	} else {
		metrics.IncAutoBlocked()
		go g.Notifier.NotifyAutoBlock(ip, reason)
	}

	metrics.IncAdmissionDenied()
	return forbidden(blockReason)
}

// Middleware wraps Check as a gin handler.
func (g *Guard) Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Endpoint == "" {
			opts.Endpoint = c.FullPath()
		}
		decision := g.Check(c, opts)
		if !decision.Allowed {
			c.AbortWithStatusJSON(decision.Status, decision.Body)
			return
		}
		c.Next()
	}
}

// SubmissionGate enforces the per-identifier apology submission quota and
// escalates clients that keep hammering an exhausted window.
func (g *Guard) SubmissionGate(c *gin.Context) Decision {
	ip := c.ClientIP()
	userAgent := util.SanitizeForLog(c.Request.UserAgent())

	allowed, err := g.Allowlist.IsAllowed(ip)
	if err != nil {
		logger.WithFields(map[string]interface{}{"ip": ip}).WithError(err).Error("allowlist lookup failed, failing open")
	}
	if allowed {
		return allow()
	}

	if minuteCount := g.Ledger.CountWithin(ip, time.Minute); minuteCount > g.Security.SpamThreshold {
		g.SecLog.Record(&models.SecurityLog{
			IPAddress:  ip,
			Action:     models.ActionSpamDetected,
			Endpoint:   c.FullPath(),
			UserAgent:  userAgent,
			Details:    fmt.Sprintf("High request rate on submission: %d/min", minuteCount),
			ReasonCode: models.ReasonSpam,
			Severity:   models.SeverityHigh,
		})
	}

	result := g.Limiter.Check("submission:"+ip, g.Security.SubmissionLimit, g.Security.SubmissionWindow)
	if result.Allowed {
		return allow()
	}

	metrics.IncSubmissionLimited()

	// Sustained hammering of an exhausted window escalates to a block.
	if over := result.Count - g.Security.SubmissionLimit; over > g.Security.OverLimitBlockAfter {
		reason := fmt.Sprintf("Excessive submission attempts: %d over limit", over)
		return g.autoBlock(c, ip, reason, result.Count)
	}

	metrics.IncAdmissionDenied()
	return Decision{
		Allowed: false,
		Status:  http.StatusTooManyRequests,
		Reason:  "submission limit exceeded",
		Body:    gin.H{"error": "Too many requests. Please try again later."},
	}
}
