package services

import (
	"fmt"

	"github.com/containrrr/shoutrrr"

	"github.com/arsya371/apologyhub/internal/logger"
)

// NotifierService pushes security alerts to the operator's configured
// shoutrrr URLs (Discord, Telegram, email and friends). With no URLs
// configured every send is a no-op.
type NotifierService struct {
	urls []string
}

func NewNotifierService(urls []string) *NotifierService {
	return &NotifierService{urls: urls}
}

// Enabled reports whether any alert channel is configured.
func (s *NotifierService) Enabled() bool {
	return len(s.urls) > 0
}

// NotifyAutoBlock announces an automatic block. Failures are logged, never
// returned; alert delivery must not affect the admission path.
func (s *NotifierService) NotifyAutoBlock(ipAddress, reason string) {
	s.send(fmt.Sprintf("[ApologyHub] Auto-blocked %s: %s", ipAddress, reason))
}

// NotifySuspicious announces detected suspicious traffic.
func (s *NotifierService) NotifySuspicious(ipAddress, reason string) {
	s.send(fmt.Sprintf("[ApologyHub] Suspicious traffic from %s: %s", ipAddress, reason))
}

func (s *NotifierService) send(message string) {
	if !s.Enabled() {
		return
	}
	for _, url := range s.urls {
		if err := shoutrrr.Send(url, message); err != nil {
			logger.Log().WithError(err).Warn("failed to deliver alert notification")
		}
	}
}
