// Package notify fans operator alerts out to shoutrrr URLs, typically a
// Matrix room the moderation team watches.
package notify

import (
	"github.com/containrrr/shoutrrr"
	"github.com/sirupsen/logrus"

	"github.com/Demigodrick/community-bot/internal/logger"
)

// Service sends alerts to every configured shoutrrr URL. With no URLs
// configured every send is a no-op.
type Service struct {
	URLs []string
}

func New(urls []string) *Service {
	return &Service{URLs: urls}
}

// Send delivers a titled message to all configured targets. Delivery failures
// are logged and never block the caller's work.
func (s *Service) Send(title, message string) {
	for _, u := range s.URLs {
		if err := shoutrrr.Send(u, title+"\n"+message); err != nil {
			logger.WithFields(logrus.Fields{"target": redact(u)}).
				WithError(err).Warn("operator alert failed")
		}
	}
}

// redact trims a shoutrrr URL down to its scheme so tokens never hit the logs.
func redact(u string) string {
	for i := 0; i < len(u); i++ {
		if u[i] == ':' {
			return u[:i]
		}
	}
	return "unknown"
}
