// internal/app/delivery.go
package app

import (
	"context"
	"time"

	"thread_broadcast_bot/internal/domain/platform"

	"github.com/sirupsen/logrus"
)

// DeliveryConfig bounds the retry behaviour of DeliveryPolicy.
type DeliveryConfig struct {
	MaxRetries         int
	RateLimitBackoff   time.Duration // Waited attempt×RateLimitBackoff
	ClientErrorBackoff time.Duration // Waited as-is on every client error
}

// DeliveryPolicy sends one message to one destination and decides, per failure class,
// whether to wait and try again.
type DeliveryPolicy struct {
	client platform.Client
	cfg    DeliveryConfig
	sleep  SleepFunc
	logger *logrus.Entry
}

func NewDeliveryPolicy(client platform.Client, cfg DeliveryConfig, logger *logrus.Entry) *DeliveryPolicy {
	return &DeliveryPolicy{
		client: client,
		cfg:    cfg,
		sleep:  Sleep,
		logger: logger,
	}
}

// Send reports whether the message was delivered. Failures are logged, never returned.
//
// Rate-limit failures wait RateLimitBackoff×attempt, client errors wait ClientErrorBackoff,
// anything else gives up at once. At most MaxRetries retries follow the first attempt.
func (p *DeliveryPolicy) Send(ctx context.Context, message, destination string) bool {
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return false
		}

		err := p.client.SendDirect(ctx, message, destination)
		if err == nil {
			return true
		}

		log := p.logger.WithFields(logrus.Fields{
			"destination": destination,
			"attempt":     attempt,
		}).WithError(err)
		if ctx.Err() != nil {
			log.Info("Send interrupted by shutdown")
			return false
		}

		var wait time.Duration
		switch platform.ClassOf(err) {
		case platform.ClassRateLimited:
			if attempt > p.cfg.MaxRetries {
				log.Error("Permanent send error")
				return false
			}
			wait = p.cfg.RateLimitBackoff * time.Duration(attempt)
			log.Warnf("Platform limit: waiting %s (attempt %d/%d)", wait, attempt, p.cfg.MaxRetries)
		case platform.ClassClient:
			log.Warn("Client error")
			if attempt > p.cfg.MaxRetries {
				return false
			}
			wait = p.cfg.ClientErrorBackoff
		default:
			log.Errorf("Unexpected error: %+v", err)
			return false
		}

		if err := p.sleep(ctx, wait); err != nil {
			log.Info("Retry wait interrupted")
			return false
		}
	}
}
