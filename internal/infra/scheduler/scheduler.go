package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// KeepAliveScheduler pings an external URL on a cron schedule so a PaaS
// free tier does not put the process to sleep. It has no effect on broadcasting.
type KeepAliveScheduler struct {
	cronEngine *cron.Cron
	client     *http.Client
	logger     *logrus.Entry
	url        string
	spec       string // e.g. "@every 300s"
	timeout    time.Duration
}

func NewKeepAliveScheduler(url, spec string, timeout time.Duration, logger *logrus.Entry) *KeepAliveScheduler {
	return &KeepAliveScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		url:        url,
		spec:       spec,
		timeout:    timeout,
	}
}

// Start registers the ping job and starts the cron engine in its own goroutine.
func (s *KeepAliveScheduler) Start() error {
	s.logger.WithFields(logrus.Fields{"url": s.url, "spec": s.spec}).Info("Starting keep-alive scheduler...")

	if _, err := s.cronEngine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.Ping(ctx)
	}); err != nil {
		return fmt.Errorf("could not add keep-alive cron job: %w", err)
	}

	s.cronEngine.Start()
	return nil
}

// Ping issues one GET and logs the outcome. Failures are never propagated.
func (s *KeepAliveScheduler) Ping(ctx context.Context) (status int) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		s.logger.WithError(err).Error("Keep-alive request could not be built")
		return 0
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).Warn("Keep-alive ping failed")
		return 0
	}
	resp.Body.Close()
	s.logger.WithField("status", resp.StatusCode).Info("Keep-alive ping")
	return resp.StatusCode
}

func (s *KeepAliveScheduler) Stop() {
	s.logger.Info("Stopping keep-alive scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Keep-alive scheduler stopped.")
}
