// internal/app/scheduler.go
package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"time"

	"thread_broadcast_bot/internal/domain/broadcast"

	"github.com/sirupsen/logrus"
)

// SchedulerConfig holds the pacing of a broadcast run.
type SchedulerConfig struct {
	DelayMin   time.Duration // Inclusive, whole seconds are drawn
	DelayMax   time.Duration
	CycleDelay time.Duration
}

// CycleScheduler walks every destination once per cycle, forever.
// Sends are strictly sequential; pacing comes from the random per-message delay.
type CycleScheduler struct {
	deliverer broadcast.Deliverer
	payload   *broadcast.Configuration
	cfg       SchedulerConfig
	reporter  broadcast.CycleReporter
	logger    *logrus.Entry

	sleep SleepFunc
	randN func(n int64) int64
	now   func() time.Time
}

func NewCycleScheduler(
	deliverer broadcast.Deliverer,
	payload *broadcast.Configuration,
	cfg SchedulerConfig,
	reporter broadcast.CycleReporter,
	logger *logrus.Entry,
) *CycleScheduler {
	if reporter == nil {
		reporter = NewLogReporter(logger)
	}
	return &CycleScheduler{
		deliverer: deliverer,
		payload:   payload,
		cfg:       cfg,
		reporter:  reporter,
		logger:    logger,
		sleep:     Sleep,
		randN:     rand.Int64N,
		now:       time.Now,
	}
}

// Run loops until ctx is cancelled and returns the cancellation cause.
// A panic inside a cycle is recovered once here and returned as an error.
func (s *CycleScheduler) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("stack", string(debug.Stack())).Errorf("Critical error: %v", r)
			err = fmt.Errorf("scheduler panic: %v", r)
		}
	}()

	for cycle := 1; ; cycle++ {
		result, err := s.RunCycle(ctx, cycle)
		if err != nil {
			return err
		}
		s.reporter.ReportCycle(result)

		s.logger.Infof("Next cycle in %s...", s.cfg.CycleDelay)
		if err := s.sleep(ctx, s.cfg.CycleDelay); err != nil {
			return err
		}
	}
}

// RunCycle sends the message to every destination once. Individual failures never
// stop the pass; only cancellation does.
func (s *CycleScheduler) RunCycle(ctx context.Context, cycle int) (broadcast.CycleResult, error) {
	start := s.now()
	total := len(s.payload.Destinations)
	result := broadcast.CycleResult{Cycle: cycle, Total: total}

	s.logger.WithField("cycle", cycle).Infof("CYCLE #%d STARTED", cycle)
	for i, destination := range s.payload.Destinations {
		if err := ctx.Err(); err != nil {
			result.Elapsed = s.now().Sub(start)
			return result, err
		}

		log := s.logger.WithFields(logrus.Fields{"cycle": cycle, "destination": destination})
		log.Infof("[%d/%d] Sending to %s...", i+1, total, destination)

		status := "Failed"
		if s.deliverer.Send(ctx, s.payload.Message, destination) {
			result.Successes++
			status = "Success"
		}

		delay := s.nextDelay()
		log.Infof("%s | Next in %s", status, delay)
		if err := s.sleep(ctx, delay); err != nil {
			result.Elapsed = s.now().Sub(start)
			return result, err
		}
	}
	result.Elapsed = s.now().Sub(start)
	return result, nil
}

// nextDelay draws a whole number of seconds uniformly from [DelayMin, DelayMax].
func (s *CycleScheduler) nextDelay() time.Duration {
	lo := int64(s.cfg.DelayMin / time.Second)
	hi := int64(s.cfg.DelayMax / time.Second)
	if hi <= lo {
		return time.Duration(lo) * time.Second
	}
	return time.Duration(lo+s.randN(hi-lo+1)) * time.Second
}

// LogReporter writes cycle summaries to the log.
type LogReporter struct {
	logger *logrus.Entry
}

func NewLogReporter(logger *logrus.Entry) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) ReportCycle(result broadcast.CycleResult) {
	r.logger.WithFields(logrus.Fields{
		"cycle":     result.Cycle,
		"successes": result.Successes,
		"total":     result.Total,
		"elapsed":   result.Elapsed.Round(time.Second).String(),
	}).Infof("CYCLE #%d COMPLETE: success rate %d/%d, duration %s",
		result.Cycle, result.Successes, result.Total, result.Elapsed.Round(time.Second))
}
