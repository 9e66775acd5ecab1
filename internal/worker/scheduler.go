package worker

import (
	"context"
	"fmt"
	"time"

	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobFunc is one run of a background job
type JobFunc func(ctx context.Context) error

// Scheduler runs background jobs on cron schedules. A job that is still
// running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewScheduler creates a scheduler whose job runs are bounded by timeout
func NewScheduler(timeout time.Duration, logger logrus.FieldLogger) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		logger:  logger,
	}
}

// Add registers job under name with a cron schedule such as "@every 5m"
func (s *Scheduler) Add(name, schedule string, job JobFunc) error {
	_, err := s.cron.AddFunc(schedule, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) run(name string, job JobFunc) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	log := s.logger.WithField("job", name)
	if err := job(ctx); err != nil {
		log.WithError(err).Error("job failed")
		return
	}
	log.WithField("duration", time.Since(start).String()).Debug("job finished")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("background scheduler started")
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
