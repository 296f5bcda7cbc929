package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the recurring jobs: the weekly broadcast and temp-file
// cleanup. Jobs keep no "already ran" state; a restart close to a trigger
// time may fire twice, which the stores absorb via duplicate suppression.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New builds a scheduler whose jobs never overlap themselves.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger: logger,
	}
}

// Add registers a named job on the given cron spec. Job errors are logged;
// nothing may terminate the schedule permanently.
func (s *Scheduler) Add(spec, name string, job func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("scheduled job starting", zap.String("job", name))
		if err := job(); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("scheduled job finished", zap.String("job", name))
	})
	return err
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
