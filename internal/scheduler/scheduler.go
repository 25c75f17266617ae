// Package scheduler runs the periodic maintenance jobs of the service:
// expiring idle document slots and retrying the generation backend load.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/talqs/talqs/backend/go-services/pkg/logger"
)

const (
	DefaultSweepSpec  = "@every 1m"
	DefaultWarmupSpec = "@every 30s"
	warmupTimeout     = 2 * time.Minute
)

// Sweeper drops expired entries and reports how many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

type namedSweeper struct {
	name string
	Sweeper
}

// Warmer loads the generation backend.
type Warmer interface {
	Enabled() bool
	Loaded() bool
	Warmup(ctx context.Context) error
}

type Scheduler struct {
	ctx     context.Context
	cron     *cron.Cron
	sweepers []namedSweeper
	warmer   Warmer
	now     func() time.Time
}

// New returns a scheduler; sweeper (document slots) and warmer may be nil.
func New(ctx context.Context, sweeper Sweeper, warmer Warmer) *Scheduler {
	s := &Scheduler{
		ctx:    ctx,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		warmer: warmer,
		now:    time.Now,
	}
	s.AddSweeper("document slots", sweeper)
	return s
}

// AddSweeper registers another sweeper run on the sweep schedule. It must be
// called before Start; nil is ignored.
func (s *Scheduler) AddSweeper(name string, sw Sweeper) {
	if sw == nil {
		return
	}
	s.sweepers = append(s.sweepers, namedSweeper{name: name, Sweeper: sw})
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(sweepSpec, warmupSpec string) error {
	if len(s.sweepers) > 0 {
		if sweepSpec == "" {
			sweepSpec = DefaultSweepSpec
		}
		if _, err := s.cron.AddFunc(sweepSpec, s.sweep); err != nil {
			return err
		}
	}
	if s.warmer != nil && s.warmer.Enabled() {
		if warmupSpec == "" {
			warmupSpec = DefaultWarmupSpec
		}
		if _, err := s.cron.AddFunc(warmupSpec, s.warmup); err != nil {
			return err
		}
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweep() {
	now := s.now()
	for _, sw := range s.sweepers {
		if n := sw.Sweep(now); n > 0 {
			logger.Infof("scheduler: expired %d %s", n, sw.name)
		}
	}
}

func (s *Scheduler) warmup() {
	if s.warmer.Loaded() {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, warmupTimeout)
	defer cancel()
	if ctx.Err() != nil {
		return
	}
	if err := s.warmer.Warmup(ctx); err != nil {
		logger.Warnf("scheduler: generation backend warmup failed: %v", err)
	}
}
