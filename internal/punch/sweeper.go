package punch

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dealerops/prometheus"
)

// Sweeper periodically auto-closes punch records left open past the
// staleness threshold. Failures are logged and retried on the next
// cycle; no user initiated the action, so nothing is surfaced.
type Sweeper struct {
	machine   *Machine
	threshold time.Duration
	schedule  string
	log       *zap.Logger
	cron      *cron.Cron
}

// NewSweeper returns a Sweeper running schedule (standard cron spec)
// against records open longer than threshold.
func NewSweeper(machine *Machine, schedule string, threshold time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		machine:   machine,
		threshold: threshold,
		schedule:  schedule,
		log:       log,
	}
}

// Start registers the sweep with the cron scheduler and starts it.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

// Sweep closes all stale open records. Safe to run concurrently from
// multiple workers: AutoClose only transitions rows still open and
// treats already-closed rows as no-ops.
func (s *Sweeper) Sweep() {
	records, err := s.machine.StaleOpenRecords(s.threshold)
	if err != nil {
		s.log.Error("Failed to list stale punch records", zap.Error(err))
		return
	}
	if len(records) == 0 {
		return
	}

	closed := 0
	for _, record := range records {
		if _, err := s.machine.AutoClose(record.ID); err != nil {
			// Retried next cycle.
			s.log.Warn("Failed to auto-close punch record",
				zap.Uint("record_id", record.ID),
				zap.Error(err))
			continue
		}
		closed++
	}

	prometheus.RecordSweepRun(closed)
	s.log.Info("Punch auto-close sweep finished",
		zap.Int("stale", len(records)),
		zap.Int("closed", closed))
}
