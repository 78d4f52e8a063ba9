package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/fernlea/loanledger/internal/usecase"
)

// Scheduler runs the daily interest accrual on a cron schedule. The accrual
// date passed to each run is the current day in the configured timezone, so a
// run delayed past midnight still accrues for the day it fires on.
type Scheduler struct {
	accrual  *usecase.AccrualUseCase
	cron     *cron.Cron
	spec     string
	location *time.Location
	logger   zerolog.Logger
}

// Config for Scheduler.
type Config struct {
	Accrual  *usecase.AccrualUseCase
	CronSpec string // standard 5-field cron expression
	Timezone string
	Logger   zerolog.Logger
}

// New creates a Scheduler. The accrual job is registered but not started.
func New(cfg Config) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	s := &Scheduler{
		accrual:  cfg.Accrual,
		cron:     cron.New(cron.WithLocation(location)),
		spec:     cfg.CronSpec,
		location: location,
		logger:   cfg.Logger,
	}

	if _, err := s.cron.AddFunc(cfg.CronSpec, s.runAccrual); err != nil {
		return nil, fmt.Errorf("failed to register accrual job: %w", err)
	}

	return s, nil
}

// Start begins the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info().
		Str("cron", s.spec).
		Str("timezone", s.location.String()).
		Msg("accrual scheduler started")

	s.cron.Start()
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info().Msg("accrual scheduler stopping")

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runAccrual() {
	ctx := context.Background()
	date := time.Now().In(s.location)

	summary, err := s.accrual.RunForDate(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled accrual run failed")
		return
	}

	s.logger.Info().
		Str("date", summary.Date.Format(time.DateOnly)).
		Int("posted", summary.Posted).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("scheduled accrual run finished")
}
