package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/content-console/pkg/logger"
	"go.uber.org/multierr"
)

const defaultInterval = time.Hour

type jobMetrics interface {
	ObserveDuration(job string, duration time.Duration)
	IncSuccess(job string)
	IncFailure(job string)
}

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  jobMetrics
	Interval time.Duration
}

// Service runs the registered jobs on a fixed interval under a shared lock.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  jobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes a cycle immediately and then once per interval until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"jobs": s.registry.Names(), "interval": s.interval.String()}), "sweeper started")
	if err := s.RunOnce(ctx); err != nil {
		s.logg.Error(ctx, "sweep cycle failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "sweeper stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logg.Error(ctx, "sweep cycle failed", err)
			}
		}
	}
}

// RunOnce runs every job once. Job failures do not stop later jobs; they come back combined.
func (s *Service) RunOnce(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "another sweeper holds the lock; skipping cycle")
		return nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "releasing sweeper lock failed", err)
		}
	}()

	var errs error
	for _, job := range s.registry.Jobs() {
		if err := s.runJob(ctx, job); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", job.Name(), err))
		}
	}
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "event": "cron.job"})
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())

	if s.metrics != nil {
		s.metrics.ObserveDuration(job.Name(), duration)
	}
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		if s.metrics != nil {
			s.metrics.IncFailure(job.Name())
		}
		return err
	}
	s.logg.Info(jobCtx, "job completed")
	if s.metrics != nil {
		s.metrics.IncSuccess(job.Name())
	}
	return nil
}
