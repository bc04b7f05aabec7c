// Package jitter turns request events into rounded retry delays.
package jitter

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"jitter-service/internal/metrics"
	"jitter-service/internal/retry"
	"jitter-service/internal/stats"
	"jitter-service/internal/store"
)

// Defaults fill fields an event leaves out.
type Defaults struct {
	Interval float64
	Backoff  float64
	Cap      float64
}

// Result describes one computed delay.
type Result struct {
	ID            uuid.UUID
	Strategy      Strategy
	RetryCount    int
	Policy        retry.Policy
	PreviousSleep *float64
	Lower, Upper  float64
	Delay         float64
	Rounded       int
}

// Service computes delays and reports them to the audit store, the stats
// recorder and metrics. Reporting failures never fail a calculation.
type Service struct {
	log      *slog.Logger
	defaults Defaults
	src      retry.Source
	store    store.Store
	stats    stats.Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

// WithSource injects the random source, e.g. a seeded one in tests.
func WithSource(src retry.Source) Option {
	return func(s *Service) { s.src = src }
}

func WithStore(st store.Store) Option {
	return func(s *Service) { s.store = st }
}

func WithStats(rec stats.Recorder) Option {
	return func(s *Service) { s.stats = rec }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(log *slog.Logger, defaults Defaults, opts ...Option) *Service {
	s := &Service{
		log:      log,
		defaults: defaults,
		store:    store.NoOpStore{},
		stats:    stats.NewNoOpRecorder(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = retry.NewSource()
	}
	return s
}

// Handle decodes a raw event and calculates its delay.
func (s *Service) Handle(ctx context.Context, data []byte) (Result, error) {
	ev, err := DecodeEvent(data)
	if err != nil {
		s.metrics.ObserveFailure(ErrorKind(err))
		return Result{}, err
	}
	return s.Calculate(ctx, ev)
}

// Calculate validates ev, builds its policy and draws a delay.
func (s *Service) Calculate(ctx context.Context, ev Event) (Result, error) {
	res, err := s.calculate(ev)
	if err != nil {
		s.metrics.ObserveFailure(ErrorKind(err))
		return Result{}, err
	}
	s.report(ctx, res)
	return res, nil
}

func (s *Service) calculate(ev Event) (Result, error) {
	if err := ev.Validate(); err != nil {
		return Result{}, err
	}
	policy, err := retry.NewPolicy(
		valueOr(ev.Interval, s.defaults.Interval),
		valueOr(ev.Backoff, s.defaults.Backoff),
		valueOr(ev.Cap, s.defaults.Cap),
	)
	if err != nil {
		return Result{}, err
	}
	calc, err := retry.NewCalculator(policy, s.src)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ID:         uuid.New(),
		Strategy:   ev.Strategy,
		RetryCount: ev.Attempt(),
		Policy:     policy,
	}
	if res.Strategy == "" {
		res.Strategy = StrategyFull
	}

	n := res.RetryCount
	switch res.Strategy {
	case StrategyExponential:
		res.Delay = calc.Exponential(n)
		res.Lower, res.Upper = res.Delay, res.Delay
	case StrategyFull:
		res.Upper = calc.Exponential(n)
		res.Delay = calc.FullJitter(n)
	case StrategyDecorrelated:
		prev := calc.FullJitter(n)
		if ev.PreviousSleep != nil {
			prev = *ev.PreviousSleep
		}
		res.PreviousSleep = &prev
		res.Delay, err = calc.DecorrelatedJitter(prev)
		if err != nil {
			return Result{}, err
		}
		res.Lower = math.Min(policy.Base, policy.Cap)
		res.Upper = math.Min(policy.Cap, math.Max(policy.Base, prev*3))
	}
	res.Rounded = int(math.RoundToEven(res.Delay))
	return res, nil
}

func (s *Service) report(ctx context.Context, res Result) {
	s.metrics.ObserveDelay(string(res.Strategy), res.Delay)

	log := s.log.With("calculation_id", res.ID, "strategy", res.Strategy)
	log.Debug("delay computed", "retry_count", res.RetryCount, "delay", res.Delay, "rounded", res.Rounded)

	if err := s.stats.Record(ctx, stats.Sample{Strategy: string(res.Strategy), Delay: res.Delay}); err != nil {
		log.Warn("failed to record stats", "err", err)
	}
	if err := s.store.SaveCalculation(ctx, res.record(s.now())); err != nil {
		log.Warn("failed to save calculation", "err", err)
	}
}

func (r Result) record(at time.Time) store.Calculation {
	return store.Calculation{
		ID:            r.ID,
		Strategy:      string(r.Strategy),
		RetryCount:    r.RetryCount,
		Base:          r.Policy.Base,
		Multiplier:    r.Policy.Multiplier,
		Cap:           r.Policy.Cap,
		PreviousSleep: r.PreviousSleep,
		Range:         []float64{r.Lower, r.Upper},
		Delay:         r.Delay,
		Rounded:       r.Rounded,
		CreatedAt:     at,
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
