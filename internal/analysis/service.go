// Package analysis runs the idle -> analyzing -> complete lifecycle of an
// estimate.
//
// Start moves an analysis to analyzing at once and completes it from a
// background goroutine after the configured delay. Starting an analysis
// that is already analyzing is a no-op; starting a complete one runs it
// again.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/palemoky/contentiq/internal/database"
	"github.com/palemoky/contentiq/internal/estimator"
	"github.com/palemoky/contentiq/internal/intake"
)

var (
	// ErrDerivation wraps an unexpected failure while computing a bundle
	ErrDerivation = errors.New("derivation failed")
	// ErrClosed is returned by Start once the service is closed
	ErrClosed = errors.New("analysis service closed")
)

// Deriver computes the bundle for a URL
type Deriver interface {
	Estimate(url string) estimator.MetricBundle
}

// Store persists analyses
type Store interface {
	CreateAnalysis(ctx context.Context, a *database.Analysis) error
	GetAnalysis(ctx context.Context, id string) (*database.Analysis, error)
	SaveAnalysis(ctx context.Context, a *database.Analysis) error
	DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Options configures a Service
type Options struct {
	Delay time.Duration
	TTL   time.Duration
}

// Service owns every analysis' lifecycle
type Service struct {
	store   Store
	deriver Deriver
	delay   time.Duration
	ttl     time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	running map[string]chan struct{} // closed when the analysis leaves analyzing

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a lifecycle service
func NewService(store Store, deriver Deriver, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		store:   store,
		deriver: deriver,
		delay:   opts.Delay,
		ttl:     opts.TTL,
		log:     log,
		running: make(map[string]chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Create stores a new idle analysis for rawURL
func (s *Service) Create(ctx context.Context, rawURL string) (*database.Analysis, error) {
	url, err := intake.Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	a := &database.Analysis{
		ID:     uuid.NewString(),
		URL:    url,
		State:  database.StateIdle,
		Bundle: datatypes.NewJSONType(estimator.MetricBundle{}),
	}
	if err := s.store.CreateAnalysis(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	s.log.Debug("Analysis created", zap.String("id", a.ID), zap.String("url", a.URL))
	return a, nil
}

// Get returns the analysis with the given ID
func (s *Service) Get(ctx context.Context, id string) (*database.Analysis, error) {
	return s.store.GetAnalysis(ctx, id)
}

// Analyze creates an analysis and starts it
func (s *Service) Analyze(ctx context.Context, rawURL string) (*database.Analysis, error) {
	a, err := s.Create(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.Start(ctx, a.ID)
}

// Start moves the analysis to analyzing and schedules its completion.
// A re-trigger while analyzing returns the current record unchanged.
func (s *Service) Start(ctx context.Context, id string) (*database.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return nil, ErrClosed
	}

	a, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, busy := s.running[id]; busy {
		return a, nil
	}

	now := time.Now()
	a.State = database.StateAnalyzing
	a.StartedAt = &now
	a.CompletedAt = nil
	a.Error = ""
	if err := s.store.SaveAnalysis(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to start analysis: %w", err)
	}

	done := make(chan struct{})
	s.running[id] = done

	s.wg.Add(1)
	go s.run(id, a.URL, done)

	s.log.Info("Analysis started", zap.String("id", id), zap.Duration("delay", s.delay))
	return a, nil
}

// Wait blocks until the analysis is no longer analyzing and returns it
func (s *Service) Wait(ctx context.Context, id string) (*database.Analysis, error) {
	s.mu.Lock()
	done, busy := s.running[id]
	s.mu.Unlock()

	if busy {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return s.store.GetAnalysis(ctx, id)
}

// Estimate runs a full analysis for rawURL and waits for its bundle
func (s *Service) Estimate(ctx context.Context, rawURL string) (*database.Analysis, error) {
	a, err := s.Analyze(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.Wait(ctx, a.ID)
}

func (s *Service) run(id, url string, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	var (
		bundle estimator.MetricBundle
		err    error
	)
	select {
	case <-timer.C:
		bundle, err = s.derive(url)
	case <-s.ctx.Done():
		err = s.ctx.Err()
	}

	// the service context may already be cancelled here
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// leaving running and saving the final state happen under one lock, so
	// a Start never sees a finished analysis as busy
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, id)

	a, getErr := s.store.GetAnalysis(ctx, id)
	if getErr != nil {
		s.log.Error("Failed to load analysis", zap.String("id", id), zap.Error(getErr))
		return
	}

	if err != nil {
		s.log.Error("Analysis failed", zap.String("id", id), zap.String("url", url), zap.Error(err))
		a.State = database.StateIdle
		a.Error = err.Error()
	} else {
		now := time.Now()
		a.State = database.StateComplete
		a.Bundle = datatypes.NewJSONType(bundle)
		a.CompletedAt = &now
	}

	if err := s.store.SaveAnalysis(ctx, a); err != nil {
		s.log.Error("Failed to save analysis", zap.String("id", id), zap.Error(err))
		return
	}

	s.log.Info("Analysis finished", zap.String("id", id), zap.String("state", string(a.State)))
}

func (s *Service) derive(url string) (bundle estimator.MetricBundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDerivation, r)
		}
	}()
	return s.deriver.Estimate(url), nil
}

// RunJanitor deletes analyses older than the TTL every interval until ctx
// or the service is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Purge(ctx); err != nil {
				s.log.Warn("Failed to purge expired analyses", zap.Error(err))
			}
		}
	}
}

// Purge deletes analyses older than the TTL
func (s *Service) Purge(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAnalysesBefore(ctx, time.Now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug("Purged expired analyses", zap.Int64("count", n))
	}
	return n, nil
}

// Close stops pending analyses and waits for their goroutines. Start
// returns ErrClosed afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}
