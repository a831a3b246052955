// Package aggregate runs one biometric prediction cycle: authorize, fetch the
// most recent sample of every required quantity in parallel, join, assemble
// the calorie feature vector and invoke the model.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/wellness/internal/domain/barrier"
	"github.com/okian/wellness/internal/domain/biometric"
	"github.com/okian/wellness/internal/domain/features"
	"github.com/okian/wellness/internal/domain/predict"
	"github.com/okian/wellness/pkg/logger"
	"github.com/okian/wellness/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Default pipeline configuration constants.
const (
	defaultFetchTimeout = 5 * time.Second
	defaultConcurrency  = 8
)

// Outcome of a successful run.
type Outcome struct {
	Vector     features.FeatureVector
	Prediction float64
	Samples    map[biometric.Kind]biometric.SampleResult
}

// Pipeline is stateless between runs; one instance serves any number of
// concurrent Run calls.
type Pipeline struct {
	predictor    predict.Predictor
	modelName    string
	exec         barrier.Executor
	fetchTimeout time.Duration
	concurrency  int
	now          func() time.Time
	logger       logger.Logger
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithExecutor sets the context the join continuation runs on.
func WithExecutor(exec barrier.Executor) Option {
	return func(p *Pipeline) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// WithFetchTimeout bounds every individual sample fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// WithConcurrency bounds how many fetches run at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithClock sets the reference time used to derive age.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithModelName labels predictions in logs and metrics.
func WithModelName(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.modelName = name
		}
	}
}

// New creates a pipeline around the calorie predictor.
func New(predictor predict.Predictor, opts ...Option) *Pipeline {
	p := &Pipeline{
		predictor:    predictor,
		modelName:    predict.ModelCalories,
		exec:         barrier.Inline{},
		fetchTimeout: defaultFetchTimeout,
		concurrency:  defaultConcurrency,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("aggregate")
	}
	return p
}

// Run executes one full cycle against store. Every failure is terminal for
// this run and is returned, never retried.
func (p *Pipeline) Run(ctx context.Context, store biometric.HostStore) (Outcome, error) {
	if err := p.authorize(ctx, store); err != nil {
		return Outcome{}, err
	}

	age, sex, err := p.characteristics(ctx, store)
	if err != nil {
		metrics.RecordIncompleteVector()
		p.logger.Warn(ctx, "characteristics unavailable", logger.Error(err))
		return Outcome{}, err
	}

	samples, err := p.Collect(ctx, store)
	if err != nil {
		return Outcome{}, err
	}

	vec, err := features.AssembleCalories(features.CalorieInputs{Age: age, Sex: sex, Samples: samples})
	if err != nil {
		metrics.RecordIncompleteVector()
		p.logger.Warn(ctx, "incomplete biometric data", logger.Error(err))
		return Outcome{Samples: samples}, err
	}

	score, err := predict.Invoke(ctx, p.predictor, p.modelName, vec)
	if err != nil {
		p.logger.Error(ctx, "prediction failed", logger.String("model", p.modelName), logger.Error(err))
		return Outcome{Vector: vec, Samples: samples}, err
	}

	p.logger.Debug(ctx, "prediction complete",
		logger.String("model", p.modelName),
		logger.Float64("prediction", score),
	)
	return Outcome{Vector: vec, Prediction: score, Samples: samples}, nil
}

func (p *Pipeline) authorize(ctx context.Context, store biometric.HostStore) error {
	ok, err := store.RequestAuthorization(ctx, biometric.RequiredDataTypes())
	if err == nil && ok {
		return nil
	}
	metrics.RecordAuthorizationDenied()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrAuthorizationDenied, err)
	} else {
		err = ErrAuthorizationDenied
	}
	p.logger.Warn(ctx, "biometric authorization denied", logger.Error(err))
	return err
}

func (p *Pipeline) characteristics(ctx context.Context, store biometric.HostStore) (age, sex float64, err error) {
	c, err := store.Characteristics(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w: characteristics: %w",
			features.ErrIncompleteFeatureVector, biometric.ErrSampleUnavailable, err)
	}
	sex, ok := c.Sex.Feature()
	if !ok {
		return 0, 0, fmt.Errorf("%w: %w: biological sex not set",
			features.ErrIncompleteFeatureVector, biometric.ErrSampleUnavailable)
	}
	years, err := features.AgeAt(c.DateOfBirth, p.now())
	if err != nil {
		return 0, 0, err
	}
	return float64(years), sex, nil
}

// Collect fetches every required quantity in parallel and returns once all
// of them have reported, keyed by kind. Individual failures show up as absent
// results; only cancellation of ctx fails the collection itself.
func (p *Pipeline) Collect(ctx context.Context, store biometric.HostStore) (map[biometric.Kind]biometric.SampleResult, error) {
	kinds := biometric.RequiredKinds
	joined := make(chan map[biometric.Kind]biometric.SampleResult, 1)
	b := barrier.New(kinds, p.exec, func(results map[biometric.Kind]biometric.SampleResult) {
		metrics.RecordJoin()
		joined <- results
	})

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for _, k := range kinds {
		g.Go(func() error {
			b.Deliver(k, p.fetch(ctx, store, k))
			return nil
		})
	}
	_ = g.Wait()

	select {
	case results := <-joined:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fetchReply struct {
	value float64
	ok    bool
	err   error
}

// fetch produces exactly one result for k, whatever the store does.
func (p *Pipeline) fetch(ctx context.Context, store biometric.HostStore, k biometric.Kind) biometric.SampleResult {
	req, err := biometric.NewSampleRequest(k)
	if err != nil {
		return biometric.Absent(k, err)
	}

	fctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	start := time.Now()
	reply := make(chan fetchReply, 1)
	go func() {
		v, ok, err := store.MostRecentSample(fctx, req)
		reply <- fetchReply{value: v, ok: ok, err: err}
	}()

	var (
		res     biometric.SampleResult
		outcome string
	)
	select {
	case r := <-reply:
		switch {
		case r.err != nil && errors.Is(r.err, context.DeadlineExceeded) && errors.Is(fctx.Err(), context.DeadlineExceeded):
			res, outcome = biometric.Absent(k, fmt.Errorf("%w: %w", ErrFetchTimeout, r.err)), metrics.FetchTimeout
		case r.err != nil:
			res, outcome = biometric.Absent(k, r.err), metrics.FetchError
		case !r.ok:
			res, outcome = biometric.Absent(k, nil), metrics.FetchAbsent
		default:
			res, outcome = biometric.Present(k, r.value), metrics.FetchOK
		}
	case <-fctx.Done():
		if errors.Is(fctx.Err(), context.DeadlineExceeded) {
			res, outcome = biometric.Absent(k, fmt.Errorf("%w: %w", ErrFetchTimeout, fctx.Err())), metrics.FetchTimeout
		} else {
			res, outcome = biometric.Absent(k, context.Cause(fctx)), metrics.FetchError
		}
	}

	metrics.RecordFetch(string(k), outcome, float64(time.Since(start).Microseconds())/1000)
	if !res.OK {
		p.logger.Warn(ctx, "sample fetch failed",
			logger.String("kind", string(k)),
			logger.String("outcome", outcome),
			logger.Error(res.Err),
		)
	}
	return res
}
