// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	jobqueue "github.com/okian/wellness/internal/adapters/mq/queue"
	workerpool "github.com/okian/wellness/internal/adapters/mq/worker"
	"github.com/okian/wellness/internal/adapters/repository"
	"github.com/okian/wellness/internal/domain/aggregate"
	"github.com/okian/wellness/internal/domain/barrier"
	"github.com/okian/wellness/internal/domain/biometric"
	"github.com/okian/wellness/internal/domain/features"
	"github.com/okian/wellness/internal/domain/model"
	"github.com/okian/wellness/internal/domain/predict"
	"github.com/okian/wellness/internal/domain/questionnaire"
	"github.com/okian/wellness/internal/domain/recommend"
	"github.com/okian/wellness/pkg/logger"
	"github.com/okian/wellness/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize        = 1024
	defaultFetchTimeout     = 5 * time.Second
	defaultFetchConcurrency = 5
	defaultMaxResults       = 10000
	continuationBacklog     = 64
	stopTimeout             = 30 * time.Second
)

// StoreFactory opens the host biometric store of one subject.
type StoreFactory func(ctx context.Context, subjectID string) (biometric.HostStore, error)

// jobRunner adapts the calorie pipeline to workerpool.Runner.
type jobRunner struct {
	svc *Service
}

func (r *jobRunner) RunJob(ctx context.Context, j model.Job) (float64, []float64, error) {
	out, err := r.svc.runCalories(ctx, j.SubjectID)
	if err != nil {
		return 0, nil, err
	}
	return out.Prediction, out.Vector.Values, nil
}

// Service wires the domain pipeline to its stores, queue and workers.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader       *predict.Loader
	storeFor     StoreFactory
	results      repository.Store
	jobQueue     *jobqueue.InMemoryQueue
	workerPool   *workerpool.Pool
	continuation *barrier.Serial

	// Configuration
	workerCount      int
	queueSize        int
	maxResults       int
	fetchTimeout     time.Duration
	fetchConcurrency int
	now              func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of job workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxResults bounds how many job results are retained.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreFactory sets how a subject's biometric store is opened.
func WithStoreFactory(f StoreFactory) Option {
	return func(s *Service) {
		if f != nil {
			s.storeFor = f
		}
	}
}

// WithLoader sets the model loader.
func WithLoader(l *predict.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithFetchTimeout bounds each biometric sample fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithFetchConcurrency bounds how many sample fetches of one run are in flight.
func WithFetchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fetchConcurrency = n
		}
	}
}

// WithClock sets the time source used for ages and job timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		queueSize:        defaultQueueSize,
		maxResults:       defaultMaxResults,
		fetchTimeout:     defaultFetchTimeout,
		fetchConcurrency: defaultFetchConcurrency,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = predict.NewLoader()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start initializes the job machinery and the continuation executor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting wellness service...")

	s.results = repository.NewMemoryStore(repository.WithMaxResults(s.maxResults))
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.continuation = barrier.NewSerial(continuationBacklog)
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, &jobRunner{svc: s}, s.results,
		workerpool.WithClock(s.now),
	)
	// Workers outlive the request that started the service.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "wellness service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("fetchTimeout", s.fetchTimeout),
	)
	return nil
}

// Stop drains queued jobs and stops the workers and the continuation executor.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool, cont := s.workerPool, s.continuation
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping wellness service...")

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	var err error
	if pool != nil {
		err = pool.Shutdown(stopCtx)
	}
	if cont != nil {
		cont.Close()
	}

	s.logger.Info(ctx, "wellness service stopped")
	return err
}

// Questionnaire returns the sleep prompts in asking order.
func (s *Service) Questionnaire() []questionnaire.Prompt {
	return questionnaire.Prompts()
}

// PredictSleep scores questionnaire answers keyed by field.
func (s *Service) PredictSleep(ctx context.Context, answers map[string]string) (model.Prediction, error) {
	vec, err := features.AssembleSleep(answers)
	if err != nil {
		s.recordParseError(ctx, err)
		return model.Prediction{}, err
	}
	value, err := s.invoke(ctx, predict.ModelSleep, vec)
	if err != nil {
		return model.Prediction{}, err
	}
	return model.Prediction{
		Model:          predict.ModelSleep,
		Value:          value,
		Vector:         vec.Values,
		Recommendation: recommend.ForSleep(&value),
	}, nil
}

// PredictDiet picks a recipe for a difficulty level.
func (s *Service) PredictDiet(ctx context.Context, difficulty string) (model.Prediction, error) {
	vec, err := features.AssembleDiet(difficulty)
	if err != nil {
		s.recordParseError(ctx, err)
		return model.Prediction{}, err
	}
	value, err := s.invoke(ctx, predict.ModelDiet, vec)
	if err != nil {
		return model.Prediction{}, err
	}
	return model.Prediction{
		Model:          predict.ModelDiet,
		Value:          value,
		Vector:         vec.Values,
		Recommendation: recommend.ForDiet(&value),
	}, nil
}

// PredictCalories runs the biometric pipeline for a subject and waits for it.
func (s *Service) PredictCalories(ctx context.Context, subjectID string) (model.Prediction, error) {
	out, err := s.runCalories(ctx, subjectID)
	if err != nil {
		return model.Prediction{}, err
	}
	return model.Prediction{
		Model:          predict.ModelCalories,
		Value:          out.Prediction,
		Vector:         out.Vector.Values,
		Recommendation: recommend.ForExercise(&out.Prediction),
	}, nil
}

// SubmitCaloriesJob queues a calorie prediction and returns its ticket.
func (s *Service) SubmitCaloriesJob(ctx context.Context, subjectID string) (model.Job, error) {
	if subjectID == "" {
		return model.Job{}, ErrInvalidSubject
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Job{}, ErrNotStarted
	}

	j := model.NewJob(subjectID, s.now())
	// The placeholder goes in first so a fast worker cannot be overwritten by it.
	if err := s.results.Save(ctx, model.Pending(j)); err != nil {
		return model.Job{}, fmt.Errorf("record job: %w", err)
	}
	if !s.jobQueue.Enqueue(ctx, j) {
		_ = s.results.Delete(ctx, j.ID)
		return model.Job{}, fmt.Errorf("submit job for %s: %w", subjectID, jobqueue.ErrFull)
	}
	s.logger.Debug(ctx, "job queued",
		logger.String("job_id", j.ID.String()),
		logger.String("subject", subjectID),
	)
	return j, nil
}

// Job returns the current result of a submitted job.
func (s *Service) Job(ctx context.Context, id uuid.UUID) (model.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.results == nil {
		return model.JobResult{}, ErrNotStarted
	}
	return s.results.Get(ctx, id)
}

// RecentJobs returns up to n job results, newest first.
func (s *Service) RecentJobs(ctx context.Context, n int) ([]model.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.results == nil {
		return nil, ErrNotStarted
	}
	return s.results.Recent(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"fetchTimeoutMs":   s.fetchTimeout.Milliseconds(),
		"fetchConcurrency": s.fetchConcurrency,
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["jobResults"] = s.results.Count(ctx)
	}
	return stats
}

func (s *Service) runCalories(ctx context.Context, subjectID string) (aggregate.Outcome, error) {
	if subjectID == "" {
		return aggregate.Outcome{}, ErrInvalidSubject
	}
	if s.storeFor == nil {
		return aggregate.Outcome{}, ErrNoStore
	}

	s.mu.RLock()
	var exec barrier.Executor = barrier.Inline{}
	if s.started {
		exec = s.continuation
	}
	s.mu.RUnlock()

	store, err := s.storeFor(ctx, subjectID)
	if err != nil {
		return aggregate.Outcome{}, fmt.Errorf("open store for %s: %w", subjectID, err)
	}
	pred, err := s.loader.Predictor(predict.ModelCalories)
	if err != nil {
		err = fmt.Errorf("%w: %w", predict.ErrModelInvocation, err)
		s.logger.Error(ctx, "calorie model unavailable", logger.Error(err))
		return aggregate.Outcome{}, err
	}

	p := aggregate.New(pred,
		aggregate.WithExecutor(exec),
		aggregate.WithFetchTimeout(s.fetchTimeout),
		aggregate.WithConcurrency(s.fetchConcurrency),
		aggregate.WithClock(s.now),
		aggregate.WithLogger(s.logger.Named("aggregate").With(logger.String("subject", subjectID))),
	)
	return p.Run(ctx, store)
}

func (s *Service) invoke(ctx context.Context, name string, vec features.FeatureVector) (float64, error) {
	pred, err := s.loader.Predictor(name)
	if err != nil {
		err = fmt.Errorf("%w: %w", predict.ErrModelInvocation, err)
		s.logger.Error(ctx, "model unavailable", logger.String("model", name), logger.Error(err))
		return 0, err
	}
	value, err := predict.Invoke(ctx, pred, name, vec)
	if err != nil {
		s.logger.Error(ctx, "prediction failed", logger.String("model", name), logger.Error(err))
		return 0, err
	}
	return value, nil
}

func (s *Service) recordParseError(ctx context.Context, err error) {
	field := "unknown"
	var fe *features.FieldError
	if errors.As(err, &fe) {
		field = fe.Field
	}
	metrics.RecordInputParseError(field)
	s.logger.Warn(ctx, "could not parse input", logger.String("field", field), logger.Error(err))
}
