// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/okian/wellness/internal/adapters/mq/queue"
	"github.com/okian/wellness/internal/adapters/repository"
	"github.com/okian/wellness/internal/domain/aggregate"
	"github.com/okian/wellness/internal/domain/features"
	"github.com/okian/wellness/internal/domain/model"
	"github.com/okian/wellness/internal/domain/predict"
	"github.com/okian/wellness/internal/domain/questionnaire"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Questionnaire() []questionnaire.Prompt
	PredictSleep(ctx context.Context, answers map[string]string) (model.Prediction, error)
	PredictDiet(ctx context.Context, difficulty string) (model.Prediction, error)
	PredictCalories(ctx context.Context, subjectID string) (model.Prediction, error)

	// SubmitCaloriesJob queues a calorie prediction; queue.ErrFull on backpressure.
	SubmitCaloriesJob(ctx context.Context, subjectID string) (model.Job, error)
	Job(ctx context.Context, id uuid.UUID) (model.JobResult, error)
	RecentJobs(ctx context.Context, n int) ([]model.JobResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	questionnaireHandler *QuestionnaireHandler
	predictionHandler    *PredictionHandler
	jobsHandler          *JobsHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// size of job listings.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		questionnaireHandler: NewQuestionnaireHandler(deps),
		predictionHandler:    NewPredictionHandler(deps),
		jobsHandler:          NewJobsHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/questionnaire", MetricsMiddleware(s.questionnaireHandler.HandleGetQuestionnaire, "questionnaire"))
	mux.HandleFunc("/v1/sleep", MetricsMiddleware(s.predictionHandler.HandlePostSleep, "sleep"))
	mux.HandleFunc("/v1/diet", MetricsMiddleware(s.predictionHandler.HandlePostDiet, "diet"))
	mux.HandleFunc("/v1/calories", MetricsMiddleware(s.predictionHandler.HandlePostCalories, "calories"))
	mux.HandleFunc("/v1/jobs", MetricsMiddleware(s.jobsHandler.HandleJobs, "jobs"))
	mux.HandleFunc("/v1/jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// classify maps a domain failure onto an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, features.ErrInputParse):
		return http.StatusBadRequest, "input_parse"
	case errors.Is(err, aggregate.ErrAuthorizationDenied):
		return http.StatusForbidden, "authorization_denied"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, features.ErrIncompleteFeatureVector):
		return http.StatusUnprocessableEntity, "incomplete_feature_vector"
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, predict.ErrModelInvocation):
		return http.StatusBadGateway, "model_invocation"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
