package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/wellness/internal/domain/model"
)

// PredictionDependencies defines the interface for the synchronous predictions.
type PredictionDependencies interface {
	PredictSleep(ctx context.Context, answers map[string]string) (model.Prediction, error)
	PredictDiet(ctx context.Context, difficulty string) (model.Prediction, error)
	PredictCalories(ctx context.Context, subjectID string) (model.Prediction, error)
}

// PredictionHandler handles the sleep, diet and calorie endpoints.
type PredictionHandler struct {
	deps PredictionDependencies
}

// NewPredictionHandler creates a new prediction handler.
func NewPredictionHandler(deps PredictionDependencies) *PredictionHandler {
	return &PredictionHandler{deps: deps}
}

// sleepRequest carries questionnaire answers keyed by field.
type sleepRequest struct {
	Answers map[string]string `json:"answers"`
}

type dietRequest struct {
	Difficulty string `json:"difficulty"`
}

type subjectRequest struct {
	SubjectID string `json:"subject_id"`
}

func (s subjectRequest) validate() error {
	if strings.TrimSpace(s.SubjectID) == "" {
		return errors.New("missing subject_id")
	}
	return nil
}

// HandlePostSleep handles POST /v1/sleep requests.
func (h *PredictionHandler) HandlePostSleep(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_sleep"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sleepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Answers) == 0 {
		fail(w, WrapKind(op, ErrBadRequest, errors.New("missing answers")))
		return
	}
	p, err := h.deps.PredictSleep(r.Context(), req.Answers)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePostDiet handles POST /v1/diet requests.
func (h *PredictionHandler) HandlePostDiet(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_diet"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req dietRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.PredictDiet(r.Context(), req.Difficulty)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePostCalories handles POST /v1/calories requests. The biometric
// pipeline runs to completion before the response is written.
func (h *PredictionHandler) HandlePostCalories(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_calories"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req subjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.PredictCalories(r.Context(), req.SubjectID)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
