package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/okian/wellness/internal/domain/model"
)

const defaultJobsLimit = 20

// JobsDependencies defines the interface for asynchronous calorie jobs.
type JobsDependencies interface {
	SubmitCaloriesJob(ctx context.Context, subjectID string) (model.Job, error)
	Job(ctx context.Context, id uuid.UUID) (model.JobResult, error)
	RecentJobs(ctx context.Context, n int) ([]model.JobResult, error)
}

// JobsHandler handles job submission and polling.
type JobsHandler struct {
	deps     JobsDependencies
	maxLimit int
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobsDependencies, maxLimit int) *JobsHandler {
	if maxLimit < 1 {
		maxLimit = defaultJobsLimit
	}
	return &JobsHandler{deps: deps, maxLimit: maxLimit}
}

type jobAccepted struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// HandleJobs handles POST /v1/jobs (submit) and GET /v1/jobs?limit=N (list).
func (h *JobsHandler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *JobsHandler) submit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_job"
	var req subjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	j, err := h.deps.SubmitCaloriesJob(r.Context(), req.SubjectID)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/v1/jobs/"+j.ID.String())
	writeJSON(w, http.StatusAccepted, jobAccepted{JobID: j.ID.String(), Status: string(model.JobPending)})
}

func (h *JobsHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_jobs"
	n := defaultJobsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		n, err = strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(w, NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	results, err := h.deps.RecentJobs(r.Context(), n)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleGetJob handles GET /v1/jobs/{id} requests.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		fail(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Job(r.Context(), id)
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
