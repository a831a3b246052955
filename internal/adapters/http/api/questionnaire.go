package api

import (
	"net/http"

	"github.com/okian/wellness/internal/domain/questionnaire"
)

// QuestionnaireDependencies defines the interface for reading the prompts.
type QuestionnaireDependencies interface {
	Questionnaire() []questionnaire.Prompt
}

// QuestionnaireHandler serves the sleep questionnaire.
type QuestionnaireHandler struct {
	deps QuestionnaireDependencies
}

// NewQuestionnaireHandler creates a new questionnaire handler.
func NewQuestionnaireHandler(deps QuestionnaireDependencies) *QuestionnaireHandler {
	return &QuestionnaireHandler{deps: deps}
}

type questionnaireResponse struct {
	Prompts []questionnaire.Prompt `json:"prompts"`
}

// HandleGetQuestionnaire handles GET /v1/questionnaire requests.
func (h *QuestionnaireHandler) HandleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, questionnaireResponse{Prompts: h.deps.Questionnaire()})
}
