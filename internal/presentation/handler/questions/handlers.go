package questions

import (
	"net/http"

	"github.com/hilthontt/guessit/internal/domain"
	"github.com/hilthontt/guessit/internal/infrastructure/json"
	"github.com/hilthontt/guessit/internal/infrastructure/logging"
)

type Handler struct {
	questionRepository domain.QuestionRepository
	logger             logging.Logger
}

func NewHandler(questionRepository domain.QuestionRepository, logger logging.Logger) *Handler {
	return &Handler{
		questionRepository: questionRepository,
		logger:             logger,
	}
}

func (h *Handler) CreateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	question, err := domain.NewQuestion(req.Text)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := h.questionRepository.Create(r.Context(), question); err != nil {
		h.logger.Error(logging.Game, logging.ExternalService, "failed to store question", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusCreated, questionResponse{
		ID:   question.ID,
		Text: question.Text,
	})
}

func (h *Handler) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questionRepository.List(r.Context())
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	resp := listQuestionsResponse{
		Questions: make([]questionResponse, 0, len(questions)),
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, questionResponse{
			ID:   q.ID,
			Text: q.Text,
		})
	}

	json.Write(w, http.StatusOK, resp)
}
