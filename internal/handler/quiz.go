package handler

import (
	"encoding/json"
	"errors"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/middleware"
	"wiki-quiz/internal/service"
	"wiki-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles the quiz generation and read endpoints.
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

func NewQuizHandler(service service.QuizService, validator *validation.Validator) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validator,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a Wikipedia article
// @Description Scrapes the article, asks the language model for a quiz and stores the result. Every call creates a new record.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Article URL"
// @Success 200 {object} dto.QuizRecordResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /generate_quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	req, err := h.decodeGenerateRequest(c.Body())
	if err != nil {
		return err
	}

	resp, err := h.service.GenerateQuiz(c.UserContext(), *req.URL)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// decodeGenerateRequest separates unparseable bodies (400) from well-formed
// bodies with a missing or wrongly typed url (422).
func (h *QuizHandler) decodeGenerateRequest(body []byte) (*dto.GenerateQuizRequest, error) {
	var req dto.GenerateQuizRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				field := typeErr.Field
				if field == "" {
					field = "body"
				}
				return nil, domain.NewInvalidInputError("Field '"+field+"' must be a "+typeErr.Type.String()).
					WithContext("field", field)
			}
			return nil, domain.NewMalformedBodyError(err)
		}
	}
	if derr := h.validator.ValidateStruct(&req); derr != nil {
		return nil, derr
	}
	return &req, nil
}

// GetHistory godoc
// @Summary List generated quizzes
// @Description Returns stored quizzes newest first.
// @Tags quiz
// @Produce json
// @Param skip query int false "Records to skip" default(0) minimum(0)
// @Param limit query int false "Page size" default(100) minimum(1) maximum(100)
// @Success 200 {array} dto.HistoryItem
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /history [get]
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	skip, _ := c.Locals(middleware.LocalsSkip).(int)
	limit, ok := c.Locals(middleware.LocalsLimit).(int)
	if !ok {
		limit = domain.DefaultPageSize
	}

	items, err := h.service.ListHistory(c.UserContext(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// GetQuiz godoc
// @Summary Get a stored quiz
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizRecordResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	id, ok := c.Locals(middleware.LocalsQuizID).(int64)
	if !ok {
		var derr *domain.DomainError
		if id, derr = h.validator.ParseQuizID(c.Params("id")); derr != nil {
			return derr
		}
	}

	resp, err := h.service.GetQuiz(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
