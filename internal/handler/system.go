package handler

import (
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	APIName    = "Wikipedia Quiz Generator API"
	APIVersion = "1.0.0"
)

// SystemHandler serves health and discovery endpoints.
type SystemHandler struct {
	service service.QuizService
}

func NewSystemHandler(service service.QuizService) *SystemHandler {
	return &SystemHandler{service: service}
}

// Root godoc
// @Summary Service banner
// @Tags system
// @Produce json
// @Success 200 {object} dto.RootResponse
// @Router / [get]
func (h *SystemHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.RootResponse{
		Message: APIName,
		Version: APIVersion,
		Docs:    "/docs",
		Health:  "/health",
	})
}

// Health godoc
// @Summary Health check
// @Description Always 200 while the process is up; dependency state is reported in the body.
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(h.service.Health(c.UserContext()))
}

// APIInfo godoc
// @Summary Endpoint catalogue
// @Tags system
// @Produce json
// @Success 200 {object} dto.APIInfoResponse
// @Router /api/info [get]
func (h *SystemHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(dto.APIInfoResponse{
		Name:        APIName,
		Version:     APIVersion,
		Description: "Generates multiple-choice quizzes from Wikipedia articles",
		Endpoints: []dto.EndpointInfo{
			{Method: fiber.MethodPost, Path: "/generate_quiz", Description: "Generate a quiz from a Wikipedia URL"},
			{Method: fiber.MethodGet, Path: "/history", Description: "List generated quizzes, newest first"},
			{Method: fiber.MethodGet, Path: "/quiz/{id}", Description: "Get a stored quiz by id"},
			{Method: fiber.MethodGet, Path: "/health", Description: "Service health"},
			{Method: fiber.MethodGet, Path: "/api/info", Description: "This catalogue"},
			{Method: fiber.MethodGet, Path: "/docs", Description: "Interactive API documentation"},
		},
	})
}
