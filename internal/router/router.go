package router

import (
	"wiki-quiz/internal/config"
	"wiki-quiz/internal/handler"
	"wiki-quiz/internal/middleware"
	"wiki-quiz/internal/service"
	"wiki-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// New builds the HTTP application with every route and middleware installed.
func New(cfg config.ServerConfig, quizService service.QuizService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      handler.APIName,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	allowOrigins := cfg.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
		MaxAge:       300,
	}))

	v := validation.NewValidator()
	vm := middleware.NewValidationMiddleware(v)
	quizHandler := handler.NewQuizHandler(quizService, v)
	systemHandler := handler.NewSystemHandler(quizService)

	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Redirect("/docs/index.html", fiber.StatusMovedPermanently)
	})
	app.Get("/docs/*", swagger.HandlerDefault)

	app.Get("/", systemHandler.Root)
	app.Get("/health", systemHandler.Health)
	app.Get("/api/info", systemHandler.APIInfo)
	app.Post("/generate_quiz", quizHandler.GenerateQuiz)
	app.Get("/history", vm.ValidatePagination(), quizHandler.GetHistory)
	app.Get("/quiz/:id", vm.ValidateQuizID(), quizHandler.GetQuiz)

	// Known paths answer other methods with 405. OPTIONS is left to cors.
	for _, path := range []string{"/", "/health", "/api/info", "/generate_quiz", "/history", "/quiz/:id"} {
		app.All(path, methodNotAllowed)
	}

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	return app
}

func methodNotAllowed(c *fiber.Ctx) error {
	return fiber.ErrMethodNotAllowed
}
