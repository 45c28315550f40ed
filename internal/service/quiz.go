package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/validation"

	"go.uber.org/zap"
)

// Stage is a step of the generate-quiz pipeline.
type Stage string

const (
	StageValidating Stage = "validating"
	StageFetching   Stage = "fetching"
	StageGenerating Stage = "generating"
	StagePersisting Stage = "persisting"
	StageDone       Stage = "done"
	StageError      Stage = "error"
)

const healthCheckTimeout = 2 * time.Second

// QuizService runs the generation pipeline and serves stored quizzes.
type QuizService interface {
	GenerateQuiz(ctx context.Context, rawURL string) (*dto.QuizRecordResponse, error)
	GetQuiz(ctx context.Context, id int64) (*dto.QuizRecordResponse, error)
	ListHistory(ctx context.Context, skip, limit int) (dto.HistoryResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
}

type quizService struct {
	validator *validation.Validator
	fetcher   domain.ArticleFetcher
	generator domain.QuizGenerator
	repo      domain.QuizRepository
	cache     domain.Cache
	now       func() time.Time
}

// NewQuizService wires the pipeline. cache may be nil when caching is off; it
// is only used for health reporting.
func NewQuizService(
	validator *validation.Validator,
	fetcher domain.ArticleFetcher,
	generator domain.QuizGenerator,
	repo domain.QuizRepository,
	cache domain.Cache,
) QuizService {
	return &quizService{
		validator: validator,
		fetcher:   fetcher,
		generator: generator,
		repo:      repo,
		cache:     cache,
		now:       time.Now,
	}
}

// pipelineRun tracks one request through the stages.
type pipelineRun struct {
	stage   Stage
	started time.Time
	log     *zap.Logger
}

func (r *pipelineRun) enter(stage Stage) {
	r.log.Info("Pipeline stage", zap.String("from", string(r.stage)), zap.String("to", string(stage)))
	r.stage = stage
}

// fail moves the run to the error state and returns derr.
func (r *pipelineRun) fail(derr *domain.DomainError) error {
	fields := []zap.Field{
		zap.String("stage", string(r.stage)),
		zap.String("code", string(derr.Code)),
		zap.Duration("elapsed", time.Since(r.started)),
		zap.Error(derr),
	}
	switch derr.Code {
	case domain.CodeInvalidURL, domain.CodeArticleNotFound:
		r.log.Warn("Quiz generation rejected", fields...)
	default:
		r.log.Error("Quiz generation failed", fields...)
	}
	r.stage = StageError
	return derr
}

func (s *quizService) GenerateQuiz(ctx context.Context, rawURL string) (*dto.QuizRecordResponse, error) {
	articleURL := strings.TrimSpace(rawURL)
	run := &pipelineRun{
		stage:   StageValidating,
		started: time.Now(),
		log:     logger.Get().With(zap.String("url", articleURL)),
	}

	if !s.validator.IsWikipediaArticleURL(articleURL) {
		return nil, run.fail(domain.NewInvalidURLError(rawURL))
	}

	run.enter(StageFetching)
	article, err := s.fetcher.Fetch(ctx, articleURL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyArticle):
			return nil, run.fail(domain.NewArticleNotFoundError(err))
		case errors.Is(err, domain.ErrFetchFailure):
			return nil, run.fail(domain.NewSourceUnavailableError(err))
		default:
			return nil, run.fail(domain.NewInternalError("Unexpected error while fetching article", err))
		}
	}

	run.enter(StageGenerating)
	payload, err := s.generator.Generate(ctx, article)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationUnavailable) || errors.Is(err, domain.ErrGenerationParse) {
			return nil, run.fail(domain.NewGenerationUnavailableError(err))
		}
		return nil, run.fail(domain.NewInternalError("Unexpected error while generating quiz", err))
	}

	run.enter(StagePersisting)
	record := domain.NewQuizRecord(article, *payload, s.now())
	if err := s.repo.Save(ctx, record); err != nil {
		var derr *domain.DomainError
		if errors.As(err, &derr) && derr.Code == domain.CodeStorageFailure {
			return nil, run.fail(derr)
		}
		return nil, run.fail(domain.NewStorageError("Failed to save generated quiz", err))
	}

	run.enter(StageDone)
	run.log.Info("Quiz generated",
		zap.Int64("id", record.ID),
		zap.String("title", record.Title),
		zap.Int("questions", len(record.Payload.Quiz)),
		zap.Duration("elapsed", time.Since(run.started)),
	)
	return dto.NewQuizRecordResponse(record), nil
}

func (s *quizService) GetQuiz(ctx context.Context, id int64) (*dto.QuizRecordResponse, error) {
	if id <= 0 {
		return nil, domain.NewInvalidIDError(strconv.FormatInt(id, 10))
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, asDomainError(err, "Failed to load quiz")
	}
	return dto.NewQuizRecordResponse(record), nil
}

func (s *quizService) ListHistory(ctx context.Context, skip, limit int) (dto.HistoryResponse, error) {
	if derr := domain.ValidatePagination(skip, limit); derr != nil {
		return nil, derr
	}
	summaries, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, asDomainError(err, "Failed to load quiz history")
	}
	return dto.NewHistoryResponse(summaries), nil
}

// Health always reports "healthy"; dependency state is carried in the flags.
func (s *quizService) Health(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	resp := &dto.HealthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC(),
	}

	if err := s.repo.Ping(ctx); err != nil {
		logger.Get().Warn("Database ping failed", zap.Error(err))
	} else {
		resp.DatabaseConnected = true
	}

	if s.cache != nil {
		ok := s.cache.Ping(ctx) == nil
		resp.CacheConnected = &ok
	}
	return resp
}

func asDomainError(err error, message string) error {
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		return derr
	}
	return domain.NewStorageError(message, err)
}
