package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/repository/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const quizzesTable = "quizzes"

var recordColumns = []string{"id", "url", "title", "date_generated", "scraped_content", "quiz_payload"}

// QuizDatabaseAdapter implements domain.QuizRepository on sqlx.
type QuizDatabaseAdapter struct {
	db           *sqlx.DB
	builder      sq.StatementBuilderType
	queryTimeout time.Duration
}

var _ domain.QuizRepository = (*QuizDatabaseAdapter)(nil)

// NewQuizDatabaseAdapter builds the gateway. driver selects the placeholder
// style: $n for postgres, ? otherwise.
func NewQuizDatabaseAdapter(db *sqlx.DB, driver string, queryTimeout time.Duration) domain.QuizRepository {
	var format sq.PlaceholderFormat = sq.Question
	if driver == config.DriverPostgres {
		format = sq.Dollar
	}
	return &QuizDatabaseAdapter{
		db:           db,
		builder:      sq.StatementBuilder.PlaceholderFormat(format),
		queryTimeout: queryTimeout,
	}
}

func (a *QuizDatabaseAdapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.queryTimeout)
}

// Save inserts the record and sets record.ID from the store.
func (a *QuizDatabaseAdapter) Save(ctx context.Context, record *domain.QuizRecord) error {
	if record == nil {
		return domain.NewInternalError("cannot save nil quiz record", nil)
	}
	if record.ID != 0 {
		return domain.NewInternalError("quiz record already has an id", nil).WithContext("id", record.ID)
	}
	if record.DateGenerated.IsZero() {
		record.DateGenerated = time.Now().UTC()
	}

	row := models.FromDomain(record)
	query, args, err := a.builder.
		Insert(quizzesTable).
		Columns("url", "title", "date_generated", "scraped_content", "quiz_payload").
		Values(row.URL, row.Title, row.DateGenerated, row.ScrapedContent, row.QuizPayload).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.NewStorageError("failed to build insert", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := a.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return domain.NewStorageError("failed to save quiz record", err)
	}
	record.ID = id
	return nil
}

func (a *QuizDatabaseAdapter) GetByID(ctx context.Context, id int64) (*domain.QuizRecord, error) {
	if id <= 0 {
		return nil, domain.NewInvalidIDError(strconv.FormatInt(id, 10))
	}

	query, args, err := a.builder.
		Select(recordColumns...).
		From(quizzesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, domain.NewStorageError("failed to build select", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	var row models.QuizRecord
	if err := a.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewQuizNotFoundError(id)
		}
		return nil, domain.NewStorageError("failed to load quiz record", err)
	}
	return row.ToDomain(), nil
}

// List returns summaries ordered newest first; id breaks ties.
func (a *QuizDatabaseAdapter) List(ctx context.Context, skip, limit int) ([]domain.QuizSummary, error) {
	if derr := domain.ValidatePagination(skip, limit); derr != nil {
		return nil, derr
	}

	query, args, err := a.builder.
		Select("id", "url", "title", "date_generated").
		From(quizzesTable).
		OrderBy("date_generated DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(skip)).
		ToSql()
	if err != nil {
		return nil, domain.NewStorageError("failed to build history query", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	summaries := make([]domain.QuizSummary, 0, limit)
	if err := a.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, domain.NewStorageError("failed to list quiz records", err)
	}
	for i := range summaries {
		summaries[i].DateGenerated = summaries[i].DateGenerated.UTC()
	}
	return summaries, nil
}

func (a *QuizDatabaseAdapter) Ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.db.PingContext(ctx)
}
