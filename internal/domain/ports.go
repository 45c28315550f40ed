package domain

import "context"

// ArticleFetcher retrieves and cleans a Wikipedia article. Failures wrap
// ErrFetchFailure or ErrEmptyArticle.
type ArticleFetcher interface {
	Fetch(ctx context.Context, articleURL string) (*Article, error)
}

// QuizGenerator turns an article into a validated quiz payload. Failures wrap
// ErrGenerationUnavailable or ErrGenerationParse.
type QuizGenerator interface {
	Generate(ctx context.Context, article *Article) (*QuizPayload, error)
}

// QuizRepository is the persistence gateway for quiz records.
type QuizRepository interface {
	// Save stores a new record and sets its ID.
	Save(ctx context.Context, record *QuizRecord) error
	// GetByID returns a QuizNotFound DomainError for unknown ids.
	GetByID(ctx context.Context, id int64) (*QuizRecord, error)
	// List returns summaries newest first.
	List(ctx context.Context, skip, limit int) ([]QuizSummary, error)
	Ping(ctx context.Context) error
}
