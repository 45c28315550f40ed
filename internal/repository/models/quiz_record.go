package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wiki-quiz/internal/domain"
)

// QuizPayloadJSON stores a quiz payload in a TEXT column as JSON.
type QuizPayloadJSON domain.QuizPayload

// Value implements driver.Valuer.
func (p QuizPayloadJSON) Value() (driver.Value, error) {
	data, err := json.Marshal(domain.QuizPayload(p))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (p *QuizPayloadJSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return errors.New("quiz_payload: unexpected NULL")
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("quiz_payload: unsupported type %T", value)
	}

	var payload domain.QuizPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("quiz_payload: %w", err)
	}
	payload.KeyEntities.Normalize()
	*p = QuizPayloadJSON(payload)
	return nil
}

// QuizRecord is the row shape of the quizzes table.
type QuizRecord struct {
	ID             int64           `db:"id"`
	URL            string          `db:"url"`
	Title          string          `db:"title"`
	DateGenerated  time.Time       `db:"date_generated"`
	ScrapedContent string          `db:"scraped_content"`
	QuizPayload    QuizPayloadJSON `db:"quiz_payload"`
}

func FromDomain(r *domain.QuizRecord) QuizRecord {
	return QuizRecord{
		ID:             r.ID,
		URL:            r.URL,
		Title:          r.Title,
		DateGenerated:  r.DateGenerated,
		ScrapedContent: r.ScrapedContent,
		QuizPayload:    QuizPayloadJSON(r.Payload),
	}
}

func (m QuizRecord) ToDomain() *domain.QuizRecord {
	return &domain.QuizRecord{
		ID:             m.ID,
		URL:            m.URL,
		Title:          m.Title,
		DateGenerated:  m.DateGenerated.UTC(),
		ScrapedContent: m.ScrapedContent,
		Payload:        domain.QuizPayload(m.QuizPayload),
	}
}
