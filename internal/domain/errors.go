package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode identifies a failure kind surfaced to API clients.
type ErrorCode string

const (
	CodeInvalidInput          ErrorCode = "INVALID_INPUT"
	CodeMalformedBody         ErrorCode = "MALFORMED_BODY"
	CodeInvalidURL            ErrorCode = "INVALID_URL"
	CodeArticleNotFound       ErrorCode = "ARTICLE_NOT_FOUND"
	CodeSourceUnavailable     ErrorCode = "SOURCE_UNAVAILABLE"
	CodeGenerationUnavailable ErrorCode = "GENERATION_UNAVAILABLE"
	CodeInvalidPagination     ErrorCode = "INVALID_PAGINATION"
	CodeInvalidID             ErrorCode = "INVALID_ID"
	CodeQuizNotFound          ErrorCode = "QUIZ_NOT_FOUND"
	CodeStorageFailure        ErrorCode = "STORAGE_FAILURE"
	CodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// Adapter-level failures. Adapters wrap these with %w; the pipeline maps them
// onto DomainErrors.
var (
	ErrFetchFailure          = errors.New("article fetch failed")
	ErrEmptyArticle          = errors.New("article has no extractable content")
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	ErrGenerationParse       = errors.New("generation response could not be parsed")
)

// DomainError is the error type rendered by the HTTP error handler.
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a detail that is returned to the client.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewMalformedBodyError(cause error) *DomainError {
	return NewError(CodeMalformedBody, "Request body is not valid JSON", cause)
}

func NewInvalidURLError(rawURL string) *DomainError {
	return NewError(CodeInvalidURL,
		"Invalid Wikipedia URL. Expected format: https://en.wikipedia.org/wiki/Article_Title", nil).
		WithContext("url", rawURL)
}

func NewArticleNotFoundError(cause error) *DomainError {
	return NewError(CodeArticleNotFound, "Wikipedia article not found or has no readable content", cause)
}

func NewSourceUnavailableError(cause error) *DomainError {
	return NewError(CodeSourceUnavailable, "Wikipedia is currently unreachable, please try again later", cause)
}

func NewGenerationUnavailableError(cause error) *DomainError {
	return NewError(CodeGenerationUnavailable, "Quiz generation service could not produce a usable quiz", cause)
}

func NewInvalidPaginationError(message string) *DomainError {
	return NewError(CodeInvalidPagination, message, nil)
}

func NewInvalidIDError(raw string) *DomainError {
	return NewError(CodeInvalidID, fmt.Sprintf("Quiz id must be a positive integer, got %q", raw), nil)
}

func NewQuizNotFoundError(id int64) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz with id %d not found", id), nil)
}

func NewStorageError(message string, cause error) *DomainError {
	return NewError(CodeStorageFailure, message, cause)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

// IsCode reports whether err is a DomainError carrying code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
