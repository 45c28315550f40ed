package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"wiki-quiz/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	wikipediaHost = regexp.MustCompile(`(?i)^[a-z]{2,3}\.wikipedia\.org$`)

	// Non-article namespaces; Special:Random and friends cannot be quizzed.
	reservedNamespaces = []string{
		"special:", "talk:", "user:", "category:", "file:", "template:",
		"help:", "portal:", "wikipedia:", "mediawiki:",
	}
)

// Validator holds request and URL validation rules.
type Validator struct {
	structs *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{structs: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateStruct checks validate tags on a decoded request body. The first
// failing field is reported as an INVALID_INPUT error.
func (v *Validator) ValidateStruct(s interface{}) *domain.DomainError {
	err := v.structs.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.ToLower(fe.Field())
		msg := fmt.Sprintf("Field '%s' failed on the '%s' rule", field, fe.Tag())
		if fe.Tag() == "required" {
			msg = fmt.Sprintf("Field '%s' is required", field)
		}
		return domain.NewInvalidInputError(msg).WithContext("field", field)
	}
	return domain.NewInvalidInputError(err.Error())
}

// IsWikipediaArticleURL reports whether raw is an http(s) link to a single
// article on a language subdomain of wikipedia.org.
func (v *Validator) IsWikipediaArticleURL(raw string) bool {
	if raw == "" || len(raw) > domain.MaxURLLength {
		return false
	}
	if strings.ContainsAny(raw, "?# \t\r\n") {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	if u.User != nil || u.Port() != "" || !wikipediaHost.MatchString(u.Host) {
		return false
	}

	segment, ok := strings.CutPrefix(u.EscapedPath(), "/wiki/")
	if !ok || segment == "" || strings.Contains(segment, "/") {
		return false
	}

	lower := strings.ToLower(segment)
	if decoded, err := url.PathUnescape(segment); err == nil {
		lower = strings.ToLower(decoded)
	}
	for _, ns := range reservedNamespaces {
		if strings.HasPrefix(lower, ns) {
			return false
		}
	}
	return true
}

// TitleFromURL derives a display title from an article URL by decoding
// percent escapes and replacing underscores with spaces. It returns "" when
// the URL has no article segment.
func (v *Validator) TitleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	segment, ok := strings.CutPrefix(u.EscapedPath(), "/wiki/")
	if !ok || segment == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	return strings.TrimSpace(strings.ReplaceAll(segment, "_", " "))
}

// ParsePagination parses the history window. Empty values take the defaults
// skip=0 and limit=100.
func (v *Validator) ParsePagination(skipStr, limitStr string) (int, int, *domain.DomainError) {
	skip := 0
	if skipStr != "" {
		n, err := strconv.Atoi(strings.TrimSpace(skipStr))
		if err != nil {
			return 0, 0, domain.NewInvalidPaginationError("Query parameter 'skip' must be an integer")
		}
		skip = n
	}

	limit := domain.DefaultPageSize
	if limitStr != "" {
		n, err := strconv.Atoi(strings.TrimSpace(limitStr))
		if err != nil {
			return 0, 0, domain.NewInvalidPaginationError("Query parameter 'limit' must be an integer")
		}
		limit = n
	}

	if derr := domain.ValidatePagination(skip, limit); derr != nil {
		return 0, 0, derr
	}
	return skip, limit, nil
}

// ParseQuizID accepts positive decimal integers only.
func (v *Validator) ParseQuizID(raw string) (int64, *domain.DomainError) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidIDError(raw)
	}
	return id, nil
}
