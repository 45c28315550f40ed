package cache

import "strings"

const (
	GlobalKeyPrefix = "wikiquiz"

	ServiceQuiz  = "quiz"
	ObjectRecord = "record"
)

// GenerateCacheKey builds "<prefix>:<service>:<object>:<id>", appending any
// params joined by "_" as a final segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return baseKey + ":" + strings.Join(paramsKey, "_")
	}
	return baseKey
}

// QuizRecordKey is the cache key for a full quiz record.
func QuizRecordKey(id string) string {
	return GenerateCacheKey(ServiceQuiz, ObjectRecord, id)
}
