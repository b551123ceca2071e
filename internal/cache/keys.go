package cache

import "strings"

const (
	GlobalKeyPrefix = "quizly"

	serviceAuth     = "auth"
	servicePipeline = "pipeline"
)

// GenerateCacheKey builds "quizly:<service>:<objectType>:<identifier>".
// Extra params are joined by "_" and appended as a final segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// TranscriptKey is the cache key of the transcript of one video.
func TranscriptKey(videoID string) string {
	return GenerateCacheKey(servicePipeline, "transcript", videoID)
}

// RevokedTokenKey marks a refresh token id as blacklisted.
func RevokedTokenKey(tokenID string) string {
	return GenerateCacheKey(serviceAuth, "revoked_token", tokenID)
}
