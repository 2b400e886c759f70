package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExtractionProgressKey returns the cache key for an extraction job's progress
func (r *CacheKeyStruct) ExtractionProgressKey(jobID string) string {
	return fmt.Sprintf("extraction:%s:progress", jobID)
}

// QuestionPayloadKey returns the cache key for the sanitized question payload
// of an extracted set
func (r *CacheKeyStruct) QuestionPayloadKey(setID string) string {
	return fmt.Sprintf("qset:%s:payload", setID)
}

// CurrentQuestionSetKey returns the cache key holding the id of the most
// recently extracted question set
func (r *CacheKeyStruct) CurrentQuestionSetKey() string {
	return "qset:current"
}

var CacheKey = NewCacheKeyStruct()
