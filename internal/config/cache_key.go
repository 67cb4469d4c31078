package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPayloadKey returns the cache key for a quiz's taker-safe payload
// (no answer keys).
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// ShareCodeKey returns the cache key mapping a share code to a quiz ID.
func (r *CacheKeyStruct) ShareCodeKey(code string) string {
	return fmt.Sprintf("share_code:%s", code)
}

// UserActiveSessionKey returns the cache key holding a user's live
// session ID, so a page refresh can find its way back.
func (r *CacheKeyStruct) UserActiveSessionKey(userID string) string {
	return fmt.Sprintf("user:%s:active_session", userID)
}

// ShareCodeLookupBudgetKey returns the rate-limit counter key for
// share-code resolution attempts from one user.
func (r *CacheKeyStruct) ShareCodeLookupBudgetKey(userID string) string {
	return fmt.Sprintf("user:%s:share_code_lookups", userID)
}

var CacheKey = NewCacheKeyStruct()
