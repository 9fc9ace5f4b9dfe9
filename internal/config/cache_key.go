package config

import "fmt"

// DefaultLeaderboardSize is the leaderboard length served and cached
// when the caller does not ask for a specific limit.
const DefaultLeaderboardSize = 10

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a user's active login JTI.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:user:%d", userID)
}

// AdminSessionKey returns the cache key holding an admin's active login JTI.
func (r *CacheKeyStruct) AdminSessionKey(adminID int) string {
	return fmt.Sprintf("login:admin:%d", adminID)
}

// LeaderboardKey returns the cache key for the aggregate top-performers list.
func (r *CacheKeyStruct) LeaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:top:%d", limit)
}

// ExamRankingKey returns the cache key for a single exam's standings.
func (r *CacheKeyStruct) ExamRankingKey(examID string) string {
	return fmt.Sprintf("exam:%s:standings", examID)
}

var CacheKey = NewCacheKeyStruct()
