package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"examportal/internal/config"
	"examportal/internal/repository"
)

// ResultService computes standings, percentiles and the cross-exam
// leaderboard.
type ResultService struct {
	results *repository.ResultRepository
	rdb     *redis.Client
	cfg     *config.Config
}

// NewResultService creates a new ResultService.
func NewResultService(results *repository.ResultRepository, rdb *redis.Client, cfg *config.Config) *ResultService {
	return &ResultService{results: results, rdb: rdb, cfg: cfg}
}

// RankedStanding is one attempt's position within an exam's standings.
type RankedStanding struct {
	Rank            int       `json:"rank"`
	SessionID       uuid.UUID `json:"session_id"`
	UserID          int       `json:"user_id"`
	ServiceNo       string    `json:"service_no"`
	Name            string    `json:"name"`
	WingName        string    `json:"wing_name"`
	Score           int       `json:"score"`
	QuestionCount   int       `json:"question_count"`
	Percentage      float64   `json:"percentage"`
	Percentile      int       `json:"percentile"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// rankStandings orders attempts best-first and assigns rank and percentile.
// Higher percentage wins; ties break on shorter duration, then earlier
// finish. Percentile expresses the share of attempts ranked at or below the
// holder, so the sole attempt in a field of one sits at the 100th percentile.
func rankStandings(rows []repository.StandingRow) []RankedStanding {
	ranked := make([]RankedStanding, 0, len(rows))
	for _, r := range rows {
		pct := percent(r.Score, r.QuestionCount)
		ranked = append(ranked, RankedStanding{
			SessionID:       r.SessionID,
			UserID:          r.UserID,
			ServiceNo:       r.ServiceNo,
			Name:            r.Name,
			WingName:        r.WingName,
			Score:           r.Score,
			QuestionCount:   r.QuestionCount,
			Percentage:      pct,
			DurationMinutes: r.DurationMinutes,
		})
	}

	endTimes := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		endTimes[r.SessionID] = r.EndTime.UnixNano()
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Percentage != ranked[j].Percentage {
			return ranked[i].Percentage > ranked[j].Percentage
		}
		if ranked[i].DurationMinutes != ranked[j].DurationMinutes {
			return ranked[i].DurationMinutes < ranked[j].DurationMinutes
		}
		return endTimes[ranked[i].SessionID] < endTimes[ranked[j].SessionID]
	})

	n := len(ranked)
	for i := range ranked {
		rank := i + 1
		ranked[i].Rank = rank
		switch {
		case n > 1:
			ranked[i].Percentile = int(math.Round(float64(n-rank) / float64(n-1) * 100))
		case n == 1:
			ranked[i].Percentile = 100
		}
	}
	return ranked
}

// ExamStandings returns the ranked standings for one exam.
func (s *ResultService) ExamStandings(ctx context.Context, examID uuid.UUID) ([]RankedStanding, error) {
	rows, err := s.results.ListCompletedByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	return rankStandings(rows), nil
}

// UserStanding locates one user's entry in an exam's standings.
func (s *ResultService) UserStanding(ctx context.Context, examID uuid.UUID, userID int) (*RankedStanding, int, error) {
	standings, err := s.ExamStandings(ctx, examID)
	if err != nil {
		return nil, 0, err
	}
	for i := range standings {
		if standings[i].UserID == userID {
			return &standings[i], len(standings), nil
		}
	}
	return nil, len(standings), nil
}

// Leaderboard returns the cross-exam top performers. Results are cached in
// Redis so repeated hits within the TTL skip the aggregate query. Averages
// are clamped at 100 to keep historically inflated scores from leaking
// through.
func (s *ResultService) Leaderboard(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	cacheKey := config.CacheKey.LeaderboardKey(limit)

	cached, err := s.rdb.Get(ctx, cacheKey).Result()
	if err == nil {
		var board []repository.LeaderboardRow
		if err := json.Unmarshal([]byte(cached), &board); err == nil {
			return board, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("leaderboard cache read failed")
	}

	board, err := s.results.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	for i := range board {
		if board[i].AveragePct > 100 {
			board[i].AveragePct = 100
		}
		board[i].AveragePct = round1(board[i].AveragePct)
		board[i].AvgDuration = round2(board[i].AvgDuration)
	}

	if raw, err := json.Marshal(board); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, raw, s.cfg.LeaderboardTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("leaderboard cache write failed")
		}
	}
	return board, nil
}

// InvalidateLeaderboard drops cached leaderboard entries after new results
// arrive.
func (s *ResultService) InvalidateLeaderboard(ctx context.Context, limit int) {
	if err := s.rdb.Del(ctx, config.CacheKey.LeaderboardKey(limit)).Err(); err != nil {
		log.Warn().Err(err).Msg("leaderboard cache invalidation failed")
	}
}

// RepairScores clamps completed sessions whose score exceeds their question
// count and reports what was touched.
func (s *ResultService) RepairScores(ctx context.Context) ([]repository.CorruptScore, int, error) {
	corrupt, err := s.results.FindCorruptScores(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("find corrupt scores: %w", err)
	}
	if len(corrupt) == 0 {
		return nil, 0, nil
	}
	fixed, err := s.results.ClampScores(ctx)
	if err != nil {
		return corrupt, 0, fmt.Errorf("clamp scores: %w", err)
	}
	return corrupt, fixed, nil
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
