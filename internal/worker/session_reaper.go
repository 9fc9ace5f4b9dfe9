package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"examportal/internal/config"
	"examportal/internal/model"
)

const (
	ReapInterval  = 1 * time.Minute
	ReapGrace     = 1 * time.Minute
	ReapBatchSize = 100
)

// SessionReaper closes out sessions whose exam clock ran out without a
// submission. Abandoned papers are scored as all blanks so the examinee
// shows up in results and rankings instead of holding an open session
// forever.
type SessionReaper struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewSessionReaper(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SessionReaper {
	return &SessionReaper{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "session_reaper").Logger(),
	}
}

type expiredSession struct {
	ID              uuid.UUID
	StartTime       time.Time
	Snapshot        json.RawMessage
	DurationMinutes int
}

func (w *SessionReaper) Start(ctx context.Context) {
	w.log.Info().Msg("SessionReaper started")

	ticker := time.NewTicker(ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SessionReaper stopped")
			return
		case <-ticker.C:
			if n, err := w.sweep(ctx); err != nil {
				w.log.Error().Err(err).Msg("sweep failed")
			} else if n > 0 {
				w.log.Info().Int("closed", n).Msg("expired sessions closed")
			}
		}
	}
}

// sweep finalizes one batch of overdue sessions. The grace period keeps
// the reaper from racing a submission that is already in flight.
func (w *SessionReaper) sweep(ctx context.Context) (int, error) {
	rows, err := w.pool.Query(ctx, `
		SELECT s.id, s.start_time, s.questions_json, e.duration_minutes
		FROM exam_sessions s
		JOIN exams e ON e.id = s.exam_id
		WHERE NOT s.is_completed
		  AND s.start_time + make_interval(mins => e.duration_minutes, secs => $1) < NOW()
		ORDER BY s.start_time
		LIMIT $2`,
		ReapGrace.Seconds(), ReapBatchSize,
	)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var expired []expiredSession
	for rows.Next() {
		var s expiredSession
		if err := rows.Scan(&s.ID, &s.StartTime, &s.Snapshot, &s.DurationMinutes); err != nil {
			return 0, err
		}
		expired = append(expired, s)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	closed := 0
	for _, s := range expired {
		if err := w.finalizeBlank(ctx, s); err != nil {
			w.log.Error().Err(err).Str("session_id", s.ID.String()).Msg("finalize failed")
			continue
		}
		closed++
	}

	if closed > 0 {
		w.rdb.Del(ctx, config.CacheKey.LeaderboardKey(config.DefaultLeaderboardSize))
	}
	return closed, nil
}

func (w *SessionReaper) finalizeBlank(ctx context.Context, s expiredSession) error {
	detail := map[string]model.AnswerDetail{}
	if questions, err := model.DecodeSnapshot(s.Snapshot); err == nil {
		for _, q := range questions {
			detail[q.ID.String()] = model.AnswerDetail{
				UserAnswer:    nil,
				CorrectAnswer: q.CorrectOption,
				IsCorrect:     false,
			}
		}
	} else {
		w.log.Warn().Err(err).Str("session_id", s.ID.String()).Msg("unreadable snapshot, closing without detail")
	}

	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	endTime := s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
	tag, err := w.pool.Exec(ctx, `
		UPDATE exam_sessions
		SET end_time = $2,
		    score = 0,
		    answers = '{}',
		    answers_detail = $3,
		    is_completed = TRUE,
		    duration_minutes = $4
		WHERE id = $1 AND NOT is_completed`,
		s.ID, endTime, detailJSON, float64(s.DurationMinutes),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// A submission beat us to it.
		return nil
	}
	return nil
}
