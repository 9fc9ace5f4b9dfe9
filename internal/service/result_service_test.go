package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"examportal/internal/repository"
)

func standing(score, total int, duration float64, end time.Time) repository.StandingRow {
	return repository.StandingRow{
		SessionID:       uuid.New(),
		Score:           score,
		QuestionCount:   total,
		DurationMinutes: duration,
		EndTime:         end,
	}
}

func TestRankStandingsOrdering(t *testing.T) {
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	rows := []repository.StandingRow{
		standing(7, 10, 20, base),                   // 70%
		standing(9, 10, 25, base),                   // 90%
		standing(9, 10, 15, base),                   // 90%, faster
		standing(9, 10, 15, base.Add(-time.Minute)), // 90%, same pace, earlier finish
	}
	rows[0].Name = "seventy"
	rows[1].Name = "ninety slow"
	rows[2].Name = "ninety fast late"
	rows[3].Name = "ninety fast early"

	ranked := rankStandings(rows)

	wantOrder := []string{"ninety fast early", "ninety fast late", "ninety slow", "seventy"}
	for i, want := range wantOrder {
		if ranked[i].Name != want {
			t.Errorf("rank %d = %q, want %q", i+1, ranked[i].Name, want)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("rank field = %d, want %d", ranked[i].Rank, i+1)
		}
	}
}

func TestRankStandingsPercentile(t *testing.T) {
	base := time.Now()

	t.Run("field of four", func(t *testing.T) {
		rows := []repository.StandingRow{
			standing(10, 10, 10, base),
			standing(8, 10, 10, base),
			standing(6, 10, 10, base),
			standing(4, 10, 10, base),
		}
		ranked := rankStandings(rows)

		want := []int{100, 67, 33, 0}
		for i, w := range want {
			if ranked[i].Percentile != w {
				t.Errorf("rank %d percentile = %d, want %d", i+1, ranked[i].Percentile, w)
			}
		}
	})

	t.Run("single attempt sits at the top", func(t *testing.T) {
		ranked := rankStandings([]repository.StandingRow{standing(5, 10, 10, base)})
		if ranked[0].Percentile != 100 {
			t.Errorf("percentile = %d, want 100", ranked[0].Percentile)
		}
	})

	t.Run("empty field", func(t *testing.T) {
		if got := rankStandings(nil); len(got) != 0 {
			t.Errorf("expected empty standings, got %d", len(got))
		}
	})
}

func TestRankStandingsPercentage(t *testing.T) {
	base := time.Now()
	ranked := rankStandings([]repository.StandingRow{
		standing(1, 3, 10, base),
		standing(0, 0, 10, base), // zero question count must not divide
	})

	if ranked[0].Percentage != 33.33 {
		t.Errorf("percentage = %v, want 33.33", ranked[0].Percentage)
	}
	if ranked[1].Percentage != 0 {
		t.Errorf("zero-count percentage = %v, want 0", ranked[1].Percentage)
	}
}

func TestRankStandingsClampsCorruptScore(t *testing.T) {
	// A stored score above the question count is a corruption artifact;
	// the displayed percentage must never exceed 100.
	ranked := rankStandings([]repository.StandingRow{
		standing(12, 10, 10, time.Now()),
	})

	if ranked[0].Percentage != 100 {
		t.Errorf("percentage = %v, want clamped to 100", ranked[0].Percentage)
	}
}
