// Package services – GrassService
//
// This file implements the gamified activity tracking: per-day "grass"
// points awarded for content actions, the lifetime experience total, and the
// triangular level curve derived from it. Point awards run atomically so a
// burst of activity never loses an increment.
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/repo"
)

// Actions that earn points, with their values.
const (
	ActionPost    = "POST"
	ActionReview  = "REVIEW"
	ActionComment = "COMMENT"
)

// actionPoints maps an action to the points it awards.
var actionPoints = map[string]int{
	ActionPost:    2,
	ActionReview:  2,
	ActionComment: 1,
}

// grassDisplayCap bounds the heatmap intensity; raw points are kept.
const grassDisplayCap = 10

// GrassService owns activity points, the heatmap range view, and levels.
type GrassService struct {
	DB *gorm.DB

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

func (s *GrassService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// AddPoints awards the points for action to userID on today's row and
// accrues the lifetime experience total. Unknown actions are rejected.
func (s *GrassService) AddPoints(ctx context.Context, userID, action string) error {
	pts, ok := actionPoints[action]
	if !ok {
		return fmt.Errorf("unknown action: %s", action)
	}
	date := s.clock().Format("2006-01-02")

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.AddGrassPoints(ctx, tx, userID, date, pts); err != nil {
			return err
		}
		_, err := repo.AddExp(ctx, tx, userID, pts)
		return err
	})
}

// GrassDay is one heatmap cell: raw points, the capped display count, and a
// bucket label for coloring.
type GrassDay struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Points int    `json:"points"`
	Bucket string `json:"bucket"`
}

// GrassBucket labels a day's (capped) point total for heatmap coloring.
func GrassBucket(points int) string {
	switch {
	case points <= 0:
		return "0"
	case points <= 2:
		return "1-2"
	case points <= 5:
		return "3-5"
	case points <= 9:
		return "6-9"
	default:
		return "10+"
	}
}

// Range returns one entry per day for the trailing window ending today,
// zero-filled for days without activity. days is clamped to [1, 365].
func (s *GrassService) Range(ctx context.Context, userID string, days int) ([]GrassDay, error) {
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}

	end := s.clock().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(days - 1))

	rows, err := repo.GrassRange(ctx, s.DB, userID,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]int, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r.Points
	}

	out := make([]GrassDay, 0, days)
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		date := cur.Format("2006-01-02")
		raw := byDate[date]
		capped := raw
		if capped > grassDisplayCap {
			capped = grassDisplayCap
		}
		out = append(out, GrassDay{
			Date:   date,
			Count:  capped,
			Points: raw,
			Bucket: GrassBucket(capped),
		})
	}
	return out, nil
}

// LevelFromExp maps a lifetime experience total onto a level. Level n+1
// starts at 10 * n * (n+1) / 2 experience, so each level costs 10 more than
// the one before. Negative totals clamp to level 1.
func LevelFromExp(expTotal int) int {
	if expTotal < 0 {
		expTotal = 0
	}
	level := 1
	for {
		next := level + 1
		nextStart := 10 * (next - 1) * next / 2
		if expTotal < nextStart {
			return level
		}
		level = next
	}
}

// LevelPayload describes a user's level progress for display.
type LevelPayload struct {
	ExpTotal             int     `json:"exp_total"`
	Level                int     `json:"level"`
	CurrentLevelStartExp int     `json:"current_level_start_exp"`
	NextLevelStartExp    int     `json:"next_level_start_exp"`
	LevelProgress        float64 `json:"level_progress"`
}

// Level returns the user's current level payload. Users with no recorded
// activity are level 1 with zero progress.
func (s *GrassService) Level(ctx context.Context, userID string) (*LevelPayload, error) {
	exp, err := repo.GetExpTotal(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	return buildLevelPayload(exp), nil
}

func buildLevelPayload(exp int) *LevelPayload {
	level := LevelFromExp(exp)
	curStart := 10 * (level - 1) * level / 2
	nextStart := 10 * level * (level + 1) / 2

	denom := nextStart - curStart
	if denom < 1 {
		denom = 1
	}
	progress := float64(exp-curStart) / float64(denom)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return &LevelPayload{
		ExpTotal:             exp,
		Level:                level,
		CurrentLevelStartExp: curStart,
		NextLevelStartExp:    nextStart,
		LevelProgress:        progress,
	}
}
