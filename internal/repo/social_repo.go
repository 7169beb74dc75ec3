// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for follows, the
// per-day grass counters, and per-user stats.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// GetFollow fetches the follow edge from→to, or ErrNotFound.
func GetFollow(ctx context.Context, db *gorm.DB, from, to string) (*domain.Follow, error) {
	var f domain.Follow
	err := db.WithContext(ctx).
		Where("from_user = ? AND to_user = ?", from, to).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFollow inserts a follow edge; ErrDuplicate when it already exists.
func CreateFollow(ctx context.Context, db *gorm.DB, from, to string) error {
	f := &domain.Follow{FromUser: from, ToUser: to, CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		if IsDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteFollow removes the follow edge from→to.
func DeleteFollow(ctx context.Context, db *gorm.DB, from, to string) error {
	return db.WithContext(ctx).
		Where("from_user = ? AND to_user = ?", from, to).
		Delete(&domain.Follow{}).Error
}

// ListFollowers returns the user ids following userID.
func ListFollowers(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("to_user = ?", userID).
		Order("id desc").
		Pluck("from_user", &out).Error
	return out, err
}

// ListFollowing returns the user ids userID follows.
func ListFollowing(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("from_user = ?", userID).
		Order("id desc").
		Pluck("to_user", &out).Error
	return out, err
}

// FollowCandidate pairs a followed user with their bookmark total.
type FollowCandidate struct {
	UserID        string
	BookmarkCount int64
}

// ListFollowCandidates returns followed users with at least minBookmarks
// bookmarks, ordered by bookmark count descending, up to limit.
func ListFollowCandidates(ctx context.Context, db *gorm.DB, userID string, minBookmarks int64, limit int) ([]FollowCandidate, error) {
	var rows []FollowCandidate
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Select("follows.to_user AS user_id, COUNT(bookmarks.id) AS bookmark_count").
		Joins("LEFT JOIN bookmarks ON bookmarks.user_id = follows.to_user").
		Where("follows.from_user = ?", userID).
		Group("follows.to_user").
		Having("COUNT(bookmarks.id) >= ?", minBookmarks).
		Order("bookmark_count desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// AddGrassPoints atomically accrues pts onto the (userID, date) daily row,
// creating it when absent. The row is locked for update so two concurrent
// awards cannot lose an increment.
func AddGrassPoints(ctx context.Context, db *gorm.DB, userID, date string, pts int) (*domain.GrassDaily, error) {
	var g domain.GrassDaily
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND date = ?", userID, date).
		First(&g).Error
	switch {
	case err == nil:
		// locked row, safe to increment
	case errors.Is(err, gorm.ErrRecordNotFound):
		g = domain.GrassDaily{UserID: userID, Date: date}
		if cerr := db.WithContext(ctx).Create(&g).Error; cerr != nil {
			if !IsDuplicateErr(cerr) {
				return nil, cerr
			}
			if rerr := db.WithContext(ctx).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ? AND date = ?", userID, date).
				First(&g).Error; rerr != nil {
				return nil, rerr
			}
		}
	default:
		return nil, err
	}

	g.Points += pts
	g.UpdatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Save(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// GrassRange returns the daily rows for userID with date in [start, end]
// (inclusive, "2006-01-02" strings), ordered by date.
func GrassRange(ctx context.Context, db *gorm.DB, userID, start, end string) ([]domain.GrassDaily, error) {
	var out []domain.GrassDaily
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date asc").
		Find(&out).Error
	return out, err
}

// AddExp accrues pts onto the user's lifetime experience total, creating the
// stats row on first award, and returns the new total.
func AddExp(ctx context.Context, db *gorm.DB, userID string, pts int) (int, error) {
	var s domain.UserStat
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&s).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		s = domain.UserStat{UserID: userID}
		if cerr := db.WithContext(ctx).Create(&s).Error; cerr != nil {
			if !IsDuplicateErr(cerr) {
				return 0, cerr
			}
			if rerr := db.WithContext(ctx).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("user_id = ?", userID).
				First(&s).Error; rerr != nil {
				return 0, rerr
			}
		}
	default:
		return 0, err
	}

	s.ExpTotal += pts
	s.UpdatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Save(&s).Error; err != nil {
		return 0, err
	}
	return s.ExpTotal, nil
}

// GetExpTotal returns the user's lifetime experience, zero when no stats row
// exists yet.
func GetExpTotal(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	var s domain.UserStat
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return s.ExpTotal, nil
}
