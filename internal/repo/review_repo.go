// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for book reviews.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// CreateReview inserts a review row with UTC timestamps.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	return db.WithContext(ctx).Create(r).Error
}

// ListReviews returns a board's reviews, newest first.
func ListReviews(ctx context.Context, db *gorm.DB, boardID uint) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}

// ListReviewsByUser returns one user's reviews, newest first.
func ListReviewsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}

// GetReview fetches one review on boardID by id, or ErrNotFound.
func GetReview(ctx context.Context, db *gorm.DB, boardID, id uint) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).
		Where("board_id = ? AND id = ?", boardID, id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveReview persists in-place edits to a review and bumps UpdatedAt.
func SaveReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	r.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(r).Error
}

// DeleteReview hard-deletes a review row. Engagement cleanup is the
// service's responsibility.
func DeleteReview(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{}).Error
}
