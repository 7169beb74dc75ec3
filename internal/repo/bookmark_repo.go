// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for bookmarks.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// GetBookmark fetches the bookmark row for (userID, bookID), or ErrNotFound.
func GetBookmark(ctx context.Context, db *gorm.DB, userID string, bookID uint) (*domain.Bookmark, error) {
	var bm domain.Bookmark
	err := db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&bm).Error
	if err != nil {
		return nil, err
	}
	return &bm, nil
}

// CreateBookmark inserts a bookmark row; ErrDuplicate when it already exists.
func CreateBookmark(ctx context.Context, db *gorm.DB, userID string, bookID uint) error {
	bm := &domain.Bookmark{UserID: userID, BookID: bookID, CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(bm).Error; err != nil {
		if IsDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteBookmark removes the bookmark row for (userID, bookID).
func DeleteBookmark(ctx context.Context, db *gorm.DB, userID string, bookID uint) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&domain.Bookmark{}).Error
}

// CountBookmarks returns the number of users who bookmarked bookID.
func CountBookmarks(ctx context.Context, db *gorm.DB, bookID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Bookmark{}).
		Where("book_id = ?", bookID).
		Count(&n).Error
	return n, err
}

// ListBookmarks returns a user's bookmarks newest first with books preloaded,
// up to limit (<= 0 means all).
func ListBookmarks(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Bookmark, error) {
	q := db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Bookmark
	err := q.Find(&out).Error
	return out, err
}

// BookmarkedISBN13s returns the set of isbn13 values the user has bookmarked.
// Used to exclude known books from recommendations.
func BookmarkedISBN13s(ctx context.Context, db *gorm.DB, userID string) (map[string]struct{}, error) {
	var isbns []string
	err := db.WithContext(ctx).
		Model(&domain.Bookmark{}).
		Joins("JOIN books ON books.id = bookmarks.book_id").
		Where("bookmarks.user_id = ?", userID).
		Pluck("books.isbn13", &isbns).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(isbns))
	for _, s := range isbns {
		out[s] = struct{}{}
	}
	return out, nil
}

// BookmarkedBookIDs returns the ids of books the user has bookmarked.
func BookmarkedBookIDs(ctx context.Context, db *gorm.DB, userID string) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).
		Model(&domain.Bookmark{}).
		Where("user_id = ?", userID).
		Pluck("book_id", &ids).Error
	return ids, err
}
