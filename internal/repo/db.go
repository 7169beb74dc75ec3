// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and board seeding.
package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for every domain model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.CatalogListItem{},
		&domain.CatalogSync{},
		&domain.Book{},
		&domain.Bookmark{},
		&domain.Board{},
		&domain.Prefix{},
		&domain.Post{},
		&domain.Review{},
		&domain.Comment{},
		&domain.Like{},
		&domain.Follow{},
		&domain.GrassDaily{},
		&domain.UserStat{},
	)
}

// EnsureBoards idempotently seeds the two built-in boards. Run after
// migration; existing rows keep their IDs and are updated in place.
func EnsureBoards(ctx context.Context, db *gorm.DB) error {
	seed := []domain.Board{
		{Slug: "free", Name: "자유게시판", BoardType: domain.BoardTypeFree},
		{Slug: "review", Name: "리뷰게시판", BoardType: domain.BoardTypeReview},
	}
	for _, b := range seed {
		var existing domain.Board
		err := db.WithContext(ctx).Where("slug = ?", b.Slug).First(&existing).Error
		switch {
		case err == nil:
			if existing.Name != b.Name || existing.BoardType != b.BoardType {
				existing.Name = b.Name
				existing.BoardType = b.BoardType
				if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
					return err
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.WithContext(ctx).Create(&b).Error; err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}
