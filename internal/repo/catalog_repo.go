// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the catalog
// cache: list-item upserts, reconciliation, ordering rules, sync markers,
// and the immutable Book store.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only CRUD persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-constraint violation on insert.
var ErrDuplicate = errors.New("duplicate")

// IsDuplicateErr reports whether err is a unique-constraint violation. The
// glebarez/sqlite driver often surfaces these as plain-text errors rather
// than gorm.ErrDuplicatedKey.
func IsDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// UpsertListItem writes one fetched catalog record into the cache partition
// queryType, keyed by (query_type, item_id). The merge rule is full
// overwrite: every denormalized column takes the freshly fetched value.
func UpsertListItem(ctx context.Context, db *gorm.DB, item *domain.CatalogListItem) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query_type"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category_id", "category_name", "mall_type",
			"isbn", "isbn13", "title", "author", "publisher", "pub_date",
			"description", "cover", "best_rank", "sales_point",
			"customer_review_rank", "updated_at",
		}),
	}).Create(item).Error
}

// DeleteListItemsNotIn removes every cached row of queryType whose item_id is
// absent from alive. An empty alive set clears the partition entirely.
func DeleteListItemsNotIn(ctx context.Context, db *gorm.DB, queryType string, alive []int64) error {
	q := db.WithContext(ctx).Where("query_type = ?", queryType)
	if len(alive) > 0 {
		q = q.Where("item_id NOT IN ?", alive)
	}
	return q.Delete(&domain.CatalogListItem{}).Error
}

// ListItems returns up to limit cached rows of queryType. Rank-ordered
// partitions ("Bestseller") come back rank ascending; everything else is
// ordered by recency then popularity, newest and best-selling first.
func ListItems(ctx context.Context, db *gorm.DB, queryType string, limit int) ([]domain.CatalogListItem, error) {
	q := db.WithContext(ctx).Where("query_type = ?", queryType)
	if queryType == "Bestseller" {
		q = q.Order("best_rank asc").Order("id asc")
	} else {
		q = q.Order("pub_date desc").Order("sales_point desc").Order("id desc")
	}
	var out []domain.CatalogListItem
	err := q.Limit(limit).Find(&out).Error
	return out, err
}

// ListItemsBySales returns up to limit cached rows of queryType ordered by
// popularity descending. Used by the author-sales partitions.
func ListItemsBySales(ctx context.Context, db *gorm.DB, queryType string, limit int) ([]domain.CatalogListItem, error) {
	var out []domain.CatalogListItem
	err := db.WithContext(ctx).
		Where("query_type = ?", queryType).
		Order("sales_point desc").Order("id desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountListItems returns the number of cached rows in a partition.
func CountListItems(ctx context.Context, db *gorm.DB, queryType string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.CatalogListItem{}).
		Where("query_type = ?", queryType).
		Count(&n).Error
	return n, err
}

// GetSyncMarker fetches the sync marker for queryType, or ErrNotFound when
// the partition has never been synced.
func GetSyncMarker(ctx context.Context, db *gorm.DB, queryType string) (*domain.CatalogSync, error) {
	var m domain.CatalogSync
	err := db.WithContext(ctx).Where("query_type = ?", queryType).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// TouchSyncMarker idempotently creates-or-bumps the marker for queryType,
// setting its UpdatedAt to now.
func TouchSyncMarker(ctx context.Context, db *gorm.DB, queryType string, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.CatalogSync{}).
		Where("query_type = ?", queryType).
		Update("updated_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	err := db.WithContext(ctx).Create(&domain.CatalogSync{QueryType: queryType, UpdatedAt: now}).Error
	if IsDuplicateErr(err) {
		// Lost a create race; the other writer's timestamp is just as fresh.
		return nil
	}
	return err
}

// GetBookByISBN13 fetches the cached Book for isbn13, or ErrNotFound.
func GetBookByISBN13(ctx context.Context, db *gorm.DB, isbn13 string) (*domain.Book, error) {
	var b domain.Book
	err := db.WithContext(ctx).Where("isbn13 = ?", isbn13).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a Book row. Returns ErrDuplicate when the ISBN is
// already cached (concurrent first-lookups).
func CreateBook(ctx context.Context, db *gorm.DB, b *domain.Book) error {
	b.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(b).Error; err != nil {
		if IsDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetBookByID fetches a Book by primary key, or ErrNotFound.
func GetBookByID(ctx context.Context, db *gorm.DB, id uint) (*domain.Book, error) {
	var b domain.Book
	err := db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SampleBooks returns up to limit Book rows in random order. Used to build
// bounded prompt contexts for the curation service.
func SampleBooks(ctx context.Context, db *gorm.DB, limit int) ([]domain.Book, error) {
	var out []domain.Book
	err := db.WithContext(ctx).Order("RANDOM()").Limit(limit).Find(&out).Error
	return out, err
}
