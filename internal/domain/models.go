// Package domain defines the persistence models for the book-discovery and
// community application. These types are mapped with GORM and form the core
// data layer: the external-catalog cache, the book/bookmark store, the
// community boards, and the generic engagement (like/comment) records.
package domain

import (
	"time"
)

// CatalogListItem is one cached row of an external catalog list (bestsellers,
// new releases, author-sales lookups, …). Rows are partitioned by QueryType
// and keyed by the upstream item identifier; a sync pass upserts the latest
// fetch and removes rows the upstream list no longer contains.
//
// Fields:
//   - QueryType: cache partition key (e.g. "Bestseller", "ItemNewSpecial",
//     "AuthorSales:<name>"); unique together with ItemID.
//   - ItemID: upstream product identifier.
//   - BestRank: list position for rank-ordered partitions (0 when absent).
//   - SalesPoint: upstream popularity score used for non-ranked ordering.
type CatalogListItem struct {
	ID        uint   `json:"id"         gorm:"primaryKey"`
	QueryType string `json:"query_type" gorm:"type:varchar(120);not null;uniqueIndex:ux_catalog_query_item,priority:1"`
	ItemID    int64  `json:"item_id"    gorm:"not null;uniqueIndex:ux_catalog_query_item,priority:2"`

	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name" gorm:"type:varchar(255)"`
	MallType     string `json:"mall_type"     gorm:"type:varchar(20)"`

	ISBN   string `json:"isbn"   gorm:"type:varchar(20)"`
	ISBN13 string `json:"isbn13" gorm:"type:varchar(20);index"`

	Title       string `json:"title"       gorm:"type:varchar(255);not null"`
	Author      string `json:"author"      gorm:"type:varchar(255)"`
	Publisher   string `json:"publisher"   gorm:"type:varchar(255)"`
	PubDate     string `json:"pub_date"    gorm:"type:varchar(20)"`
	Description string `json:"description" gorm:"type:text"`
	Cover       string `json:"cover"       gorm:"type:varchar(500)"`

	BestRank           int `json:"best_rank"`
	SalesPoint         int `json:"sales_point"`
	CustomerReviewRank int `json:"customer_review_rank"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for CatalogListItem.
func (CatalogListItem) TableName() string { return "catalog_list_items" }

// CatalogSync records the last successful sync time of one cache partition.
// Exactly one row exists per QueryType; it is created on the first sync and
// its UpdatedAt is bumped on every successful refresh. A missing row means
// the partition has never been synced and is therefore stale.
type CatalogSync struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	QueryType string    `json:"query_type" gorm:"type:varchar(120);not null;uniqueIndex:ux_catalog_sync_query"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for CatalogSync.
func (CatalogSync) TableName() string { return "catalog_syncs" }

// Book is the canonical record for one ISBN13, lazily created on the first
// detail lookup against the external catalog and then treated as an
// immutable cache (never refreshed). Unlike CatalogListItem there is no TTL.
type Book struct {
	ID     uint   `json:"id"     gorm:"primaryKey"`
	ISBN13 string `json:"isbn13" gorm:"type:varchar(20);not null;uniqueIndex:ux_books_isbn13"`

	Title       string `json:"title"       gorm:"type:varchar(255);not null"`
	Author      string `json:"author"      gorm:"type:varchar(255)"`
	Publisher   string `json:"publisher"   gorm:"type:varchar(255)"`
	PubDate     string `json:"pub_date"    gorm:"type:varchar(20)"`
	Description string `json:"description" gorm:"type:text"`
	Cover       string `json:"cover"       gorm:"type:varchar(500)"`

	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name" gorm:"type:varchar(255)"`
	BestRank     int    `json:"best_rank"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Book.
func (Book) TableName() string { return "books" }

// Bookmark marks a book as saved by a user. Presence is the whole state:
// toggling a bookmark creates or deletes the row.
type Bookmark struct {
	ID     uint   `json:"id"      gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_bookmark_user_book,priority:1;index"`
	BookID uint   `json:"book_id" gorm:"not null;uniqueIndex:ux_bookmark_user_book,priority:2"`

	CreatedAt time.Time `json:"created_at"`

	// Book is the bookmarked record; bookmarks go away with their book.
	Book Book `json:"-" gorm:"foreignKey:BookID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Bookmark.
func (Bookmark) TableName() string { return "bookmarks" }
