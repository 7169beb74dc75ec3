// Community persistence models: boards, post prefixes, posts, and book
// reviews. Boards are seeded at startup (see repo.EnsureBoards); posts and
// reviews are user content and serve as engagement targets.
package domain

import "time"

// Board types.
const (
	BoardTypeFree   = "FREE"
	BoardTypeReview = "REVIEW"
)

// Board is a community board addressed by its slug (e.g. "free", "review").
type Board struct {
	ID        uint   `json:"id"         gorm:"primaryKey"`
	Slug      string `json:"slug"       gorm:"type:varchar(50);not null;uniqueIndex:ux_boards_slug"`
	Name      string `json:"name"       gorm:"type:varchar(50);not null"`
	BoardType string `json:"board_type" gorm:"type:varchar(20);not null;check:board_type IN ('FREE','REVIEW')"`
}

// TableName returns the database table name for Board.
func (Board) TableName() string { return "boards" }

// Prefix is a per-board post tag ("말머리"). Names are unique within a board
// and are created on demand the first time a post uses them.
type Prefix struct {
	ID        uint   `json:"id"       gorm:"primaryKey"`
	BoardID   uint   `json:"board_id" gorm:"not null;uniqueIndex:ux_prefix_board_name,priority:1"`
	Name      string `json:"name"     gorm:"type:varchar(30);not null;uniqueIndex:ux_prefix_board_name,priority:2"`
	CreatedBy string `json:"created_by" gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at"`

	Board Board `json:"-" gorm:"foreignKey:BoardID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Prefix.
func (Prefix) TableName() string { return "prefixes" }

// Post is a free-board article. PrefixID is optional; removing a prefix
// leaves its posts in place.
type Post struct {
	ID       uint   `json:"id"        gorm:"primaryKey"`
	BoardID  uint   `json:"board_id"  gorm:"not null;index"`
	UserID   string `json:"user_id"   gorm:"type:varchar(64);not null;index"`
	PrefixID *uint  `json:"prefix_id"`

	Title   string `json:"title"   gorm:"type:varchar(100);not null"`
	Content string `json:"content" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Board  Board   `json:"-" gorm:"foreignKey:BoardID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Prefix *Prefix `json:"prefix,omitempty" gorm:"foreignKey:PrefixID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }

// Review is a book review on the review board. The book fields are a
// denormalized snapshot taken at write time so reviews survive catalog
// cache churn. Rating is 1..5 when present, 0 meaning "not rated".
type Review struct {
	ID      uint   `json:"id"       gorm:"primaryKey"`
	BoardID uint   `json:"board_id" gorm:"not null;index"`
	UserID  string `json:"user_id"  gorm:"type:varchar(64);not null;index"`

	BookTitle  string `json:"book_title"  gorm:"type:varchar(200);not null"`
	BookAuthor string `json:"book_author" gorm:"type:varchar(200);not null"`
	Content    string `json:"content"     gorm:"type:text;not null"`

	ISBN13    string `json:"isbn13"    gorm:"type:varchar(13)"`
	Publisher string `json:"publisher" gorm:"type:varchar(200)"`
	PubDate   string `json:"pub_date"  gorm:"type:varchar(20)"`
	Cover     string `json:"cover"     gorm:"type:varchar(500)"`

	Rating int `json:"rating" gorm:"check:rating BETWEEN 0 AND 5"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Board Board `json:"-" gorm:"foreignKey:BoardID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }
