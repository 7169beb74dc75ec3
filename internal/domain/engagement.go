// Generic engagement models. Likes and comments do not hold a typed foreign
// key to the thing they attach to; instead they reference a (kind, id) pair
// so one subsystem serves posts, reviews, and comments alike. Referential
// integrity is enforced at the application layer: deleting a target also
// deletes its engagement rows (see services.EngagementService).
package domain

import "time"

// TargetKind discriminates what a Like or Comment is attached to.
type TargetKind string

// Supported engagement target kinds.
const (
	TargetPost    TargetKind = "post"
	TargetReview  TargetKind = "review"
	TargetComment TargetKind = "comment"
)

// Valid reports whether k is one of the supported target kinds.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetPost, TargetReview, TargetComment:
		return true
	}
	return false
}

// Like records that a user liked a target. Presence = liked; a toggle either
// inserts or deletes the row. The unique index over (user, kind, id) is the
// backstop against double-creates under concurrent identical toggles.
type Like struct {
	ID         uint       `json:"id"          gorm:"primaryKey"`
	UserID     string     `json:"user_id"     gorm:"type:varchar(64);not null;uniqueIndex:ux_like_user_target,priority:1"`
	TargetKind TargetKind `json:"target_kind" gorm:"type:varchar(16);not null;uniqueIndex:ux_like_user_target,priority:2;index:idx_like_target,priority:1"`
	TargetID   uint       `json:"target_id"   gorm:"not null;uniqueIndex:ux_like_user_target,priority:3;index:idx_like_target,priority:2"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string { return "likes" }

// Comment is a flat-stored comment on a target. ParentID, when set, must
// reference a comment on the same (kind, id); comments therefore form a
// forest per target, rooted at nil-parent rows. Auto-increment IDs give a
// stable chronological order and the invariant that a parent's ID is always
// smaller than its replies' IDs.
type Comment struct {
	ID         uint       `json:"id"          gorm:"primaryKey"`
	UserID     string     `json:"user_id"     gorm:"type:varchar(64);not null;index"`
	TargetKind TargetKind `json:"target_kind" gorm:"type:varchar(16);not null;index:idx_comment_target,priority:1"`
	TargetID   uint       `json:"target_id"   gorm:"not null;index:idx_comment_target,priority:2"`
	ParentID   *uint      `json:"parent_id"`

	Content string `json:"content" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }
