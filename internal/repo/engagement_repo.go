// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the generic
// engagement records: likes and comments keyed by (target_kind, target_id).
//
// Functions:
//
//   - GetLike / CreateLike / DeleteLike: single-like lifecycle for toggles.
//   - CountLikes: total likes on one target.
//   - LikeCountMap / CommentCountMap: bulk per-target counts (missing ids
//     simply have no entry; callers treat absence as zero).
//   - LikedTargetIDs: which of a user's likes land in a given id set.
//   - CreateComment / GetComment / ListComments / DeleteCommentTree.
//   - DeleteEngagementFor: application-level cascade when a target goes away.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// GetLike fetches the like row for (userID, kind, targetID), or ErrNotFound.
func GetLike(ctx context.Context, db *gorm.DB, userID string, kind domain.TargetKind, targetID uint) (*domain.Like, error) {
	var l domain.Like
	err := db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLike inserts a like row; ErrDuplicate when it already exists.
func CreateLike(ctx context.Context, db *gorm.DB, userID string, kind domain.TargetKind, targetID uint) error {
	l := &domain.Like{
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		if IsDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteLike removes the like row for (userID, kind, targetID). Deleting an
// absent row is not an error; the toggle treats it as already-unliked.
func DeleteLike(ctx context.Context, db *gorm.DB, userID string, kind domain.TargetKind, targetID uint) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Delete(&domain.Like{}).Error
}

// CountLikes returns the total number of likes on one target.
func CountLikes(ctx context.Context, db *gorm.DB, kind domain.TargetKind, targetID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Count(&n).Error
	return n, err
}

// countRow is the scan target of the grouped count queries.
type countRow struct {
	TargetID uint
	Cnt      int64
}

// LikeCountMap returns like totals per target id for one kind. Ids without
// likes are absent from the map.
func LikeCountMap(ctx context.Context, db *gorm.DB, kind domain.TargetKind, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []countRow
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Select("target_id, COUNT(*) AS cnt").
		Where("target_kind = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.TargetID] = r.Cnt
	}
	return out, nil
}

// CommentCountMap returns comment totals per target id for one kind.
func CommentCountMap(ctx context.Context, db *gorm.DB, kind domain.TargetKind, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []countRow
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Select("target_id, COUNT(*) AS cnt").
		Where("target_kind = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.TargetID] = r.Cnt
	}
	return out, nil
}

// LikedTargetIDs returns the subset of ids the user has liked for one kind.
func LikedTargetIDs(ctx context.Context, db *gorm.DB, userID string, kind domain.TargetKind, ids []uint) (map[uint]struct{}, error) {
	out := make(map[uint]struct{})
	if userID == "" || len(ids) == 0 {
		return out, nil
	}
	var liked []uint
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("user_id = ? AND target_kind = ? AND target_id IN ?", userID, kind, ids).
		Pluck("target_id", &liked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = struct{}{}
	}
	return out, nil
}

// CreateComment inserts a comment row with a UTC timestamp.
func CreateComment(ctx context.Context, db *gorm.DB, c *domain.Comment) error {
	c.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(c).Error
}

// GetComment fetches a comment by id, or ErrNotFound.
func GetComment(ctx context.Context, db *gorm.DB, id uint) (*domain.Comment, error) {
	var c domain.Comment
	err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns every comment for one target ordered by id ascending
// (chronological with a stable tie-break).
func ListComments(ctx context.Context, db *gorm.DB, kind domain.TargetKind, targetID uint) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// ListCommentsByUser returns a user's comments, newest first.
func ListCommentsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&out).Error
	return out, err
}

// DeleteCommentTree hard-deletes a comment together with its reply subtree
// and every like attached to any deleted comment. Depth is unbounded, so the
// frontier expands level by level; the id-monotonic parent invariant keeps
// this loop finite.
func DeleteCommentTree(ctx context.Context, db *gorm.DB, rootID uint) error {
	doomed := []uint{rootID}
	frontier := []uint{rootID}
	for len(frontier) > 0 {
		var next []uint
		if err := db.WithContext(ctx).
			Model(&domain.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error; err != nil {
			return err
		}
		doomed = append(doomed, next...)
		frontier = next
	}

	if err := db.WithContext(ctx).
		Where("target_kind = ? AND target_id IN ?", domain.TargetComment, doomed).
		Delete(&domain.Like{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id IN ?", doomed).Delete(&domain.Comment{}).Error
}

// DeleteEngagementFor removes all likes and comments attached to one target.
// Called when the target row itself is deleted (application-level cascade:
// engagement rows hold no typed foreign key).
func DeleteEngagementFor(ctx context.Context, db *gorm.DB, kind domain.TargetKind, targetID uint) error {
	var commentIDs []uint
	if err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if len(commentIDs) > 0 {
		if err := db.WithContext(ctx).
			Where("target_kind = ? AND target_id IN ?", domain.TargetComment, commentIDs).
			Delete(&domain.Like{}).Error; err != nil {
			return err
		}
	}
	if err := db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Delete(&domain.Comment{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", kind, targetID).
		Delete(&domain.Like{}).Error
}
