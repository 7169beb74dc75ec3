// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for boards,
// prefixes, and posts.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// GetBoardBySlug fetches a board by slug, or ErrNotFound.
func GetBoardBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Board, error) {
	var b domain.Board
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBoards returns all boards ordered by slug.
func ListBoards(ctx context.Context, db *gorm.DB) ([]domain.Board, error) {
	var out []domain.Board
	err := db.WithContext(ctx).Order("slug asc").Find(&out).Error
	return out, err
}

// GetOrCreatePrefix returns the prefix named name on boardID, creating it on
// first use and recording who introduced it. A create race falls back to
// re-reading the winner's row.
func GetOrCreatePrefix(ctx context.Context, db *gorm.DB, boardID uint, name, createdBy string) (*domain.Prefix, error) {
	var p domain.Prefix
	err := db.WithContext(ctx).Where("board_id = ? AND name = ?", boardID, name).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = domain.Prefix{BoardID: boardID, Name: name, CreatedBy: createdBy, CreatedAt: time.Now().UTC()}
	if cerr := db.WithContext(ctx).Create(&p).Error; cerr != nil {
		if IsDuplicateErr(cerr) {
			var won domain.Prefix
			if rerr := db.WithContext(ctx).Where("board_id = ? AND name = ?", boardID, name).First(&won).Error; rerr == nil {
				return &won, nil
			}
		}
		return nil, cerr
	}
	return &p, nil
}

// ListPrefixes returns a board's prefixes ordered by name.
func ListPrefixes(ctx context.Context, db *gorm.DB, boardID uint) ([]domain.Prefix, error) {
	var out []domain.Prefix
	err := db.WithContext(ctx).Where("board_id = ?", boardID).Order("name asc").Find(&out).Error
	return out, err
}

// CreatePost inserts a post row with UTC timestamps.
func CreatePost(ctx context.Context, db *gorm.DB, p *domain.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return db.WithContext(ctx).Create(p).Error
}

// PostFilter narrows ListPosts. Zero values mean "no filter".
type PostFilter struct {
	Query  string // substring match on title or content
	Prefix string // exact prefix name
}

// ListPosts returns a board's posts newest-id first, optionally filtered,
// with the prefix association preloaded.
func ListPosts(ctx context.Context, db *gorm.DB, boardID uint, f PostFilter) ([]domain.Post, error) {
	q := db.WithContext(ctx).
		Preload("Prefix").
		Where("board_id = ?", boardID)
	if f.Query != "" {
		pat := "%" + f.Query + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", pat, pat)
	}
	if f.Prefix != "" {
		q = q.Joins("JOIN prefixes ON prefixes.id = posts.prefix_id").
			Where("prefixes.name = ?", f.Prefix)
	}
	var out []domain.Post
	err := q.Order("posts.id desc").Find(&out).Error
	return out, err
}

// ListPostsByUser returns a user's posts across boards, newest-id first.
func ListPostsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Post, error) {
	var out []domain.Post
	err := db.WithContext(ctx).
		Preload("Prefix").
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&out).Error
	return out, err
}

// GetPost fetches one post on boardID by id, or ErrNotFound.
func GetPost(ctx context.Context, db *gorm.DB, boardID, id uint) (*domain.Post, error) {
	var p domain.Post
	err := db.WithContext(ctx).
		Preload("Prefix").
		Where("board_id = ? AND id = ?", boardID, id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePost persists in-place edits to a post and bumps UpdatedAt.
func SavePost(ctx context.Context, db *gorm.DB, p *domain.Post) error {
	p.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(p).Error
}

// DeletePost hard-deletes a post row. Engagement cleanup is the service's
// responsibility (see services.CommunityService.DeletePost).
func DeletePost(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Post{}).Error
}
