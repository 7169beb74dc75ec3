package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/repo"
)

// ErrSelfFollow is returned when a user tries to follow themselves.
var ErrSelfFollow = errors.New("cannot follow yourself")

// ProfileService owns the per-user surfaces: bookmarks, follows, and the
// "my page" aggregation of a user's own content.
type ProfileService struct {
	DB      *gorm.DB
	Catalog *CatalogService
}

// BookmarkResult reports the state after a toggle.
type BookmarkResult struct {
	Bookmarked    bool  `json:"bookmarked"`
	BookID        uint  `json:"book_id"`
	BookmarkCount int64 `json:"bookmark_count"`
}

// ToggleBookmark flips the user's bookmark on the ISBN, creating the Book
// record from the upstream catalog on first sight.
func (s *ProfileService) ToggleBookmark(ctx context.Context, userID, isbn13 string) (*BookmarkResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	book, err := s.Catalog.GetOrCreateBook(ctx, isbn13)
	if err != nil {
		return nil, err
	}

	res := &BookmarkResult{BookID: book.ID}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := repo.GetBookmark(ctx, tx, userID, book.ID)
		switch {
		case err == nil:
			res.Bookmarked = false
			return repo.DeleteBookmark(ctx, tx, userID, book.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			res.Bookmarked = true
			if err := repo.CreateBookmark(ctx, tx, userID, book.ID); err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					return nil
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	n, err := repo.CountBookmarks(ctx, s.DB, book.ID)
	if err != nil {
		return nil, err
	}
	res.BookmarkCount = n
	return res, nil
}

// Bookmarks returns the user's bookmarked books, newest first. limit<=0
// returns all of them.
func (s *ProfileService) Bookmarks(ctx context.Context, userID string, limit int) ([]domain.Bookmark, error) {
	return repo.ListBookmarks(ctx, s.DB, userID, limit)
}

// FollowResult reports the state after a toggle.
type FollowResult struct {
	Following bool   `json:"following"`
	UserID    string `json:"user_id"`
}

// ToggleFollow flips the follow edge from userID to targetID.
func (s *ProfileService) ToggleFollow(ctx context.Context, userID, targetID string) (*FollowResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if targetID == "" || targetID == userID {
		return nil, ErrSelfFollow
	}

	res := &FollowResult{UserID: targetID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := repo.GetFollow(ctx, tx, userID, targetID)
		switch {
		case err == nil:
			res.Following = false
			return repo.DeleteFollow(ctx, tx, userID, targetID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			res.Following = true
			if err := repo.CreateFollow(ctx, tx, userID, targetID); err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					return nil
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Followers lists the users following userID.
func (s *ProfileService) Followers(ctx context.Context, userID string) ([]string, error) {
	return repo.ListFollowers(ctx, s.DB, userID)
}

// Following lists the users userID follows.
func (s *ProfileService) Following(ctx context.Context, userID string) ([]string, error) {
	return repo.ListFollowing(ctx, s.DB, userID)
}

// MyPage aggregates a user's own content for the profile screen.
type MyPage struct {
	UserID    string            `json:"user_id"`
	Bookmarks []domain.Bookmark `json:"bookmarks"`
	Posts     []domain.Post     `json:"posts"`
	Reviews   []domain.Review   `json:"reviews"`
	Comments  []domain.Comment  `json:"comments"`
	Followers []string          `json:"followers"`
	Following []string          `json:"following"`
}

// MyPage gathers everything the user has written or saved.
func (s *ProfileService) MyPage(ctx context.Context, userID string) (*MyPage, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	out := &MyPage{UserID: userID}
	var err error
	if out.Bookmarks, err = repo.ListBookmarks(ctx, s.DB, userID, 0); err != nil {
		return nil, err
	}
	if out.Posts, err = repo.ListPostsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Reviews, err = repo.ListReviewsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Comments, err = repo.ListCommentsByUser(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Followers, err = repo.ListFollowers(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	if out.Following, err = repo.ListFollowing(ctx, s.DB, userID); err != nil {
		return nil, err
	}
	return out, nil
}
