package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/repo"
)

// ReviewService owns book reviews on the review board. The book fields are
// snapshotted into each review so the content outlives catalog cache churn.
type ReviewService struct {
	DB         *gorm.DB
	Engagement *EngagementService
	Grass      *GrassService
}

func (s *ReviewService) board(ctx context.Context, slug string) (*domain.Board, error) {
	b, err := repo.GetBoardBySlug(ctx, s.DB, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBoardNotFound
	}
	return b, err
}

// ReviewInput carries the writable fields of a review. Rating 0 means "not
// rated"; anything else must be 1..5.
type ReviewInput struct {
	BookTitle  string
	BookAuthor string
	Content    string
	ISBN13     string
	Publisher  string
	PubDate    string
	Cover      string
	Rating     int
}

// CreateReview writes a review and awards activity points to the author.
func (s *ReviewService) CreateReview(ctx context.Context, userID, slug string, in ReviewInput) (*domain.Review, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(in.BookTitle)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, ErrEmptyContent
	}
	if in.Rating != 0 && (in.Rating < 1 || in.Rating > 5) {
		return nil, ErrInvalidRating
	}

	b, err := s.board(ctx, slug)
	if err != nil {
		return nil, err
	}

	r := &domain.Review{
		BoardID:    b.ID,
		UserID:     userID,
		BookTitle:  title,
		BookAuthor: strings.TrimSpace(in.BookAuthor),
		Content:    content,
		ISBN13:     in.ISBN13,
		Publisher:  in.Publisher,
		PubDate:    in.PubDate,
		Cover:      in.Cover,
		Rating:     in.Rating,
	}
	if err := repo.CreateReview(ctx, s.DB, r); err != nil {
		return nil, err
	}

	if s.Grass != nil {
		_ = s.Grass.AddPoints(ctx, userID, ActionReview)
	}
	return r, nil
}

// ReviewSummary is one list row: the review plus its engagement tallies.
type ReviewSummary struct {
	domain.Review
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
}

// ListReviews returns the board's reviews, newest first, with like and
// comment counts attached in bulk.
func (s *ReviewService) ListReviews(ctx context.Context, slug string) ([]ReviewSummary, error) {
	b, err := s.board(ctx, slug)
	if err != nil {
		return nil, err
	}
	reviews, err := repo.ListReviews(ctx, s.DB, b.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}
	likes, err := s.Engagement.LikeCounts(ctx, domain.TargetReview, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.Engagement.CommentCounts(ctx, domain.TargetReview, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ReviewSummary, len(reviews))
	for i, r := range reviews {
		out[i] = ReviewSummary{Review: r, LikeCount: likes[r.ID], CommentCount: comments[r.ID]}
	}
	return out, nil
}

// ReviewsByUser returns every review a user has written, newest first.
func (s *ReviewService) ReviewsByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return repo.ListReviewsByUser(ctx, s.DB, userID)
}

// ReviewDetail is a single review with its comment tree and the viewer's
// like state.
type ReviewDetail struct {
	domain.Review
	LikeCount int64        `json:"like_count"`
	Liked     bool         `json:"liked"`
	Comments  *CommentTree `json:"comments"`
}

// GetReview returns one review with engagement attached. viewerID may be
// empty.
func (s *ReviewService) GetReview(ctx context.Context, viewerID, slug string, id uint) (*ReviewDetail, error) {
	b, err := s.board(ctx, slug)
	if err != nil {
		return nil, err
	}
	r, err := repo.GetReview(ctx, s.DB, b.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}

	likeCount, err := repo.CountLikes(ctx, s.DB, domain.TargetReview, r.ID)
	if err != nil {
		return nil, err
	}
	liked := false
	if viewerID != "" {
		set, err := s.Engagement.LikedSet(ctx, viewerID, domain.TargetReview, []uint{r.ID})
		if err != nil {
			return nil, err
		}
		_, liked = set[r.ID]
	}
	tree, err := s.Engagement.BuildCommentTree(ctx, viewerID, domain.TargetReview, r.ID)
	if err != nil {
		return nil, err
	}
	return &ReviewDetail{Review: *r, LikeCount: likeCount, Liked: liked, Comments: tree}, nil
}

// UpdateReview applies the non-zero fields of in to the caller's own review.
func (s *ReviewService) UpdateReview(ctx context.Context, userID, slug string, id uint, in ReviewInput) (*domain.Review, error) {
	b, err := s.board(ctx, slug)
	if err != nil {
		return nil, err
	}
	r, err := repo.GetReview(ctx, s.DB, b.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}

	if t := strings.TrimSpace(in.BookTitle); t != "" {
		r.BookTitle = t
	}
	if a := strings.TrimSpace(in.BookAuthor); a != "" {
		r.BookAuthor = a
	}
	if c := strings.TrimSpace(in.Content); c != "" {
		r.Content = c
	}
	if in.Rating != 0 {
		if in.Rating < 1 || in.Rating > 5 {
			return nil, ErrInvalidRating
		}
		r.Rating = in.Rating
	}
	if err := repo.SaveReview(ctx, s.DB, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteReview removes the caller's own review together with its likes and
// comments, in one transaction.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, slug string, id uint) error {
	b, err := s.board(ctx, slug)
	if err != nil {
		return err
	}
	r, err := repo.GetReview(ctx, s.DB, b.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	if r.UserID != userID {
		return ErrForbidden
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Engagement.CleanupTarget(ctx, tx, domain.TargetReview, r.ID); err != nil {
			return err
		}
		return repo.DeleteReview(ctx, tx, r.ID)
	})
}
