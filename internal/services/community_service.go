package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/repo"
)

// CommunityService owns boards, prefixes, and free-board posts. Posting
// awards activity points; deleting a post takes its engagement with it.
type CommunityService struct {
	DB         *gorm.DB
	Engagement *EngagementService
	Grass      *GrassService
}

// Board resolves a board by slug.
func (s *CommunityService) Board(ctx context.Context, slug string) (*domain.Board, error) {
	b, err := repo.GetBoardBySlug(ctx, s.DB, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBoardNotFound
	}
	return b, err
}

// Boards lists every board.
func (s *CommunityService) Boards(ctx context.Context) ([]domain.Board, error) {
	return repo.ListBoards(ctx, s.DB)
}

// Prefixes lists the boards' post tags in name order.
func (s *CommunityService) Prefixes(ctx context.Context, slug string) ([]domain.Prefix, error) {
	b, err := s.Board(ctx, slug)
	if err != nil {
		return nil, err
	}
	return repo.ListPrefixes(ctx, s.DB, b.ID)
}

// PostInput carries the writable fields of a post. Prefix is optional and is
// created on first use.
type PostInput struct {
	Title   string
	Content string
	Prefix  string
}

// CreatePost writes a post on the board and awards activity points to the
// author. Points are best-effort: a points failure never fails the post.
func (s *CommunityService) CreatePost(ctx context.Context, userID, slug string, in PostInput) (*domain.Post, error) {
	tr := otel.Tracer("services/CommunityService")
	ctx, span := tr.Start(ctx, "CreatePost",
		trace.WithAttributes(attribute.String("board.slug", slug)),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, ErrEmptyContent
	}

	b, err := s.Board(ctx, slug)
	if err != nil {
		return nil, err
	}

	p := &domain.Post{
		BoardID: b.ID,
		UserID:  userID,
		Title:   title,
		Content: content,
	}
	if name := strings.TrimSpace(in.Prefix); name != "" {
		pfx, err := repo.GetOrCreatePrefix(ctx, s.DB, b.ID, name, userID)
		if err != nil {
			return nil, err
		}
		p.PrefixID = &pfx.ID
		p.Prefix = pfx
	}
	if err := repo.CreatePost(ctx, s.DB, p); err != nil {
		return nil, err
	}

	if s.Grass != nil {
		_ = s.Grass.AddPoints(ctx, userID, ActionPost)
	}
	return p, nil
}

// PostSummary is one list row: the post plus its engagement tallies.
type PostSummary struct {
	domain.Post
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
}

// ListPosts returns the board's posts, newest first, with like and comment
// counts attached in bulk.
func (s *CommunityService) ListPosts(ctx context.Context, slug string, f repo.PostFilter) ([]PostSummary, error) {
	b, err := s.Board(ctx, slug)
	if err != nil {
		return nil, err
	}
	posts, err := repo.ListPosts(ctx, s.DB, b.ID, f)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, posts)
}

func (s *CommunityService) summarize(ctx context.Context, posts []domain.Post) ([]PostSummary, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	likes, err := s.Engagement.LikeCounts(ctx, domain.TargetPost, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.Engagement.CommentCounts(ctx, domain.TargetPost, ids)
	if err != nil {
		return nil, err
	}

	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = PostSummary{Post: p, LikeCount: likes[p.ID], CommentCount: comments[p.ID]}
	}
	return out, nil
}

// PostDetail is a single post with its full comment tree and the viewer's
// like state.
type PostDetail struct {
	domain.Post
	LikeCount int64        `json:"like_count"`
	Liked     bool         `json:"liked"`
	Comments  *CommentTree `json:"comments"`
}

// GetPost returns one post with engagement attached. viewerID may be empty.
func (s *CommunityService) GetPost(ctx context.Context, viewerID, slug string, id uint) (*PostDetail, error) {
	b, err := s.Board(ctx, slug)
	if err != nil {
		return nil, err
	}
	p, err := repo.GetPost(ctx, s.DB, b.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	likeCount, err := repo.CountLikes(ctx, s.DB, domain.TargetPost, p.ID)
	if err != nil {
		return nil, err
	}
	liked := false
	if viewerID != "" {
		set, err := s.Engagement.LikedSet(ctx, viewerID, domain.TargetPost, []uint{p.ID})
		if err != nil {
			return nil, err
		}
		_, liked = set[p.ID]
	}
	tree, err := s.Engagement.BuildCommentTree(ctx, viewerID, domain.TargetPost, p.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: *p, LikeCount: likeCount, Liked: liked, Comments: tree}, nil
}

// UpdatePost applies the non-empty fields of in to the caller's own post.
func (s *CommunityService) UpdatePost(ctx context.Context, userID, slug string, id uint, in PostInput) (*domain.Post, error) {
	b, err := s.Board(ctx, slug)
	if err != nil {
		return nil, err
	}
	p, err := repo.GetPost(ctx, s.DB, b.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrForbidden
	}

	if t := strings.TrimSpace(in.Title); t != "" {
		p.Title = t
	}
	if c := strings.TrimSpace(in.Content); c != "" {
		p.Content = c
	}
	if name := strings.TrimSpace(in.Prefix); name != "" {
		pfx, err := repo.GetOrCreatePrefix(ctx, s.DB, b.ID, name, userID)
		if err != nil {
			return nil, err
		}
		p.PrefixID = &pfx.ID
		p.Prefix = pfx
	}
	if err := repo.SavePost(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePost removes the caller's own post together with every like and
// comment hanging off it, in one transaction.
func (s *CommunityService) DeletePost(ctx context.Context, userID, slug string, id uint) error {
	b, err := s.Board(ctx, slug)
	if err != nil {
		return err
	}
	p, err := repo.GetPost(ctx, s.DB, b.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return ErrForbidden
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Engagement.CleanupTarget(ctx, tx, domain.TargetPost, p.ID); err != nil {
			return err
		}
		return repo.DeletePost(ctx, tx, p.ID)
	})
}
