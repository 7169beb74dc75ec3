// Package services – EngagementService
//
// This file implements the generic engagement layer: like toggles, bulk
// like/comment counts, comment creation with same-target parenting rules,
// ownership-checked deletion, and the comment-tree/best-comment read model.
// Targets are addressed by (kind, id) pairs so one implementation serves
// posts, reviews, and comments alike.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Best-comment selection rule: a comment needs at least BestLikeThreshold
// likes to qualify, and at most BestMaxComments winners are surfaced.
const (
	BestLikeThreshold = 10
	BestMaxComments   = 3
)

// EngagementService implements likes and comments over generic targets.
// Grass, when set, awards activity points for new comments.
type EngagementService struct {
	DB    *gorm.DB
	Grass *GrassService
}

// LikeResult is the outcome of one toggle: the new state plus the recomputed
// total for the target.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ToggleLike flips the like state of (userID, kind, targetID) and returns
// the resulting state with a freshly recomputed count.
//
// Concurrency: the existence-check/create/delete runs in a transaction, and
// the unique index over (user, kind, id) is the backstop: a duplicate-key
// violation from a racing identical toggle is treated as "already liked",
// not an error.
func (s *EngagementService) ToggleLike(ctx context.Context, userID string, kind domain.TargetKind, targetID uint) (*LikeResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, ErrInvalidTarget
	}

	tr := otel.Tracer("services/EngagementService")
	ctx, span := tr.Start(ctx, "ToggleLike",
		trace.WithAttributes(
			attribute.String("target.kind", string(kind)),
			attribute.Int64("target.id", int64(targetID)),
		),
	)
	defer span.End()

	var liked bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := repo.GetLike(ctx, tx, userID, kind, targetID)
		switch {
		case err == nil:
			liked = false
			return repo.DeleteLike(ctx, tx, userID, kind, targetID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			if cerr := repo.CreateLike(ctx, tx, userID, kind, targetID); cerr != nil {
				if errors.Is(cerr, repo.ErrDuplicate) {
					return nil // lost the race; the row exists, which is what we wanted
				}
				return cerr
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	count, err := repo.CountLikes(ctx, s.DB, kind, targetID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// LikeCounts returns like totals for the given targets; ids with no likes
// map to zero.
func (s *EngagementService) LikeCounts(ctx context.Context, kind domain.TargetKind, ids []uint) (map[uint]int64, error) {
	m, err := repo.LikeCountMap(ctx, s.DB, kind, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := m[id]; !ok {
			m[id] = 0
		}
	}
	return m, nil
}

// CommentCounts returns comment totals for the given targets; ids with no
// comments map to zero.
func (s *EngagementService) CommentCounts(ctx context.Context, kind domain.TargetKind, ids []uint) (map[uint]int64, error) {
	m, err := repo.CommentCountMap(ctx, s.DB, kind, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := m[id]; !ok {
			m[id] = 0
		}
	}
	return m, nil
}

// LikedSet returns which of the given targets userID has liked. An empty
// userID yields an empty set (anonymous readers like nothing).
func (s *EngagementService) LikedSet(ctx context.Context, userID string, kind domain.TargetKind, ids []uint) (map[uint]struct{}, error) {
	return repo.LikedTargetIDs(ctx, s.DB, userID, kind, ids)
}

// CreateComment validates and persists a new comment on (kind, targetID).
//
// Rules:
//   - userID must be present (ErrUnauthorized).
//   - content must be non-blank after trimming (ErrEmptyContent).
//   - parentID, when set, must resolve (ErrCommentNotFound) and must
//     reference the same (kind, targetID) as the new comment
//     (ErrParentMismatch); replies never cross trees.
func (s *EngagementService) CreateComment(ctx context.Context, userID string, kind domain.TargetKind, targetID uint, content string, parentID *uint) (*domain.Comment, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, ErrInvalidTarget
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	if parentID != nil {
		parent, err := repo.GetComment(ctx, s.DB, *parentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		if err != nil {
			return nil, err
		}
		if parent.TargetKind != kind || parent.TargetID != targetID {
			return nil, ErrParentMismatch
		}
	}

	c := &domain.Comment{
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
		ParentID:   parentID,
		Content:    content,
	}
	if err := repo.CreateComment(ctx, s.DB, c); err != nil {
		return nil, err
	}

	// Points are best-effort: a failed award never fails the comment.
	if s.Grass != nil {
		_ = s.Grass.AddPoints(ctx, userID, ActionComment)
	}
	return c, nil
}

// DeleteComment removes a comment owned by userID together with its reply
// subtree and attached likes.
func (s *EngagementService) DeleteComment(ctx context.Context, userID string, commentID uint) error {
	if userID == "" {
		return ErrUnauthorized
	}
	c, err := repo.GetComment(ctx, s.DB, commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrForbidden
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteCommentTree(ctx, tx, commentID)
	})
}

// CleanupTarget removes all engagement attached to a deleted target.
// Callers invoke it inside the same transaction that deletes the target row.
func (s *EngagementService) CleanupTarget(ctx context.Context, tx *gorm.DB, kind domain.TargetKind, targetID uint) error {
	return repo.DeleteEngagementFor(ctx, tx, kind, targetID)
}

// CommentNode is one rendered comment with its like count, whether the
// requesting user liked it, and its replies in ascending-id order.
type CommentNode struct {
	domain.Comment
	LikeCount int64         `json:"like_count"`
	Liked     bool          `json:"liked"`
	Replies   []CommentNode `json:"replies"`
}

// CommentTree is the full read model for one target's comments: the best
// comments (≥ BestLikeThreshold likes, top BestMaxComments by likes then
// seniority) and the nested tree in chronological order.
type CommentTree struct {
	Best     []CommentNode `json:"best"`
	Comments []CommentNode `json:"comments"`
}

// BuildCommentTree loads and assembles the comment tree for one target.
//
// The flat rows come back in ascending-id order, so roots and reply lists
// are chronological by construction. Attachment refuses any reply whose
// parent id is not smaller than its own id: ids are insertion-ordered, so a
// well-formed tree always satisfies parent < child, and the guard makes an
// adversarial parent cycle unrepresentable rather than an infinite loop.
func (s *EngagementService) BuildCommentTree(ctx context.Context, userID string, kind domain.TargetKind, targetID uint) (*CommentTree, error) {
	if !kind.Valid() {
		return nil, ErrInvalidTarget
	}

	comments, err := repo.ListComments(ctx, s.DB, kind, targetID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	likeMap, err := repo.LikeCountMap(ctx, s.DB, domain.TargetComment, ids)
	if err != nil {
		return nil, err
	}
	likedSet, err := repo.LikedTargetIDs(ctx, s.DB, userID, domain.TargetComment, ids)
	if err != nil {
		return nil, err
	}

	node := func(c domain.Comment) CommentNode {
		_, liked := likedSet[c.ID]
		return CommentNode{
			Comment:   c,
			LikeCount: likeMap[c.ID],
			Liked:     liked,
			Replies:   []CommentNode{},
		}
	}

	// Best: threshold first, then likes desc with id asc as tie-break.
	best := make([]CommentNode, 0, BestMaxComments)
	for _, c := range comments {
		if likeMap[c.ID] < BestLikeThreshold {
			continue
		}
		n := node(c)
		pos := len(best)
		for i, b := range best {
			if n.LikeCount > b.LikeCount || (n.LikeCount == b.LikeCount && n.ID < b.ID) {
				pos = i
				break
			}
		}
		best = append(best, CommentNode{})
		copy(best[pos+1:], best[pos:])
		best[pos] = n
		if len(best) > BestMaxComments {
			best = best[:BestMaxComments]
		}
	}

	children := make(map[uint][]domain.Comment)
	var roots []domain.Comment
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if *c.ParentID >= c.ID {
			// violates the insertion-order invariant; treat as a root rather
			// than risk a cycle
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var build func(c domain.Comment) CommentNode
	build = func(c domain.Comment) CommentNode {
		n := node(c)
		for _, ch := range children[c.ID] {
			n.Replies = append(n.Replies, build(ch))
		}
		return n
	}

	tree := &CommentTree{Best: best, Comments: make([]CommentNode, 0, len(roots))}
	for _, r := range roots {
		tree.Comments = append(tree.Comments, build(r))
	}
	return tree, nil
}
