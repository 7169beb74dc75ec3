package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/domain"
)

func seedPost(t *testing.T, db *gorm.DB, userID string) *domain.Post {
	t.Helper()
	var board domain.Board
	if err := db.Where("slug = ?", "free").First(&board).Error; err != nil {
		t.Fatalf("load board: %v", err)
	}
	p := &domain.Post{BoardID: board.ID, UserID: userID, Title: "t", Content: "c"}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}

func TestEngagement_ToggleLike_Flips(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}
	p := seedPost(t, db, "author")

	res, err := svc.ToggleLike(context.Background(), "u1", domain.TargetPost, p.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !res.Liked || res.LikeCount != 1 {
		t.Fatalf("expected liked with count 1, got %+v", res)
	}

	res, err = svc.ToggleLike(context.Background(), "u1", domain.TargetPost, p.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if res.Liked || res.LikeCount != 0 {
		t.Fatalf("expected unliked with count 0, got %+v", res)
	}
}

func TestEngagement_ToggleLike_RequiresUser(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}

	_, err := svc.ToggleLike(context.Background(), "", domain.TargetPost, 1)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestEngagement_ToggleLike_InvalidKind(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}

	_, err := svc.ToggleLike(context.Background(), "u1", domain.TargetKind("BOOK"), 1)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestEngagement_CreateComment_EmptyContent(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}
	p := seedPost(t, db, "author")

	_, err := svc.CreateComment(context.Background(), "u1", domain.TargetPost, p.ID, "   \n", nil)
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestEngagement_CreateComment_ParentOnOtherTarget(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}
	p1 := seedPost(t, db, "author")
	p2 := seedPost(t, db, "author")

	parent, err := svc.CreateComment(context.Background(), "u1", domain.TargetPost, p1.ID, "root", nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	// Reply addressed to a different post than its parent.
	_, err = svc.CreateComment(context.Background(), "u2", domain.TargetPost, p2.ID, "reply", &parent.ID)
	if !errors.Is(err, ErrParentMismatch) {
		t.Fatalf("expected ErrParentMismatch, got %v", err)
	}
}

func TestEngagement_CreateComment_MissingParent(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}
	p := seedPost(t, db, "author")

	missing := uint(9999)
	_, err := svc.CreateComment(context.Background(), "u1", domain.TargetPost, p.ID, "reply", &missing)
	if !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestEngagement_DeleteComment_OwnershipAndSubtree(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}
	p := seedPost(t, db, "author")

	root, err := svc.CreateComment(context.Background(), "u1", domain.TargetPost, p.ID, "root", nil)
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	reply, err := svc.CreateComment(context.Background(), "u2", domain.TargetPost, p.ID, "reply", &root.ID)
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if _, err := svc.CreateComment(context.Background(), "u3", domain.TargetPost, p.ID, "nested", &reply.ID); err != nil {
		t.Fatalf("create nested: %v", err)
	}

	if err := svc.DeleteComment(context.Background(), "uX", root.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	if err := svc.DeleteComment(context.Background(), "u1", root.ID); err != nil {
		t.Fatalf("delete root: %v", err)
	}
	var n int64
	if err := db.Model(&domain.Comment{}).Count(&n).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if n != 0 {
		t.Fatalf("deleting the root must take the subtree; %d comments left", n)
	}
}

func TestEngagement_BuildCommentTree_Shape(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}
	p := seedPost(t, db, "author")

	a, err := svc.CreateComment(context.Background(), "u1", domain.TargetPost, p.ID, "A", nil)
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := svc.CreateComment(context.Background(), "u2", domain.TargetPost, p.ID, "B", &a.ID)
	if err != nil {
		t.Fatalf("create B: %v", err)
	}
	if _, err := svc.CreateComment(context.Background(), "u3", domain.TargetPost, p.ID, "C", &b.ID); err != nil {
		t.Fatalf("create C: %v", err)
	}

	tree, err := svc.BuildCommentTree(context.Background(), "", domain.TargetPost, p.ID)
	if err != nil {
		t.Fatalf("BuildCommentTree: %v", err)
	}
	if len(tree.Comments) != 1 {
		t.Fatalf("expected single root, got %d", len(tree.Comments))
	}
	got := tree.Comments[0]
	if got.Content != "A" || len(got.Replies) != 1 {
		t.Fatalf("unexpected root %q with %d replies", got.Content, len(got.Replies))
	}
	if got.Replies[0].Content != "B" || len(got.Replies[0].Replies) != 1 {
		t.Fatalf("unexpected mid level %q", got.Replies[0].Content)
	}
	if got.Replies[0].Replies[0].Content != "C" {
		t.Fatalf("unexpected leaf %q", got.Replies[0].Replies[0].Content)
	}
}

func TestEngagement_BuildCommentTree_BestSelection(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}
	p := seedPost(t, db, "author")

	// Five roots with like totals 15, 12, 10, 9, 20.
	likeTotals := []int{15, 12, 10, 9, 20}
	ids := make([]uint, len(likeTotals))
	for i, total := range likeTotals {
		c, err := svc.CreateComment(context.Background(), "author", domain.TargetPost, p.ID, fmt.Sprintf("c%d", i), nil)
		if err != nil {
			t.Fatalf("create comment %d: %v", i, err)
		}
		ids[i] = c.ID
		for u := 0; u < total; u++ {
			if _, err := svc.ToggleLike(context.Background(), fmt.Sprintf("liker-%d-%d", i, u), domain.TargetComment, c.ID); err != nil {
				t.Fatalf("like comment %d: %v", i, err)
			}
		}
	}

	tree, err := svc.BuildCommentTree(context.Background(), "", domain.TargetPost, p.ID)
	if err != nil {
		t.Fatalf("BuildCommentTree: %v", err)
	}
	if len(tree.Best) != 3 {
		t.Fatalf("expected 3 best comments, got %d", len(tree.Best))
	}
	wantLikes := []int64{20, 15, 12}
	for i, want := range wantLikes {
		if tree.Best[i].LikeCount != want {
			t.Fatalf("best[%d]: expected %d likes, got %d", i, want, tree.Best[i].LikeCount)
		}
	}
	// The 9-like comment never qualifies even with a free slot upstream.
	for _, b := range tree.Best {
		if b.ID == ids[3] {
			t.Fatalf("comment below the threshold must not be best")
		}
	}
}

func TestEngagement_BuildCommentTree_ThresholdExcludesAll(t *testing.T) {
	db := newTestDB(t)
	svc := &EngagementService{DB: db}
	p := seedPost(t, db, "author")

	c, err := svc.CreateComment(context.Background(), "u1", domain.TargetPost, p.ID, "meh", nil)
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	for u := 0; u < 9; u++ {
		if _, err := svc.ToggleLike(context.Background(), fmt.Sprintf("liker-%d", u), domain.TargetComment, c.ID); err != nil {
			t.Fatalf("like: %v", err)
		}
	}

	tree, err := svc.BuildCommentTree(context.Background(), "", domain.TargetPost, p.ID)
	if err != nil {
		t.Fatalf("BuildCommentTree: %v", err)
	}
	if len(tree.Best) != 0 {
		t.Fatalf("9 likes is below the threshold; got %d best", len(tree.Best))
	}
}
