package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/catalog"
)

func newProfile(db *gorm.DB, src *fakeSource) *ProfileService {
	return &ProfileService{DB: db, Catalog: &CatalogService{DB: db, Source: src}}
}

func TestProfile_ToggleBookmark_Flips(t *testing.T) {
	db := newTestDB(t)
	it := item(3, "책", 0, 0)
	svc := newProfile(db, &fakeSource{lookupItems: map[string]*catalog.Item{it.ISBN13: &it}})

	res, err := svc.ToggleBookmark(context.Background(), "u1", it.ISBN13)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !res.Bookmarked || res.BookmarkCount != 1 {
		t.Fatalf("expected bookmarked with count 1, got %+v", res)
	}

	res, err = svc.ToggleBookmark(context.Background(), "u1", it.ISBN13)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if res.Bookmarked || res.BookmarkCount != 0 {
		t.Fatalf("expected removed with count 0, got %+v", res)
	}
}

func TestProfile_ToggleBookmark_UnknownISBN(t *testing.T) {
	db := newTestDB(t)
	svc := newProfile(db, &fakeSource{})

	_, err := svc.ToggleBookmark(context.Background(), "u1", "9780000000000")
	if !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestProfile_ToggleFollow_Flips(t *testing.T) {
	db := newTestDB(t)
	svc := newProfile(db, &fakeSource{})

	res, err := svc.ToggleFollow(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !res.Following {
		t.Fatalf("expected following, got %+v", res)
	}

	followers, err := svc.Followers(context.Background(), "u2")
	if err != nil {
		t.Fatalf("Followers: %v", err)
	}
	if len(followers) != 1 || followers[0] != "u1" {
		t.Fatalf("unexpected followers %v", followers)
	}

	res, err = svc.ToggleFollow(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if res.Following {
		t.Fatalf("expected unfollowed, got %+v", res)
	}
}

func TestProfile_ToggleFollow_Self(t *testing.T) {
	db := newTestDB(t)
	svc := newProfile(db, &fakeSource{})

	if _, err := svc.ToggleFollow(context.Background(), "u1", "u1"); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
}

func TestProfile_MyPage_Aggregates(t *testing.T) {
	db := newTestDB(t)
	it := item(3, "책", 0, 0)
	src := &fakeSource{lookupItems: map[string]*catalog.Item{it.ISBN13: &it}}
	profile := newProfile(db, src)
	community := newCommunity(db)
	reviews := newReviewSvc(db)

	if _, err := profile.ToggleBookmark(context.Background(), "u1", it.ISBN13); err != nil {
		t.Fatalf("bookmark: %v", err)
	}
	if _, err := community.CreatePost(context.Background(), "u1", "free", PostInput{Title: "t", Content: "c"}); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := reviews.CreateReview(context.Background(), "u1", "review", reviewInput()); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := profile.ToggleFollow(context.Background(), "u2", "u1"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	page, err := profile.MyPage(context.Background(), "u1")
	if err != nil {
		t.Fatalf("MyPage: %v", err)
	}
	if len(page.Bookmarks) != 1 || len(page.Posts) != 1 || len(page.Reviews) != 1 {
		t.Fatalf("unexpected aggregation %+v", page)
	}
	if len(page.Followers) != 1 || page.Followers[0] != "u2" {
		t.Fatalf("unexpected followers %v", page.Followers)
	}

	if _, err := profile.MyPage(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
