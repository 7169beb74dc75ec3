package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/catalog"
	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/repo"
)

// authorSalesPrefix namespaces the per-author cache partitions so they never
// collide with the fixed list partitions.
const authorSalesPrefix = "AuthorSales:"

// recentBookmarkWindow is how many of the user's latest bookmarks the
// bookmark-based recommender samples its seed from.
const recentBookmarkWindow = 5

// NormalizeAuthor reduces a raw catalog author string to a single searchable
// name: the first comma-separated entry with any trailing role annotation
// ("(지은이)", "(옮긴이)", …) removed.
func NormalizeAuthor(raw string) string {
	first := raw
	if i := strings.Index(first, ","); i >= 0 {
		first = first[:i]
	}
	if i := strings.Index(first, "("); i >= 0 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}

// RecommendService produces personalized book suggestions from bookmarks and
// follows, backed by per-author popularity partitions of the catalog cache.
type RecommendService struct {
	DB      *gorm.DB
	Catalog *CatalogService

	// randIndex is a test seam; defaults to rand.Intn.
	randIndex func(n int) int
}

func (s *RecommendService) pick(n int) int {
	if s.randIndex != nil {
		return s.randIndex(n)
	}
	return rand.Intn(n)
}

// AuthorSales returns the author's works ordered by sales, syncing the
// partition from the upstream sales-sorted author search when its TTL has
// lapsed. The partition shares the list cache's reconcile semantics.
func (s *RecommendService) AuthorSales(ctx context.Context, rawAuthor string, limit int) ([]domain.CatalogListItem, error) {
	name := NormalizeAuthor(rawAuthor)
	if name == "" {
		return nil, nil
	}
	qt := authorSalesPrefix + name

	fresh, err := s.Catalog.IsFresh(ctx, qt)
	if err != nil {
		return nil, err
	}
	if !fresh {
		items, err := s.Catalog.Source.ItemSearch(ctx, name, "Author", catalog.SortSalesPoint, limit, 1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if err := s.Catalog.reconcile(ctx, qt, items); err != nil {
			return nil, err
		}
	}
	return repo.ListItemsBySales(ctx, s.DB, qt, limit)
}

// BookmarkRecommendation is an author-based suggestion seeded by one of the
// user's own bookmarks.
type BookmarkRecommendation struct {
	Author string                   `json:"author"`
	Seed   *domain.Book             `json:"seed_book"`
	Items  []domain.CatalogListItem `json:"items"`
}

// RecommendByBookmarks picks one of the user's recent bookmarks at random
// and suggests other works by that book's author, excluding everything the
// user already bookmarked. The result is all-or-nothing: when fewer than
// limit candidates survive the exclusion the suggestion list is empty, so
// the client never renders a half-filled shelf.
func (s *RecommendService) RecommendByBookmarks(ctx context.Context, userID string, limit int) (*BookmarkRecommendation, error) {
	tr := otel.Tracer("services/RecommendService")
	ctx, span := tr.Start(ctx, "RecommendByBookmarks",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	marks, err := repo.ListBookmarks(ctx, s.DB, userID, recentBookmarkWindow)
	if err != nil {
		return nil, err
	}
	if len(marks) == 0 {
		return nil, nil
	}
	seed := marks[s.pick(len(marks))].Book

	author := NormalizeAuthor(seed.Author)
	if author == "" {
		return nil, nil
	}

	works, err := s.AuthorSales(ctx, seed.Author, limit+recentBookmarkWindow)
	if err != nil {
		return nil, err
	}
	owned, err := repo.BookmarkedISBN13s(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CatalogListItem, 0, limit)
	for _, w := range works {
		if w.ISBN13 == "" || w.ISBN13 == seed.ISBN13 {
			continue
		}
		if _, ok := owned[w.ISBN13]; ok {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	if len(out) < limit {
		out = nil
	}
	return &BookmarkRecommendation{Author: author, Seed: &seed, Items: out}, nil
}

// FollowRecommendation surfaces what one followed reader has bookmarked.
type FollowRecommendation struct {
	FromUser string        `json:"from_user"`
	Books    []domain.Book `json:"books"`
}

// RecommendByFollows picks, at random, a followed user who has bookmarked at
// least limit books and returns their bookmarks with the caller's own books
// removed. Unlike the bookmark recommender this is best-effort: a shorter
// list is served as-is.
func (s *RecommendService) RecommendByFollows(ctx context.Context, userID string, limit int) (*FollowRecommendation, error) {
	cands, err := repo.ListFollowCandidates(ctx, s.DB, userID, int64(limit), 20)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}
	from := cands[s.pick(len(cands))].UserID

	marks, err := repo.ListBookmarks(ctx, s.DB, from, 0)
	if err != nil {
		return nil, err
	}
	owned, err := repo.BookmarkedISBN13s(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	books := make([]domain.Book, 0, limit)
	for _, m := range marks {
		if _, ok := owned[m.Book.ISBN13]; ok {
			continue
		}
		books = append(books, m.Book)
		if len(books) == limit {
			break
		}
	}
	if len(books) == 0 {
		return nil, nil
	}
	return &FollowRecommendation{FromUser: from, Books: books}, nil
}
