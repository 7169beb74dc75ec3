package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jandibook/go-book-backend/internal/catalog"
	"github.com/jandibook/go-book-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := repo.EnsureBoards(context.Background(), db); err != nil {
		t.Fatalf("seed boards: %v", err)
	}
	return db
}

// ----- Fake upstream source -----

type fakeSource struct {
	listItems map[string][]catalog.Item
	listCalls int
	listErr   error

	lookupItems map[string]*catalog.Item
	lookupCalls int
	lookupErr   error

	searchItems []catalog.Item
	searchErr   error
}

func (f *fakeSource) ItemList(ctx context.Context, queryType string, maxResults, start int) ([]catalog.Item, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listItems[queryType], nil
}

func (f *fakeSource) ItemLookup(ctx context.Context, isbn13 string) (*catalog.Item, error) {
	f.lookupCalls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	it, ok := f.lookupItems[isbn13]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	return it, nil
}

func (f *fakeSource) ItemSearch(ctx context.Context, query, queryType, sort string, maxResults, start int) ([]catalog.Item, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchItems, nil
}

func item(id int64, title string, rank, sales int) catalog.Item {
	return catalog.Item{
		ItemID:     id,
		ISBN13:     fmt.Sprintf("978%010d", id),
		Title:      title,
		Author:     "저자 (지은이)",
		BestRank:   rank,
		SalesPoint: sales,
	}
}

// ----- Tests -----

func TestCatalog_CachedList_FetchesWhenNeverSynced(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{listItems: map[string][]catalog.Item{
		catalog.QueryBestseller: {item(1, "a", 1, 100), item(2, "b", 2, 50)},
	}}
	svc := &CatalogService{DB: db, Source: src}

	rows, err := svc.CachedList(context.Background(), catalog.QueryBestseller, 10)
	if err != nil {
		t.Fatalf("CachedList: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if src.listCalls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", src.listCalls)
	}
}

func TestCatalog_CachedList_SkipsFetchWhenFresh(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{listItems: map[string][]catalog.Item{
		catalog.QueryBestseller: {item(1, "a", 1, 100)},
	}}
	svc := &CatalogService{DB: db, Source: src}

	if _, err := svc.CachedList(context.Background(), catalog.QueryBestseller, 10); err != nil {
		t.Fatalf("first CachedList: %v", err)
	}
	if _, err := svc.CachedList(context.Background(), catalog.QueryBestseller, 10); err != nil {
		t.Fatalf("second CachedList: %v", err)
	}
	if src.listCalls != 1 {
		t.Fatalf("fresh partition must not refetch; got %d calls", src.listCalls)
	}
}

func TestCatalog_CachedList_RefetchesAfterTTL(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{listItems: map[string][]catalog.Item{
		catalog.QueryBestseller: {item(1, "a", 1, 100)},
	}}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &CatalogService{DB: db, Source: src, now: func() time.Time { return now }}

	if _, err := svc.CachedList(context.Background(), catalog.QueryBestseller, 10); err != nil {
		t.Fatalf("first CachedList: %v", err)
	}

	now = now.Add(25 * time.Hour)
	if _, err := svc.CachedList(context.Background(), catalog.QueryBestseller, 10); err != nil {
		t.Fatalf("second CachedList: %v", err)
	}
	if src.listCalls != 2 {
		t.Fatalf("expired partition must refetch; got %d calls", src.listCalls)
	}
}

func TestCatalog_Refresh_ReconcilesDroppedRows(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{listItems: map[string][]catalog.Item{
		catalog.QueryBestseller: {item(1, "a", 1, 100), item(2, "b", 2, 50)},
	}}
	svc := &CatalogService{DB: db, Source: src}

	if err := svc.Refresh(context.Background(), catalog.QueryBestseller, 10); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}

	// Upstream list moved on: item 1 dropped, item 3 appeared.
	src.listItems[catalog.QueryBestseller] = []catalog.Item{item(2, "b", 1, 70), item(3, "c", 2, 60)}
	if err := svc.Refresh(context.Background(), catalog.QueryBestseller, 10); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}

	rows, err := repo.ListItems(context.Background(), db, catalog.QueryBestseller, 10)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after reconcile, got %d", len(rows))
	}
	if rows[0].ItemID != 2 || rows[1].ItemID != 3 {
		t.Fatalf("expected items [2 3], got [%d %d]", rows[0].ItemID, rows[1].ItemID)
	}
	if rows[0].BestRank != 1 {
		t.Fatalf("upsert must overwrite rank; got %d", rows[0].BestRank)
	}
}

func TestCatalog_Refresh_Idempotent(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{listItems: map[string][]catalog.Item{
		catalog.QueryBestseller: {item(1, "a", 1, 100), item(2, "b", 2, 50)},
	}}
	svc := &CatalogService{DB: db, Source: src}

	for i := 0; i < 2; i++ {
		if err := svc.Refresh(context.Background(), catalog.QueryBestseller, 10); err != nil {
			t.Fatalf("Refresh %d: %v", i, err)
		}
	}
	n, err := repo.CountListItems(context.Background(), db, catalog.QueryBestseller)
	if err != nil {
		t.Fatalf("CountListItems: %v", err)
	}
	if n != 2 {
		t.Fatalf("re-sync of same batch must not duplicate; got %d rows", n)
	}
}

func TestCatalog_Refresh_UpstreamFailureLeavesCache(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{listItems: map[string][]catalog.Item{
		catalog.QueryBestseller: {item(1, "a", 1, 100)},
	}}
	svc := &CatalogService{DB: db, Source: src}

	if err := svc.Refresh(context.Background(), catalog.QueryBestseller, 10); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	src.listErr = errors.New("boom")
	err := svc.Refresh(context.Background(), catalog.QueryBestseller, 10)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	rows, err := svc.StaleList(context.Background(), catalog.QueryBestseller, 10)
	if err != nil {
		t.Fatalf("StaleList: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("failed refresh must leave stale rows; got %d", len(rows))
	}
}

func TestCatalog_NewSpecial_OrderedByPubDate(t *testing.T) {
	db := newTestDB(t)
	a := item(1, "old", 0, 10)
	a.PubDate = "2025-01-01"
	b := item(2, "new", 0, 5)
	b.PubDate = "2026-02-01"
	src := &fakeSource{listItems: map[string][]catalog.Item{
		catalog.QueryNewSpecial: {a, b},
	}}
	svc := &CatalogService{DB: db, Source: src}

	rows, err := svc.CachedList(context.Background(), catalog.QueryNewSpecial, 10)
	if err != nil {
		t.Fatalf("CachedList: %v", err)
	}
	if rows[0].ItemID != 2 {
		t.Fatalf("newest publication must come first, got item %d", rows[0].ItemID)
	}
}

func TestCatalog_GetOrCreateBook_CachesLookup(t *testing.T) {
	db := newTestDB(t)
	it := item(7, "책", 0, 0)
	src := &fakeSource{lookupItems: map[string]*catalog.Item{it.ISBN13: &it}}
	svc := &CatalogService{DB: db, Source: src}

	b1, err := svc.GetOrCreateBook(context.Background(), it.ISBN13)
	if err != nil {
		t.Fatalf("first GetOrCreateBook: %v", err)
	}
	b2, err := svc.GetOrCreateBook(context.Background(), it.ISBN13)
	if err != nil {
		t.Fatalf("second GetOrCreateBook: %v", err)
	}
	if b1.ID != b2.ID {
		t.Fatalf("expected same cached book, got %d and %d", b1.ID, b2.ID)
	}
	if src.lookupCalls != 1 {
		t.Fatalf("second call must hit the cache; got %d lookups", src.lookupCalls)
	}
}

func TestCatalog_GetOrCreateBook_UnknownISBN(t *testing.T) {
	db := newTestDB(t)
	svc := &CatalogService{DB: db, Source: &fakeSource{}}

	_, err := svc.GetOrCreateBook(context.Background(), "9780000000000")
	if !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestCatalog_Search_DegradesToEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := &CatalogService{DB: db, Source: &fakeSource{searchErr: errors.New("down")}}

	if got := svc.Search(context.Background(), "go", 10); len(got) != 0 {
		t.Fatalf("search failure must degrade to empty, got %d items", len(got))
	}
}
