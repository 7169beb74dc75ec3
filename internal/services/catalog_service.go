// Package services – CatalogService
//
// This file implements the external-catalog synchronization layer: TTL-gated
// cached lists with upsert-and-reconcile refresh, the immutable per-ISBN book
// cache, and pass-through keyword search. A refresh runs inside one database
// transaction so an upstream fetch or parse failure applies nothing; callers
// on read paths may then fall back to whatever stale rows survive.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jandibook/go-book-backend/internal/catalog"
	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultListTTL gates how long a cached list partition stays fresh.
const DefaultListTTL = 24 * time.Hour

// CatalogService coordinates the cached view of the external catalog.
type CatalogService struct {
	DB     *gorm.DB
	Source catalog.Source

	// ListTTL overrides DefaultListTTL when > 0.
	ListTTL time.Duration

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// ttl returns the effective freshness window.
func (s *CatalogService) ttl() time.Duration {
	if s.ListTTL > 0 {
		return s.ListTTL
	}
	return DefaultListTTL
}

func (s *CatalogService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// IsFresh reports whether the queryType partition was synced within the TTL.
// A missing marker means stale, never an error.
func (s *CatalogService) IsFresh(ctx context.Context, queryType string) (bool, error) {
	m, err := repo.GetSyncMarker(ctx, s.DB, queryType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.clock().Sub(m.UpdatedAt) < s.ttl(), nil
}

// CachedList returns up to limit cached rows of queryType, refreshing the
// partition from the upstream source first when it is stale.
//
// Refresh semantics:
//  1. Fetch up to limit records for queryType from the Source.
//  2. Upsert each record keyed by (query_type, item_id): full overwrite,
//     missing optional fields persisted as zero values.
//  3. Delete every cached row of the partition whose item_id was not among
//     the fetched ids, so dropped list entries never linger.
//  4. Touch the sync marker.
//
// Steps 2–4 run in one transaction; a fetch error leaves the cache and the
// marker untouched and is reported as ErrUpstream (wrapped). Callers holding
// stale rows may serve them instead.
func (s *CatalogService) CachedList(ctx context.Context, queryType string, limit int) ([]domain.CatalogListItem, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "CachedList",
		trace.WithAttributes(
			attribute.String("catalog.query_type", queryType),
			attribute.Int("catalog.limit", limit),
		),
	)
	defer span.End()

	fresh, err := s.IsFresh(ctx, queryType)
	if err != nil {
		return nil, err
	}
	if !fresh {
		if err := s.Refresh(ctx, queryType, limit); err != nil {
			return nil, err
		}
	}
	return repo.ListItems(ctx, s.DB, queryType, limit)
}

// Refresh synchronizes one partition from the upstream list endpoint.
func (s *CatalogService) Refresh(ctx context.Context, queryType string, limit int) error {
	items, err := s.Source.ItemList(ctx, queryType, limit, 1)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return s.reconcile(ctx, queryType, items)
}

// reconcile applies one fetched batch to the partition atomically.
func (s *CatalogService) reconcile(ctx context.Context, queryType string, items []catalog.Item) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alive := make([]int64, 0, len(items))
		for idx, it := range items {
			if it.ItemID == 0 {
				continue
			}
			alive = append(alive, it.ItemID)

			rank := it.BestRank
			if rank == 0 {
				rank = idx + 1 // list position stands in for a missing rank
			}
			row := &domain.CatalogListItem{
				QueryType:          queryType,
				ItemID:             it.ItemID,
				CategoryID:         it.CategoryID,
				CategoryName:       it.CategoryName,
				MallType:           it.MallType,
				ISBN:               it.ISBN,
				ISBN13:             it.ISBN13,
				Title:              it.Title,
				Author:             it.Author,
				Publisher:          it.Publisher,
				PubDate:            it.PubDate,
				Description:        it.Description,
				Cover:              catalog.Cover500(it.Cover),
				BestRank:           rank,
				SalesPoint:         it.SalesPoint,
				CustomerReviewRank: it.CustomerReviewRank,
				UpdatedAt:          s.clock(),
			}
			if err := repo.UpsertListItem(ctx, tx, row); err != nil {
				return err
			}
		}

		if err := repo.DeleteListItemsNotIn(ctx, tx, queryType, alive); err != nil {
			return err
		}
		return repo.TouchSyncMarker(ctx, tx, queryType, s.clock())
	})
}

// StaleList returns whatever rows the partition currently holds, regardless
// of freshness. Handlers use it to degrade gracefully when a refresh fails.
func (s *CatalogService) StaleList(ctx context.Context, queryType string, limit int) ([]domain.CatalogListItem, error) {
	return repo.ListItems(ctx, s.DB, queryType, limit)
}

// GetOrCreateBook returns the cached Book for isbn13, performing a one-time
// upstream detail lookup on a miss. The stored record is immutable: later
// calls never refresh it.
//
// Errors: ErrBookNotFound when the upstream knows no such ISBN; ErrUpstream
// (wrapped) on transport failures.
func (s *CatalogService) GetOrCreateBook(ctx context.Context, isbn13 string) (*domain.Book, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "GetOrCreateBook",
		trace.WithAttributes(attribute.String("book.isbn13", isbn13)),
	)
	defer span.End()

	b, err := repo.GetBookByISBN13(ctx, s.DB, isbn13)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	it, err := s.Source.ItemLookup(ctx, isbn13)
	if errors.Is(err, catalog.ErrItemNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	book := &domain.Book{
		ISBN13:       isbn13,
		Title:        it.Title,
		Author:       it.Author,
		Publisher:    it.Publisher,
		PubDate:      it.PubDate,
		Description:  it.Description,
		Cover:        catalog.Cover500(it.Cover),
		CategoryID:   it.CategoryID,
		CategoryName: it.CategoryName,
		BestRank:     it.BestRank,
	}
	if err := repo.CreateBook(ctx, s.DB, book); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Concurrent first-lookup; serve the winner's row.
			return repo.GetBookByISBN13(ctx, s.DB, isbn13)
		}
		return nil, err
	}
	return book, nil
}

// Search proxies a keyword query to the upstream search endpoint. Upstream
// failure degrades to an empty result, preserving availability; nothing is
// cached.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) []catalog.Item {
	items, err := s.Source.ItemSearch(ctx, query, "Keyword", "", limit, 1)
	if err != nil {
		return nil
	}
	return items
}
