// Book HTTP handlers.
//
// This file exposes REST endpoints for the catalog-backed book surfaces:
//   - GET  /books/bestsellers          (TTL-cached bestseller list)
//   - GET  /books/new/special          (TTL-cached notable new releases)
//   - GET  /books/search               (pass-through keyword search)
//   - GET  /books/{isbn13}             (lazily cached book detail)
//   - POST /books/{isbn13}/bookmark    (toggle bookmark)
//   - GET  /books/recommend/bookmark   (author suggestions from own bookmarks)
//   - GET  /books/recommend/follow     (suggestions from followed readers)
//
// Cached list reads degrade: when the upstream refresh fails but stale rows
// exist, the stale rows are served instead of an error.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jandibook/go-book-backend/internal/catalog"
	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/services"
)

const defaultListLimit = 50

// BookListResponse wraps a cached catalog list.
type BookListResponse struct {
	QueryType string                   `json:"query_type"`
	Items     []domain.CatalogListItem `json:"items"`
	Stale     bool                     `json:"stale"`
}

// cachedList serves one cache partition with stale degradation.
func (h *Handlers) cachedList(c *gin.Context, queryType string) {
	ctx := c.Request.Context()
	limit := intQuery(c, "limit", defaultListLimit)

	items, err := h.Catalog.CachedList(ctx, queryType, limit)
	if err != nil {
		if !errors.Is(err, services.ErrUpstream) {
			failService(c, err)
			return
		}
		stale, serr := h.Catalog.StaleList(ctx, queryType, limit)
		if serr != nil || len(stale) == 0 {
			fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, err.Error())
			return
		}
		ok(c, http.StatusOK, BookListResponse{QueryType: queryType, Items: stale, Stale: true})
		return
	}
	ok(c, http.StatusOK, BookListResponse{QueryType: queryType, Items: items})
}

// ListBestsellers godoc
// @ID          listBestsellers
// @Summary     List bestsellers
// @Description Returns the cached bestseller list, refreshed from the external catalog when stale.
// @Tags        Books
// @Produce     json
//
// @Param       limit  query  int  false  "Maximum rows"  default(50)
//
// @Success     200  {object}  handlers.BookListResponse
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failed with no cached rows"
// @Router      /books/bestsellers [get]
func (h *Handlers) ListBestsellers(c *gin.Context) {
	h.cachedList(c, catalog.QueryBestseller)
}

// ListNewSpecial godoc
// @ID          listNewSpecial
// @Summary     List notable new releases
// @Description Returns the cached notable-new-release list, refreshed from the external catalog when stale.
// @Tags        Books
// @Produce     json
//
// @Param       limit  query  int  false  "Maximum rows"  default(50)
//
// @Success     200  {object}  handlers.BookListResponse
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failed with no cached rows"
// @Router      /books/new/special [get]
func (h *Handlers) ListNewSpecial(c *gin.Context) {
	h.cachedList(c, catalog.QueryNewSpecial)
}

// SearchResponse wraps pass-through search results.
type SearchResponse struct {
	Query string         `json:"query"`
	Items []catalog.Item `json:"items"`
}

// SearchBooks godoc
// @ID          searchBooks
// @Summary     Search books
// @Description Proxies a keyword query to the external catalog. Upstream failure yields an empty result.
// @Tags        Books
// @Produce     json
//
// @Param       q      query  string  true   "Search keywords"
// @Param       limit  query  int     false  "Maximum rows"  default(20)
//
// @Success     200  {object}  handlers.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing query"
// @Router      /books/search [get]
func (h *Handlers) SearchBooks(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing query")
		return
	}
	items := h.Catalog.Search(c.Request.Context(), q, intQuery(c, "limit", 20))
	if items == nil {
		items = []catalog.Item{}
	}
	ok(c, http.StatusOK, SearchResponse{Query: q, Items: items})
}

// GetBook godoc
// @ID          getBook
// @Summary     Get book detail
// @Description Returns the stored book for an ISBN, looking it up upstream once on first sight.
// @Tags        Books
// @Produce     json
//
// @Param       isbn13  path  string  true  "ISBN-13"
//
// @Success     200  {object}  domain.Book
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown ISBN"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failed"
// @Router      /books/{isbn13} [get]
func (h *Handlers) GetBook(c *gin.Context) {
	b, err := h.Catalog.GetOrCreateBook(c.Request.Context(), c.Param("isbn13"))
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, b)
}

// ToggleBookmark godoc
// @ID          toggleBookmark
// @Summary     Toggle a bookmark
// @Description Bookmarks the book for the current user, or removes the bookmark when it already exists.
// @Tags        Books
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       isbn13     path    string  true   "ISBN-13"
//
// @Success     200  {object}  services.BookmarkResult
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown ISBN"
// @Router      /books/{isbn13}/bookmark [post]
func (h *Handlers) ToggleBookmark(c *gin.Context) {
	res, err := h.Profile.ToggleBookmark(c.Request.Context(), userID(c), c.Param("isbn13"))
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, res)
}

// RecommendByBookmarks godoc
// @ID          recommendByBookmarks
// @Summary     Recommend from own bookmarks
// @Description Suggests other works by the author of one of the user's recent bookmarks. Empty when too few candidates remain.
// @Tags        Books
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       limit      query   int     false  "Suggestions wanted"  default(3)
//
// @Success     200  {object}  services.BookmarkRecommendation
// @Success     204  {string}  string  "No bookmarks to seed from"
// @Router      /books/recommend/bookmark [get]
func (h *Handlers) RecommendByBookmarks(c *gin.Context) {
	rec, err := h.Recommend.RecommendByBookmarks(c.Request.Context(), userID(c), intQuery(c, "limit", 3))
	if failService(c, err) {
		return
	}
	if rec == nil {
		noContent(c)
		return
	}
	ok(c, http.StatusOK, rec)
}

// RecommendByFollows godoc
// @ID          recommendByFollows
// @Summary     Recommend from followed readers
// @Description Surfaces the bookmarks of a followed reader, with the user's own books removed.
// @Tags        Books
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       limit      query   int     false  "Suggestions wanted"  default(3)
//
// @Success     200  {object}  services.FollowRecommendation
// @Success     204  {string}  string  "No followed reader qualifies"
// @Router      /books/recommend/follow [get]
func (h *Handlers) RecommendByFollows(c *gin.Context) {
	rec, err := h.Recommend.RecommendByFollows(c.Request.Context(), userID(c), intQuery(c, "limit", 3))
	if failService(c, err) {
		return
	}
	if rec == nil {
		noContent(c)
		return
	}
	ok(c, http.StatusOK, rec)
}
