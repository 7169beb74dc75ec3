// Handler wiring shared by all endpoint files.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate sentinel service errors into the uniform error envelope.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jandibook/go-book-backend/internal/services"
	"github.com/jandibook/go-book-backend/internal/utils"
)

// Handlers groups the HTTP endpoints for books, community content,
// engagement, activity, and curation. It depends on the application services
// only; no endpoint touches the database directly.
type Handlers struct {
	Catalog    *services.CatalogService
	Engagement *services.EngagementService
	Community  *services.CommunityService
	Reviews    *services.ReviewService
	Profile    *services.ProfileService
	Recommend  *services.RecommendService
	Grass      *services.GrassService
	Curator    *services.CuratorService
}

// New constructs a Handlers instance bound to the given services.
func New(
	catalog *services.CatalogService,
	engagement *services.EngagementService,
	community *services.CommunityService,
	reviews *services.ReviewService,
	profile *services.ProfileService,
	recommend *services.RecommendService,
	grass *services.GrassService,
	curator *services.CuratorService,
) *Handlers {
	return &Handlers{
		Catalog:    catalog,
		Engagement: engagement,
		Community:  community,
		Reviews:    reviews,
		Profile:    profile,
		Recommend:  recommend,
		Grass:      grass,
		Curator:    curator,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// idParam parses the named path parameter as an unsigned integer id.
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid id")
		return 0, false
	}
	return uint(v), true
}

// intQuery parses an integer query parameter, falling back to def.
func intQuery(c *gin.Context, name string, def int) int {
	return utils.AtoiDefault(c.Query(name), def)
}

// failService maps a sentinel service error onto the error envelope. It
// returns true when err was non-nil and a response has been written.
func failService(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrBoardNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrCommentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrParentMismatch),
		errors.Is(err, services.ErrInvalidTarget),
		errors.Is(err, services.ErrSelfFollow):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrUpstream):
		fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
	return true
}
