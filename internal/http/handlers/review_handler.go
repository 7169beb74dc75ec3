// Review HTTP handlers.
//
// This file exposes REST endpoints for book reviews on the review board:
//   - GET    /reviews                     (list with counts)
//   - POST   /reviews/write
//   - GET    /reviews/{id}                (detail with comment tree)
//   - PATCH  /reviews/{id}
//   - DELETE /reviews/{id}
//   - POST   /reviews/{id}/like
//   - GET    /reviews/{id}/comments
//   - POST   /reviews/{id}/comments/write
//   - GET    /reviews/me, /reviews/user/{user_id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/services"
)

const reviewBoardSlug = "review"

// ReviewRequest is the JSON payload for writing or editing a review.
type ReviewRequest struct {
	BookTitle  string `json:"book_title" example:"채식주의자"`
	BookAuthor string `json:"book_author" example:"한강"`
	Content    string `json:"content" example:"감상"`
	ISBN13     string `json:"isbn13" example:"9788936434120"`
	Publisher  string `json:"publisher" example:"창비"`
	PubDate    string `json:"pub_date" example:"2007-10-30"`
	Cover      string `json:"cover"`
	Rating     int    `json:"rating" example:"4"`
}

func (r ReviewRequest) input() services.ReviewInput {
	return services.ReviewInput{
		BookTitle:  r.BookTitle,
		BookAuthor: r.BookAuthor,
		Content:    r.Content,
		ISBN13:     r.ISBN13,
		Publisher:  r.Publisher,
		PubDate:    r.PubDate,
		Cover:      r.Cover,
		Rating:     r.Rating,
	}
}

// ListReviews godoc
// @ID          listReviews
// @Summary     List reviews
// @Description Returns reviews newest first with like/comment counts.
// @Tags        Reviews
// @Produce     json
//
// @Success     200  {array}  services.ReviewSummary
// @Router      /reviews [get]
func (h *Handlers) ListReviews(c *gin.Context) {
	rows, err := h.Reviews.ListReviews(c.Request.Context(), reviewBoardSlug)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, rows)
}

// CreateReview godoc
// @ID          createReview
// @Summary     Write a review
// @Description Creates a review with a book snapshot. Awards activity points.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string                  false  "User ID (demo header)"
// @Param       body       body    handlers.ReviewRequest  true   "Review payload"
//
// @Success     201  {object}  domain.Review
// @Failure     400  {object}  handlers.ErrorResponse  "Empty content or invalid rating"
// @Router      /reviews/write [post]
func (h *Handlers) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.Reviews.CreateReview(c.Request.Context(), userID(c), reviewBoardSlug, req.input())
	if failService(c, err) {
		return
	}
	ok(c, http.StatusCreated, r)
}

// GetReview godoc
// @ID          getReview
// @Summary     Get a review with its comment tree
// @Tags        Reviews
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Review id"
//
// @Success     200  {object}  services.ReviewDetail
// @Failure     404  {object}  handlers.ErrorResponse  "Review not found"
// @Router      /reviews/{id} [get]
func (h *Handlers) GetReview(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	d, err := h.Reviews.GetReview(c.Request.Context(), userID(c), reviewBoardSlug, id)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, d)
}

// UpdateReview godoc
// @ID          updateReview
// @Summary     Edit own review
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string                  false  "User ID (demo header)"
// @Param       id         path    int                     true   "Review id"
// @Param       body       body    handlers.ReviewRequest  true   "Fields to change"
//
// @Success     200  {object}  domain.Review
// @Failure     403  {object}  handlers.ErrorResponse  "Not the author"
// @Router      /reviews/{id} [patch]
func (h *Handlers) UpdateReview(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.Reviews.UpdateReview(c.Request.Context(), userID(c), reviewBoardSlug, id, req.input())
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, r)
}

// DeleteReview godoc
// @ID          deleteReview
// @Summary     Delete own review
// @Description Removes the review and every like and comment attached to it.
// @Tags        Reviews
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Review id"
//
// @Success     204  {string}  string  "Deleted"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the author"
// @Router      /reviews/{id} [delete]
func (h *Handlers) DeleteReview(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	if failService(c, h.Reviews.DeleteReview(c.Request.Context(), userID(c), reviewBoardSlug, id)) {
		return
	}
	noContent(c)
}

// LikeReview godoc
// @ID          likeReview
// @Summary     Toggle a like on a review
// @Tags        Reviews
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Review id"
//
// @Success     200  {object}  services.LikeResult
// @Router      /reviews/{id}/like [post]
func (h *Handlers) LikeReview(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	res, err := h.Engagement.ToggleLike(c.Request.Context(), userID(c), domain.TargetReview, id)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, res)
}

// ListReviewComments godoc
// @ID          listReviewComments
// @Summary     Get a review's comment tree
// @Tags        Reviews
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Review id"
//
// @Success     200  {object}  services.CommentTree
// @Router      /reviews/{id}/comments [get]
func (h *Handlers) ListReviewComments(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	tree, err := h.Engagement.BuildCommentTree(c.Request.Context(), userID(c), domain.TargetReview, id)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, tree)
}

// CreateReviewComment godoc
// @ID          createReviewComment
// @Summary     Comment on a review
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string                   false  "User ID (demo header)"
// @Param       id         path    int                      true   "Review id"
// @Param       body       body    handlers.CommentRequest  true   "Comment payload"
//
// @Success     201  {object}  domain.Comment
// @Router      /reviews/{id}/comments/write [post]
func (h *Handlers) CreateReviewComment(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	cm, err := h.Engagement.CreateComment(c.Request.Context(), userID(c), domain.TargetReview, id, req.Content, req.ParentID)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusCreated, cm)
}

// ListMyReviews godoc
// @ID          listMyReviews
// @Summary     List own reviews
// @Tags        Reviews
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
//
// @Success     200  {array}  domain.Review
// @Router      /reviews/me [get]
func (h *Handlers) ListMyReviews(c *gin.Context) {
	h.listReviewsByUser(c, userID(c))
}

// ListUserReviews godoc
// @ID          listUserReviews
// @Summary     List a user's reviews
// @Tags        Reviews
// @Produce     json
//
// @Param       user_id  path  string  true  "User id"
//
// @Success     200  {array}  domain.Review
// @Router      /reviews/user/{user_id} [get]
func (h *Handlers) ListUserReviews(c *gin.Context) {
	h.listReviewsByUser(c, c.Param("user_id"))
}

func (h *Handlers) listReviewsByUser(c *gin.Context, uid string) {
	rows, err := h.Reviews.ReviewsByUser(c.Request.Context(), uid)
	if failService(c, err) {
		return
	}
	if rows == nil {
		rows = []domain.Review{}
	}
	ok(c, http.StatusOK, rows)
}
