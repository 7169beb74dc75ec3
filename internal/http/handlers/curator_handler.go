// AI curation HTTP handlers:
//   - GET  /curator/books/{isbn13}/analysis  (single-book analysis)
//   - POST /curator/recommend                (trait-based picks)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AnalyzeBook godoc
// @ID          analyzeBook
// @Summary     Analyze a book
// @Description Summarizes the book's story, reader reviews, keywords, and audience via the text-generation model.
// @Tags        Curator
// @Produce     json
//
// @Param       isbn13  path  string  true  "ISBN-13"
//
// @Success     200  {object}  services.BookAnalysis
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown ISBN"
// @Failure     502  {object}  handlers.ErrorResponse  "Model or catalog unavailable"
// @Router      /curator/books/{isbn13}/analysis [get]
func (h *Handlers) AnalyzeBook(c *gin.Context) {
	out, err := h.Curator.AnalyzeBook(c.Request.Context(), c.Param("isbn13"))
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, out)
}

// CuratorRecommendRequest carries the reader traits for trait-based picks.
type CuratorRecommendRequest struct {
	Traits map[string]string `json:"traits" example:"mood:잔잔한,genre:에세이"`
	Limit  int               `json:"limit" example:"3"`
}

// CuratorRecommend godoc
// @ID          curatorRecommend
// @Summary     Recommend books for reader traits
// @Description Asks the model to pick stored books matching the supplied traits, with a reason per pick.
// @Tags        Curator
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CuratorRecommendRequest  true  "Reader traits"
//
// @Success     200  {array}   services.TraitRecommendation
// @Failure     502  {object}  handlers.ErrorResponse  "Model unavailable"
// @Router      /curator/recommend [post]
func (h *Handlers) CuratorRecommend(c *gin.Context) {
	var req CuratorRecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if len(req.Traits) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing traits")
		return
	}
	recs, err := h.Curator.RecommendForTraits(c.Request.Context(), req.Traits, req.Limit)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, recs)
}
