// Comment HTTP handlers addressing comments directly by id:
//   - DELETE /comments/{id}       (own comment, takes the reply subtree)
//   - POST   /comments/{id}/like  (toggle)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// DeleteComment godoc
// @ID          deleteComment
// @Summary     Delete own comment
// @Description Removes the comment together with its reply subtree and their likes.
// @Tags        Comments
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Comment id"
//
// @Success     204  {string}  string  "Deleted"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the author"
// @Failure     404  {object}  handlers.ErrorResponse  "Comment not found"
// @Router      /comments/{id} [delete]
func (h *Handlers) DeleteComment(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	if failService(c, h.Engagement.DeleteComment(c.Request.Context(), userID(c), id)) {
		return
	}
	noContent(c)
}

// LikeComment godoc
// @ID          likeComment
// @Summary     Toggle a like on a comment
// @Tags        Comments
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Comment id"
//
// @Success     200  {object}  services.LikeResult
// @Router      /comments/{id}/like [post]
func (h *Handlers) LikeComment(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	res, err := h.Engagement.ToggleLike(c.Request.Context(), userID(c), domain.TargetComment, id)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, res)
}
