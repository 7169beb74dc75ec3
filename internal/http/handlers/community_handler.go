// Community HTTP handlers.
//
// This file exposes REST endpoints for boards and free-board posts:
//   - GET    /community/boards
//   - GET    /community/free/prefixes
//   - GET    /community/free                      (list, searchable)
//   - POST   /community/free/write
//   - GET    /community/free/{id}                 (detail with comment tree)
//   - PATCH  /community/free/{id}
//   - DELETE /community/free/{id}
//   - POST   /community/free/{id}/like
//   - GET    /community/free/{id}/comments
//   - POST   /community/free/{id}/comments/write
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jandibook/go-book-backend/internal/domain"
	"github.com/jandibook/go-book-backend/internal/repo"
	"github.com/jandibook/go-book-backend/internal/services"
)

const freeBoardSlug = "free"

// ListBoards godoc
// @ID          listBoards
// @Summary     List boards
// @Tags        Community
// @Produce     json
//
// @Success     200  {array}  domain.Board
// @Router      /community/boards [get]
func (h *Handlers) ListBoards(c *gin.Context) {
	boards, err := h.Community.Boards(c.Request.Context())
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, boards)
}

// ListPrefixes godoc
// @ID          listPrefixes
// @Summary     List free-board prefixes
// @Tags        Community
// @Produce     json
//
// @Success     200  {array}  domain.Prefix
// @Router      /community/free/prefixes [get]
func (h *Handlers) ListPrefixes(c *gin.Context) {
	prefixes, err := h.Community.Prefixes(c.Request.Context(), freeBoardSlug)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, prefixes)
}

// PostRequest is the JSON payload for writing or editing a post.
type PostRequest struct {
	Title   string `json:"title" example:"오늘의 독서 기록"`
	Content string `json:"content" example:"본문"`
	Prefix  string `json:"prefix" example:"잡담"`
}

// ListPosts godoc
// @ID          listPosts
// @Summary     List free-board posts
// @Description Returns posts newest first with like/comment counts. Supports title/content search and prefix filtering.
// @Tags        Community
// @Produce     json
//
// @Param       q       query  string  false  "Title/content search"
// @Param       prefix  query  string  false  "Prefix name filter"
//
// @Success     200  {array}  services.PostSummary
// @Router      /community/free [get]
func (h *Handlers) ListPosts(c *gin.Context) {
	posts, err := h.Community.ListPosts(c.Request.Context(), freeBoardSlug, repo.PostFilter{
		Query:  c.Query("q"),
		Prefix: c.Query("prefix"),
	})
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, posts)
}

// CreatePost godoc
// @ID          createPost
// @Summary     Write a free-board post
// @Description Creates a post; the prefix is created on first use. Awards activity points.
// @Tags        Community
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string                 false  "User ID (demo header)"
// @Param       body       body    handlers.PostRequest   true   "Post payload"
//
// @Success     201  {object}  domain.Post
// @Failure     400  {object}  handlers.ErrorResponse  "Empty title or content"
// @Router      /community/free/write [post]
func (h *Handlers) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.Community.CreatePost(c.Request.Context(), userID(c), freeBoardSlug, services.PostInput{
		Title: req.Title, Content: req.Content, Prefix: req.Prefix,
	})
	if failService(c, err) {
		return
	}
	ok(c, http.StatusCreated, p)
}

// GetPost godoc
// @ID          getPost
// @Summary     Get a post with its comment tree
// @Tags        Community
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Post id"
//
// @Success     200  {object}  services.PostDetail
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Router      /community/free/{id} [get]
func (h *Handlers) GetPost(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	d, err := h.Community.GetPost(c.Request.Context(), userID(c), freeBoardSlug, id)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, d)
}

// UpdatePost godoc
// @ID          updatePost
// @Summary     Edit own post
// @Description Applies the non-empty fields of the payload to the caller's own post.
// @Tags        Community
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string                false  "User ID (demo header)"
// @Param       id         path    int                   true   "Post id"
// @Param       body       body    handlers.PostRequest  true   "Fields to change"
//
// @Success     200  {object}  domain.Post
// @Failure     403  {object}  handlers.ErrorResponse  "Not the author"
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Router      /community/free/{id} [patch]
func (h *Handlers) UpdatePost(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.Community.UpdatePost(c.Request.Context(), userID(c), freeBoardSlug, id, services.PostInput{
		Title: req.Title, Content: req.Content, Prefix: req.Prefix,
	})
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, p)
}

// DeletePost godoc
// @ID          deletePost
// @Summary     Delete own post
// @Description Removes the post and every like and comment attached to it.
// @Tags        Community
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Post id"
//
// @Success     204  {string}  string  "Deleted"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the author"
// @Failure     404  {object}  handlers.ErrorResponse  "Post not found"
// @Router      /community/free/{id} [delete]
func (h *Handlers) DeletePost(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	if failService(c, h.Community.DeletePost(c.Request.Context(), userID(c), freeBoardSlug, id)) {
		return
	}
	noContent(c)
}

// LikePost godoc
// @ID          likePost
// @Summary     Toggle a like on a post
// @Tags        Community
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Post id"
//
// @Success     200  {object}  services.LikeResult
// @Router      /community/free/{id}/like [post]
func (h *Handlers) LikePost(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	res, err := h.Engagement.ToggleLike(c.Request.Context(), userID(c), domain.TargetPost, id)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, res)
}

// CommentRequest is the JSON payload for writing a comment.
type CommentRequest struct {
	Content  string `json:"content" example:"공감합니다"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// ListPostComments godoc
// @ID          listPostComments
// @Summary     Get a post's comment tree
// @Description Returns the nested comment tree plus the best comments by like count.
// @Tags        Community
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       id         path    int     true   "Post id"
//
// @Success     200  {object}  services.CommentTree
// @Router      /community/free/{id}/comments [get]
func (h *Handlers) ListPostComments(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	tree, err := h.Engagement.BuildCommentTree(c.Request.Context(), userID(c), domain.TargetPost, id)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, tree)
}

// CreatePostComment godoc
// @ID          createPostComment
// @Summary     Comment on a post
// @Description Writes a comment or, with parent_id, a reply within the same post. Awards activity points.
// @Tags        Community
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string                   false  "User ID (demo header)"
// @Param       id         path    int                      true   "Post id"
// @Param       body       body    handlers.CommentRequest  true   "Comment payload"
//
// @Success     201  {object}  domain.Comment
// @Failure     400  {object}  handlers.ErrorResponse  "Empty content or cross-target parent"
// @Failure     404  {object}  handlers.ErrorResponse  "Parent comment not found"
// @Router      /community/free/{id}/comments/write [post]
func (h *Handlers) CreatePostComment(c *gin.Context) {
	id, okID := idParam(c, "id")
	if !okID {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	cm, err := h.Engagement.CreateComment(c.Request.Context(), userID(c), domain.TargetPost, id, req.Content, req.ParentID)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusCreated, cm)
}
