// My-page HTTP handlers: the per-user profile surfaces.
//   - GET  /mypage/me                      (aggregated profile)
//   - GET  /mypage/bookmarks
//   - GET  /mypage/posts
//   - GET  /mypage/comments
//   - POST /mypage/follow/{user_id}        (toggle)
//   - GET  /mypage/followers[/{user_id}]
//   - GET  /mypage/following[/{user_id}]
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jandibook/go-book-backend/internal/domain"
)

// GetMyPage godoc
// @ID          getMyPage
// @Summary     Get own profile aggregation
// @Description Returns everything the user has saved or written plus their follow lists.
// @Tags        MyPage
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
//
// @Success     200  {object}  services.MyPage
// @Router      /mypage/me [get]
func (h *Handlers) GetMyPage(c *gin.Context) {
	page, err := h.Profile.MyPage(c.Request.Context(), userID(c))
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, page)
}

// ListMyBookmarks godoc
// @ID          listMyBookmarks
// @Summary     List own bookmarks
// @Tags        MyPage
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       limit      query   int     false  "Maximum rows (0 = all)"
//
// @Success     200  {array}  domain.Bookmark
// @Router      /mypage/bookmarks [get]
func (h *Handlers) ListMyBookmarks(c *gin.Context) {
	marks, err := h.Profile.Bookmarks(c.Request.Context(), userID(c), intQuery(c, "limit", 0))
	if failService(c, err) {
		return
	}
	if marks == nil {
		marks = []domain.Bookmark{}
	}
	ok(c, http.StatusOK, marks)
}

// ListMyPosts godoc
// @ID          listMyPosts
// @Summary     List own posts
// @Tags        MyPage
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
//
// @Success     200  {array}  domain.Post
// @Router      /mypage/posts [get]
func (h *Handlers) ListMyPosts(c *gin.Context) {
	page, err := h.Profile.MyPage(c.Request.Context(), userID(c))
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, page.Posts)
}

// ListMyComments godoc
// @ID          listMyComments
// @Summary     List own comments
// @Tags        MyPage
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
//
// @Success     200  {array}  domain.Comment
// @Router      /mypage/comments [get]
func (h *Handlers) ListMyComments(c *gin.Context) {
	page, err := h.Profile.MyPage(c.Request.Context(), userID(c))
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, page.Comments)
}

// ToggleFollow godoc
// @ID          toggleFollow
// @Summary     Toggle a follow
// @Description Follows the target user, or unfollows when already following.
// @Tags        MyPage
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       user_id    path    string  true   "Target user id"
//
// @Success     200  {object}  services.FollowResult
// @Failure     400  {object}  handlers.ErrorResponse  "Self-follow"
// @Router      /mypage/follow/{user_id} [post]
func (h *Handlers) ToggleFollow(c *gin.Context) {
	res, err := h.Profile.ToggleFollow(c.Request.Context(), userID(c), c.Param("user_id"))
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, res)
}

// ListFollowers godoc
// @ID          listFollowers
// @Summary     List followers
// @Description Lists the followers of the path user, defaulting to the current user.
// @Tags        MyPage
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       user_id    path    string  false  "User id (defaults to caller)"
//
// @Success     200  {array}  string
// @Router      /mypage/followers/{user_id} [get]
func (h *Handlers) ListFollowers(c *gin.Context) {
	uid := c.Param("user_id")
	if uid == "" {
		uid = userID(c)
	}
	users, err := h.Profile.Followers(c.Request.Context(), uid)
	if failService(c, err) {
		return
	}
	if users == nil {
		users = []string{}
	}
	ok(c, http.StatusOK, users)
}

// ListFollowing godoc
// @ID          listFollowing
// @Summary     List followed users
// @Description Lists who the path user follows, defaulting to the current user.
// @Tags        MyPage
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       user_id    path    string  false  "User id (defaults to caller)"
//
// @Success     200  {array}  string
// @Router      /mypage/following/{user_id} [get]
func (h *Handlers) ListFollowing(c *gin.Context) {
	uid := c.Param("user_id")
	if uid == "" {
		uid = userID(c)
	}
	users, err := h.Profile.Following(c.Request.Context(), uid)
	if failService(c, err) {
		return
	}
	if users == nil {
		users = []string{}
	}
	ok(c, http.StatusOK, users)
}
