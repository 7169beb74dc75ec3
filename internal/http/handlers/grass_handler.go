// Activity-tracking HTTP handlers:
//   - GET /grass/me, /grass/users/{user_id}            (heatmap range)
//   - GET /grass/level/me, /grass/level/users/{user_id} (level payload)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultGrassDays = 84 // twelve weeks

// GetMyGrass godoc
// @ID          getMyGrass
// @Summary     Get own activity heatmap
// @Description Returns one entry per day for the trailing window, zero-filled, with capped display counts.
// @Tags        Grass
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
// @Param       days       query   int     false  "Window length in days"  default(84)
//
// @Success     200  {array}  services.GrassDay
// @Router      /grass/me [get]
func (h *Handlers) GetMyGrass(c *gin.Context) {
	h.grassRange(c, userID(c))
}

// GetUserGrass godoc
// @ID          getUserGrass
// @Summary     Get a user's activity heatmap
// @Tags        Grass
// @Produce     json
//
// @Param       user_id  path   string  true   "User id"
// @Param       days     query  int     false  "Window length in days"  default(84)
//
// @Success     200  {array}  services.GrassDay
// @Router      /grass/users/{user_id} [get]
func (h *Handlers) GetUserGrass(c *gin.Context) {
	h.grassRange(c, c.Param("user_id"))
}

func (h *Handlers) grassRange(c *gin.Context, uid string) {
	days, err := h.Grass.Range(c.Request.Context(), uid, intQuery(c, "days", defaultGrassDays))
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, days)
}

// GetMyLevel godoc
// @ID          getMyLevel
// @Summary     Get own level
// @Tags        Grass
// @Produce     json
//
// @Param       X-User-ID  header  string  false  "User ID (demo header)"
//
// @Success     200  {object}  services.LevelPayload
// @Router      /grass/level/me [get]
func (h *Handlers) GetMyLevel(c *gin.Context) {
	h.level(c, userID(c))
}

// GetUserLevel godoc
// @ID          getUserLevel
// @Summary     Get a user's level
// @Tags        Grass
// @Produce     json
//
// @Param       user_id  path  string  true  "User id"
//
// @Success     200  {object}  services.LevelPayload
// @Router      /grass/level/users/{user_id} [get]
func (h *Handlers) GetUserLevel(c *gin.Context) {
	h.level(c, c.Param("user_id"))
}

func (h *Handlers) level(c *gin.Context, uid string) {
	lvl, err := h.Grass.Level(c.Request.Context(), uid)
	if failService(c, err) {
		return
	}
	ok(c, http.StatusOK, lvl)
}
