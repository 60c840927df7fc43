package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/weberr"
)

// profilePage serves GET /:username. Query params: sort (asc|desc,
// default desc) and brand (repeatable slug filter). The sort order is
// part of the cached snapshot; the brand filter is applied after the
// read, never cached.
func (h *Handlers) profilePage(c *gin.Context) {
	username := c.Param("username")
	sort := c.Query("sort")
	brands := c.QueryArray("brand")

	page, err := h.profiles.Page(c.Request.Context(), username, sort, brands)
	if err != nil {
		if weberr.IsNotFound(err) {
			h.renderNotFound(c, "user")
			return
		}
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "profile", gin.H{
		"User":     page.User,
		"Sneakers": page.Sneakers,
		"Sort":     string(catalog.NormalizeSort(sort)),
		"Brands":   brands,
	})
}
