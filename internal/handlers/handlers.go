// Package handlers registers the HTTP surface. Domain errors are caught
// at the top of each handler and translated to a redirect (page routes,
// usually with a flashed message) or a rendered error page; there is no
// global error hook.
package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/media"
	"github.com/mcansh/snkrs-sub000/internal/middleware"
	"github.com/mcansh/snkrs-sub000/internal/profile"
	"github.com/mcansh/snkrs-sub000/internal/session"
	"github.com/mcansh/snkrs-sub000/internal/weberr"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func Templates() *template.Template {
	return template.Must(
		template.New("").Funcs(template.FuncMap{
			"usd": usd,
		}).ParseFS(templateFS, "templates/*.tmpl"),
	)
}

// usd renders cents as dollars for templates.
func usd(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

type Handlers struct {
	store    catalog.Store
	profiles *profile.Reader
	sessions session.Manager
	uploader *media.Uploader // nil when media storage is not configured
	log      zerolog.Logger
	prod     bool
}

func New(
	store catalog.Store,
	profiles *profile.Reader,
	sessions session.Manager,
	uploader *media.Uploader,
	log zerolog.Logger,
	production bool,
) *Handlers {
	return &Handlers{
		store:    store,
		profiles: profiles,
		sessions: sessions,
		uploader: uploader,
		log:      log,
		prod:     production,
	}
}

func (h *Handlers) Register(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())
	r.Use(middleware.Sessions(h.sessions))

	r.GET("/healthcheck", h.healthcheck)

	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
	r.GET("/join", h.joinForm)
	r.POST("/join", h.join)

	authed := r.Group("/")
	authed.Use(middleware.RequireUser(h.store))
	authed.GET("/sneakers/add", h.sneakerAddForm)
	authed.POST("/sneakers/add", h.sneakerAdd)
	authed.GET("/sneakers/:id/edit", h.sneakerEditForm)
	authed.POST("/sneakers/:id/edit", h.sneakerEdit)
	authed.POST("/sneakers/:id/image", h.sneakerImage)

	admin := r.Group("/admin")
	admin.Use(middleware.RequireUser(h.store), middleware.RequireAdmin())
	admin.POST("/impersonate", h.impersonate)

	// catch-all last: profile pages live at the root
	r.GET("/:username", h.profilePage)
}

func (h *Handlers) healthcheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("healthcheck failed")
		c.String(http.StatusInternalServerError, "ERROR")
		return
	}
	c.String(http.StatusOK, "OK")
}

// commit persists the session and sets the cookie, or renders a 500.
// Store failure here is a hard error: the response must not claim
// session state that was never written.
func (h *Handlers) commit(c *gin.Context, sess *session.Session) bool {
	cookie, err := h.sessions.Commit(c.Request.Context(), sess)
	if err != nil {
		h.renderError(c, err)
		return false
	}
	c.Header("Set-Cookie", cookie)
	return true
}

func (h *Handlers) renderError(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")

	msg := "An unexpected error occurred."
	if !h.prod {
		msg = err.Error()
	}
	c.HTML(http.StatusInternalServerError, "error", gin.H{"Message": msg})
}

func (h *Handlers) renderNotFound(c *gin.Context, what string) {
	c.HTML(http.StatusNotFound, "notfound", gin.H{"Message": what + " not found"})
}

// fieldErrors pulls the per-field validation map off err, or nil.
func fieldErrors(err error) map[string]string {
	if e, ok := weberr.As(err); ok && e.Fields != nil {
		return e.Fields
	}
	return nil
}
