package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/middleware"
	"github.com/mcansh/snkrs-sub000/internal/weberr"
)

const flashError = "error"

// safeReturnTo rejects absolute and protocol-relative targets so the
// login flow can't be used as an open redirect.
func safeReturnTo(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}

func (h *Handlers) loginForm(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	// reading the flash consumes it; commit makes the consumption durable
	flashed, hadFlash := sess.Get(flashError)
	if hadFlash {
		if !h.commit(c, sess) {
			return
		}
	}

	c.HTML(http.StatusOK, "login", gin.H{
		"Error":    flashed,
		"Email":    c.Query("email"),
		"ReturnTo": safeReturnTo(c.Query("returnTo")),
	})
}

func (h *Handlers) login(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	email := c.PostForm("email")
	password := c.PostForm("password")
	returnTo := safeReturnTo(c.Query("returnTo"))

	userID, err := h.store.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		if e, ok := weberr.As(err); ok && e.Status == http.StatusUnauthorized {
			sess.Flash(flashError, e.Message)
			if !h.commit(c, sess) {
				return
			}
			to := "/login"
			if returnTo != "" {
				to += "?returnTo=" + url.QueryEscape(returnTo)
			}
			c.Redirect(http.StatusFound, to)
			return
		}
		h.renderError(c, err)
		return
	}

	sess.SetUserID(userID)
	if !h.commit(c, sess) {
		return
	}

	if returnTo != "" {
		c.Redirect(http.StatusFound, returnTo)
		return
	}

	user, err := h.store.UserByID(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/"+user.Username)
}

func (h *Handlers) logout(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	cookie, err := h.sessions.Destroy(c.Request.Context(), sess)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.Header("Set-Cookie", cookie)
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handlers) joinForm(c *gin.Context) {
	c.HTML(http.StatusOK, "join", gin.H{
		"Errors":   map[string]string{},
		"Email":    "",
		"Username": "",
		"Name":     "",
	})
}

func (h *Handlers) join(c *gin.Context) {
	email := c.PostForm("email")
	username := c.PostForm("username")
	name := c.PostForm("name")
	password := c.PostForm("password")

	errs := map[string]string{}
	if email == "" {
		errs["email"] = "Email is required"
	}
	if username == "" {
		errs["username"] = "Username is required"
	}
	if password == "" {
		errs["password"] = "Password is required"
	}

	rerender := func(status int) {
		c.HTML(status, "join", gin.H{
			"Errors":   errs,
			"Email":    email,
			"Username": username,
			"Name":     name,
		})
	}

	if len(errs) > 0 {
		rerender(http.StatusBadRequest)
		return
	}

	userID, err := h.store.Register(c.Request.Context(), catalog.RegisterParams{
		Email:    email,
		Username: username,
		Name:     name,
		Password: password,
	})
	if err != nil {
		if fields := fieldErrors(err); fields != nil {
			errs = fields
			// duplicate email/username reads as a bad request on this form
			rerender(http.StatusBadRequest)
			return
		}
		h.renderError(c, err)
		return
	}

	sess := middleware.SessionFrom(c)
	sess.SetUserID(userID)
	if !h.commit(c, sess) {
		return
	}
	c.Redirect(http.StatusFound, "/"+username)
}

func (h *Handlers) impersonate(c *gin.Context) {
	target := c.PostForm("username")

	user, err := h.store.UserByUsername(c.Request.Context(), target)
	if err != nil {
		if weberr.IsNotFound(err) {
			h.renderNotFound(c, "user")
			return
		}
		h.renderError(c, err)
		return
	}

	// Authenticated(actor) -> Authenticated(target); the gate is the
	// actor's admin flag, checked by middleware, not the target's.
	sess := middleware.SessionFrom(c)
	sess.SetUserID(user.ID)
	if !h.commit(c, sess) {
		return
	}
	c.Redirect(http.StatusFound, "/"+user.Username)
}
