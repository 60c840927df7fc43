package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/session"
	"github.com/mcansh/snkrs-sub000/internal/weberr"
)

const (
	ctxSession = "session"
	ctxUser    = "currentUser"
)

// Sessions resolves the cookie into a session once per request. Fail-open:
// a broken cookie or unreachable store yields an anonymous session, never
// an error response.
func Sessions(manager session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := manager.GetSession(c.Request.Context(), c.GetHeader("Cookie"))
		c.Set(ctxSession, sess)
		c.Next()
	}
}

// SessionFrom returns the request session. Sessions must be installed.
func SessionFrom(c *gin.Context) *session.Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return session.New()
}

// LoginRedirect points an unauthenticated request at the login page with
// a returnTo back to where it came from.
func LoginRedirect(c *gin.Context) {
	to := "/login?returnTo=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, to)
	c.Abort()
}

// RequireUser loads the session's user or redirects to login. A userID
// pointing at a deleted user degrades to anonymous as well.
func RequireUser(store catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		userID := sess.UserID()
		if userID == "" {
			LoginRedirect(c)
			return
		}

		user, err := store.UserByID(c.Request.Context(), userID)
		if err != nil {
			LoginRedirect(c)
			return
		}

		c.Set(ctxUser, user)
		c.Next()
	}
}

// UserFrom returns the authenticated user. RequireUser must have run.
func UserFrom(c *gin.Context) *catalog.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*catalog.User); ok {
			return u
		}
	}
	return nil
}

// RequireAdmin gates admin-only routes. Runs after RequireUser.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFrom(c)
		if user == nil || !user.Admin {
			e := weberr.Authorization()
			c.String(e.Status, e.Message)
			c.Abort()
			return
		}
		c.Next()
	}
}
