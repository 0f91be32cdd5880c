package api

import (
	"net/http"

	"storefront/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, value, maxAge, "/", h.opts.CookieDomain, h.opts.CookieSecure, true)
}

func (h *Handler) login(c *gin.Context) {
	var in models.LoginInput
	if !bindJSON(c, &in) {
		return
	}

	sess, identity, err := h.auth.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sess.ID, int(h.opts.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, identity)
}

// logout ends the session if there is one; it never requires auth
func (h *Handler) logout(c *gin.Context) {
	sid, _ := c.Cookie(h.opts.CookieName)
	if err := h.auth.Logout(c.Request.Context(), sid); err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	identity, _ := c.Get(identityKey)
	c.JSON(http.StatusOK, identity)
}
