package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tijori/tijori/internal/common"
)

func (s *HTTPServer) sameSite() http.SameSite {
	if s.production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// setAuthCookie stores token in an HttpOnly cookie living as long as the
// token itself.
func (s *HTTPServer) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(s.sameSite())
	c.SetCookie(common.AuthCookieName, token, int(s.users.TokenValidity().Seconds()), "/", "", s.production, true)
}

func (s *HTTPServer) clearAuthCookie(c *gin.Context) {
	c.SetSameSite(s.sameSite())
	c.SetCookie(common.AuthCookieName, "", -1, "/", "", s.production, true)
}
