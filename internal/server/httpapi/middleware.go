package httpapi

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tijori/tijori/internal/common"
	"github.com/tijori/tijori/internal/server/models"
)

const identityKey = "identity"

// tokenFromRequest prefers the auth cookie and falls back to a bearer
// Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(common.AuthCookieName); err == nil && v != "" {
		return v
	}

	h := c.GetHeader(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(h, " ")
	if ok && strings.EqualFold(scheme, common.BearerScheme) {
		return strings.TrimSpace(token)
	}
	return ""
}

// authenticate resolves the session and stores the identity in the gin
// context. A renewed token is written back as the auth cookie.
func (s *HTTPServer) authenticate(c *gin.Context) {
	sess, err := s.users.Authenticate(c.Request.Context(), tokenFromRequest(c))
	if err != nil {
		s.abortWithError(c, err, errText{})
		return
	}

	if sess.RefreshedToken != "" {
		s.setAuthCookie(c, sess.RefreshedToken)
	}

	c.Set(identityKey, sess.Identity)
	c.Next()
}

// requireGuest rejects callers that already hold a live session.
func (s *HTTPServer) requireGuest(c *gin.Context) {
	if s.users.IsLive(tokenFromRequest(c)) {
		s.abortWithError(c, common.ErrAlreadyAuthenticated, errText{})
		return
	}
	c.Next()
}

func identity(c *gin.Context) models.Identity {
	id, _ := c.Get(identityKey)
	v, _ := id.(models.Identity)
	return v
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *HTTPServer) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error(c.Request.Context(), "panic recovered",
					"error", r,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, messageResponse{Message: msgInternal})
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

func (s *HTTPServer) cors() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{s.corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
