package server

import (
	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/carefront/errors"
	"github.com/techagentng/carefront/models"
	"github.com/techagentng/carefront/server/response"
)

const identityKey = "identity"

// Authorize rejects requests without a valid token.
func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := s.IdentityVerifier.Verify(getTokenFromRequest(c))
		if err != nil {
			respondAndAbort(c, err)
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuthorize lets anonymous callers through but still rejects a
// token that fails verification.
func (s *Server) OptionalAuthorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := getTokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}
		identity, err := s.IdentityVerifier.Verify(token)
		if err != nil {
			respondAndAbort(c, err)
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequirePrivileged must run after Authorize.
func (s *Server) RequirePrivileged() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).IsPrivileged() {
			respondAndAbort(c, errs.Forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}

func (s *Server) limitSubmissions() gin.HandlerFunc {
	if s.RateLimitStore == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return ratelimit.RateLimiter(s.RateLimitStore, &ratelimit.Options{
		ErrorHandler: errs.ErrorHandler,
		KeyFunc:      keyFunc,
	})
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func identityFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*models.Identity)
	return identity
}

// respondAndAbort writes err and aborts the Context
func respondAndAbort(c *gin.Context, err error) {
	response.HandleErrors(c, err)
	c.Abort()
}

// getTokenFromRequest returns the Authorization header as sent, or the token
// cookie when the header is absent.
func getTokenFromRequest(c *gin.Context) string {
	if authHeader := c.Request.Header.Get("Authorization"); authHeader != "" {
		return authHeader
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}
