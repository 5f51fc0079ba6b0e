package server

import (
	"strings"

	"github.com/clubworks/prestige/internal/hub"
	"github.com/clubworks/prestige/internal/usercontext"
	"github.com/gin-gonic/gin"
)

// AuthRequired resolves the caller's bearer credential through the hub and
// stores both the credential and the resolved member id on the request
// context. Every outbound hub check reuses the same credential.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			AbortWithError(c, hub.ErrUnauthenticated)
			return
		}

		ctx := usercontext.WithToken(c.Request.Context(), token)
		userID, err := s.hub.ResolveToken(ctx, token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx = usercontext.WithUserID(ctx, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
