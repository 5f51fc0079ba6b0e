package server

import (
	"net/http"

	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListCategories(c *gin.Context) {
	filter := categorydomain.ListFilter{
		Type: categorydomain.Type(c.Query("type")),
		On:   parseOptionalTime(c.Query("on")),
	}

	categories, err := s.categorySvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": categories})
}
